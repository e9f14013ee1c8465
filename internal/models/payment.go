package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderEntity      = "order"
	DepositEntity    = "deposit"
	WithdrawalEntity = "withdrawal"

	DepositTypeWallet = "wallet-deposit"

	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
)

// Order is a product purchase awaiting gateway confirmation. It is created
// as Pending when the payment session is opened and flipped by the IPN
// callback once the gateway validates the transaction.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID       string             `bson:"paymentId" json:"payment_id"`
	CustomerName    string             `bson:"customerName" json:"customer_name"`
	CustomerPhone   string             `bson:"customerPhone" json:"customer_phone"`
	CustomerEmail   string             `bson:"customerEmail" json:"customer_email"`
	CustomerAddress string             `bson:"customerAddress,omitempty" json:"customer_address,omitempty"`
	Amount          float64            `bson:"amount" json:"amount"`
	Currency        string             `bson:"currency" json:"currency"`
	PaymentStatus   string             `bson:"paymentStatus" json:"payment_status"`
	OrderStatus     string             `bson:"orderStatus" json:"order_status"`
	Products        []OrderItem        `bson:"products,omitempty" json:"products,omitempty"`
	Notes           string             `bson:"orderNotes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Deposit is a wallet top-up (or an internal wallet debit record, stored with
// a negative amount).
type Deposit struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID     string             `bson:"paymentId,omitempty" json:"payment_id,omitempty"`
	OwnerUID      string             `bson:"uid" json:"uid"`
	CustomerName  string             `bson:"customerName,omitempty" json:"customer_name,omitempty"`
	CustomerPhone string             `bson:"customerPhone,omitempty" json:"customer_phone,omitempty"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
	Type          string             `bson:"type" json:"type"`
	PaymentStatus string             `bson:"paymentStatus,omitempty" json:"payment_status,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// WithdrawalReport is a member's request to cash out wallet balance. The
// wallet is debited when the request is accepted; an admin settles it out of
// band.
type WithdrawalReport struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerUID      string             `bson:"uid" json:"uid"`
	Amount        float64            `bson:"amount" json:"amount"`
	Fee           float64            `bson:"fee" json:"fee"`
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
	PaymentMethod string             `bson:"paymentMethod" json:"payment_method"`
	AccountNumber string             `bson:"accountNumber" json:"account_number"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
