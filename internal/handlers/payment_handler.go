package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/constants"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/payments"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

// Paid-status thresholds applied when a wallet deposit is confirmed.
const (
	clientPaidThreshold = 100
	memberPaidThreshold = 313
)

type PaymentHandler struct {
	OrderCol    *mongo.Collection
	DepositCol  *mongo.Collection
	PaymentCol  *mongo.Collection
	WalletCol   *mongo.Collection
	MemberCol   *mongo.Collection
	Gateway     *payments.Client
	AuditLogger utils.Logger
	Config      struct {
		SuccessURL string
		FailURL    string
		CancelURL  string
		IPNURL     string
	}
}

type InitiatePaymentRequest struct {
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Phone   string             `json:"phone"`
	Address string             `json:"address"`
	Amount  float64            `json:"amount"`
	Product string             `json:"product"`
	Notes   string             `json:"notes"`
	Type    string             `json:"type"` // "wallet-deposit" or empty for a product order
	UID     string             `json:"uid"`
	Items   []models.OrderItem `json:"items"`
}

// POST /payments/initiate
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		utils.JSONError(w, "Amount must be positive", http.StatusBadRequest)
		return
	}

	transactionID := primitive.NewObjectID().Hex()
	now := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if req.Type == models.DepositTypeWallet {
		deposit := models.Deposit{
			PaymentID:     transactionID,
			OwnerUID:      req.UID,
			CustomerName:  req.Name,
			CustomerPhone: req.Phone,
			Amount:        req.Amount,
			Currency:      "BDT",
			Type:          models.DepositTypeWallet,
			PaymentStatus: models.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := h.DepositCol.InsertOne(ctx, deposit); err != nil {
			utils.JSONError(w, "Failed to record deposit", http.StatusInternalServerError)
			return
		}
	} else {
		order := models.Order{
			PaymentID:       transactionID,
			CustomerName:    req.Name,
			CustomerPhone:   req.Phone,
			CustomerEmail:   req.Email,
			CustomerAddress: req.Address,
			Amount:          req.Amount,
			Currency:        "BDT",
			PaymentStatus:   models.PaymentPending,
			OrderStatus:     models.PaymentPending,
			Products:        req.Items,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := h.OrderCol.InsertOne(ctx, order); err != nil {
			utils.JSONError(w, "Failed to record order", http.StatusInternalServerError)
			return
		}
	}

	productName := req.Product
	if productName == "" {
		productName = "Wallet Deposit"
	}
	session, err := h.Gateway.InitiateSession(ctx, payments.SessionRequest{
		Amount:          req.Amount,
		Currency:        "BDT",
		TransactionID:   transactionID,
		ProductName:     productName,
		CustomerName:    req.Name,
		CustomerEmail:   req.Email,
		CustomerPhone:   req.Phone,
		CustomerAddress: req.Address,
		SuccessURL:      fmt.Sprintf("%s?tran_id=%s", h.Config.SuccessURL, transactionID),
		FailURL:         fmt.Sprintf("%s?tran_id=%s", h.Config.FailURL, transactionID),
		CancelURL:       fmt.Sprintf("%s?tran_id=%s", h.Config.CancelURL, transactionID),
		IPNURL:          h.Config.IPNURL,
	})
	if err != nil {
		utils.JSONError(w, "Payment initialization failed", http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.DepositEntity, constants.Initiate, req.UID, bson.M{
		"tran_id": transactionID,
		"amount":  req.Amount,
		"type":    req.Type,
	})

	json.NewEncoder(w).Encode(map[string]string{"GatewayPageURL": session.GatewayPageURL})
}

// POST /payments/ipn
//
// The gateway calls this out of band. The payload is only trusted after the
// validator API confirms it.
func (h *PaymentHandler) IPN(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.JSONError(w, "Invalid IPN payload", http.StatusBadRequest)
		return
	}
	valID := r.FormValue("val_id")
	tranID := r.FormValue("tran_id")
	if valID == "" || tranID == "" {
		utils.JSONError(w, "Missing val_id or tran_id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	validation, err := h.Gateway.ValidatePayment(ctx, valID)
	if err != nil {
		utils.JSONError(w, "Validation call failed", http.StatusInternalServerError)
		return
	}
	if !validation.Valid() {
		utils.JSONError(w, "Invalid payment", http.StatusBadRequest)
		return
	}

	// Every write below must land before the gateway hears 200; a failure
	// returns 500 so the gateway redelivers the IPN.
	if _, err := h.PaymentCol.InsertOne(ctx, bson.M{
		"tran_id":     validation.TranID,
		"val_id":      validation.GatewayTxnRef,
		"status":      validation.Status,
		"amount":      validation.Amount,
		"currency":    validation.Currency,
		"receivedAt":  time.Now(),
		"raw_payload": validation,
	}); err != nil {
		utils.JSONError(w, "Failed to record payment: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var deposit models.Deposit
	err = h.DepositCol.FindOne(ctx, bson.M{"paymentId": tranID}).Decode(&deposit)
	if err == nil && deposit.Type == models.DepositTypeWallet {
		h.settleWalletDeposit(ctx, w, deposit, tranID)
		return
	}

	// Otherwise a product order.
	if _, err := h.OrderCol.UpdateOne(ctx,
		bson.M{"paymentId": tranID},
		bson.M{"$set": bson.M{
			"paymentStatus": models.PaymentCompleted,
			"orderStatus":   "Processing",
			"updated_at":    time.Now(),
		}},
	); err != nil {
		utils.JSONError(w, "Failed to update order: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSONData(w, http.StatusOK, "Product order payment verified", nil)
}

func (h *PaymentHandler) settleWalletDeposit(ctx context.Context, w http.ResponseWriter, deposit models.Deposit, tranID string) {
	// The status flip is the settlement guard: only the caller whose update
	// moves the deposit out of Pending credits the wallet, so a redelivered
	// IPN cannot credit twice.
	res, err := h.DepositCol.UpdateOne(ctx,
		bson.M{"paymentId": tranID, "paymentStatus": models.PaymentPending},
		bson.M{"$set": bson.M{
			"paymentStatus": models.PaymentCompleted,
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		utils.JSONError(w, "Failed to update deposit: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if res.ModifiedCount == 0 {
		utils.JSONData(w, http.StatusOK, "Deposit already settled", nil)
		return
	}

	_, err = h.WalletCol.UpdateOne(ctx,
		bson.M{"uid": deposit.OwnerUID},
		bson.M{
			"$inc": bson.M{
				"totalBalance":   deposit.Amount,
				"earningBalance": deposit.Amount,
			},
			"$setOnInsert": bson.M{"created_at": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		utils.JSONError(w, "Failed to credit wallet", http.StatusInternalServerError)
		return
	}

	var member models.Member
	err = h.MemberCol.FindOne(ctx, bson.M{"uid": deposit.OwnerUID}).Decode(&member)
	if err != nil && err != mongo.ErrNoDocuments {
		utils.JSONError(w, "Failed to load member: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err == nil {
		threshold := float64(memberPaidThreshold)
		if member.UserType == "client" {
			threshold = clientPaidThreshold
		}
		if deposit.Amount >= threshold {
			if _, err := h.MemberCol.UpdateOne(ctx,
				bson.M{"uid": deposit.OwnerUID},
				bson.M{"$set": bson.M{"payment": models.PaymentPaid, "updated_at": time.Now()}},
			); err != nil {
				utils.JSONError(w, "Failed to mark member paid: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}
	}

	h.AuditLogger.Log(ctx, models.DepositEntity, constants.Deposit, deposit.OwnerUID, bson.M{
		"tran_id": tranID,
		"amount":  deposit.Amount,
	})
	utils.JSONData(w, http.StatusOK, "Wallet deposit confirmed and balance updated", nil)
}

// GET /payments/reports
func (h *PaymentHandler) Reports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.PaymentCol.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}}))
	if err != nil {
		utils.JSONError(w, "Failed to fetch payment reports", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var reports []bson.M
	if err := cursor.All(ctx, &reports); err != nil {
		utils.JSONError(w, "Error decoding payment reports", http.StatusInternalServerError)
		return
	}

	utils.JSONData(w, http.StatusOK, "", reports)
}
