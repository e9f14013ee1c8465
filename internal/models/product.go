package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	RegularPrice float64            `bson:"regularPrice,omitempty" json:"regular_price,omitempty"`
	Category     string             `bson:"category" json:"category"`
	CategorySlug string             `bson:"categorySlug" json:"category_slug"`
	Images       []string           `bson:"images,omitempty" json:"images,omitempty"`
	Stock        int                `bson:"stock" json:"stock"`
	SellerUID    string             `bson:"sellerUid,omitempty" json:"seller_uid,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

const ProductEntity = "product"
