package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/constants"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

type ProductHandler struct {
	Collection  *mongo.Collection
	AuditLogger utils.Logger
}

func NewProductHandler(coll *mongo.Collection, logger utils.Logger) *ProductHandler {
	return &ProductHandler{Collection: coll, AuditLogger: logger}
}

// POST /products
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.Collection.InsertOne(ctx, product); err != nil {
		utils.JSONError(w, "Insert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.ProductEntity, constants.Create, product.SellerUID, product)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

// GET /products
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.Collection.Find(ctx, bson.M{})
	if err != nil {
		utils.JSONError(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err = cursor.All(ctx, &products); err != nil {
		utils.JSONError(w, "Error decoding products", http.StatusInternalServerError)
		return
	}

	if len(products) == 0 {
		utils.JSONError(w, "No products found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(products)
}

// GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var product models.Product
	if err := h.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		utils.JSONError(w, "Product not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(product)
}

// GET /products/category/{slug}
func (h *ProductHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.Collection.Find(ctx, bson.M{"categorySlug": slug})
	if err != nil {
		utils.JSONError(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		utils.JSONError(w, "Error decoding products", http.StatusInternalServerError)
		return
	}

	if len(products) == 0 {
		utils.JSONError(w, "No record found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(products)
}

// GET /products/search?q=
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if query != "" {
		filter["$text"] = bson.M{"$search": query}
	}

	cursor, err := h.Collection.Find(ctx, filter)
	if err != nil {
		utils.JSONError(w, "Failed to search products: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var results []models.Product
	if err = cursor.All(ctx, &results); err != nil {
		utils.JSONError(w, "Failed to decode products", http.StatusInternalServerError)
		return
	}

	if len(results) == 0 {
		utils.JSONError(w, "No record found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(results)
}
