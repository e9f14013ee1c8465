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

type WalletHandler struct {
	WalletCol   *mongo.Collection
	DepositCol  *mongo.Collection
	AuditLogger utils.Logger
}

// POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		utils.JSONError(w, "User ID (uid) is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.WalletCol.FindOne(ctx, bson.M{"uid": req.UID}).Err(); err == nil {
		utils.JSONError(w, "Wallet already exists for this user", http.StatusBadRequest)
		return
	}

	wallet := models.Wallet{
		ID:        primitive.NewObjectID(),
		OwnerUID:  req.UID,
		CreatedAt: time.Now(),
	}
	if _, err := h.WalletCol.InsertOne(ctx, wallet); err != nil {
		utils.JSONError(w, "Insert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.WalletEntity, constants.Create, req.UID, wallet)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(wallet)
}

// GET /wallets/{uid}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wallet models.Wallet
	if err := h.WalletCol.FindOne(ctx, bson.M{"uid": uid}).Decode(&wallet); err != nil {
		utils.JSONError(w, "Wallet not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(wallet)
}

// POST /wallets/check-balance
func (h *WalletHandler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID       string  `json:"uid"`
		TotalCost float64 `json:"total_cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		utils.JSONError(w, "User UID is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wallet models.Wallet
	if err := h.WalletCol.FindOne(ctx, bson.M{"uid": req.UID}).Decode(&wallet); err != nil {
		utils.JSONError(w, "Wallet not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"success":                true,
		"has_sufficient_balance": wallet.TotalBalance >= req.TotalCost,
		"current_balance":        wallet.TotalBalance,
		"required_amount":        req.TotalCost,
	})
}

// POST /wallets/deduct
func (h *WalletHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID    string  `json:"uid"`
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" || req.Amount <= 0 {
		utils.JSONError(w, "UID and a positive amount are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wallet models.Wallet
	if err := h.WalletCol.FindOne(ctx, bson.M{"uid": req.UID}).Decode(&wallet); err != nil {
		utils.JSONError(w, "Wallet not found", http.StatusNotFound)
		return
	}
	if wallet.TotalBalance < req.Amount {
		utils.JSONError(w, "Insufficient balance", http.StatusBadRequest)
		return
	}

	// Guarded debit: only succeeds while the balance still covers the amount,
	// so two concurrent deductions cannot overdraw.
	res, err := h.WalletCol.UpdateOne(ctx,
		bson.M{"uid": req.UID, "totalBalance": bson.M{"$gte": req.Amount}},
		bson.M{"$inc": bson.M{
			"totalBalance":   -req.Amount,
			"earningBalance": -req.Amount,
		}},
	)
	if err != nil {
		utils.JSONError(w, "Deduction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if res.ModifiedCount == 0 {
		utils.JSONError(w, "Insufficient balance", http.StatusBadRequest)
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "microjob_post"
	}
	h.DepositCol.InsertOne(ctx, models.Deposit{
		OwnerUID:      req.UID,
		Amount:        -req.Amount,
		Type:          reason,
		PaymentStatus: models.PaymentCompleted,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})

	h.AuditLogger.Log(ctx, models.WalletEntity, constants.Deduct, req.UID, req)

	utils.JSONData(w, http.StatusOK, "Amount deducted successfully", map[string]float64{
		"new_balance": wallet.TotalBalance - req.Amount,
	})
}
