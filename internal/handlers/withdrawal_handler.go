package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/constants"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/notify"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

type WithdrawalHandler struct {
	WalletCol   *mongo.Collection
	MemberCol   *mongo.Collection
	ReportCol   *mongo.Collection
	AuditLogger utils.Logger
	Notifier    *notify.SMSNotifier
	Config      struct {
		MinimumBalance float64
	}
}

type WithdrawRequest struct {
	UID           string  `json:"uid"`
	Amount        float64 `json:"amount"`
	Fee           float64 `json:"fee"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"`
	AccountNumber string  `json:"account_number"`
}

// POST /withdrawals
func (h *WithdrawalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UID == "" || req.Amount <= 0 || req.PaymentMethod == "" || req.AccountNumber == "" {
		utils.JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wallet models.Wallet
	if err := h.WalletCol.FindOne(ctx, bson.M{"uid": req.UID}).Decode(&wallet); err != nil {
		utils.JSONError(w, "User wallet not found", http.StatusNotFound)
		return
	}

	if wallet.TotalBalance-req.Amount < h.Config.MinimumBalance {
		utils.JSONError(w,
			fmt.Sprintf("Insufficient balance. Minimum %.0f must remain.", h.Config.MinimumBalance),
			http.StatusBadRequest)
		return
	}

	// Guarded debit, same minimum re-checked at write time.
	res, err := h.WalletCol.UpdateOne(ctx,
		bson.M{"uid": req.UID, "totalBalance": bson.M{"$gte": req.Amount + h.Config.MinimumBalance}},
		bson.M{"$inc": bson.M{
			"totalBalance":      -req.Amount,
			"withdrawalBalance": req.Amount,
		}},
	)
	if err != nil {
		utils.JSONError(w, "Failed to update wallet", http.StatusInternalServerError)
		return
	}
	if res.ModifiedCount == 0 {
		utils.JSONError(w, "Insufficient balance", http.StatusBadRequest)
		return
	}

	report := models.WithdrawalReport{
		ID:            primitive.NewObjectID(),
		OwnerUID:      req.UID,
		Amount:        req.Amount,
		Fee:           req.Fee,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		AccountNumber: req.AccountNumber,
		Status:        "pending",
		CreatedAt:     time.Now(),
	}
	if _, err := h.ReportCol.InsertOne(ctx, report); err != nil {
		utils.JSONError(w, "Failed to record withdrawal", http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.WithdrawalEntity, constants.Withdraw, req.UID, report)

	// Best-effort admin alert; the request never waits on the SMS gateway.
	var member models.Member
	name := "Unknown User"
	if err := h.MemberCol.FindOne(ctx, bson.M{"uid": req.UID}).Decode(&member); err == nil && member.DisplayName != "" {
		name = member.DisplayName
	}
	message := fmt.Sprintf("[Withdrawal Request]\nUser: %s\nAmount: %.2f\nMethod: %s\nAccount: %s",
		name, req.Amount, req.PaymentMethod, req.AccountNumber)
	go h.Notifier.NotifyAdmin(context.Background(), message)

	utils.JSONData(w, http.StatusOK, "", report)
}

// GET /withdrawals/{uid}
func (h *WithdrawalHandler) History(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.ReportCol.Find(ctx, bson.M{"uid": uid},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		utils.JSONError(w, "Failed to fetch withdrawal history", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var history []models.WithdrawalReport
	if err := cursor.All(ctx, &history); err != nil {
		utils.JSONError(w, "Error decoding withdrawal history", http.StatusInternalServerError)
		return
	}

	utils.JSONData(w, http.StatusOK, "", history)
}
