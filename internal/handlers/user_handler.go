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

type UserHandler struct {
	Collection  *mongo.Collection
	AuditLogger utils.Logger
}

func NewUserHandler(coll *mongo.Collection, logger utils.Logger) *UserHandler {
	return &UserHandler{Collection: coll, AuditLogger: logger}
}

// POST /users
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		utils.JSONError(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Collection.FindOne(ctx, bson.M{"email": member.Email}).Err(); err == nil {
		utils.JSONError(w, "Email already exists", http.StatusBadRequest)
		return
	}
	if err := h.Collection.FindOne(ctx, bson.M{"phone": member.Phone}).Err(); err == nil {
		utils.JSONError(w, "Phone number already exists", http.StatusBadRequest)
		return
	}

	if member.ReferralCode == "" {
		member.ReferralCode = utils.NewReferralCode()
	}
	if err := h.Collection.FindOne(ctx, bson.M{"referralCode": member.ReferralCode}).Err(); err == nil {
		utils.JSONError(w, "Referral code already exists", http.StatusBadRequest)
		return
	}

	member.ID = primitive.NewObjectID()
	if member.PaymentStatus == "" {
		member.PaymentStatus = models.PaymentUnpaid
	}
	member.Leadership = nil
	member.LeadershipLevelReward = 0
	member.ReferralRewarded = false
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()

	if _, err := h.Collection.InsertOne(ctx, member); err != nil {
		utils.JSONError(w, "Insert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.MemberEntity, constants.Create, member.UID, member)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(member)
}

// GET /users/by-uid/{uid}
func (h *UserHandler) GetUserByUID(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var member models.Member
	if err := h.Collection.FindOne(ctx, bson.M{"uid": uid}).Decode(&member); err != nil {
		utils.JSONError(w, "User not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(member)
}

// GET /users/check-referral/{code}
func (h *UserHandler) CheckReferral(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := h.Collection.FindOne(ctx, bson.M{"referralCode": code}).Err()

	json.NewEncoder(w).Encode(map[string]bool{
		"exists": err == nil,
		"valid":  err == nil,
	})
}

// GET /users/find-referrer-by-code/{code}
func (h *UserHandler) FindReferrerByCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if code == "" {
		utils.JSONError(w, "Referral code is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var referrer models.Member
	if err := h.Collection.FindOne(ctx, bson.M{"referralCode": code}).Decode(&referrer); err != nil {
		utils.JSONError(w, "Referrer not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"uid":          referrer.UID,
		"display_name": referrer.DisplayName,
		"email":        referrer.Email,
		"id":           referrer.ID,
	})
}

// PATCH /users/verify-user
func (h *UserHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email              string `json:"email"`
		VerificationMethod string `json:"verification_method"`
		IsVerified         bool   `json:"is_verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	update := bson.M{}
	switch req.VerificationMethod {
	case "email":
		update["emailVerified"] = req.IsVerified
	case "phone":
		update["isOtpVerified"] = req.IsVerified
	default:
		utils.JSONError(w, "Unknown verification method", http.StatusBadRequest)
		return
	}
	update["updated_at"] = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := h.Collection.UpdateOne(ctx, bson.M{"email": req.Email}, bson.M{"$set": update})
	if err != nil {
		utils.JSONError(w, "Update failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		utils.JSONError(w, "User not found", http.StatusNotFound)
		return
	}

	h.AuditLogger.Log(ctx, models.MemberEntity, constants.Verify, req.Email, update)
	utils.JSONData(w, http.StatusOK, "Verification status updated", nil)
}

// PATCH /users/{id}/payment
func (h *UserHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	memberID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.JSONError(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := h.Collection.UpdateByID(ctx, memberID, bson.M{"$set": bson.M{
		"payment":    models.PaymentPaid,
		"updated_at": time.Now(),
	}})
	if err != nil {
		utils.JSONError(w, "Update failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		utils.JSONError(w, "Member not found", http.StatusNotFound)
		return
	}

	h.AuditLogger.Log(ctx, models.MemberEntity, constants.MarkPaid, idStr, nil)
	utils.JSONData(w, http.StatusOK, "Payment status updated", nil)
}

// GET /users/paid
func (h *UserHandler) PaidUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.Collection.Find(ctx, bson.M{"payment": models.PaymentPaid})
	if err != nil {
		utils.JSONError(w, "Failed to fetch users", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		utils.JSONError(w, "Error decoding users", http.StatusInternalServerError)
		return
	}

	utils.JSONData(w, http.StatusOK, "", members)
}
