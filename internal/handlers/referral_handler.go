package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/referral"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

type ReferralHandler struct {
	MemberCol *mongo.Collection
}

// TreeNode is one member of the referral tree with their recursive downline.
type TreeNode struct {
	models.Member
	Children []TreeNode `json:"children"`
}

// GET /referrals/tree/{code}
func (h *ReferralHandler) ReferralTree(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	visited := map[string]bool{code: true}
	tree, err := h.buildTree(ctx, code, referral.GenerationCap, visited)
	if err != nil {
		utils.JSONError(w, "Failed to build referral tree", http.StatusInternalServerError)
		return
	}

	utils.JSONData(w, http.StatusOK, "", tree)
}

// buildTree descends the referral graph. Depth is capped and visited codes
// are skipped so a cyclic chain cannot recurse forever.
func (h *ReferralHandler) buildTree(ctx context.Context, code string, depth int, visited map[string]bool) ([]TreeNode, error) {
	if depth <= 0 {
		return []TreeNode{}, nil
	}

	cursor, err := h.MemberCol.Find(ctx, bson.M{"referredBy": code})
	if err != nil {
		return nil, err
	}
	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}

	nodes := make([]TreeNode, 0, len(members))
	for _, m := range members {
		node := TreeNode{Member: m, Children: []TreeNode{}}
		if m.ReferralCode != "" && !visited[m.ReferralCode] {
			visited[m.ReferralCode] = true
			children, err := h.buildTree(ctx, m.ReferralCode, depth-1, visited)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// GET /referrals/count/{uid}
func (h *ReferralHandler) ReferralCount(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var member models.Member
	if err := h.MemberCol.FindOne(ctx, bson.M{"uid": uid}).Decode(&member); err != nil {
		utils.JSONError(w, "User not found", http.StatusNotFound)
		return
	}

	count, err := h.MemberCol.CountDocuments(ctx, bson.M{
		"referredBy": member.ReferralCode,
		"payment":    models.PaymentPaid,
	})
	if err != nil {
		utils.JSONError(w, "Failed to count referrals", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"count":   count,
	})
}

// GET /referrals/{uid}
func (h *ReferralHandler) ListReferrals(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var member models.Member
	if err := h.MemberCol.FindOne(ctx, bson.M{"uid": uid}).Decode(&member); err != nil {
		utils.JSONError(w, "User not found", http.StatusNotFound)
		return
	}

	cursor, err := h.MemberCol.Find(ctx, bson.M{"referredBy": member.ReferralCode})
	if err != nil {
		utils.JSONError(w, "Failed to fetch referrals", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var referrals []models.Member
	if err := cursor.All(ctx, &referrals); err != nil {
		utils.JSONError(w, "Error decoding referrals", http.StatusInternalServerError)
		return
	}

	utils.JSONData(w, http.StatusOK, "", referrals)
}
