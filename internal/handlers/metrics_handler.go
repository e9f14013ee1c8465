package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

type MetricsHandler struct {
	MemberCol   *mongo.Collection
	WalletCol   *mongo.Collection
	JobCol      *mongo.Collection
	WithdrawCol *mongo.Collection
}

// GET /admin/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalMembers, _ := h.MemberCol.CountDocuments(ctx, bson.M{})
	paidMembers, _ := h.MemberCol.CountDocuments(ctx, bson.M{"payment": models.PaymentPaid})
	leaders, _ := h.MemberCol.CountDocuments(ctx, bson.M{"leadership": bson.M{"$exists": true}})
	approvedJobs, _ := h.JobCol.CountDocuments(ctx, bson.M{"status": models.JobApproved})
	pendingWithdrawals, _ := h.WithdrawCol.CountDocuments(ctx, bson.M{"status": "pending"})

	// Total leadership payout across all members.
	var leadershipPaid float64
	cursor, err := h.MemberCol.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$leadershipLevelReward"},
		}}},
	})
	if err == nil {
		var results []bson.M
		if err := cursor.All(ctx, &results); err == nil && len(results) > 0 {
			if total, ok := results[0]["total"].(float64); ok {
				leadershipPaid = total
			}
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"total_members":           totalMembers,
		"paid_members":            paidMembers,
		"leaders":                 leaders,
		"approved_jobs":           approvedJobs,
		"pending_withdrawals":     pendingWithdrawals,
		"leadership_rewards_paid": leadershipPaid,
	})
}
