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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/constants"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

type MicroJobHandler struct {
	JobCol       *mongo.Collection
	AppliedCol   *mongo.Collection
	PendingCol   *mongo.Collection
	CompletedCol *mongo.Collection
	CancelCol    *mongo.Collection
	WalletCol    *mongo.Collection
	AuditLogger  utils.Logger
}

// POST /microjobs
func (h *MicroJobHandler) PostJob(w http.ResponseWriter, r *http.Request) {
	var job models.MicroJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		utils.JSONError(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if job.PosterUID == "" || job.JobTitle == "" || job.Description == "" || job.Category == "" {
		utils.JSONError(w, "Incomplete job data or missing user UID", http.StatusBadRequest)
		return
	}

	job.ID = primitive.NewObjectID()
	job.LeftVacancy = job.Vacancy
	job.Status = models.JobPending
	job.CreatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.JobCol.InsertOne(ctx, job); err != nil {
		utils.JSONError(w, "Insert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.MicroJobEntity, constants.Create, job.PosterUID, job)

	utils.JSONData(w, http.StatusCreated, "Job posted successfully", map[string]any{"job_id": job.ID})
}

// GET /microjobs
func (h *MicroJobHandler) GetApprovedJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := h.JobCol.Find(ctx, bson.M{"status": models.JobApproved})
	if err != nil {
		utils.JSONError(w, "Failed to fetch jobs", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var jobs []models.MicroJob
	if err := cursor.All(ctx, &jobs); err != nil {
		utils.JSONError(w, "Error decoding jobs", http.StatusInternalServerError)
		return
	}

	utils.JSONData(w, http.StatusOK, "", jobs)
}

// GET /microjobs/{id}
func (h *MicroJobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var job models.MicroJob
	if err := h.JobCol.FindOne(ctx, bson.M{"_id": id}).Decode(&job); err != nil {
		utils.JSONError(w, "Job not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(job)
}

// POST /microjobs/apply
func (h *MicroJobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID     string `json:"job_id"`
		WorkerUID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WorkerUID == "" {
		utils.JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := primitive.ObjectIDFromHex(req.JobID)
	if err != nil {
		utils.JSONError(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var job models.MicroJob
	if err := h.JobCol.FindOne(ctx, bson.M{"_id": jobID}).Decode(&job); err != nil {
		utils.JSONError(w, "Job not found", http.StatusNotFound)
		return
	}
	if job.LeftVacancy <= 0 {
		utils.JSONError(w, "No vacancy left", http.StatusConflict)
		return
	}

	count, err := h.AppliedCol.CountDocuments(ctx, bson.M{"jobId": jobID, "uid": req.WorkerUID})
	if err != nil {
		utils.JSONError(w, "Error checking existing application", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		utils.JSONError(w, "Already applied to this job", http.StatusConflict)
		return
	}

	application := models.JobApplication{
		ID:        primitive.NewObjectID(),
		JobID:     jobID,
		WorkerUID: req.WorkerUID,
		AppliedAt: time.Now(),
	}
	if _, err := h.AppliedCol.InsertOne(ctx, application); err != nil {
		utils.JSONError(w, "Failed to record application", http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.MicroJobEntity, constants.Apply, req.WorkerUID, application)
	utils.JSONData(w, http.StatusCreated, "Application recorded", application)
}

// POST /microjobs/submit-work
func (h *MicroJobHandler) SubmitWork(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID     string   `json:"job_id"`
		WorkerUID string   `json:"uid"`
		Proof     []string `json:"proof"`
		Note      string   `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WorkerUID == "" {
		utils.JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := primitive.ObjectIDFromHex(req.JobID)
	if err != nil {
		utils.JSONError(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	report := models.JobReport{
		ID:          primitive.NewObjectID(),
		JobID:       jobID,
		WorkerUID:   req.WorkerUID,
		Proof:       req.Proof,
		Note:        req.Note,
		SubmittedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.PendingCol.InsertOne(ctx, report); err != nil {
		utils.JSONError(w, "Failed to record work", http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.JobReportEntity, constants.Submit, req.WorkerUID, report)
	utils.JSONData(w, http.StatusCreated, "Work submitted for review", report)
}

// POST /microjobs/reports/{id}/approve
//
// Approval pays the worker the job price. microJobEarning and totalBalance
// move together; the wallet is upserted in case the worker never opened one.
func (h *MicroJobHandler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid report ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pending models.JobReport
	if err := h.PendingCol.FindOne(ctx, bson.M{"_id": reportID}).Decode(&pending); err != nil {
		utils.JSONError(w, "Pending report not found", http.StatusNotFound)
		return
	}

	var job models.MicroJob
	if err := h.JobCol.FindOne(ctx, bson.M{"_id": pending.JobID}).Decode(&job); err != nil {
		utils.JSONError(w, "Job not found", http.StatusNotFound)
		return
	}

	// The removal is the guard: only the caller that deletes the pending
	// report credits the worker, so two racing approvals cannot pay twice.
	var report models.JobReport
	err = h.PendingCol.FindOneAndDelete(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		utils.JSONError(w, "Report already processed", http.StatusConflict)
		return
	}
	if err != nil {
		utils.JSONError(w, "Failed to claim report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	report.ApprovedAt = &now
	if _, err := h.CompletedCol.InsertOne(ctx, report); err != nil {
		utils.JSONError(w, "Failed to archive report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	_, err = h.WalletCol.UpdateOne(ctx,
		bson.M{"uid": report.WorkerUID},
		bson.M{
			"$inc": bson.M{
				"microJobEarning": job.Price,
				"totalBalance":    job.Price,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		utils.JSONError(w, "Failed to credit worker wallet: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := h.JobCol.UpdateOne(ctx, bson.M{"_id": report.JobID}, bson.M{"$inc": bson.M{"leftVacancy": -1}}); err != nil {
		utils.JSONError(w, "Failed to update vacancy: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.JobReportEntity, constants.Approve, report.WorkerUID, bson.M{
		"report_id": reportID,
		"job_id":    report.JobID,
		"price":     job.Price,
	})

	utils.JSONData(w, http.StatusOK, "Report approved, earnings added, and vacancy updated", nil)
}

// POST /microjobs/reports/{id}/cancel
func (h *MicroJobHandler) CancelReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, "Invalid report ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var report models.JobReport
	err = h.PendingCol.FindOneAndDelete(ctx, bson.M{"_id": reportID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		utils.JSONError(w, "Pending report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.JSONError(w, "Failed to claim report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	report.CancelledAt = &now
	if _, err := h.CancelCol.InsertOne(ctx, report); err != nil {
		utils.JSONError(w, "Failed to archive report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.JobReportEntity, constants.Cancel, report.WorkerUID, bson.M{"report_id": reportID})
	utils.JSONData(w, http.StatusOK, "Report cancelled and archived", nil)
}
