package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobApproved JobStatus = "approved"
	JobRejected JobStatus = "rejected"

	MicroJobEntity  = "micro_job"
	JobReportEntity = "job_report"
)

// MicroJob is a posted micro task. LeftVacancy counts down as submitted work
// gets approved; the job budget was deducted from the poster's wallet when
// the job was posted.
type MicroJob struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PosterUID   string             `bson:"uid" json:"poster_uid"`
	JobTitle    string             `bson:"jobTitle" json:"job_title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Vacancy     int                `bson:"vacancy" json:"vacancy"`
	LeftVacancy int                `bson:"leftVacancy" json:"left_vacancy"`
	Price       float64            `bson:"price" json:"price"`
	Links       []string           `bson:"links,omitempty" json:"links,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Status      JobStatus          `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// JobApplication records that a worker applied to a job. One application per
// worker per job.
type JobApplication struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID     primitive.ObjectID `bson:"jobId" json:"job_id"`
	WorkerUID string             `bson:"uid" json:"worker_uid"`
	AppliedAt time.Time          `bson:"applied_at" json:"applied_at"`
}

// JobReport is submitted work waiting for the poster's approval. Approval
// moves it to the completed collection and pays the worker the job price.
type JobReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID       primitive.ObjectID `bson:"jobId" json:"job_id"`
	WorkerUID   string             `bson:"uid" json:"worker_uid"`
	Proof       []string           `bson:"proof,omitempty" json:"proof,omitempty"`
	Note        string             `bson:"note,omitempty" json:"note,omitempty"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
	ApprovedAt  *time.Time         `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	CancelledAt *time.Time         `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}
