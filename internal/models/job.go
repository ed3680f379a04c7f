package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job statuses. No transition graph is enforced; any value may be written.
const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusTravelling = "travelling"
	JobStatusCompleted  = "completed"
)

// OpenJobStatuses is the set of statuses that count as an open job for PM
// dedup purposes.
var OpenJobStatuses = []string{JobStatusPending, JobStatusInProgress, JobStatusTravelling}

// JobTypePMService marks jobs created by the PM generator.
const JobTypePMService = "pm_service"

// Job represents a unit of field work against a customer site.
type Job struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	JobNumber          string             `bson:"job_number" json:"job_number"`
	CustomerID         string             `bson:"customer_id" json:"customer_id"`
	SiteID             string             `bson:"site_id" json:"site_id"`
	AssetIDs           []string           `bson:"asset_ids" json:"asset_ids"`
	JobType            string             `bson:"job_type" json:"job_type"` // "callout", "pm_service", "install", "quote_visit"
	Priority           string             `bson:"priority" json:"priority"` // "low", "medium", "high", "urgent"
	Status             string             `bson:"status" json:"status"`
	Description        string             `bson:"description" json:"description"`
	AssignedEngineerID *string            `bson:"assigned_engineer_id" json:"assigned_engineer_id"`
	ScheduledDate      *string            `bson:"scheduled_date" json:"scheduled_date"`
	ScheduledTime      *string            `bson:"scheduled_time" json:"scheduled_time"`
	EstimatedDuration  int                `bson:"estimated_duration" json:"estimated_duration"` // minutes
	SLAHours           *int               `bson:"sla_hours" json:"sla_hours"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
	CreatedBy          string             `bson:"created_by" json:"created_by"`
	AutoGenerated      bool               `bson:"auto_generated" json:"auto_generated"`
}

// JobRequest represents a job create request. EstimatedDuration defaults to
// 60 minutes and Priority to "medium".
type JobRequest struct {
	CustomerID         string   `json:"customer_id"`
	SiteID             string   `json:"site_id"`
	AssetIDs           []string `json:"asset_ids"`
	JobType            string   `json:"job_type"`
	Priority           string   `json:"priority"`
	Description        string   `json:"description"`
	AssignedEngineerID *string  `json:"assigned_engineer_id"`
	ScheduledDate      *string  `json:"scheduled_date"`
	ScheduledTime      *string  `json:"scheduled_time"`
	EstimatedDuration  *int     `json:"estimated_duration"`
	SLAHours           *int     `json:"sla_hours"`
}

// JobUpdateRequest represents a partial job update; nil fields are left
// untouched.
type JobUpdateRequest struct {
	Status             *string `json:"status"`
	AssignedEngineerID *string `json:"assigned_engineer_id"`
	ScheduledDate      *string `json:"scheduled_date"`
	ScheduledTime      *string `json:"scheduled_time"`
	Notes              *string `json:"notes"`
	Priority           *string `json:"priority"`
}

// JobEvent is an append-only audit entry for a job.
type JobEvent struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	JobID     string                 `bson:"job_id" json:"job_id"`
	EventType string                 `bson:"event_type" json:"event_type"` // "created", "status_changed", "completed", "auto_generated"
	UserID    string                 `bson:"user_id" json:"user_id"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
	Details   map[string]interface{} `bson:"details" json:"details"`
}

// JobCompletion captures the engineer's sign-off for a finished job.
type JobCompletion struct {
	ID                primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	JobID             string                   `bson:"job_id" json:"job_id"`
	EngineerNotes     string                   `bson:"engineer_notes" json:"engineer_notes"`
	PartsUsed         []map[string]interface{} `bson:"parts_used" json:"parts_used"`
	TravelTime        int                      `bson:"travel_time" json:"travel_time"`     // minutes
	TimeOnSite        int                      `bson:"time_on_site" json:"time_on_site"`   // minutes
	CustomerSignature *string                  `bson:"customer_signature" json:"customer_signature"`
	ChecklistItems    []map[string]interface{} `bson:"checklist_items" json:"checklist_items"`
	Photos            []string                 `bson:"photos" json:"photos"`
	CompletedBy       string                   `bson:"completed_by" json:"completed_by"`
	CompletedAt       time.Time                `bson:"completed_at" json:"completed_at"`
}

// JobCompletionRequest represents a job completion submission.
type JobCompletionRequest struct {
	EngineerNotes     string                   `json:"engineer_notes"`
	PartsUsed         []map[string]interface{} `json:"parts_used"`
	TravelTime        int                      `json:"travel_time"`
	TimeOnSite        int                      `json:"time_on_site"`
	CustomerSignature *string                  `json:"customer_signature"`
	ChecklistItems    []map[string]interface{} `json:"checklist_items"`
	Photos            []string                 `json:"photos"`
}

// ChecklistTemplate is a reusable per-asset-type service checklist.
type ChecklistTemplate struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	Name      string                   `bson:"name" json:"name"`
	AssetType string                   `bson:"asset_type" json:"asset_type"`
	Items     []map[string]interface{} `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at" json:"created_at"`
}

// ChecklistTemplateRequest represents a checklist template create request.
type ChecklistTemplateRequest struct {
	Name      string                   `json:"name"`
	AssetType string                   `json:"asset_type"`
	Items     []map[string]interface{} `json:"items"`
}
