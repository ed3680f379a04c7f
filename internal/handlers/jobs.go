package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/finance"
	"github.com/cravencooling/fsm/internal/middleware"
	"github.com/cravencooling/fsm/internal/models"
	"github.com/cravencooling/fsm/internal/pm"
)

// JobHandler handles job CRUD, the audit trail and completion flow.
type JobHandler struct {
	jobs        db.JobCollection
	events      db.JobEventCollection
	completions db.JobCompletionCollection
	assets      db.AssetCollection
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs db.JobCollection, events db.JobEventCollection, completions db.JobCompletionCollection, assets db.AssetCollection) *JobHandler {
	return &JobHandler{
		jobs:        jobs,
		events:      events,
		completions: completions,
		assets:      assets,
	}
}

// Create handles POST /api/jobs. The job number comes from the current
// collection count, so concurrent creates can collide.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.JobRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerID == "" || req.SiteID == "" || req.JobType == "" {
		http.Error(w, "customer_id, site_id and job_type are required", http.StatusBadRequest)
		return
	}

	count, err := h.jobs.CountJobs(r.Context(), bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to count jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}
	duration := 60
	if req.EstimatedDuration != nil {
		duration = *req.EstimatedDuration
	}
	assetIDs := req.AssetIDs
	if assetIDs == nil {
		assetIDs = []string{}
	}

	now := time.Now().UTC()
	job := models.Job{
		ID:                 primitive.NewObjectID(),
		JobNumber:          finance.FormatNumber(finance.JobPrefix, count),
		CustomerID:         req.CustomerID,
		SiteID:             req.SiteID,
		AssetIDs:           assetIDs,
		JobType:            req.JobType,
		Priority:           priority,
		Status:             models.JobStatusPending,
		Description:        req.Description,
		AssignedEngineerID: req.AssignedEngineerID,
		ScheduledDate:      req.ScheduledDate,
		ScheduledTime:      req.ScheduledTime,
		EstimatedDuration:  duration,
		SLAHours:           req.SLAHours,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          user.ID.Hex(),
	}
	if err := h.jobs.InsertJob(r.Context(), job); err != nil {
		log.WithError(err).Error("Failed to insert job")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.recordEvent(r, job.ID.Hex(), "created", user.ID.Hex(), map[string]interface{}{
		"job_number": job.JobNumber,
	})

	log.WithFields(log.Fields{
		"job_number": job.JobNumber,
		"job_type":   job.JobType,
	}).Info("Job created")

	writeJSON(w, http.StatusOK, job)
}

// List handles GET /api/jobs with status, priority, engineer_id,
// customer_id and job_type filters. Newest first, capped at 1000.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter["status"] = v
	}
	if v := q.Get("priority"); v != "" {
		filter["priority"] = v
	}
	if v := q.Get("engineer_id"); v != "" {
		filter["assigned_engineer_id"] = v
	}
	if v := q.Get("customer_id"); v != "" {
		filter["customer_id"] = v
	}
	if v := q.Get("job_type"); v != "" {
		filter["job_type"] = v
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(1000)
	jobs, err := h.jobs.FindJobs(r.Context(), filter, opts)
	if err != nil {
		log.WithError(err).Error("Failed to list jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Scheduled handles GET /api/jobs/scheduled: jobs with a scheduled date,
// optionally windowed by start_date/end_date. Completed jobs stay visible
// on the calendar.
func (h *JobHandler) Scheduled(w http.ResponseWriter, r *http.Request) {
	dateFilter := bson.M{"$ne": nil}
	q := r.URL.Query()
	if v := q.Get("start_date"); v != "" {
		dateFilter["$gte"] = v
	}
	if v := q.Get("end_date"); v != "" {
		dateFilter["$lte"] = v
	}

	jobs, err := h.jobs.FindJobs(r.Context(), bson.M{"scheduled_date": dateFilter})
	if err != nil {
		log.WithError(err).Error("Failed to list scheduled jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// MyJobs handles GET /api/jobs/my-jobs: open jobs assigned to the calling
// engineer.
func (h *JobHandler) MyJobs(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := bson.M{
		"assigned_engineer_id": user.ID.Hex(),
		"status":               bson.M{"$in": models.OpenJobStatuses},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_date", Value: 1}}).
		SetLimit(100)
	jobs, err := h.jobs.FindJobs(r.Context(), filter, opts)
	if err != nil {
		log.WithError(err).Error("Failed to list my jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Get handles GET /api/jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.FindJobByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Update handles PUT /api/jobs/{id}. Only submitted fields change; a status
// change is recorded in the audit trail.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.JobUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	job, err := h.jobs.FindJobByID(r.Context(), id)
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.AssignedEngineerID != nil {
		set["assigned_engineer_id"] = *req.AssignedEngineerID
	}
	if req.ScheduledDate != nil {
		set["scheduled_date"] = *req.ScheduledDate
	}
	if req.ScheduledTime != nil {
		set["scheduled_time"] = *req.ScheduledTime
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}
	if req.Priority != nil {
		set["priority"] = *req.Priority
	}

	if err := h.jobs.UpdateJob(r.Context(), id, set); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if req.Status != nil && *req.Status != job.Status {
		h.recordEvent(r, id, "status_changed", user.ID.Hex(), map[string]interface{}{
			"from": job.Status,
			"to":   *req.Status,
		})
	}

	message(w, "Job updated")
}

// Delete handles DELETE /api/jobs/{id}. Events, completions and photos for
// the job are left behind.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.DeleteJob(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Job deleted")
}

// Events handles GET /api/jobs/{id}/events: the audit trail, newest first.
func (h *JobHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.FindEvents(r.Context(), r.PathValue("id"), 100)
	if err != nil {
		log.WithError(err).Error("Failed to list job events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Complete handles POST /api/jobs/{id}/complete. Stores the completion
// record, marks the job completed and rolls each attached asset's service
// schedule forward from now. Completing an already-completed job stores a
// second completion record; no guard exists.
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.JobCompletionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	job, err := h.jobs.FindJobByID(r.Context(), id)
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	completion := models.JobCompletion{
		ID:                primitive.NewObjectID(),
		JobID:             id,
		EngineerNotes:     req.EngineerNotes,
		PartsUsed:         req.PartsUsed,
		TravelTime:        req.TravelTime,
		TimeOnSite:        req.TimeOnSite,
		CustomerSignature: req.CustomerSignature,
		ChecklistItems:    req.ChecklistItems,
		Photos:            req.Photos,
		CompletedBy:       user.ID.Hex(),
		CompletedAt:       now,
	}
	if err := h.completions.InsertCompletion(r.Context(), completion); err != nil {
		log.WithError(err).Error("Failed to insert completion")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.jobs.UpdateJob(r.Context(), id, bson.M{
		"status":     models.JobStatusCompleted,
		"updated_at": now,
	}); err != nil {
		log.WithError(err).Error("Failed to mark job completed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// The next PM drifts forward from the service moment rather than
	// snapping back to the install-date grid.
	for _, assetID := range job.AssetIDs {
		asset, err := h.assets.FindAssetByID(r.Context(), assetID)
		if err != nil {
			log.WithField("asset_id", assetID).Warn("Completed job references missing asset")
			continue
		}
		interval := asset.PMIntervalMonths
		if interval == 0 {
			interval = defaultPMInterval
		}
		nextDue := pm.DueFromNow(now, interval)
		if err := h.assets.UpdateAsset(r.Context(), assetID, bson.M{
			"last_service_date": now,
			"next_pm_due":       nextDue,
		}); err != nil {
			log.WithError(err).WithField("asset_id", assetID).Error("Failed to roll asset service schedule")
		}
	}

	h.recordEvent(r, id, "completed", user.ID.Hex(), map[string]interface{}{
		"travel_time":  req.TravelTime,
		"time_on_site": req.TimeOnSite,
	})

	log.WithField("job_number", job.JobNumber).Info("Job completed")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Job completed",
		"completion_id": completion.ID.Hex(),
	})
}

// GetCompletion handles GET /api/jobs/{id}/completion
func (h *JobHandler) GetCompletion(w http.ResponseWriter, r *http.Request) {
	completion, err := h.completions.FindCompletionByJobID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Completion not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, completion)
}

// recordEvent appends a job event; the calling mutation is already
// committed, so a failure here is only logged.
func (h *JobHandler) recordEvent(r *http.Request, jobID, eventType, userID string, details map[string]interface{}) {
	event := models.JobEvent{
		ID:        primitive.NewObjectID(),
		JobID:     jobID,
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}
	if err := h.events.InsertEvent(r.Context(), event); err != nil {
		log.WithError(err).WithField("job_id", jobID).Error("Failed to record job event")
	}
}

// ChecklistHandler handles service checklist templates.
type ChecklistHandler struct {
	checklists db.ChecklistCollection
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(checklists db.ChecklistCollection) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists}
}

// Create handles POST /api/checklist-templates
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ChecklistTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	template := models.ChecklistTemplate{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		AssetType: req.AssetType,
		Items:     req.Items,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.checklists.InsertTemplate(r.Context(), template); err != nil {
		log.WithError(err).Error("Failed to insert checklist template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// List handles GET /api/checklist-templates with an optional asset_type
// filter.
func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if assetType := r.URL.Query().Get("asset_type"); assetType != "" {
		filter["asset_type"] = assetType
	}

	templates, err := h.checklists.FindTemplates(r.Context(), filter)
	if err != nil {
		log.WithError(err).Error("Failed to list checklist templates")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}
