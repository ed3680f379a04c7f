package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

// ReportsHandler serves the office dashboard aggregates.
type ReportsHandler struct {
	customers db.CustomerCollection
	sites     db.SiteCollection
	assets    db.AssetCollection
	jobs      db.JobCollection
	invoices  db.InvoiceCollection
	users     db.UserCollection
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(customers db.CustomerCollection, sites db.SiteCollection, assets db.AssetCollection, jobs db.JobCollection, invoices db.InvoiceCollection, users db.UserCollection) *ReportsHandler {
	return &ReportsHandler{
		customers: customers,
		sites:     sites,
		assets:    assets,
		jobs:      jobs,
		invoices:  invoices,
		users:     users,
	}
}

// DashboardStats handles GET /api/dashboard/stats
func (h *ReportsHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()
	weekAgo := now.Add(-7 * 24 * time.Hour)

	totalJobs, err := h.jobs.CountJobs(ctx, bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to count jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	pendingJobs, err := h.jobs.CountJobs(ctx, bson.M{"status": models.JobStatusPending})
	if err != nil {
		log.WithError(err).Error("Failed to count pending jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	inProgressJobs, err := h.jobs.CountJobs(ctx, bson.M{"status": models.JobStatusInProgress})
	if err != nil {
		log.WithError(err).Error("Failed to count in-progress jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	completedThisWeek, err := h.jobs.CountJobs(ctx, bson.M{
		"status":     models.JobStatusCompleted,
		"updated_at": bson.M{"$gte": weekAgo},
	})
	if err != nil {
		log.WithError(err).Error("Failed to count completed jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	urgentJobs, err := h.jobs.CountJobs(ctx, bson.M{
		"priority": "urgent",
		"status":   bson.M{"$ne": models.JobStatusCompleted},
	})
	if err != nil {
		log.WithError(err).Error("Failed to count urgent jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	pmDue, err := h.assets.CountAssets(ctx, bson.M{"next_pm_due": bson.M{"$ne": nil, "$lte": now}})
	if err != nil {
		log.WithError(err).Error("Failed to count PM due assets")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalCustomers, err := h.customers.CountCustomers(ctx, bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to count customers")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalAssets, err := h.assets.CountAssets(ctx, bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to count assets")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	unpaid, err := h.invoices.FindInvoices(ctx, bson.M{"status": "unpaid"})
	if err != nil {
		log.WithError(err).Error("Failed to load unpaid invoices")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var outstanding float64
	for _, inv := range unpaid {
		outstanding += inv.Total
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_jobs":          totalJobs,
		"pending_jobs":        pendingJobs,
		"in_progress_jobs":    inProgressJobs,
		"completed_this_week": completedThisWeek,
		"urgent_jobs":         urgentJobs,
		"pm_due":              pmDue,
		"total_customers":     totalCustomers,
		"total_assets":        totalAssets,
		"outstanding_amount":  outstanding,
	})
}

// JobsByStatus handles GET /api/reports/jobs-by-status
func (h *ReportsHandler) JobsByStatus(w http.ResponseWriter, r *http.Request) {
	statuses := []string{
		models.JobStatusPending,
		models.JobStatusInProgress,
		models.JobStatusTravelling,
		models.JobStatusCompleted,
	}

	counts := map[string]int64{}
	for _, status := range statuses {
		n, err := h.jobs.CountJobs(r.Context(), bson.M{"status": status})
		if err != nil {
			log.WithError(err).Error("Failed to count jobs by status")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		counts[status] = n
	}
	writeJSON(w, http.StatusOK, counts)
}

// JobsByEngineer handles GET /api/reports/jobs-by-engineer: assigned job
// counts per engineer across every status, with names resolved.
func (h *ReportsHandler) JobsByEngineer(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.FindJobs(r.Context(), bson.M{"assigned_engineer_id": bson.M{"$ne": nil}})
	if err != nil {
		log.WithError(err).Error("Failed to load assigned jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	counts := map[string]int{}
	order := []string{}
	for _, job := range jobs {
		if job.AssignedEngineerID == nil || *job.AssignedEngineerID == "" {
			continue
		}
		engineerID := *job.AssignedEngineerID
		if _, seen := counts[engineerID]; !seen {
			order = append(order, engineerID)
		}
		counts[engineerID]++
	}

	rows := make([]map[string]interface{}, 0, len(order))
	for _, engineerID := range order {
		name := "Unknown"
		if user, err := h.users.FindUserByID(r.Context(), engineerID); err == nil {
			name = user.Name
		}
		rows = append(rows, map[string]interface{}{
			"engineer_id":   engineerID,
			"engineer_name": name,
			"count":         counts[engineerID],
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// PMDueList handles GET /api/reports/pm-due-list: assets due a PM now or
// earlier, capped at 100, each decorated with its site's name and address.
func (h *ReportsHandler) PMDueList(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.FindPMDue(r.Context(), time.Now().UTC(), 100)
	if err != nil {
		log.WithError(err).Error("Failed to query PM due list")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	enriched := make([]models.AssetWithSite, 0, len(assets))
	for _, asset := range assets {
		var summary *models.SiteSummary
		if site, err := h.sites.FindSiteByID(r.Context(), asset.SiteID); err == nil {
			summary = &models.SiteSummary{Name: site.Name, Address: site.Address}
		}
		enriched = append(enriched, models.AssetWithSite{Asset: asset, Site: summary})
	}
	writeJSON(w, http.StatusOK, enriched)
}
