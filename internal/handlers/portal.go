package handlers

import (
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/auth"
	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/middleware"
	"github.com/cravencooling/fsm/internal/models"
)

// PortalHandler handles customer portal access management (staff side) and
// the customer-facing self-service endpoints.
type PortalHandler struct {
	authService *auth.Service
	portal      db.PortalCollection
	customers   db.CustomerCollection
	sites       db.SiteCollection
	assets      db.AssetCollection
	jobs        db.JobCollection
	completions db.JobCompletionCollection
	invoices    db.InvoiceCollection
}

// NewPortalHandler creates a new portal handler
func NewPortalHandler(authService *auth.Service, portal db.PortalCollection, customers db.CustomerCollection, sites db.SiteCollection, assets db.AssetCollection, jobs db.JobCollection, completions db.JobCompletionCollection, invoices db.InvoiceCollection) *PortalHandler {
	return &PortalHandler{
		authService: authService,
		portal:      portal,
		customers:   customers,
		sites:       sites,
		assets:      assets,
		jobs:        jobs,
		completions: completions,
		invoices:    invoices,
	}
}

// CreateAccess handles POST /api/portal/create-access. The plaintext access
// code appears in this response and nowhere else; only its hash is stored.
func (h *PortalHandler) CreateAccess(w http.ResponseWriter, r *http.Request) {
	var req models.PortalCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerID == "" || req.Email == "" {
		http.Error(w, "customer_id and email are required", http.StatusBadRequest)
		return
	}

	if _, err := h.customers.FindCustomerByID(r.Context(), req.CustomerID); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Customer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	code := h.authService.GenerateAccessCode()
	hash, err := h.authService.HashPassword(code)
	if err != nil {
		log.WithError(err).Error("Failed to hash access code")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	access := models.PortalAccess{
		ID:             primitive.NewObjectID(),
		CustomerID:     req.CustomerID,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		ContactName:    req.ContactName,
		AccessCodeHash: hash,
		CreatedAt:      time.Now().UTC(),
		Active:         true,
	}
	if err := h.portal.InsertAccess(r.Context(), access); err != nil {
		log.WithError(err).Error("Failed to insert portal access")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"customer_id": req.CustomerID,
		"email":       access.Email,
	}).Info("Portal access created")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access":      access,
		"access_code": code,
	})
}

// AccessList handles GET /api/portal/access-list, with customer names
// resolved.
func (h *PortalHandler) AccessList(w http.ResponseWriter, r *http.Request) {
	list, err := h.portal.FindAccessList(r.Context(), 500)
	if err != nil {
		log.WithError(err).Error("Failed to list portal access")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rows := make([]map[string]interface{}, 0, len(list))
	for _, access := range list {
		customerName := ""
		if customer, err := h.customers.FindCustomerByID(r.Context(), access.CustomerID); err == nil {
			customerName = customer.CompanyName
		}
		rows = append(rows, map[string]interface{}{
			"id":            access.ID.Hex(),
			"customer_id":   access.CustomerID,
			"customer_name": customerName,
			"email":         access.Email,
			"contact_name":  access.ContactName,
			"created_at":    access.CreatedAt,
			"last_login":    access.LastLogin,
			"active":        access.Active,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// RevokeAccess handles DELETE /api/portal/access/{id}. Tokens already
// issued stay valid until expiry.
func (h *PortalHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	if err := h.portal.DeleteAccess(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Portal access not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Portal access revoked")
}

// Login handles POST /api/portal/login
func (h *PortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.PortalLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	access, err := h.portal.FindActiveByEmail(r.Context(), email)
	if err != nil || !h.authService.CheckPassword(req.AccessCode, access.AccessCodeHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := h.portal.UpdateLastLogin(r.Context(), access.ID.Hex()); err != nil {
		log.WithError(err).Warn("Failed to stamp portal last login")
	}

	token, err := h.authService.GeneratePortalToken(access.ID.Hex(), access.CustomerID)
	if err != nil {
		log.WithError(err).Error("Failed to generate portal token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	customerName := ""
	if customer, err := h.customers.FindCustomerByID(r.Context(), access.CustomerID); err == nil {
		customerName = customer.CompanyName
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":         token,
		"customer_name": customerName,
		"contact_name":  access.ContactName,
	})
}

// customerSiteIDs returns the ids of every site belonging to the customer.
func (h *PortalHandler) customerSiteIDs(r *http.Request, customerID string) ([]models.Site, []string, error) {
	sites, err := h.sites.FindSites(r.Context(), bson.M{"customer_id": customerID})
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(sites))
	for _, site := range sites {
		ids = append(ids, site.ID.Hex())
	}
	return sites, ids, nil
}

// Dashboard handles GET /api/portal/dashboard
func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetPortalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var customer *models.Customer
	if c, err := h.customers.FindCustomerByID(r.Context(), claims.CustomerID); err == nil {
		customer = c
	}

	sites, siteIDs, err := h.customerSiteIDs(r, claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("Failed to load portal sites")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	assetsCount, err := h.assets.CountAssets(r.Context(), bson.M{"site_id": bson.M{"$in": siteIDs}})
	if err != nil {
		log.WithError(err).Error("Failed to count portal assets")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	totalJobs, err := h.jobs.CountJobs(r.Context(), bson.M{"customer_id": claims.CustomerID})
	if err != nil {
		log.WithError(err).Error("Failed to count portal jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	completedJobs, err := h.jobs.CountJobs(r.Context(), bson.M{
		"customer_id": claims.CustomerID,
		"status":      models.JobStatusCompleted,
	})
	if err != nil {
		log.WithError(err).Error("Failed to count portal completed jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Travelling jobs are deliberately excluded from the pending bucket.
	pendingJobs, err := h.jobs.CountJobs(r.Context(), bson.M{
		"customer_id": claims.CustomerID,
		"status":      bson.M{"$in": []string{models.JobStatusPending, models.JobStatusInProgress}},
	})
	if err != nil {
		log.WithError(err).Error("Failed to count portal pending jobs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	pmDue, err := h.assets.CountAssets(r.Context(), bson.M{
		"site_id":     bson.M{"$in": siteIDs},
		"next_pm_due": bson.M{"$ne": nil, "$lte": time.Now().UTC()},
	})
	if err != nil {
		log.WithError(err).Error("Failed to count portal PM due")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"customer":       customer,
		"sites_count":    len(sites),
		"assets_count":   assetsCount,
		"total_jobs":     totalJobs,
		"completed_jobs": completedJobs,
		"pending_jobs":   pendingJobs,
		"pm_due_count":   pmDue,
	})
}

// Sites handles GET /api/portal/sites
func (h *PortalHandler) Sites(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetPortalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sites, _, err := h.customerSiteIDs(r, claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("Failed to load portal sites")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

// Assets handles GET /api/portal/assets: the customer's assets across all
// their sites, each decorated with its site.
func (h *PortalHandler) Assets(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetPortalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sites, siteIDs, err := h.customerSiteIDs(r, claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("Failed to load portal sites")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	siteByID := make(map[string]*models.SiteSummary, len(sites))
	for _, site := range sites {
		siteByID[site.ID.Hex()] = &models.SiteSummary{Name: site.Name, Address: site.Address}
	}

	assets, err := h.assets.FindAssets(r.Context(), bson.M{"site_id": bson.M{"$in": siteIDs}})
	if err != nil {
		log.WithError(err).Error("Failed to load portal assets")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	enriched := make([]models.AssetWithSite, 0, len(assets))
	for _, asset := range assets {
		enriched = append(enriched, models.AssetWithSite{Asset: asset, Site: siteByID[asset.SiteID]})
	}
	writeJSON(w, http.StatusOK, enriched)
}

// ServiceHistory handles GET /api/portal/service-history: completed jobs
// with the engineer's sign-off notes attached.
func (h *PortalHandler) ServiceHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetPortalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(100)
	jobs, err := h.jobs.FindJobs(r.Context(), bson.M{
		"customer_id": claims.CustomerID,
		"status":      models.JobStatusCompleted,
	}, opts)
	if err != nil {
		log.WithError(err).Error("Failed to load portal service history")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rows := make([]map[string]interface{}, 0, len(jobs))
	for _, job := range jobs {
		row := map[string]interface{}{
			"job_number":  job.JobNumber,
			"job_type":    job.JobType,
			"description": job.Description,
			"site_id":     job.SiteID,
			"completed":   job.UpdatedAt,
		}
		if completion, err := h.completions.FindCompletionByJobID(r.Context(), job.ID.Hex()); err == nil {
			row["engineer_notes"] = completion.EngineerNotes
			row["completed"] = completion.CompletedAt
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, rows)
}

// UpcomingPM handles GET /api/portal/upcoming-pm: the customer's assets
// with a PM scheduled, soonest first.
func (h *PortalHandler) UpcomingPM(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetPortalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sites, siteIDs, err := h.customerSiteIDs(r, claims.CustomerID)
	if err != nil {
		log.WithError(err).Error("Failed to load portal sites")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	siteNames := make(map[string]string, len(sites))
	for _, site := range sites {
		siteNames[site.ID.Hex()] = site.Name
	}

	opts := options.Find().SetSort(bson.D{{Key: "next_pm_due", Value: 1}})
	assets, err := h.assets.FindAssets(r.Context(), bson.M{
		"site_id":     bson.M{"$in": siteIDs},
		"next_pm_due": bson.M{"$ne": nil},
	}, opts)
	if err != nil {
		log.WithError(err).Error("Failed to load portal upcoming PM")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	rows := make([]map[string]interface{}, 0, len(assets))
	for _, asset := range assets {
		isOverdue := asset.NextPMDue != nil && asset.NextPMDue.Before(now)
		rows = append(rows, map[string]interface{}{
			"asset_id":    asset.ID.Hex(),
			"name":        asset.Name,
			"make_model":  strings.TrimSpace(asset.Make + " " + asset.Model),
			"site_name":   siteNames[asset.SiteID],
			"next_pm_due": asset.NextPMDue,
			"is_overdue":  isOverdue,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// Invoices handles GET /api/portal/invoices
func (h *PortalHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetPortalFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	invoices, err := h.invoices.FindInvoices(r.Context(), bson.M{"customer_id": claims.CustomerID}, opts)
	if err != nil {
		log.WithError(err).Error("Failed to load portal invoices")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}
