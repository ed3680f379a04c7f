package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
	"github.com/cravencooling/fsm/internal/pm"
)

// Default service intervals in months.
const (
	defaultPMInterval        = 6
	defaultLeakCheckInterval = 12
)

// AssetHandler handles asset CRUD and service history.
type AssetHandler struct {
	assets db.AssetCollection
	jobs   db.JobCollection
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assets db.AssetCollection, jobs db.JobCollection) *AssetHandler {
	return &AssetHandler{assets: assets, jobs: jobs}
}

// Create handles POST /api/assets. PM and leak-check due dates are derived
// from the install date at creation time; a missing or unparsable install
// date leaves them nil.
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AssetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SiteID == "" || req.Name == "" {
		http.Error(w, "site_id and name are required", http.StatusBadRequest)
		return
	}

	pmInterval := defaultPMInterval
	if req.PMIntervalMonths != nil {
		pmInterval = *req.PMIntervalMonths
	}
	leakInterval := defaultLeakCheckInterval
	if req.FGasLeakCheckInterval != nil {
		leakInterval = *req.FGasLeakCheckInterval
	}

	asset := models.Asset{
		ID:                    primitive.NewObjectID(),
		SiteID:                req.SiteID,
		Name:                  req.Name,
		Make:                  req.Make,
		Model:                 req.Model,
		SerialNumber:          req.SerialNumber,
		InstallDate:           req.InstallDate,
		WarrantyExpiry:        req.WarrantyExpiry,
		RefrigerantType:       req.RefrigerantType,
		RefrigerantCharge:     req.RefrigerantCharge,
		FGasCategory:          req.FGasCategory,
		FGasCO2Equivalent:     req.FGasCO2Equivalent,
		PMIntervalMonths:      pmInterval,
		FGasLeakCheckInterval: leakInterval,
		NextPMDue:             pm.NextDue(req.InstallDate, pmInterval),
		Notes:                 req.Notes,
		CreatedAt:             time.Now().UTC(),
	}
	if req.RefrigerantType != "" {
		asset.FGasNextLeakCheckDue = pm.NextDue(req.InstallDate, leakInterval)
	}

	if err := h.assets.InsertAsset(r.Context(), asset); err != nil {
		log.WithError(err).Error("Failed to insert asset")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, asset)
}

// List handles GET /api/assets with an optional site_id filter.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if siteID := r.URL.Query().Get("site_id"); siteID != "" {
		filter["site_id"] = siteID
	}

	assets, err := h.assets.FindAssets(r.Context(), filter)
	if err != nil {
		log.WithError(err).Error("Failed to list assets")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// PMDue handles GET /api/assets/pm-due: assets whose PM is due now or
// earlier.
func (h *AssetHandler) PMDue(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.FindPMDue(r.Context(), time.Now().UTC(), 0)
	if err != nil {
		log.WithError(err).Error("Failed to query PM due assets")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// Get handles GET /api/assets/{id}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.FindAssetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// Update handles PUT /api/assets/{id}. Due dates are not recomputed: a
// schedule that drifted forward at job completion keeps its drift through
// unrelated edits.
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.AssetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pmInterval := defaultPMInterval
	if req.PMIntervalMonths != nil {
		pmInterval = *req.PMIntervalMonths
	}
	leakInterval := defaultLeakCheckInterval
	if req.FGasLeakCheckInterval != nil {
		leakInterval = *req.FGasLeakCheckInterval
	}

	set := bson.M{
		"site_id":                  req.SiteID,
		"name":                     req.Name,
		"make":                     req.Make,
		"model":                    req.Model,
		"serial_number":            req.SerialNumber,
		"install_date":             req.InstallDate,
		"warranty_expiry":          req.WarrantyExpiry,
		"refrigerant_type":         req.RefrigerantType,
		"refrigerant_charge":       req.RefrigerantCharge,
		"fgas_category":            req.FGasCategory,
		"fgas_co2_equivalent":      req.FGasCO2Equivalent,
		"pm_interval_months":       pmInterval,
		"fgas_leak_check_interval": leakInterval,
		"notes":                    req.Notes,
	}

	if err := h.assets.UpdateAsset(r.Context(), r.PathValue("id"), set); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Asset updated")
}

// Delete handles DELETE /api/assets/{id}. Jobs and F-Gas logs referencing
// the asset are left behind.
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.assets.DeleteAsset(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Asset not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Asset deleted")
}

// History handles GET /api/assets/{id}/history: jobs that touched the
// asset, newest first.
func (h *AssetHandler) History(w http.ResponseWriter, r *http.Request) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(100)
	jobs, err := h.jobs.FindJobs(r.Context(), bson.M{"asset_ids": r.PathValue("id")}, opts)
	if err != nil {
		log.WithError(err).Error("Failed to query asset history")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
