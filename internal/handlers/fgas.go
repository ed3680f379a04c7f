package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
	"github.com/cravencooling/fsm/internal/pm"
)

// FGasHandler handles F-Gas compliance logs and reporting.
type FGasHandler struct {
	logs   db.FGasLogCollection
	assets db.AssetCollection
}

// NewFGasHandler creates a new F-Gas handler
func NewFGasHandler(logs db.FGasLogCollection, assets db.AssetCollection) *FGasHandler {
	return &FGasHandler{logs: logs, assets: assets}
}

// CreateLog handles POST /api/fgas/logs. The log is stored even when the
// referenced asset no longer exists; a leak check against a live asset
// rolls its leak-check schedule forward from now.
func (h *FGasHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req models.FGasLogRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AssetID == "" || req.LogType == "" {
		http.Error(w, "asset_id and log_type are required", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	entry := models.FGasLog{
		ID:                      primitive.NewObjectID(),
		AssetID:                 req.AssetID,
		JobID:                   req.JobID,
		LogType:                 req.LogType,
		RefrigerantType:         req.RefrigerantType,
		RefrigerantAdded:        req.RefrigerantAdded,
		RefrigerantRecovered:    req.RefrigerantRecovered,
		RefrigerantLost:         req.RefrigerantLost,
		LeakCheckResult:         req.LeakCheckResult,
		LeakCheckMethod:         req.LeakCheckMethod,
		TechnicianName:          req.TechnicianName,
		TechnicianCertification: req.TechnicianCertification,
		Notes:                   req.Notes,
		CreatedAt:               now,
	}
	if err := h.logs.InsertLog(r.Context(), entry); err != nil {
		log.WithError(err).Error("Failed to insert F-Gas log")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if req.LogType == models.FGasLogTypeLeakCheck {
		if asset, err := h.assets.FindAssetByID(r.Context(), req.AssetID); err == nil {
			interval := asset.FGasLeakCheckInterval
			if interval == 0 {
				interval = defaultLeakCheckInterval
			}
			nextDue := pm.DueFromNow(now, interval)
			if err := h.assets.UpdateAsset(r.Context(), req.AssetID, bson.M{
				"fgas_last_leak_check":     now,
				"fgas_next_leak_check_due": nextDue,
			}); err != nil {
				log.WithError(err).WithField("asset_id", req.AssetID).Error("Failed to roll leak-check schedule")
			}
		}
	}

	writeJSON(w, http.StatusOK, entry)
}

// ListLogs handles GET /api/fgas/logs with asset_id, job_id and log_type
// filters. Newest first, capped at 500.
func (h *FGasHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if v := r.URL.Query().Get("asset_id"); v != "" {
		filter["asset_id"] = v
	}
	if v := r.URL.Query().Get("job_id"); v != "" {
		filter["job_id"] = v
	}
	if v := r.URL.Query().Get("log_type"); v != "" {
		filter["log_type"] = v
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(500)
	logs, err := h.logs.FindLogs(r.Context(), filter, opts)
	if err != nil {
		log.WithError(err).Error("Failed to list F-Gas logs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// GetLog handles GET /api/fgas/logs/{id}
func (h *FGasHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	entry, err := h.logs.FindLogByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Log not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteLog handles DELETE /api/fgas/logs/{id}. The asset's leak-check
// schedule is not rewound.
func (h *FGasHandler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := h.logs.DeleteLog(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Log not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Log deleted")
}

// round3 keeps refrigerant weights presentable; float sums of 0.1-kg
// increments accumulate noise past the third decimal.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// categoryInventory is one inventory_by_category bucket.
type categoryInventory struct {
	Count              int     `json:"count"`
	TotalChargeKg      float64 `json:"total_charge_kg"`
	TotalCO2Equivalent float64 `json:"total_co2_equivalent"`
}

// Dashboard handles GET /api/fgas/dashboard: refrigerant inventory by
// category, leak-check posture across the estate and the year-to-date
// refrigerant movement summary.
func (h *FGasHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	assets, err := h.assets.FindAssets(r.Context(), bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to load assets for F-Gas dashboard")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Only assets with a refrigerant type and charge count as F-Gas estate.
	fgasAssets := make([]models.Asset, 0, len(assets))
	for _, asset := range assets {
		if asset.RefrigerantType != "" && asset.RefrigerantCharge != "" {
			fgasAssets = append(fgasAssets, asset)
		}
	}

	inventory := map[string]*categoryInventory{}
	var overdue, dueSoon []models.Asset
	dueSoonCutoff := now.Add(30 * 24 * time.Hour)
	for _, asset := range fgasAssets {
		category := asset.FGasCategory
		if category == "" {
			category = "Uncategorized"
		}
		bucket, ok := inventory[category]
		if !ok {
			bucket = &categoryInventory{}
			inventory[category] = bucket
		}
		bucket.Count++
		// Charge and CO2e are free-text fields; unparsable values count 0
		if charge, err := strconv.ParseFloat(asset.RefrigerantCharge, 64); err == nil {
			bucket.TotalChargeKg += charge
		}
		if co2, err := strconv.ParseFloat(asset.FGasCO2Equivalent, 64); err == nil {
			bucket.TotalCO2Equivalent += co2
		}

		if asset.FGasNextLeakCheckDue != nil {
			switch {
			case !asset.FGasNextLeakCheckDue.After(now):
				overdue = append(overdue, asset)
			case !asset.FGasNextLeakCheckDue.After(dueSoonCutoff):
				dueSoon = append(dueSoon, asset)
			}
		}
	}

	recentOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(10)
	recent, err := h.logs.FindLogs(r.Context(), bson.M{}, recentOpts)
	if err != nil {
		log.WithError(err).Error("Failed to load recent F-Gas logs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	yearLogs, err := h.logs.FindLogs(r.Context(), bson.M{"created_at": bson.M{"$gte": yearStart}})
	if err != nil {
		log.WithError(err).Error("Failed to load annual F-Gas logs")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var added, recovered, lost float64
	for _, entry := range yearLogs {
		added += entry.RefrigerantAdded
		recovered += entry.RefrigerantRecovered
		lost += entry.RefrigerantLost
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_fgas_assets":         len(fgasAssets),
		"inventory_by_category":     inventory,
		"leak_check_overdue_count":  len(overdue),
		"leak_check_overdue":        capAssets(overdue, 10),
		"leak_check_due_soon_count": len(dueSoon),
		"leak_check_due_soon":       capAssets(dueSoon, 10),
		"recent_logs":               recent,
		"annual_summary": map[string]interface{}{
			"year":                     now.Year(),
			"refrigerant_added_kg":     round3(added),
			"refrigerant_recovered_kg": round3(recovered),
			"refrigerant_lost_kg":      round3(lost),
		},
	})
}

func capAssets(assets []models.Asset, n int) []models.Asset {
	if assets == nil {
		return []models.Asset{}
	}
	if len(assets) > n {
		return assets[:n]
	}
	return assets
}

// LeakCheckDue handles GET /api/fgas/leak-check-due: assets whose leak
// check is due now or earlier.
func (h *FGasHandler) LeakCheckDue(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.FindLeakCheckDue(r.Context(), time.Now().UTC())
	if err != nil {
		log.WithError(err).Error("Failed to query leak-check due assets")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}
