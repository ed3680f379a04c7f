package handlers

import (
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/middleware"
	"github.com/cravencooling/fsm/internal/models"
)

// activeWindow is how far back the live map looks for an engineer's ping.
const activeWindow = 2 * time.Hour

// LocationHandler handles engineer GPS ping ingest and queries.
type LocationHandler struct {
	locations db.LocationCollection
	users     db.UserCollection
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations db.LocationCollection, users db.UserCollection) *LocationHandler {
	return &LocationHandler{locations: locations, users: users}
}

// toRecord converts a submitted point to a stored ping for the engineer.
// A missing or unparsable device timestamp falls back to server time, and a
// missing status defaults to travelling.
func toRecord(engineerID string, point models.LocationPoint, syncedAt time.Time) models.EngineerLocation {
	recordedAt := syncedAt
	if point.RecordedAt != "" {
		if t, err := time.Parse(time.RFC3339, point.RecordedAt); err == nil {
			recordedAt = t.UTC()
		}
	}
	status := point.Status
	if status == "" {
		status = "travelling"
	}
	return models.EngineerLocation{
		ID:         primitive.NewObjectID(),
		EngineerID: engineerID,
		Latitude:   point.Latitude,
		Longitude:  point.Longitude,
		Accuracy:   point.Accuracy,
		JobID:      point.JobID,
		Status:     status,
		RecordedAt: recordedAt,
		SyncedAt:   syncedAt,
	}
}

// Track handles POST /api/locations/track: a batch of queued points synced
// in one request, e.g. after the device regains signal.
func (h *LocationHandler) Track(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var batch models.LocationBatch
	if !decodeBody(w, r, &batch) {
		return
	}
	if len(batch.Locations) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"synced": 0})
		return
	}

	now := time.Now().UTC()
	records := make([]models.EngineerLocation, 0, len(batch.Locations))
	for _, point := range batch.Locations {
		records = append(records, toRecord(user.ID.Hex(), point, now))
	}

	if err := h.locations.InsertLocations(r.Context(), records); err != nil {
		log.WithError(err).Error("Failed to insert location batch")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"synced": len(records)})
}

// TrackSingle handles POST /api/locations/track/single
func (h *LocationHandler) TrackSingle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var point models.LocationPoint
	if !decodeBody(w, r, &point) {
		return
	}

	record := toRecord(user.ID.Hex(), point, time.Now().UTC())
	if err := h.locations.InsertLocations(r.Context(), []models.EngineerLocation{record}); err != nil {
		log.WithError(err).Error("Failed to insert location")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ActiveEngineers handles GET /api/locations/engineers: the latest ping per
// engineer seen in the last two hours, names resolved.
func (h *LocationHandler) ActiveEngineers(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-activeWindow)
	pings, err := h.locations.FindRecent(r.Context(), since, 1000)
	if err != nil {
		log.WithError(err).Error("Failed to query recent locations")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Pings come back newest first, so the first hit per engineer wins.
	latest := map[string]models.EngineerLocation{}
	order := []string{}
	for _, ping := range pings {
		if _, seen := latest[ping.EngineerID]; !seen {
			latest[ping.EngineerID] = ping
			order = append(order, ping.EngineerID)
		}
	}

	rows := make([]map[string]interface{}, 0, len(order))
	for _, engineerID := range order {
		ping := latest[engineerID]
		name := ""
		if user, err := h.users.FindUserByID(r.Context(), engineerID); err == nil {
			name = user.Name
		}
		rows = append(rows, map[string]interface{}{
			"engineer_id":   engineerID,
			"engineer_name": name,
			"latitude":      ping.Latitude,
			"longitude":     ping.Longitude,
			"status":        ping.Status,
			"job_id":        ping.JobID,
			"recorded_at":   ping.RecordedAt,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// EngineerHistory handles GET /api/locations/engineer/{id}?hours=8: the
// engineer's trail for the window, oldest first.
func (h *LocationHandler) EngineerHistory(w http.ResponseWriter, r *http.Request) {
	hours := 8
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	pings, err := h.locations.FindByEngineer(r.Context(), r.PathValue("id"), since, 1000)
	if err != nil {
		log.WithError(err).Error("Failed to query engineer locations")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pings)
}

// EngineerLatest handles GET /api/locations/engineer/{id}/latest
func (h *LocationHandler) EngineerLatest(w http.ResponseWriter, r *http.Request) {
	ping, err := h.locations.FindLatestByEngineer(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "No location data found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ping)
}
