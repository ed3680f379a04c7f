package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

func TestLocationHandler_Track(t *testing.T) {
	t.Run("batch sync", func(t *testing.T) {
		locations := new(MockLocationCollection)
		users := new(MockUserCollection)
		handler := NewLocationHandler(locations, users)
		user := testUser()

		locations.On("InsertLocations", mock.Anything, mock.MatchedBy(func(records []models.EngineerLocation) bool {
			if len(records) != 2 {
				return false
			}
			for _, record := range records {
				if record.EngineerID != user.ID.Hex() {
					return false
				}
			}
			// device timestamp preserved on the first, server time on the second
			return records[0].RecordedAt.Equal(time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC)) &&
				records[1].RecordedAt.Equal(records[1].SyncedAt)
		})).Return(nil)

		req := withUser(postJSON("/api/locations/track", models.LocationBatch{
			Locations: []models.LocationPoint{
				{Latitude: 53.96, Longitude: -2.01, Status: "travelling", RecordedAt: "2026-08-30T09:15:00Z"},
				{Latitude: 53.97, Longitude: -2.02, Status: "on_site", RecordedAt: "not-a-timestamp"},
			},
		}), user)
		w := httptest.NewRecorder()
		handler.Track(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, float64(2), resp["synced"])
		locations.AssertExpectations(t)
	})

	t.Run("missing status defaults to travelling", func(t *testing.T) {
		locations := new(MockLocationCollection)
		handler := NewLocationHandler(locations, new(MockUserCollection))

		locations.On("InsertLocations", mock.Anything, mock.MatchedBy(func(records []models.EngineerLocation) bool {
			return len(records) == 1 && records[0].Status == "travelling"
		})).Return(nil)

		req := withUser(postJSON("/api/locations/track", models.LocationBatch{
			Locations: []models.LocationPoint{{Latitude: 53.96, Longitude: -2.01}},
		}), testUser())
		w := httptest.NewRecorder()
		handler.Track(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		locations.AssertExpectations(t)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		locations := new(MockLocationCollection)
		handler := NewLocationHandler(locations, new(MockUserCollection))

		req := withUser(postJSON("/api/locations/track", models.LocationBatch{}), testUser())
		w := httptest.NewRecorder()
		handler.Track(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, float64(0), resp["synced"])
		locations.AssertNotCalled(t, "InsertLocations", mock.Anything, mock.Anything)
	})
}

func TestLocationHandler_ActiveEngineers_DedupsPerEngineer(t *testing.T) {
	locations := new(MockLocationCollection)
	users := new(MockUserCollection)
	handler := NewLocationHandler(locations, users)

	now := time.Now().UTC()
	// Newest first, as FindRecent returns them
	pings := []models.EngineerLocation{
		{EngineerID: "eng1", Latitude: 53.96, Longitude: -2.01, Status: "on_site", RecordedAt: now},
		{EngineerID: "eng2", Latitude: 53.80, Longitude: -1.75, Status: "travelling", RecordedAt: now.Add(-time.Minute)},
		{EngineerID: "eng1", Latitude: 53.90, Longitude: -2.00, Status: "travelling", RecordedAt: now.Add(-5 * time.Minute)},
	}
	locations.On("FindRecent", mock.Anything, mock.Anything, int64(1000)).Return(pings, nil)
	users.On("FindUserByID", mock.Anything, "eng1").Return(&models.User{ID: primitive.NewObjectID(), Name: "Alice"}, nil)
	users.On("FindUserByID", mock.Anything, "eng2").Return(nil, db.ErrNotFound)

	req := httptest.NewRequest("GET", "/api/locations/engineers", nil)
	w := httptest.NewRecorder()
	handler.ActiveEngineers(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rows))
	require.Len(t, rows, 2)

	// The newest ping per engineer wins, order preserved
	assert.Equal(t, "eng1", rows[0]["engineer_id"])
	assert.Equal(t, "Alice", rows[0]["engineer_name"])
	assert.Equal(t, "on_site", rows[0]["status"])
	assert.Equal(t, "eng2", rows[1]["engineer_id"])
	assert.Equal(t, "", rows[1]["engineer_name"])
}

func TestLocationHandler_EngineerHistory_HoursWindow(t *testing.T) {
	locations := new(MockLocationCollection)
	handler := NewLocationHandler(locations, new(MockUserCollection))

	locations.On("FindByEngineer", mock.Anything, "eng1", mock.MatchedBy(func(since time.Time) bool {
		return since.Sub(time.Now().UTC().Add(-2*time.Hour)).Abs() < time.Minute
	}), int64(1000)).Return([]models.EngineerLocation{}, nil)

	req := httptest.NewRequest("GET", "/api/locations/engineer/eng1?hours=2", nil)
	req.SetPathValue("id", "eng1")
	w := httptest.NewRecorder()
	handler.EngineerHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	locations.AssertExpectations(t)
}

func TestLocationHandler_EngineerLatest_NotFound(t *testing.T) {
	locations := new(MockLocationCollection)
	handler := NewLocationHandler(locations, new(MockUserCollection))

	locations.On("FindLatestByEngineer", mock.Anything, "eng1").Return(nil, db.ErrNotFound)

	req := httptest.NewRequest("GET", "/api/locations/engineer/eng1/latest", nil)
	req.SetPathValue("id", "eng1")
	w := httptest.NewRecorder()
	handler.EngineerLatest(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No location data found")
}
