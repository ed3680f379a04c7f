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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

func newJobTestHandler() (*JobHandler, *MockJobCollection, *MockJobEventCollection, *MockJobCompletionCollection, *MockAssetCollection) {
	jobs := new(MockJobCollection)
	events := new(MockJobEventCollection)
	completions := new(MockJobCompletionCollection)
	assets := new(MockAssetCollection)
	return NewJobHandler(jobs, events, completions, assets), jobs, events, completions, assets
}

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Email: "office@example.com",
		Name:  "Office",
		Role:  models.RoleOffice,
	}
}

func TestJobHandler_Create(t *testing.T) {
	t.Run("numbering and defaults", func(t *testing.T) {
		handler, jobs, events, _, _ := newJobTestHandler()
		user := testUser()

		jobs.On("CountJobs", mock.Anything, bson.M{}).Return(int64(41), nil)
		jobs.On("InsertJob", mock.Anything, mock.MatchedBy(func(job models.Job) bool {
			return job.JobNumber == "JOB-00042" &&
				job.Priority == "medium" &&
				job.EstimatedDuration == 60 &&
				job.Status == models.JobStatusPending &&
				job.AssetIDs != nil && len(job.AssetIDs) == 0 &&
				job.CreatedBy == user.ID.Hex()
		})).Return(nil)
		events.On("InsertEvent", mock.Anything, mock.MatchedBy(func(event models.JobEvent) bool {
			return event.EventType == "created" && event.UserID == user.ID.Hex()
		})).Return(nil)

		req := withUser(postJSON("/api/jobs", models.JobRequest{
			CustomerID: "cust1",
			SiteID:     "site1",
			JobType:    "callout",
		}), user)
		w := httptest.NewRecorder()
		handler.Create(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var job models.Job
		require.NoError(t, json.NewDecoder(w.Body).Decode(&job))
		assert.Equal(t, "JOB-00042", job.JobNumber)
		jobs.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("missing required fields", func(t *testing.T) {
		handler, jobs, _, _, _ := newJobTestHandler()

		req := withUser(postJSON("/api/jobs", models.JobRequest{CustomerID: "cust1"}), testUser())
		w := httptest.NewRecorder()
		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		jobs.AssertNotCalled(t, "InsertJob", mock.Anything, mock.Anything)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		handler, _, _, _, _ := newJobTestHandler()

		req := postJSON("/api/jobs", models.JobRequest{CustomerID: "c", SiteID: "s", JobType: "callout"})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJobHandler_Update_RecordsStatusChange(t *testing.T) {
	handler, jobs, events, _, _ := newJobTestHandler()
	user := testUser()

	jobID := primitive.NewObjectID()
	existing := &models.Job{ID: jobID, Status: models.JobStatusPending}

	jobs.On("FindJobByID", mock.Anything, jobID.Hex()).Return(existing, nil)
	jobs.On("UpdateJob", mock.Anything, jobID.Hex(), mock.MatchedBy(func(set bson.M) bool {
		return set["status"] == models.JobStatusInProgress
	})).Return(nil)
	events.On("InsertEvent", mock.Anything, mock.MatchedBy(func(event models.JobEvent) bool {
		return event.EventType == "status_changed" &&
			event.Details["from"] == models.JobStatusPending &&
			event.Details["to"] == models.JobStatusInProgress
	})).Return(nil)

	status := models.JobStatusInProgress
	req := withUser(postJSON("/api/jobs/"+jobID.Hex(), models.JobUpdateRequest{Status: &status}), user)
	req.SetPathValue("id", jobID.Hex())
	w := httptest.NewRecorder()
	handler.Update(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	events.AssertExpectations(t)
}

func TestJobHandler_Complete(t *testing.T) {
	t.Run("rolls asset schedule forward", func(t *testing.T) {
		handler, jobs, events, completions, assets := newJobTestHandler()
		user := testUser()

		jobID := primitive.NewObjectID()
		assetID := primitive.NewObjectID()
		job := &models.Job{
			ID:       jobID,
			Status:   models.JobStatusInProgress,
			AssetIDs: []string{assetID.Hex()},
		}
		asset := &models.Asset{ID: assetID, PMIntervalMonths: 3}

		jobs.On("FindJobByID", mock.Anything, jobID.Hex()).Return(job, nil)
		completions.On("InsertCompletion", mock.Anything, mock.MatchedBy(func(c models.JobCompletion) bool {
			return c.JobID == jobID.Hex() && c.CompletedBy == user.ID.Hex() && c.TravelTime == 25
		})).Return(nil)
		jobs.On("UpdateJob", mock.Anything, jobID.Hex(), mock.MatchedBy(func(set bson.M) bool {
			return set["status"] == models.JobStatusCompleted
		})).Return(nil)
		assets.On("FindAssetByID", mock.Anything, assetID.Hex()).Return(asset, nil)
		assets.On("UpdateAsset", mock.Anything, assetID.Hex(), mock.MatchedBy(func(set bson.M) bool {
			nextDue, ok := set["next_pm_due"].(time.Time)
			if !ok {
				return false
			}
			// 3 months at 30 days each, measured from the completion moment
			expected := time.Now().UTC().Add(90 * 24 * time.Hour)
			return nextDue.Sub(expected).Abs() < time.Minute && set["last_service_date"] != nil
		})).Return(nil)
		events.On("InsertEvent", mock.Anything, mock.MatchedBy(func(event models.JobEvent) bool {
			return event.EventType == "completed"
		})).Return(nil)

		req := withUser(postJSON("/api/jobs/"+jobID.Hex()+"/complete", models.JobCompletionRequest{
			EngineerNotes: "Replaced fan motor",
			TravelTime:    25,
			TimeOnSite:    90,
		}), user)
		req.SetPathValue("id", jobID.Hex())
		w := httptest.NewRecorder()
		handler.Complete(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Job completed", resp["message"])
		assert.NotEmpty(t, resp["completion_id"])
		assets.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("completing again stores another record", func(t *testing.T) {
		handler, jobs, events, completions, _ := newJobTestHandler()

		jobID := primitive.NewObjectID()
		job := &models.Job{ID: jobID, Status: models.JobStatusCompleted}
		jobs.On("FindJobByID", mock.Anything, jobID.Hex()).Return(job, nil)
		completions.On("InsertCompletion", mock.Anything, mock.Anything).Return(nil)
		jobs.On("UpdateJob", mock.Anything, jobID.Hex(), mock.Anything).Return(nil)
		events.On("InsertEvent", mock.Anything, mock.Anything).Return(nil)

		req := withUser(postJSON("/api/jobs/"+jobID.Hex()+"/complete", models.JobCompletionRequest{}), testUser())
		req.SetPathValue("id", jobID.Hex())
		w := httptest.NewRecorder()
		handler.Complete(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		completions.AssertExpectations(t)
	})

	t.Run("job not found", func(t *testing.T) {
		handler, jobs, _, _, _ := newJobTestHandler()

		jobs.On("FindJobByID", mock.Anything, "missing").Return(nil, db.ErrNotFound)

		req := withUser(postJSON("/api/jobs/missing/complete", models.JobCompletionRequest{}), testUser())
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()
		handler.Complete(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestJobHandler_Scheduled(t *testing.T) {
	t.Run("date window", func(t *testing.T) {
		handler, jobs, _, _, _ := newJobTestHandler()

		jobs.On("FindJobs", mock.Anything, bson.M{
			"scheduled_date": bson.M{"$ne": nil, "$gte": "2026-09-01", "$lte": "2026-09-30"},
		}).Return([]models.Job{}, nil)

		req := httptest.NewRequest("GET", "/api/jobs/scheduled?start_date=2026-09-01&end_date=2026-09-30", nil)
		w := httptest.NewRecorder()
		handler.Scheduled(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		jobs.AssertExpectations(t)
	})

	t.Run("completed jobs stay on the calendar", func(t *testing.T) {
		handler, jobs, _, _, _ := newJobTestHandler()

		date := "2026-09-15"
		completed := models.Job{Status: models.JobStatusCompleted, ScheduledDate: &date}
		jobs.On("FindJobs", mock.Anything, bson.M{
			"scheduled_date": bson.M{"$ne": nil},
		}).Return([]models.Job{completed}, nil)

		req := httptest.NewRequest("GET", "/api/jobs/scheduled", nil)
		w := httptest.NewRecorder()
		handler.Scheduled(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var rows []models.Job
		require.NoError(t, json.NewDecoder(w.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, models.JobStatusCompleted, rows[0].Status)
	})
}

func TestJobHandler_List_Filters(t *testing.T) {
	handler, jobs, _, _, _ := newJobTestHandler()

	jobs.On("FindJobs", mock.Anything, bson.M{
		"status":               "pending",
		"assigned_engineer_id": "eng1",
	}).Return([]models.Job{}, nil)

	req := httptest.NewRequest("GET", "/api/jobs?status=pending&engineer_id=eng1", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	jobs.AssertExpectations(t)
}
