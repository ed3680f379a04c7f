package pm

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/finance"
	"github.com/cravencooling/fsm/internal/models"
)

// scanLimit caps how many overdue assets one generator run picks up.
const scanLimit = 100

// CreatedJob describes one job the generator raised.
type CreatedJob struct {
	JobNumber string `json:"job_number"`
	Asset     string `json:"asset"`
}

// GenerateResult is the outcome of a generator run.
type GenerateResult struct {
	JobsCreated int          `json:"jobs_created"`
	Details     []CreatedJob `json:"details"`
}

// StatusResult summarizes upcoming PM load.
type StatusResult struct {
	Overdue      int64     `json:"overdue"`
	DueThisWeek  int64     `json:"due_this_week"`
	DueThisMonth int64     `json:"due_this_month"`
	LastCheck    time.Time `json:"last_check"`
}

// Generator scans for assets past their PM due date and raises pm_service
// jobs for them.
type Generator struct {
	Assets db.AssetCollection
	Sites  db.SiteCollection
	Jobs   db.JobCollection
	Events db.JobEventCollection
}

// GenerateJobs creates a pending pm_service job for every overdue asset
// that does not already have an open one. The per-asset dedup check is a
// fresh query with no lock, so concurrent runs can race each other into
// duplicates; a repeat run with no status changes is a no-op. Assets whose
// site cannot be resolved are skipped.
func (g *Generator) GenerateJobs(ctx context.Context) (*GenerateResult, error) {
	now := time.Now().UTC()

	assetsDue, err := g.Assets.FindPMDue(ctx, now, scanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan overdue assets: %w", err)
	}

	result := &GenerateResult{Details: []CreatedJob{}}
	for _, asset := range assetsDue {
		assetID := asset.ID.Hex()

		open, err := g.Jobs.HasOpenPMJobForAsset(ctx, assetID)
		if err != nil {
			return nil, fmt.Errorf("failed to check open jobs for asset %s: %w", assetID, err)
		}
		if open {
			continue
		}

		site, err := g.Sites.FindSiteByID(ctx, asset.SiteID)
		if err != nil {
			log.WithFields(log.Fields{
				"asset_id": assetID,
				"site_id":  asset.SiteID,
			}).Warn("Skipping PM job: site not found")
			continue
		}

		count, err := g.Jobs.CountJobs(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("failed to count jobs: %w", err)
		}
		jobNumber := finance.FormatNumber(finance.JobPrefix, count)

		job := models.Job{
			ID:                primitive.NewObjectID(),
			JobNumber:         jobNumber,
			CustomerID:        site.CustomerID,
			SiteID:            asset.SiteID,
			AssetIDs:          []string{assetID},
			JobType:           models.JobTypePMService,
			Priority:          "medium",
			Status:            models.JobStatusPending,
			Description:       fmt.Sprintf("Scheduled PM Service for %s - %s %s", asset.Name, asset.Make, asset.Model),
			EstimatedDuration: 60,
			CreatedAt:         now,
			UpdatedAt:         now,
			CreatedBy:         "system",
			AutoGenerated:     true,
		}
		if err := g.Jobs.InsertJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to create PM job for asset %s: %w", assetID, err)
		}
		result.Details = append(result.Details, CreatedJob{JobNumber: jobNumber, Asset: asset.Name})

		event := models.JobEvent{
			ID:        primitive.NewObjectID(),
			JobID:     job.ID.Hex(),
			EventType: "auto_generated",
			UserID:    "system",
			Timestamp: now,
			Details:   map[string]interface{}{"reason": "PM due", "asset_id": assetID},
		}
		if err := g.Events.InsertEvent(ctx, event); err != nil {
			// The job exists either way; a missing audit entry is accepted.
			log.WithError(err).WithField("job_id", job.ID.Hex()).Error("Failed to record auto_generated event")
		}

		log.WithFields(log.Fields{
			"job_number": jobNumber,
			"asset":      asset.Name,
		}).Info("PM job generated")
	}

	result.JobsCreated = len(result.Details)
	return result, nil
}

// Status returns overdue / due-this-week / due-this-month asset counts.
func (g *Generator) Status(ctx context.Context) (*StatusResult, error) {
	now := time.Now().UTC()
	nextWeek := now.Add(7 * 24 * time.Hour)
	nextMonth := now.Add(30 * 24 * time.Hour)

	overdue, err := g.Assets.CountAssets(ctx, bson.M{"next_pm_due": bson.M{"$ne": nil, "$lte": now}})
	if err != nil {
		return nil, err
	}

	dueThisWeek, err := g.Assets.CountAssets(ctx, bson.M{"next_pm_due": bson.M{"$gt": now, "$lte": nextWeek}})
	if err != nil {
		return nil, err
	}

	dueThisMonth, err := g.Assets.CountAssets(ctx, bson.M{"next_pm_due": bson.M{"$gt": nextWeek, "$lte": nextMonth}})
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		Overdue:      overdue,
		DueThisWeek:  dueThisWeek,
		DueThisMonth: dueThisMonth,
		LastCheck:    now,
	}, nil
}
