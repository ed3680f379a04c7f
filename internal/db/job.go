package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/models"
)

// JobCollection defines the interface for job data operations.
type JobCollection interface {
	InsertJob(ctx context.Context, job models.Job) error
	FindJobs(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Job, error)
	FindJobByID(ctx context.Context, id string) (*models.Job, error)
	UpdateJob(ctx context.Context, id string, set bson.M) error
	DeleteJob(ctx context.Context, id string) error
	CountJobs(ctx context.Context, filter bson.M) (int64, error)
	HasOpenPMJobForAsset(ctx context.Context, assetID string) (bool, error)
}

// MongoJobCollection implements JobCollection for MongoDB.
type MongoJobCollection struct {
	Collection *mongo.Collection
}

// InsertJob inserts a job record into the collection.
func (c *MongoJobCollection) InsertJob(ctx context.Context, job models.Job) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = now
	}
	_, err := c.Collection.InsertOne(ctx, job)
	return err
}

// FindJobs queries job records from the collection.
func (c *MongoJobCollection) FindJobs(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Job, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	jobs := []models.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindJobByID finds a job by its ID.
func (c *MongoJobCollection) FindJobByID(ctx context.Context, id string) (*models.Job, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var job models.Job
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&job)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// UpdateJob applies a partial update to a job by its ID.
func (c *MongoJobCollection) UpdateJob(ctx context.Context, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJob deletes a job by its ID.
func (c *MongoJobCollection) DeleteJob(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountJobs counts jobs matching a filter. The full-collection count backs
// job number generation.
func (c *MongoJobCollection) CountJobs(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// HasOpenPMJobForAsset reports whether an open pm_service job referencing
// the asset exists. Read-then-write: a concurrent generator run can still
// slip a duplicate past this check.
func (c *MongoJobCollection) HasOpenPMJobForAsset(ctx context.Context, assetID string) (bool, error) {
	count, err := c.Collection.CountDocuments(ctx, bson.M{
		"asset_ids": assetID,
		"job_type":  models.JobTypePMService,
		"status":    bson.M{"$in": models.OpenJobStatuses},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// JobEventCollection defines the interface for job audit events.
type JobEventCollection interface {
	InsertEvent(ctx context.Context, event models.JobEvent) error
	FindEvents(ctx context.Context, jobID string, limit int64) ([]models.JobEvent, error)
}

// MongoJobEventCollection implements JobEventCollection for MongoDB.
type MongoJobEventCollection struct {
	Collection *mongo.Collection
}

// InsertEvent appends a job event.
func (c *MongoJobEventCollection) InsertEvent(ctx context.Context, event models.JobEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, event)
	return err
}

// FindEvents returns events for a job, newest first.
func (c *MongoJobEventCollection) FindEvents(ctx context.Context, jobID string, limit int64) ([]models.JobEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"job_id": jobID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.JobEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// JobCompletionCollection defines the interface for job completion records.
type JobCompletionCollection interface {
	InsertCompletion(ctx context.Context, completion models.JobCompletion) error
	FindCompletionByJobID(ctx context.Context, jobID string) (*models.JobCompletion, error)
}

// MongoJobCompletionCollection implements JobCompletionCollection for MongoDB.
type MongoJobCompletionCollection struct {
	Collection *mongo.Collection
}

// InsertCompletion inserts a completion record.
func (c *MongoJobCompletionCollection) InsertCompletion(ctx context.Context, completion models.JobCompletion) error {
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, completion)
	return err
}

// FindCompletionByJobID finds the completion record for a job.
func (c *MongoJobCompletionCollection) FindCompletionByJobID(ctx context.Context, jobID string) (*models.JobCompletion, error) {
	var completion models.JobCompletion
	err := c.Collection.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&completion)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &completion, nil
}

// ChecklistCollection defines the interface for checklist templates.
type ChecklistCollection interface {
	InsertTemplate(ctx context.Context, template models.ChecklistTemplate) error
	FindTemplates(ctx context.Context, filter bson.M) ([]models.ChecklistTemplate, error)
}

// MongoChecklistCollection implements ChecklistCollection for MongoDB.
type MongoChecklistCollection struct {
	Collection *mongo.Collection
}

// InsertTemplate inserts a checklist template.
func (c *MongoChecklistCollection) InsertTemplate(ctx context.Context, template models.ChecklistTemplate) error {
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, template)
	return err
}

// FindTemplates queries checklist templates.
func (c *MongoChecklistCollection) FindTemplates(ctx context.Context, filter bson.M) ([]models.ChecklistTemplate, error) {
	opts := options.Find().SetLimit(100)
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []models.ChecklistTemplate{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}
