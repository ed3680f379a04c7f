package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/models"
)

// PhotoCollection defines the interface for uploaded photo metadata.
// Photo ids are the uuid filename stems, not ObjectIDs.
type PhotoCollection interface {
	InsertPhoto(ctx context.Context, photo models.Photo) error
	FindPhotoByID(ctx context.Context, id string) (*models.Photo, error)
	FindPhotosByJobID(ctx context.Context, jobID string, limit int64) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
}

// MongoPhotoCollection implements PhotoCollection for MongoDB.
type MongoPhotoCollection struct {
	Collection *mongo.Collection
}

// InsertPhoto inserts a photo record.
func (c *MongoPhotoCollection) InsertPhoto(ctx context.Context, photo models.Photo) error {
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, photo)
	return err
}

// FindPhotoByID finds a photo by its ID.
func (c *MongoPhotoCollection) FindPhotoByID(ctx context.Context, id string) (*models.Photo, error) {
	var photo models.Photo
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&photo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

// FindPhotosByJobID returns photos attached to a job.
func (c *MongoPhotoCollection) FindPhotosByJobID(ctx context.Context, jobID string, limit int64) ([]models.Photo, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"job_id": jobID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	photos := []models.Photo{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// DeletePhoto deletes a photo record by its ID.
func (c *MongoPhotoCollection) DeletePhoto(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
