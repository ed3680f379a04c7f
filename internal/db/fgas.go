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

// FGasLogCollection defines the interface for F-Gas compliance log
// operations. Logs are append-only apart from hard deletes.
type FGasLogCollection interface {
	InsertLog(ctx context.Context, log models.FGasLog) error
	FindLogs(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.FGasLog, error)
	FindLogByID(ctx context.Context, id string) (*models.FGasLog, error)
	DeleteLog(ctx context.Context, id string) error
}

// MongoFGasLogCollection implements FGasLogCollection for MongoDB.
type MongoFGasLogCollection struct {
	Collection *mongo.Collection
}

// InsertLog inserts an F-Gas log record.
func (c *MongoFGasLogCollection) InsertLog(ctx context.Context, log models.FGasLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, log)
	return err
}

// FindLogs queries F-Gas log records.
func (c *MongoFGasLogCollection) FindLogs(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.FGasLog, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []models.FGasLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// FindLogByID finds an F-Gas log by its ID.
func (c *MongoFGasLogCollection) FindLogByID(ctx context.Context, id string) (*models.FGasLog, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var log models.FGasLog
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&log)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// DeleteLog deletes an F-Gas log by its ID.
func (c *MongoFGasLogCollection) DeleteLog(ctx context.Context, id string) error {
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
