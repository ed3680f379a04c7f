package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/models"
)

// LocationCollection defines the interface for engineer GPS ping storage.
type LocationCollection interface {
	InsertLocations(ctx context.Context, locations []models.EngineerLocation) error
	FindRecent(ctx context.Context, since time.Time, limit int64) ([]models.EngineerLocation, error)
	FindByEngineer(ctx context.Context, engineerID string, since time.Time, limit int64) ([]models.EngineerLocation, error)
	FindLatestByEngineer(ctx context.Context, engineerID string) (*models.EngineerLocation, error)
}

// MongoLocationCollection implements LocationCollection for MongoDB.
type MongoLocationCollection struct {
	Collection *mongo.Collection
}

// InsertLocations inserts a batch of location pings.
func (c *MongoLocationCollection) InsertLocations(ctx context.Context, locations []models.EngineerLocation) error {
	if len(locations) == 0 {
		return nil
	}
	docs := make([]interface{}, len(locations))
	for i, loc := range locations {
		docs[i] = loc
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return err
}

// FindRecent returns pings recorded since the cutoff, newest first.
func (c *MongoLocationCollection) FindRecent(ctx context.Context, since time.Time, limit int64) ([]models.EngineerLocation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"recorded_at": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	locations := []models.EngineerLocation{}
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FindByEngineer returns an engineer's pings since the cutoff, oldest first.
func (c *MongoLocationCollection) FindByEngineer(ctx context.Context, engineerID string, since time.Time, limit int64) ([]models.EngineerLocation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{
		"engineer_id": engineerID,
		"recorded_at": bson.M{"$gte": since},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	locations := []models.EngineerLocation{}
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FindLatestByEngineer returns the most recent ping for an engineer.
func (c *MongoLocationCollection) FindLatestByEngineer(ctx context.Context, engineerID string) (*models.EngineerLocation, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "recorded_at", Value: -1}})

	var loc models.EngineerLocation
	err := c.Collection.FindOne(ctx, bson.M{"engineer_id": engineerID}, opts).Decode(&loc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}
