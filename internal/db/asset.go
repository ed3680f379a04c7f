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

// AssetCollection defines the interface for asset data operations.
type AssetCollection interface {
	InsertAsset(ctx context.Context, asset models.Asset) error
	FindAssets(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Asset, error)
	FindAssetByID(ctx context.Context, id string) (*models.Asset, error)
	UpdateAsset(ctx context.Context, id string, set bson.M) error
	DeleteAsset(ctx context.Context, id string) error
	CountAssets(ctx context.Context, filter bson.M) (int64, error)
	FindPMDue(ctx context.Context, before time.Time, limit int64) ([]models.Asset, error)
	FindLeakCheckDue(ctx context.Context, before time.Time) ([]models.Asset, error)
}

// MongoAssetCollection implements AssetCollection for MongoDB.
type MongoAssetCollection struct {
	Collection *mongo.Collection
}

// InsertAsset inserts an asset record into the collection.
func (c *MongoAssetCollection) InsertAsset(ctx context.Context, asset models.Asset) error {
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, asset)
	return err
}

// FindAssets queries asset records from the collection.
func (c *MongoAssetCollection) FindAssets(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Asset, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assets := []models.Asset{}
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// FindAssetByID finds an asset by its ID.
func (c *MongoAssetCollection) FindAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var asset models.Asset
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&asset)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// UpdateAsset applies a partial update to an asset by its ID.
func (c *MongoAssetCollection) UpdateAsset(ctx context.Context, id string, set bson.M) error {
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

// DeleteAsset deletes an asset by its ID.
func (c *MongoAssetCollection) DeleteAsset(ctx context.Context, id string) error {
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

// CountAssets counts assets matching a filter.
func (c *MongoAssetCollection) CountAssets(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// FindPMDue returns assets whose next PM due date is on or before the given
// time. A nil next_pm_due never matches.
func (c *MongoAssetCollection) FindPMDue(ctx context.Context, before time.Time, limit int64) ([]models.Asset, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return c.FindAssets(ctx, bson.M{"next_pm_due": bson.M{"$ne": nil, "$lte": before}}, opts)
}

// FindLeakCheckDue returns assets whose next F-Gas leak check is on or
// before the given time.
func (c *MongoAssetCollection) FindLeakCheckDue(ctx context.Context, before time.Time) ([]models.Asset, error) {
	return c.FindAssets(ctx, bson.M{"fgas_next_leak_check_due": bson.M{"$ne": nil, "$lte": before}})
}
