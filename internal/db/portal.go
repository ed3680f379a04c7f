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

// PortalCollection defines the interface for customer portal access records.
type PortalCollection interface {
	InsertAccess(ctx context.Context, access models.PortalAccess) error
	FindActiveByEmail(ctx context.Context, email string) (*models.PortalAccess, error)
	FindAccessList(ctx context.Context, limit int64) ([]models.PortalAccess, error)
	UpdateLastLogin(ctx context.Context, id string) error
	DeleteAccess(ctx context.Context, id string) error
}

// MongoPortalCollection implements PortalCollection for MongoDB.
type MongoPortalCollection struct {
	Collection *mongo.Collection
}

// InsertAccess inserts a portal access record.
func (c *MongoPortalCollection) InsertAccess(ctx context.Context, access models.PortalAccess) error {
	if access.CreatedAt.IsZero() {
		access.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, access)
	return err
}

// FindActiveByEmail finds an active portal access record by email.
func (c *MongoPortalCollection) FindActiveByEmail(ctx context.Context, email string) (*models.PortalAccess, error) {
	var access models.PortalAccess
	err := c.Collection.FindOne(ctx, bson.M{"email": email, "active": true}).Decode(&access)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &access, nil
}

// FindAccessList returns portal access records for the admin listing.
func (c *MongoPortalCollection) FindAccessList(ctx context.Context, limit int64) ([]models.PortalAccess, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := []models.PortalAccess{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateLastLogin stamps the last successful portal login.
func (c *MongoPortalCollection) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	now := time.Now().UTC()
	_, err = c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"last_login": now}})
	return err
}

// DeleteAccess revokes portal access by deleting the record. Tokens already
// issued remain valid until they expire.
func (c *MongoPortalCollection) DeleteAccess(ctx context.Context, id string) error {
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
