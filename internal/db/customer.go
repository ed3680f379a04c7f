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

// CustomerCollection defines the interface for customer data operations.
type CustomerCollection interface {
	InsertCustomer(ctx context.Context, customer models.Customer) error
	FindCustomers(ctx context.Context, filter bson.M) ([]models.Customer, error)
	FindCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, set bson.M) error
	DeleteCustomer(ctx context.Context, id string) error
	CountCustomers(ctx context.Context, filter bson.M) (int64, error)
}

// MongoCustomerCollection implements CustomerCollection for MongoDB.
type MongoCustomerCollection struct {
	Collection *mongo.Collection
}

// InsertCustomer inserts a customer record into the collection.
func (c *MongoCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) error {
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, customer)
	return err
}

// FindCustomers queries customer records from the collection.
func (c *MongoCustomerCollection) FindCustomers(ctx context.Context, filter bson.M) ([]models.Customer, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// FindCustomerByID finds a customer by its ID.
func (c *MongoCustomerCollection) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var customer models.Customer
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer applies a partial update to a customer by its ID.
func (c *MongoCustomerCollection) UpdateCustomer(ctx context.Context, id string, set bson.M) error {
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

// DeleteCustomer deletes a customer by its ID. Sites and jobs referencing
// the customer are left in place.
func (c *MongoCustomerCollection) DeleteCustomer(ctx context.Context, id string) error {
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

// CountCustomers counts customers matching a filter.
func (c *MongoCustomerCollection) CountCustomers(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// SiteCollection defines the interface for site data operations.
type SiteCollection interface {
	InsertSite(ctx context.Context, site models.Site) error
	FindSites(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Site, error)
	FindSiteByID(ctx context.Context, id string) (*models.Site, error)
	UpdateSite(ctx context.Context, id string, set bson.M) error
	DeleteSite(ctx context.Context, id string) error
}

// MongoSiteCollection implements SiteCollection for MongoDB.
type MongoSiteCollection struct {
	Collection *mongo.Collection
}

// InsertSite inserts a site record into the collection.
func (c *MongoSiteCollection) InsertSite(ctx context.Context, site models.Site) error {
	if site.CreatedAt.IsZero() {
		site.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, site)
	return err
}

// FindSites queries site records from the collection.
func (c *MongoSiteCollection) FindSites(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Site, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sites := []models.Site{}
	if err := cursor.All(ctx, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// FindSiteByID finds a site by its ID.
func (c *MongoSiteCollection) FindSiteByID(ctx context.Context, id string) (*models.Site, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var site models.Site
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&site)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

// UpdateSite applies a partial update to a site by its ID.
func (c *MongoSiteCollection) UpdateSite(ctx context.Context, id string, set bson.M) error {
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

// DeleteSite deletes a site by its ID.
func (c *MongoSiteCollection) DeleteSite(ctx context.Context, id string) error {
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
