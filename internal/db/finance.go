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

// QuoteCollection defines the interface for quote data operations.
type QuoteCollection interface {
	InsertQuote(ctx context.Context, quote models.Quote) error
	FindQuotes(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Quote, error)
	FindQuoteByID(ctx context.Context, id string) (*models.Quote, error)
	UpdateQuote(ctx context.Context, id string, set bson.M) error
	DeleteQuote(ctx context.Context, id string) error
	CountQuotes(ctx context.Context, filter bson.M) (int64, error)
}

// MongoQuoteCollection implements QuoteCollection for MongoDB.
type MongoQuoteCollection struct {
	Collection *mongo.Collection
}

// InsertQuote inserts a quote record into the collection.
func (c *MongoQuoteCollection) InsertQuote(ctx context.Context, quote models.Quote) error {
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, quote)
	return err
}

// FindQuotes queries quote records from the collection.
func (c *MongoQuoteCollection) FindQuotes(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Quote, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	quotes := []models.Quote{}
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindQuoteByID finds a quote by its ID.
func (c *MongoQuoteCollection) FindQuoteByID(ctx context.Context, id string) (*models.Quote, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var quote models.Quote
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&quote)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// UpdateQuote applies a partial update to a quote by its ID.
func (c *MongoQuoteCollection) UpdateQuote(ctx context.Context, id string, set bson.M) error {
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

// DeleteQuote deletes a quote by its ID.
func (c *MongoQuoteCollection) DeleteQuote(ctx context.Context, id string) error {
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

// CountQuotes counts quotes matching a filter; backs quote numbering.
func (c *MongoQuoteCollection) CountQuotes(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// InvoiceCollection defines the interface for invoice data operations.
type InvoiceCollection interface {
	InsertInvoice(ctx context.Context, invoice models.Invoice) error
	FindInvoices(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Invoice, error)
	FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, set bson.M) error
	DeleteInvoice(ctx context.Context, id string) error
	CountInvoices(ctx context.Context, filter bson.M) (int64, error)
}

// MongoInvoiceCollection implements InvoiceCollection for MongoDB.
type MongoInvoiceCollection struct {
	Collection *mongo.Collection
}

// InsertInvoice inserts an invoice record into the collection.
func (c *MongoInvoiceCollection) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, invoice)
	return err
}

// FindInvoices queries invoice records from the collection.
func (c *MongoInvoiceCollection) FindInvoices(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Invoice, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindInvoiceByID finds an invoice by its ID.
func (c *MongoInvoiceCollection) FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var invoice models.Invoice
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&invoice)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice applies a partial update to an invoice by its ID.
func (c *MongoInvoiceCollection) UpdateInvoice(ctx context.Context, id string, set bson.M) error {
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

// DeleteInvoice deletes an invoice by its ID.
func (c *MongoInvoiceCollection) DeleteInvoice(ctx context.Context, id string) error {
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

// CountInvoices counts invoices matching a filter; backs invoice numbering.
func (c *MongoInvoiceCollection) CountInvoices(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

// PartCollection defines the interface for parts inventory operations.
type PartCollection interface {
	InsertPart(ctx context.Context, part models.Part) error
	FindParts(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Part, error)
	FindPartByID(ctx context.Context, id string) (*models.Part, error)
	UpdatePart(ctx context.Context, id string, set bson.M) error
	DeletePart(ctx context.Context, id string) error
}

// MongoPartCollection implements PartCollection for MongoDB.
type MongoPartCollection struct {
	Collection *mongo.Collection
}

// InsertPart inserts a part record into the collection.
func (c *MongoPartCollection) InsertPart(ctx context.Context, part models.Part) error {
	if part.CreatedAt.IsZero() {
		part.CreatedAt = time.Now().UTC()
	}
	_, err := c.Collection.InsertOne(ctx, part)
	return err
}

// FindParts queries part records from the collection.
func (c *MongoPartCollection) FindParts(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Part, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	parts := []models.Part{}
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// FindPartByID finds a part by its ID.
func (c *MongoPartCollection) FindPartByID(ctx context.Context, id string) (*models.Part, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var part models.Part
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&part)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// UpdatePart applies a partial update to a part by its ID.
func (c *MongoPartCollection) UpdatePart(ctx context.Context, id string, set bson.M) error {
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

// DeletePart deletes a part by its ID.
func (c *MongoPartCollection) DeletePart(ctx context.Context, id string) error {
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
