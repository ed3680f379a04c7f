package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document. Malformed ids
// are treated the same way; the caller only cares that nothing matched.
var ErrNotFound = errors.New("not found")

// ConnectMongo connects to MongoDB using the MONGO_URI environment variable.
func ConnectMongo() (*mongo.Client, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles every collection handle the handlers need.
type Collections struct {
	Users       UserCollection
	Customers   CustomerCollection
	Sites       SiteCollection
	Assets      AssetCollection
	Jobs        JobCollection
	JobEvents   JobEventCollection
	Completions JobCompletionCollection
	Checklists  ChecklistCollection
	Quotes      QuoteCollection
	Invoices    InvoiceCollection
	Parts       PartCollection
	FGasLogs    FGasLogCollection
	Portal      PortalCollection
	Photos      PhotoCollection
	Locations   LocationCollection
}

// NewCollections wires Mongo-backed implementations over a database handle.
func NewCollections(database *mongo.Database) *Collections {
	return &Collections{
		Users:       &MongoUserCollection{Collection: database.Collection("users")},
		Customers:   &MongoCustomerCollection{Collection: database.Collection("customers")},
		Sites:       &MongoSiteCollection{Collection: database.Collection("sites")},
		Assets:      &MongoAssetCollection{Collection: database.Collection("assets")},
		Jobs:        &MongoJobCollection{Collection: database.Collection("jobs")},
		JobEvents:   &MongoJobEventCollection{Collection: database.Collection("job_events")},
		Completions: &MongoJobCompletionCollection{Collection: database.Collection("job_completions")},
		Checklists:  &MongoChecklistCollection{Collection: database.Collection("checklist_templates")},
		Quotes:      &MongoQuoteCollection{Collection: database.Collection("quotes")},
		Invoices:    &MongoInvoiceCollection{Collection: database.Collection("invoices")},
		Parts:       &MongoPartCollection{Collection: database.Collection("parts")},
		FGasLogs:    &MongoFGasLogCollection{Collection: database.Collection("fgas_logs")},
		Portal:      &MongoPortalCollection{Collection: database.Collection("customer_portal")},
		Photos:      &MongoPhotoCollection{Collection: database.Collection("photos")},
		Locations:   &MongoLocationCollection{Collection: database.Collection("engineer_locations")},
	}
}
