package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer represents a billing account that owns one or more sites.
type Customer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyName    string             `bson:"company_name" json:"company_name"`
	BillingAddress string             `bson:"billing_address" json:"billing_address"`
	Phone          string             `bson:"phone" json:"phone"`
	Email          string             `bson:"email" json:"email"`
	Notes          string             `bson:"notes" json:"notes"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// CustomerRequest represents a customer create/update request
type CustomerRequest struct {
	CompanyName    string `json:"company_name"`
	BillingAddress string `json:"billing_address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Notes          string `json:"notes"`
}

// Site represents a physical location belonging to a customer.
type Site struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID   string             `bson:"customer_id" json:"customer_id"`
	Name         string             `bson:"name" json:"name"`
	Address      string             `bson:"address" json:"address"`
	AccessNotes  string             `bson:"access_notes" json:"access_notes"`
	KeyLocation  string             `bson:"key_location" json:"key_location"`
	OpeningHours string             `bson:"opening_hours" json:"opening_hours"`
	ContactName  string             `bson:"contact_name" json:"contact_name"`
	ContactPhone string             `bson:"contact_phone" json:"contact_phone"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// SiteRequest represents a site create/update request
type SiteRequest struct {
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	AccessNotes  string `json:"access_notes"`
	KeyLocation  string `json:"key_location"`
	OpeningHours string `json:"opening_hours"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}
