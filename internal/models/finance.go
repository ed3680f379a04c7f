package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Line is one billable entry on a quote or invoice.
type Line struct {
	Description string  `bson:"description" json:"description"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	Type        string  `bson:"type" json:"type"` // "labour", "parts", "callout"
}

// Quote represents a priced proposal. Totals are computed once at creation
// and stored, never recomputed on read.
type Quote struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuoteNumber string             `bson:"quote_number" json:"quote_number"`
	CustomerID  string             `bson:"customer_id" json:"customer_id"`
	SiteID      string             `bson:"site_id" json:"site_id"`
	JobID       *string            `bson:"job_id" json:"job_id"`
	Lines       []Line             `bson:"lines" json:"lines"`
	Subtotal    float64            `bson:"subtotal" json:"subtotal"`
	VAT         float64            `bson:"vat" json:"vat"`
	Total       float64            `bson:"total" json:"total"`
	Status      string             `bson:"status" json:"status"` // "draft", "sent", "accepted", "rejected"
	Notes       string             `bson:"notes" json:"notes"`
	ValidUntil  time.Time          `bson:"valid_until" json:"valid_until"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// QuoteRequest represents a quote create request. ValidDays defaults to 30.
type QuoteRequest struct {
	CustomerID string  `json:"customer_id"`
	SiteID     string  `json:"site_id"`
	JobID      *string `json:"job_id"`
	Lines      []Line  `json:"lines"`
	Notes      string  `json:"notes"`
	ValidDays  *int    `json:"valid_days"`
}

// Invoice represents a bill issued to a customer.
type Invoice struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InvoiceNumber string             `bson:"invoice_number" json:"invoice_number"`
	CustomerID    string             `bson:"customer_id" json:"customer_id"`
	SiteID        string             `bson:"site_id" json:"site_id"`
	JobID         *string            `bson:"job_id" json:"job_id"`
	QuoteID       *string            `bson:"quote_id" json:"quote_id"`
	Lines         []Line             `bson:"lines" json:"lines"`
	Subtotal      float64            `bson:"subtotal" json:"subtotal"`
	VAT           float64            `bson:"vat" json:"vat"`
	Total         float64            `bson:"total" json:"total"`
	Status        string             `bson:"status" json:"status"` // "unpaid", "paid", "overdue", "void"
	Notes         string             `bson:"notes" json:"notes"`
	DueDate       time.Time          `bson:"due_date" json:"due_date"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// InvoiceRequest represents an invoice create request. DueDays defaults to 30.
type InvoiceRequest struct {
	CustomerID string  `json:"customer_id"`
	SiteID     string  `json:"site_id"`
	JobID      *string `json:"job_id"`
	QuoteID    *string `json:"quote_id"`
	Lines      []Line  `json:"lines"`
	Notes      string  `json:"notes"`
	DueDays    *int    `json:"due_days"`
}

// Part is an inventory record. Stock fields are advisory; completing a job
// does not decrement them.
type Part struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	PartNumber    string             `bson:"part_number" json:"part_number"`
	Description   string             `bson:"description" json:"description"`
	UnitPrice     float64            `bson:"unit_price" json:"unit_price"`
	StockQuantity int                `bson:"stock_quantity" json:"stock_quantity"`
	MinStockLevel int                `bson:"min_stock_level" json:"min_stock_level"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// PartRequest represents a part create/update request. MinStockLevel
// defaults to 5.
type PartRequest struct {
	Name          string  `json:"name"`
	PartNumber    string  `json:"part_number"`
	Description   string  `json:"description"`
	UnitPrice     float64 `json:"unit_price"`
	StockQuantity int     `json:"stock_quantity"`
	MinStockLevel *int    `json:"min_stock_level"`
}
