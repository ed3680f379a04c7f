package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/finance"
	"github.com/cravencooling/fsm/internal/models"
)

// InvoiceHandler handles invoice CRUD.
type InvoiceHandler struct {
	invoices db.InvoiceCollection
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices db.InvoiceCollection) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Create handles POST /api/invoices. Totals are computed once here and
// stored on the document.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.InvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerID == "" {
		http.Error(w, "customer_id is required", http.StatusBadRequest)
		return
	}

	count, err := h.invoices.CountInvoices(r.Context(), bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to count invoices")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dueDays := 30
	if req.DueDays != nil {
		dueDays = *req.DueDays
	}
	lines := req.Lines
	if lines == nil {
		lines = []models.Line{}
	}
	subtotal, vat, total := finance.Totals(lines)

	now := time.Now().UTC()
	invoice := models.Invoice{
		ID:            primitive.NewObjectID(),
		InvoiceNumber: finance.FormatNumber(finance.InvoicePrefix, count),
		CustomerID:    req.CustomerID,
		SiteID:        req.SiteID,
		JobID:         req.JobID,
		QuoteID:       req.QuoteID,
		Lines:         lines,
		Subtotal:      subtotal,
		VAT:           vat,
		Total:         total,
		Status:        "unpaid",
		Notes:         req.Notes,
		DueDate:       now.Add(time.Duration(dueDays) * 24 * time.Hour),
		CreatedAt:     now,
	}
	if err := h.invoices.InsertInvoice(r.Context(), invoice); err != nil {
		log.WithError(err).Error("Failed to insert invoice")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.WithField("invoice_number", invoice.InvoiceNumber).Info("Invoice created")
	writeJSON(w, http.StatusOK, invoice)
}

// List handles GET /api/invoices with customer_id and status filters.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		filter["customer_id"] = v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter["status"] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	invoices, err := h.invoices.FindInvoices(r.Context(), filter, opts)
	if err != nil {
		log.WithError(err).Error("Failed to list invoices")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// Get handles GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.FindInvoiceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Invoice not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// UpdateStatus handles PUT /api/invoices/{id}/status?status=paid
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}

	if err := h.invoices.UpdateInvoice(r.Context(), r.PathValue("id"), bson.M{"status": status}); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Invoice not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Invoice status updated")
}

// Delete handles DELETE /api/invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.invoices.DeleteInvoice(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Invoice not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Invoice deleted")
}
