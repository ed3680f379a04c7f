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

// QuoteHandler handles quote CRUD.
type QuoteHandler struct {
	quotes db.QuoteCollection
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quotes db.QuoteCollection) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Create handles POST /api/quotes. Totals are computed once here and
// stored on the document.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerID == "" {
		http.Error(w, "customer_id is required", http.StatusBadRequest)
		return
	}

	count, err := h.quotes.CountQuotes(r.Context(), bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to count quotes")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	validDays := 30
	if req.ValidDays != nil {
		validDays = *req.ValidDays
	}
	lines := req.Lines
	if lines == nil {
		lines = []models.Line{}
	}
	subtotal, vat, total := finance.Totals(lines)

	now := time.Now().UTC()
	quote := models.Quote{
		ID:          primitive.NewObjectID(),
		QuoteNumber: finance.FormatNumber(finance.QuotePrefix, count),
		CustomerID:  req.CustomerID,
		SiteID:      req.SiteID,
		JobID:       req.JobID,
		Lines:       lines,
		Subtotal:    subtotal,
		VAT:         vat,
		Total:       total,
		Status:      "draft",
		Notes:       req.Notes,
		ValidUntil:  now.Add(time.Duration(validDays) * 24 * time.Hour),
		CreatedAt:   now,
	}
	if err := h.quotes.InsertQuote(r.Context(), quote); err != nil {
		log.WithError(err).Error("Failed to insert quote")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.WithField("quote_number", quote.QuoteNumber).Info("Quote created")
	writeJSON(w, http.StatusOK, quote)
}

// List handles GET /api/quotes with customer_id and status filters.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		filter["customer_id"] = v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter["status"] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	quotes, err := h.quotes.FindQuotes(r.Context(), filter, opts)
	if err != nil {
		log.WithError(err).Error("Failed to list quotes")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// Get handles GET /api/quotes/{id}
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quotes.FindQuoteByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Quote not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// UpdateStatus handles PUT /api/quotes/{id}/status?status=sent
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}

	if err := h.quotes.UpdateQuote(r.Context(), r.PathValue("id"), bson.M{"status": status}); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Quote not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Quote status updated")
}

// Delete handles DELETE /api/quotes/{id}
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.quotes.DeleteQuote(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Quote not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Quote deleted")
}
