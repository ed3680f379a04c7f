package handlers

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
	"github.com/cravencooling/fsm/internal/pdf"
)

// PDFHandler serves generated PDF documents. These routes authenticate via
// a ?token= query parameter because browsers download them with window.open.
type PDFHandler struct {
	jobs        db.JobCollection
	completions db.JobCompletionCollection
	customers   db.CustomerCollection
	sites       db.SiteCollection
	quotes      db.QuoteCollection
	invoices    db.InvoiceCollection
}

// NewPDFHandler creates a new PDF handler
func NewPDFHandler(jobs db.JobCollection, completions db.JobCompletionCollection, customers db.CustomerCollection, sites db.SiteCollection, quotes db.QuoteCollection, invoices db.InvoiceCollection) *PDFHandler {
	return &PDFHandler{
		jobs:        jobs,
		completions: completions,
		customers:   customers,
		sites:       sites,
		quotes:      quotes,
		invoices:    invoices,
	}
}

func servePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(data)
}

// JobSheet handles GET /api/jobs/{id}/pdf. Customer, site and completion
// sections are filled in when the records resolve.
func (h *PDFHandler) JobSheet(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.FindJobByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var customer *models.Customer
	if c, err := h.customers.FindCustomerByID(r.Context(), job.CustomerID); err == nil {
		customer = c
	}
	var site *models.Site
	if s, err := h.sites.FindSiteByID(r.Context(), job.SiteID); err == nil {
		site = s
	}
	var completion *models.JobCompletion
	if c, err := h.completions.FindCompletionByJobID(r.Context(), job.ID.Hex()); err == nil {
		completion = c
	}

	data, err := pdf.JobSheet(job, customer, site, completion)
	if err != nil {
		log.WithError(err).Error("Failed to render job sheet")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	servePDF(w, fmt.Sprintf("job_%s.pdf", job.JobNumber), data)
}

// QuotePDF handles GET /api/quotes/{id}/pdf
func (h *PDFHandler) QuotePDF(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quotes.FindQuoteByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Quote not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var customer *models.Customer
	if c, err := h.customers.FindCustomerByID(r.Context(), quote.CustomerID); err == nil {
		customer = c
	}

	data, err := pdf.Quote(quote, customer)
	if err != nil {
		log.WithError(err).Error("Failed to render quote PDF")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	servePDF(w, fmt.Sprintf("quote_%s.pdf", quote.QuoteNumber), data)
}

// InvoicePDF handles GET /api/invoices/{id}/pdf
func (h *PDFHandler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.FindInvoiceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Invoice not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var customer *models.Customer
	if c, err := h.customers.FindCustomerByID(r.Context(), invoice.CustomerID); err == nil {
		customer = c
	}

	data, err := pdf.Invoice(invoice, customer)
	if err != nil {
		log.WithError(err).Error("Failed to render invoice PDF")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	servePDF(w, fmt.Sprintf("invoice_%s.pdf", invoice.InvoiceNumber), data)
}
