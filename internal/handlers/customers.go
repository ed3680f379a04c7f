package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

// CustomerHandler handles customer CRUD.
type CustomerHandler struct {
	customers db.CustomerCollection
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customers db.CustomerCollection) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Create handles POST /api/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CompanyName == "" {
		http.Error(w, "company_name is required", http.StatusBadRequest)
		return
	}

	customer := models.Customer{
		ID:             primitive.NewObjectID(),
		CompanyName:    req.CompanyName,
		BillingAddress: req.BillingAddress,
		Phone:          req.Phone,
		Email:          req.Email,
		Notes:          req.Notes,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.customers.InsertCustomer(r.Context(), customer); err != nil {
		log.WithError(err).Error("Failed to insert customer")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// List handles GET /api/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.FindCustomers(r.Context(), bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to list customers")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

// Get handles GET /api/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.FindCustomerByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Customer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// Update handles PUT /api/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	set := bson.M{
		"company_name":    req.CompanyName,
		"billing_address": req.BillingAddress,
		"phone":           req.Phone,
		"email":           req.Email,
		"notes":           req.Notes,
	}
	if err := h.customers.UpdateCustomer(r.Context(), r.PathValue("id"), set); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Customer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Customer updated")
}

// Delete handles DELETE /api/customers/{id}. Sites, assets and jobs
// referencing the customer are left behind.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.DeleteCustomer(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Customer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Customer deleted")
}
