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

// SiteHandler handles site CRUD.
type SiteHandler struct {
	sites db.SiteCollection
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(sites db.SiteCollection) *SiteHandler {
	return &SiteHandler{sites: sites}
}

// Create handles POST /api/sites
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SiteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerID == "" || req.Name == "" {
		http.Error(w, "customer_id and name are required", http.StatusBadRequest)
		return
	}

	site := models.Site{
		ID:           primitive.NewObjectID(),
		CustomerID:   req.CustomerID,
		Name:         req.Name,
		Address:      req.Address,
		AccessNotes:  req.AccessNotes,
		KeyLocation:  req.KeyLocation,
		OpeningHours: req.OpeningHours,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.sites.InsertSite(r.Context(), site); err != nil {
		log.WithError(err).Error("Failed to insert site")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, site)
}

// List handles GET /api/sites with an optional customer_id filter.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		filter["customer_id"] = customerID
	}

	sites, err := h.sites.FindSites(r.Context(), filter)
	if err != nil {
		log.WithError(err).Error("Failed to list sites")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

// Get handles GET /api/sites/{id}
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	site, err := h.sites.FindSiteByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Site not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// Update handles PUT /api/sites/{id}
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.SiteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	set := bson.M{
		"customer_id":   req.CustomerID,
		"name":          req.Name,
		"address":       req.Address,
		"access_notes":  req.AccessNotes,
		"key_location":  req.KeyLocation,
		"opening_hours": req.OpeningHours,
		"contact_name":  req.ContactName,
		"contact_phone": req.ContactPhone,
	}
	if err := h.sites.UpdateSite(r.Context(), r.PathValue("id"), set); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Site not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Site updated")
}

// Delete handles DELETE /api/sites/{id}
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sites.DeleteSite(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Site not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Site deleted")
}
