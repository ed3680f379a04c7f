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

// PartHandler handles parts inventory CRUD.
type PartHandler struct {
	parts db.PartCollection
}

// NewPartHandler creates a new part handler
func NewPartHandler(parts db.PartCollection) *PartHandler {
	return &PartHandler{parts: parts}
}

// Create handles POST /api/parts
func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	minStock := 5
	if req.MinStockLevel != nil {
		minStock = *req.MinStockLevel
	}

	part := models.Part{
		ID:            primitive.NewObjectID(),
		Name:          req.Name,
		PartNumber:    req.PartNumber,
		Description:   req.Description,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: minStock,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.parts.InsertPart(r.Context(), part); err != nil {
		log.WithError(err).Error("Failed to insert part")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, part)
}

// List handles GET /api/parts
func (h *PartHandler) List(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.FindParts(r.Context(), bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to list parts")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, parts)
}

// Get handles GET /api/parts/{id}
func (h *PartHandler) Get(w http.ResponseWriter, r *http.Request) {
	part, err := h.parts.FindPartByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Part not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, part)
}

// Update handles PUT /api/parts/{id}
func (h *PartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.PartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	minStock := 5
	if req.MinStockLevel != nil {
		minStock = *req.MinStockLevel
	}

	set := bson.M{
		"name":            req.Name,
		"part_number":     req.PartNumber,
		"description":     req.Description,
		"unit_price":      req.UnitPrice,
		"stock_quantity":  req.StockQuantity,
		"min_stock_level": minStock,
	}
	if err := h.parts.UpdatePart(r.Context(), r.PathValue("id"), set); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Part not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Part updated")
}

// Delete handles DELETE /api/parts/{id}
func (h *PartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.parts.DeletePart(r.Context(), r.PathValue("id")); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Part not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	message(w, "Part deleted")
}
