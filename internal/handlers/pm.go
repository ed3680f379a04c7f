package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/cravencooling/fsm/internal/pm"
)

// PMHandler exposes the planned-maintenance generator.
type PMHandler struct {
	generator *pm.Generator
}

// NewPMHandler creates a new PM handler
func NewPMHandler(generator *pm.Generator) *PMHandler {
	return &PMHandler{generator: generator}
}

// GenerateJobs handles POST /api/pm/generate-jobs
func (h *PMHandler) GenerateJobs(w http.ResponseWriter, r *http.Request) {
	result, err := h.generator.GenerateJobs(r.Context())
	if err != nil {
		log.WithError(err).Error("PM job generation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Status handles GET /api/pm/status
func (h *PMHandler) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.generator.Status(r.Context())
	if err != nil {
		log.WithError(err).Error("PM status query failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
