package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/cravencooling/fsm/internal/ai"
)

// AIHandler exposes job note summarization.
type AIHandler struct {
	summarizer *ai.Summarizer
}

// NewAIHandler creates a new AI handler
func NewAIHandler(summarizer *ai.Summarizer) *AIHandler {
	return &AIHandler{summarizer: summarizer}
}

type summarizeRequest struct {
	Notes string `json:"notes"`
}

// SummarizeNotes handles POST /api/ai/summarize-notes
func (h *AIHandler) SummarizeNotes(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Notes == "" {
		http.Error(w, "notes is required", http.StatusBadRequest)
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), req.Notes)
	if err != nil {
		if err == ai.ErrNotConfigured {
			http.Error(w, "OpenAI API key not configured", http.StatusBadRequest)
			return
		}
		log.WithError(err).Error("AI summarization failed")
		http.Error(w, "AI service error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
