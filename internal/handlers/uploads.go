package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/middleware"
	"github.com/cravencooling/fsm/internal/models"
)

// maxUploadBytes caps photo uploads at 10 MB.
const maxUploadBytes = 10 << 20

// UploadHandler handles photo upload, retrieval and deletion. Files live on
// local disk under the configured upload directory; metadata lives in Mongo.
type UploadHandler struct {
	photos    db.PhotoCollection
	uploadDir string
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(photos db.PhotoCollection, uploadDir string) *UploadHandler {
	return &UploadHandler{photos: photos, uploadDir: uploadDir}
}

// Upload handles POST /api/upload/photo. Accepts a multipart "file" part
// and an optional "job_id" field. The stored filename is a fresh uuid so
// client names never touch the filesystem.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		http.Error(w, "Only jpg and png uploads are accepted", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	storedName := id + ext
	path := filepath.Join(h.uploadDir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		log.WithError(err).Error("Failed to create upload file")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.WithError(err).Error("Failed to write upload file")
		os.Remove(path)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	photo := models.Photo{
		ID:         id,
		Filename:   storedName,
		Path:       path,
		UploadedBy: user.ID.Hex(),
		UploadedAt: time.Now().UTC(),
	}
	if jobID := r.FormValue("job_id"); jobID != "" {
		photo.JobID = &jobID
	}
	if err := h.photos.InsertPhoto(r.Context(), photo); err != nil {
		log.WithError(err).Error("Failed to insert photo record")
		os.Remove(path)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, photo)
}

// Get handles GET /api/photos/{id}. Served without authentication so photo
// URLs can be embedded directly in the frontend and PDFs.
func (h *UploadHandler) Get(w http.ResponseWriter, r *http.Request) {
	photo, err := h.photos.FindPhotoByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Photo not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if strings.HasSuffix(photo.Filename, ".png") {
		w.Header().Set("Content-Type", "image/png")
	} else {
		w.Header().Set("Content-Type", "image/jpeg")
	}
	http.ServeFile(w, r, photo.Path)
}

// ListForJob handles GET /api/jobs/{id}/photos
func (h *UploadHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photos.FindPhotosByJobID(r.Context(), r.PathValue("id"), 100)
	if err != nil {
		log.WithError(err).Error("Failed to list job photos")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// Delete handles DELETE /api/photos/{id}. Removes the record first; a file
// left on disk after a failed unlink is only logged.
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	photo, err := h.photos.FindPhotoByID(r.Context(), id)
	if err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Photo not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.photos.DeletePhoto(r.Context(), id); err != nil {
		if err == db.ErrNotFound {
			http.Error(w, "Photo not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := os.Remove(photo.Path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("path", photo.Path).Warn("Failed to remove photo file")
	}

	message(w, "Photo deleted")
}
