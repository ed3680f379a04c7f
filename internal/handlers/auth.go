package handlers

import (
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/auth"
	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/middleware"
	"github.com/cravencooling/fsm/internal/models"
)

// AuthHandler handles staff registration, login and user listing.
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, users db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsValidRole(req.Role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	if _, err := h.users.FindUserByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "Email already registered", http.StatusBadRequest)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.InsertUser(r.Context(), user); err != nil {
		log.WithError(err).Error("Failed to insert user")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		log.WithError(err).Error("Failed to generate token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"email": user.Email,
		"role":  user.Role,
	}).Info("User registered")

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user.Info()})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.FindUserByEmail(r.Context(), req.Email)
	if err != nil || !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		log.WithError(err).Error("Failed to generate token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user.Info()})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user.Info())
}

// ListUsers handles GET /api/users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindUsers(r.Context(), bson.M{})
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

// ListEngineers handles GET /api/users/engineers
func (h *AuthHandler) ListEngineers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindUsers(r.Context(), bson.M{"role": models.RoleEngineer})
	if err != nil {
		log.WithError(err).Error("Failed to list engineers")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].Info())
	}
	writeJSON(w, http.StatusOK, infos)
}
