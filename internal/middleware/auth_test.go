package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cravencooling/fsm/internal/auth"
	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsers(ctx context.Context, filter bson.M) ([]models.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func newTestAuthService() *auth.Service {
	return auth.NewService("test-secret", 24*time.Hour)
}

func TestRequireStaff(t *testing.T) {
	authService := newTestAuthService()

	t.Run("valid token loads user", func(t *testing.T) {
		user := &models.User{
			ID:    primitive.NewObjectID(),
			Email: "eng@example.com",
			Name:  "Test Engineer",
			Role:  models.RoleEngineer,
		}
		token, _ := authService.GenerateToken(user.ID.Hex(), user.Role)

		users := new(MockUserCollection)
		users.On("FindUserByID", mock.Anything, user.ID.Hex()).Return(user, nil)
		mw := NewAuthMiddleware(authService, users)

		req := httptest.NewRequest("GET", "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			got, ok := GetUserFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.Email, got.Email)
			assert.Equal(t, user.Role, got.Role)
		})

		mw.RequireStaff(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("deleted user is rejected even with valid token", func(t *testing.T) {
		userID := primitive.NewObjectID().Hex()
		token, _ := authService.GenerateToken(userID, models.RoleOffice)

		users := new(MockUserCollection)
		users.On("FindUserByID", mock.Anything, userID).Return(nil, db.ErrNotFound)
		mw := NewAuthMiddleware(authService, users)

		req := httptest.NewRequest("GET", "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		mw.RequireStaff(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing authorization header", func(t *testing.T) {
		users := new(MockUserCollection)
		mw := NewAuthMiddleware(authService, users)

		req := httptest.NewRequest("GET", "/api/jobs", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		mw.RequireStaff(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		users := new(MockUserCollection)
		mw := NewAuthMiddleware(authService, users)

		req := httptest.NewRequest("GET", "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		mw.RequireStaff(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("portal token rejected on staff route", func(t *testing.T) {
		token, _ := authService.GeneratePortalToken("portal123", "customer456")

		users := new(MockUserCollection)
		mw := NewAuthMiddleware(authService, users)

		req := httptest.NewRequest("GET", "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		mw.RequireStaff(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireStaffToken(t *testing.T) {
	authService := newTestAuthService()

	t.Run("token in query parameter", func(t *testing.T) {
		user := &models.User{
			ID:   primitive.NewObjectID(),
			Role: models.RoleOffice,
		}
		token, _ := authService.GenerateToken(user.ID.Hex(), user.Role)

		users := new(MockUserCollection)
		users.On("FindUserByID", mock.Anything, user.ID.Hex()).Return(user, nil)
		mw := NewAuthMiddleware(authService, users)

		req := httptest.NewRequest("GET", "/api/jobs/abc/pdf?token="+token, nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		mw.RequireStaffToken(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		users := new(MockUserCollection)
		mw := NewAuthMiddleware(authService, users)

		req := httptest.NewRequest("GET", "/api/jobs/abc/pdf", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		mw.RequireStaffToken(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequirePortal(t *testing.T) {
	authService := newTestAuthService()
	users := new(MockUserCollection)
	mw := NewAuthMiddleware(authService, users)

	t.Run("valid portal token", func(t *testing.T) {
		token, _ := authService.GeneratePortalToken("portal123", "customer456")

		req := httptest.NewRequest("GET", "/api/portal/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			claims, ok := GetPortalFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, "customer456", claims.CustomerID)
		})

		mw.RequirePortal(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("staff token rejected on portal route", func(t *testing.T) {
		token, _ := authService.GenerateToken("abc123", models.RoleAdmin)

		req := httptest.NewRequest("GET", "/api/portal/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		mw.RequirePortal(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserFromContext_Empty(t *testing.T) {
	_, ok := GetUserFromContext(context.Background())
	assert.False(t, ok)

	_, ok = GetPortalFromContext(context.Background())
	assert.False(t, ok)
}
