package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cravencooling/fsm/internal/models"
)

func newTestService() *Service {
	return NewService("test-secret", 24*time.Hour)
}

func TestService_HashPassword(t *testing.T) {
	service := newTestService()

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service := newTestService()

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	// Test correct password
	assert.True(t, service.CheckPassword(password, hash))

	// Test incorrect password
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_GenerateAndValidateToken(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateToken("abc123", models.RoleEngineer)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, models.RoleEngineer, claims.Role)

	// Test invalid token
	_, err = service.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)
}

func TestService_PortalTokenRejectedByStaffValidation(t *testing.T) {
	service := newTestService()

	portalToken, err := service.GeneratePortalToken("portal123", "customer456")
	require.NoError(t, err)

	// A portal token must not pass as a staff token
	_, err = service.ValidateToken(portalToken)
	assert.Equal(t, ErrInvalidToken, err)

	// And the other way round
	staffToken, _ := service.GenerateToken("user789", models.RoleAdmin)
	_, err = service.ValidatePortalToken(staffToken)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidatePortalToken(t *testing.T) {
	service := newTestService()

	token, err := service.GeneratePortalToken("portal123", "customer456")
	require.NoError(t, err)

	claims, err := service.ValidatePortalToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "portal123", claims.PortalID)
	assert.Equal(t, "customer456", claims.CustomerID)
}

func TestService_ExpiredToken(t *testing.T) {
	service := NewService("test-secret", -time.Minute)

	token, _ := service.GenerateToken("abc123", models.RoleOffice)
	_, err := service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_TokenSignedWithDifferentSecret(t *testing.T) {
	service := newTestService()
	other := NewService("other-secret", 24*time.Hour)

	token, _ := other.GenerateToken("abc123", models.RoleAdmin)
	_, err := service.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_GenerateAccessCode(t *testing.T) {
	service := newTestService()

	code := service.GenerateAccessCode()
	assert.Len(t, code, 8)
	assert.Regexp(t, "^[0-9A-F]{8}$", code)

	// Codes should differ between calls
	assert.NotEqual(t, code, service.GenerateAccessCode())
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := newTestService()

	// Test valid header
	token := "valid-token"
	extracted, err := service.ExtractTokenFromHeader("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, token, extracted)

	// Test empty header
	_, err = service.ExtractTokenFromHeader("")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test invalid format
	_, err = service.ExtractTokenFromHeader("InvalidFormat")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test missing token
	_, err = service.ExtractTokenFromHeader("Bearer ")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidatePassword(t *testing.T) {
	service := newTestService()

	// Test valid password
	err := service.ValidatePassword("validpassword123")
	assert.NoError(t, err)

	// Test too short password
	err = service.ValidatePassword("short")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestService_ValidateEmail(t *testing.T) {
	service := newTestService()

	// Test valid email
	err := service.ValidateEmail("test@example.com")
	assert.NoError(t, err)

	// Test invalid email - no @
	err = service.ValidateEmail("testexample.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email format")

	// Test invalid email - no domain
	err = service.ValidateEmail("test@")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email format")
}

func TestService_TokenExpiration(t *testing.T) {
	service := newTestService()

	token, _ := service.GenerateToken("abc123", models.RoleAdmin)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)

	// Check expiration time
	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64((24*time.Hour).Seconds())+1)
}
