package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOffice   Role = "office"
	RoleEngineer Role = "engineer"
)

// User represents a staff member (office or field engineer)
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// UserInfo is the trimmed user shape returned by auth endpoints
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// AuthResponse represents a successful login or registration response
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// Claims represents staff JWT claims
type Claims struct {
	UserID string `json:"sub"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
}

// PortalClaims represents customer portal JWT claims
type PortalClaims struct {
	PortalID   string `json:"sub"`
	CustomerID string `json:"customer_id"`
	Exp        int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleOffice, RoleEngineer:
		return true
	default:
		return false
	}
}

// Info returns the trimmed user shape for API responses.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:    u.ID.Hex(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
