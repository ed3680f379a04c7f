package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PortalAccess is a customer self-service login. The access code is handed
// out once at creation time and only its hash is stored.
type PortalAccess struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID     string             `bson:"customer_id" json:"customer_id"`
	Email          string             `bson:"email" json:"email"`
	ContactName    string             `bson:"contact_name" json:"contact_name"`
	AccessCodeHash string             `bson:"access_code_hash" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	LastLogin      *time.Time         `bson:"last_login" json:"last_login"`
	Active         bool               `bson:"active" json:"active"`
}

// PortalCreateRequest represents a request to provision portal access for a
// customer contact.
type PortalCreateRequest struct {
	CustomerID  string `json:"customer_id"`
	Email       string `json:"email"`
	ContactName string `json:"contact_name"`
}

// PortalLoginRequest represents a portal login request.
type PortalLoginRequest struct {
	Email      string `json:"email"`
	AccessCode string `json:"access_code"`
}
