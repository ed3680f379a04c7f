package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngineerLocation is a single GPS ping reported by an engineer's device.
type EngineerLocation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EngineerID string             `bson:"engineer_id" json:"engineer_id"`
	Latitude   float64            `bson:"latitude" json:"latitude"`
	Longitude  float64            `bson:"longitude" json:"longitude"`
	Accuracy   *float64           `bson:"accuracy" json:"accuracy"` // meters
	JobID      *string            `bson:"job_id" json:"job_id"`
	Status     string             `bson:"status" json:"status"` // "travelling", "on_site"
	RecordedAt time.Time          `bson:"recorded_at" json:"recorded_at"`
	SyncedAt   time.Time          `bson:"synced_at" json:"synced_at"`
}

// LocationPoint is one GPS reading submitted by a device. RecordedAt is the
// device-side timestamp; when absent the server time is used.
type LocationPoint struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Accuracy   *float64 `json:"accuracy"`
	JobID      *string  `json:"job_id"`
	Status     string   `json:"status"`
	RecordedAt string   `json:"recorded_at"`
}

// LocationBatch is a batch of queued location points synced in one request.
type LocationBatch struct {
	Locations []LocationPoint `json:"locations"`
}
