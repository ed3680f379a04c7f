package models

import "time"

// Photo records an uploaded image file. The ID doubles as the stored
// filename stem, so it is a plain string rather than an ObjectID.
type Photo struct {
	ID         string    `bson:"_id" json:"id"`
	JobID      *string   `bson:"job_id,omitempty" json:"job_id,omitempty"`
	Filename   string    `bson:"filename" json:"filename"`
	Path       string    `bson:"path" json:"path"`
	UploadedBy string    `bson:"uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}
