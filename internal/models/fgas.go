package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FGasLogTypeLeakCheck is the log type that advances the parent asset's
// leak-check schedule.
const FGasLogTypeLeakCheck = "leak_check"

// FGasLog is an append-only F-Gas compliance entry tied to an asset and
// optionally the job it was recorded under.
type FGasLog struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID                 string             `bson:"asset_id" json:"asset_id"`
	JobID                   *string            `bson:"job_id" json:"job_id"`
	LogType                 string             `bson:"log_type" json:"log_type"` // "leak_check", "refrigerant_added", "refrigerant_recovered", "decommission"
	RefrigerantType         string             `bson:"refrigerant_type" json:"refrigerant_type"`
	RefrigerantAdded        float64            `bson:"refrigerant_added" json:"refrigerant_added"`         // kg
	RefrigerantRecovered    float64            `bson:"refrigerant_recovered" json:"refrigerant_recovered"` // kg
	RefrigerantLost         float64            `bson:"refrigerant_lost" json:"refrigerant_lost"`           // kg
	LeakCheckResult         string             `bson:"leak_check_result" json:"leak_check_result"`         // "pass", "fail"
	LeakCheckMethod         string             `bson:"leak_check_method" json:"leak_check_method"`
	TechnicianName          string             `bson:"technician_name" json:"technician_name"`
	TechnicianCertification string             `bson:"technician_certification" json:"technician_certification"`
	Notes                   string             `bson:"notes" json:"notes"`
	CreatedAt               time.Time          `bson:"created_at" json:"created_at"`
}

// FGasLogRequest represents an F-Gas log create request.
type FGasLogRequest struct {
	AssetID                 string  `json:"asset_id"`
	JobID                   *string `json:"job_id"`
	LogType                 string  `json:"log_type"`
	RefrigerantType         string  `json:"refrigerant_type"`
	RefrigerantAdded        float64 `json:"refrigerant_added"`
	RefrigerantRecovered    float64 `json:"refrigerant_recovered"`
	RefrigerantLost         float64 `json:"refrigerant_lost"`
	LeakCheckResult         string  `json:"leak_check_result"`
	LeakCheckMethod         string  `json:"leak_check_method"`
	TechnicianName          string  `json:"technician_name"`
	TechnicianCertification string  `json:"technician_certification"`
	Notes                   string  `json:"notes"`
}
