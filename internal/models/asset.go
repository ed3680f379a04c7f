package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset represents a serviceable unit (chiller, cold room, AC split etc.)
// installed at a site. PM and F-Gas leak-check due dates are derived from
// the install date and the respective interval.
type Asset struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SiteID                string             `bson:"site_id" json:"site_id"`
	Name                  string             `bson:"name" json:"name"`
	Make                  string             `bson:"make" json:"make"`
	Model                 string             `bson:"model" json:"model"`
	SerialNumber          string             `bson:"serial_number" json:"serial_number"`
	InstallDate           string             `bson:"install_date" json:"install_date"`
	WarrantyExpiry        string             `bson:"warranty_expiry" json:"warranty_expiry"`
	RefrigerantType       string             `bson:"refrigerant_type" json:"refrigerant_type"`
	RefrigerantCharge     string             `bson:"refrigerant_charge" json:"refrigerant_charge"` // kg, free-text
	FGasCategory          string             `bson:"fgas_category" json:"fgas_category"`
	FGasCO2Equivalent     string             `bson:"fgas_co2_equivalent" json:"fgas_co2_equivalent"` // tonnes CO2e
	PMIntervalMonths      int                `bson:"pm_interval_months" json:"pm_interval_months"`
	FGasLeakCheckInterval int                `bson:"fgas_leak_check_interval" json:"fgas_leak_check_interval"` // months
	LastServiceDate       *time.Time         `bson:"last_service_date" json:"last_service_date"`
	NextPMDue             *time.Time         `bson:"next_pm_due" json:"next_pm_due"`
	FGasLastLeakCheck     *time.Time         `bson:"fgas_last_leak_check" json:"fgas_last_leak_check"`
	FGasNextLeakCheckDue  *time.Time         `bson:"fgas_next_leak_check_due" json:"fgas_next_leak_check_due"`
	Notes                 string             `bson:"notes" json:"notes"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
}

// AssetRequest represents an asset create/update request. PMIntervalMonths
// defaults to 6 when omitted.
type AssetRequest struct {
	SiteID                string `json:"site_id"`
	Name                  string `json:"name"`
	Make                  string `json:"make"`
	Model                 string `json:"model"`
	SerialNumber          string `json:"serial_number"`
	InstallDate           string `json:"install_date"`
	WarrantyExpiry        string `json:"warranty_expiry"`
	RefrigerantType       string `json:"refrigerant_type"`
	RefrigerantCharge     string `json:"refrigerant_charge"`
	FGasCategory          string `json:"fgas_category"`
	FGasCO2Equivalent     string `json:"fgas_co2_equivalent"`
	PMIntervalMonths      *int   `json:"pm_interval_months"`
	FGasLeakCheckInterval *int   `json:"fgas_leak_check_interval"`
	Notes                 string `json:"notes"`
}

// SiteSummary is the slim site view attached to enriched asset lists.
type SiteSummary struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// AssetWithSite decorates an asset with its resolved site for list views.
type AssetWithSite struct {
	Asset `bson:",inline"`
	Site  *SiteSummary `json:"site"`
}
