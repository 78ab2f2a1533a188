package domain

import (
	"time"

	"github.com/google/uuid"
)

// Impact classes assigned to a carrier's raw policy statuses.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// Placement classes for application placement tracking.
const (
	PlacementPositive = "positive"
	PlacementNegative = "negative"
)

type Carrier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"not null;uniqueIndex" json:"code"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Carrier) TableName() string { return "carriers" }

// StatusMapping classifies one carrier raw status string. Deals whose
// (carrier, status) pair has no mapping are excluded from payout and
// debt computation rather than defaulted.
type StatusMapping struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CarrierID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_status_mappings_carrier_raw" json:"carrier_id"`
	RawStatus          string    `gorm:"not null;uniqueIndex:idx_status_mappings_carrier_raw" json:"raw_status"`
	StandardizedStatus string    `gorm:"not null" json:"standardized_status"`
	Impact             string    `gorm:"not null" json:"impact"`
	Placement          *string   `json:"placement,omitempty"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (StatusMapping) TableName() string { return "status_mappings" }
