package domain

import (
	"time"

	"github.com/google/uuid"
)

type Position struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AgencyID  uuid.UUID `gorm:"type:uuid;not null;index" json:"agency_id"`
	Name      string    `gorm:"not null" json:"name"`
	Level     int       `gorm:"not null" json:"level"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Position) TableName() string { return "positions" }
