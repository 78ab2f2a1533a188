package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CarrierID uuid.UUID `gorm:"type:uuid;not null;index" json:"carrier_id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"not null;uniqueIndex" json:"code"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
