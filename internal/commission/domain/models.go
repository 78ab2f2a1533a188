package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRate maps (position, product) to the percentage used when a
// hierarchy snapshot is captured. Rates are mutable; committed snapshot
// rows are never rewritten when a rate changes.
type CommissionRate struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PositionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_commission_rates_position_product" json:"position_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_commission_rates_position_product" json:"product_id"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CommissionRate) TableName() string { return "commission_rates" }
