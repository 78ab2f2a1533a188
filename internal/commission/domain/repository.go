package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, rate *CommissionRate) error
	ListByProduct(ctx context.Context, db *gorm.DB, productID uuid.UUID) ([]CommissionRate, error)
	ListByPositions(ctx context.Context, db *gorm.DB, positionIDs []uuid.UUID) ([]CommissionRate, error)

	// RatesFor returns the configured percentage per position for one
	// product. Positions with no configured rate are absent from the map.
	RatesFor(ctx context.Context, db *gorm.DB, positionIDs []uuid.UUID, productID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
