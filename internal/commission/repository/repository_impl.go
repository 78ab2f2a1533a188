package repository

import (
	"context"

	"github.com/agentspace/agentspace/internal/commission/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, rate *domain.CommissionRate) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "position_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"percentage", "updated_at"}),
	}).Create(rate).Error
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID uuid.UUID) ([]domain.CommissionRate, error) {
	var rates []domain.CommissionRate
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at asc").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repo) ListByPositions(ctx context.Context, db *gorm.DB, positionIDs []uuid.UUID) ([]domain.CommissionRate, error) {
	if len(positionIDs) == 0 {
		return nil, nil
	}
	var rates []domain.CommissionRate
	err := db.WithContext(ctx).
		Where("position_id IN ?", positionIDs).
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repo) RatesFor(ctx context.Context, db *gorm.DB, positionIDs []uuid.UUID, productID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(positionIDs))
	if len(positionIDs) == 0 {
		return out, nil
	}

	var rates []domain.CommissionRate
	err := db.WithContext(ctx).
		Where("product_id = ? AND position_id IN ?", productID, positionIDs).
		Find(&rates).Error
	if err != nil {
		return nil, err
	}

	for _, rate := range rates {
		out[rate.PositionID] = rate.Percentage
	}
	return out, nil
}
