package repository

import (
	"context"
	"errors"

	"github.com/agentspace/agentspace/internal/position/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, position *domain.Position) error {
	return db.WithContext(ctx).Create(position).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, position *domain.Position) error {
	return db.WithContext(ctx).Save(position).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*domain.Position, error) {
	var position domain.Position
	err := db.WithContext(ctx).First(&position, "agency_id = ? AND id = ?", agencyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *repo) ListByAgency(ctx context.Context, db *gorm.DB, agencyID uuid.UUID) ([]domain.Position, error) {
	var positions []domain.Position
	err := db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("level desc, name asc").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}
