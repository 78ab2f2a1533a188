package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/agentspace/agentspace/internal/carrier/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, carrier *domain.Carrier) error {
	return db.WithContext(ctx).Create(carrier).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Carrier, error) {
	var carrier domain.Carrier
	err := db.WithContext(ctx).First(&carrier, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &carrier, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Carrier, error) {
	var carriers []domain.Carrier
	err := db.WithContext(ctx).Order("name asc").Find(&carriers).Error
	if err != nil {
		return nil, err
	}
	return carriers, nil
}

func (r *repo) UpsertStatusMapping(ctx context.Context, db *gorm.DB, mapping *domain.StatusMapping) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "carrier_id"}, {Name: "raw_status"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"standardized_status", "impact", "placement", "updated_at",
		}),
	}).Create(mapping).Error
}

func (r *repo) FindStatusMapping(ctx context.Context, db *gorm.DB, carrierID uuid.UUID, rawStatus string) (*domain.StatusMapping, error) {
	var mapping domain.StatusMapping
	err := db.WithContext(ctx).
		First(&mapping, "carrier_id = ? AND LOWER(raw_status) = ?", carrierID, strings.ToLower(rawStatus)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *repo) ListStatusMappings(ctx context.Context, db *gorm.DB, carrierID uuid.UUID) ([]domain.StatusMapping, error) {
	var mappings []domain.StatusMapping
	err := db.WithContext(ctx).
		Where("carrier_id = ?", carrierID).
		Order("raw_status asc").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}
