package repository

import (
	"context"

	"github.com/agentspace/agentspace/internal/ledger/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) InsertAll(ctx context.Context, db *gorm.DB, snapshots []*domain.HierarchySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&snapshots).Error
}

func (r *repository) ListByDeal(ctx context.Context, db *gorm.DB, agencyID, dealID uuid.UUID) ([]*domain.HierarchySnapshot, error) {
	var snapshots []*domain.HierarchySnapshot
	err := db.WithContext(ctx).
		Where("agency_id = ? AND deal_id = ?", agencyID, dealID).
		Order("level asc").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repository) ListByDeals(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, dealIDs []uuid.UUID) ([]*domain.HierarchySnapshot, error) {
	if len(dealIDs) == 0 {
		return nil, nil
	}
	var snapshots []*domain.HierarchySnapshot
	err := db.WithContext(ctx).
		Where("agency_id = ? AND deal_id IN ?", agencyID, dealIDs).
		Order("deal_id asc, level asc").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repository) DeleteByDeal(ctx context.Context, db *gorm.DB, agencyID, dealID uuid.UUID) error {
	return db.WithContext(ctx).
		Where("agency_id = ? AND deal_id = ?", agencyID, dealID).
		Delete(&domain.HierarchySnapshot{}).Error
}
