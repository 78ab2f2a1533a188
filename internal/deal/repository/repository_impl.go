package repository

import (
	"context"
	"errors"

	"github.com/agentspace/agentspace/internal/deal/domain"
	"github.com/agentspace/agentspace/pkg/db/option"
	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).Create(deal).Error
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).
		Where("agency_id = ?", deal.AgencyID).
		Save(deal).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		First(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deal, nil
}

func (r *repository) FindByClientPhone(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, phone string) (*domain.Deal, error) {
	var deal domain.Deal
	err := db.WithContext(ctx).
		Where("agency_id = ? AND client_phone = ?", agencyID, phone).
		First(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deal, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, filter domain.ListDealFilter, page pagination.Pagination) ([]*domain.Deal, error) {
	if filter.AgentIDs != nil && len(filter.AgentIDs) == 0 {
		return nil, nil
	}

	query := r.applyFilter(db.WithContext(ctx), agencyID, filter)
	query = option.ApplyPagination(page)(query)

	var deals []*domain.Deal
	if err := query.Order("created_at desc, id desc").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *repository) ListAll(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, filter domain.ListDealFilter) ([]*domain.Deal, error) {
	if filter.AgentIDs != nil && len(filter.AgentIDs) == 0 {
		return nil, nil
	}

	var deals []*domain.Deal
	query := r.applyFilter(db.WithContext(ctx), agencyID, filter)
	if err := query.Order("submission_date asc, id asc").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

func (r *repository) Delete(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) error {
	return db.WithContext(ctx).
		Where("agency_id = ? AND id = ?", agencyID, id).
		Delete(&domain.Deal{}).Error
}

func (r *repository) applyFilter(query *gorm.DB, agencyID uuid.UUID, filter domain.ListDealFilter) *gorm.DB {
	query = query.Where("agency_id = ?", agencyID)
	if filter.AgentIDs != nil {
		query = query.Where("agent_id IN ?", filter.AgentIDs)
	}
	if filter.CarrierID != nil {
		query = query.Where("carrier_id = ?", *filter.CarrierID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != "" {
		query = query.Where("LOWER(status) = ?", filter.Status)
	}
	if filter.SubmittedFrom != nil {
		query = query.Where("submission_date >= ?", *filter.SubmittedFrom)
	}
	if filter.SubmittedTo != nil {
		query = query.Where("submission_date < ?", *filter.SubmittedTo)
	}
	return query
}
