package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agentspace/agentspace/internal/agent/domain"
	"github.com/agentspace/agentspace/pkg/db/option"
	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, agent *domain.Agent) error {
	return db.WithContext(ctx).Create(agent).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, agent *domain.Agent) error {
	return db.WithContext(ctx).Save(agent).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*domain.Agent, error) {
	var agent domain.Agent
	err := db.WithContext(ctx).First(&agent, "agency_id = ? AND id = ?", agencyID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repo) FindByIDAnyAgency(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Agent, error) {
	var agent domain.Agent
	err := db.WithContext(ctx).First(&agent, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, filter domain.ListAgentFilter, page pagination.Pagination) ([]*domain.Agent, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Agent{}).
		Where("agency_id = ?", agencyID)

	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
	}
	if filter.PositionID != nil {
		stmt = stmt.Where("position_id = ?", *filter.PositionID)
	}
	if filter.UplineID != nil {
		stmt = stmt.Where("upline_id = ?", *filter.UplineID)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.VisibleIDs != nil {
		if len(filter.VisibleIDs) == 0 {
			return nil, nil
		}
		stmt = stmt.Where("id IN ?", filter.VisibleIDs)
	}

	stmt = option.ApplyPagination(page).Apply(stmt)

	var agents []*domain.Agent
	err := stmt.
		Order("created_at desc, id desc").
		Find(&agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *repo) SetUpline(ctx context.Context, db *gorm.DB, agencyID, agentID uuid.UUID, uplineID *uuid.UUID) error {
	return db.WithContext(ctx).
		Model(&domain.Agent{}).
		Where("agency_id = ? AND id = ?", agencyID, agentID).
		Updates(map[string]any{
			"upline_id":  uplineID,
			"updated_at": time.Now().UTC(),
		}).Error
}
