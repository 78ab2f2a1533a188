package repository

import (
	"context"
	"errors"

	"github.com/agentspace/agentspace/internal/hierarchy/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const nodeColumns = "id, agency_id, upline_id, position_id, first_name, last_name, role, is_active"

func (r *repo) ListNodes(ctx context.Context, db *gorm.DB, agencyID uuid.UUID) ([]domain.Node, error) {
	var nodes []domain.Node
	err := db.WithContext(ctx).
		Table("agents").
		Select(nodeColumns).
		Where("agency_id = ?", agencyID).
		Scan(&nodes).Error
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *repo) FindNode(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*domain.Node, error) {
	var node domain.Node
	err := db.WithContext(ctx).
		Table("agents").
		Select(nodeColumns).
		Where("agency_id = ? AND id = ?", agencyID, id).
		Take(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *repo) FindNodeAnyAgency(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Node, error) {
	var node domain.Node
	err := db.WithContext(ctx).
		Table("agents").
		Select(nodeColumns).
		Where("id = ?", id).
		Take(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}
