package domain

import (
	"context"
	"time"

	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListDealFilter struct {
	CarrierID     *uuid.UUID
	ProductID     *uuid.UUID
	Status        string
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time

	// AgentIDs restricts results to the caller's visibility set when
	// non-nil. An empty non-nil slice matches nothing.
	AgentIDs []uuid.UUID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, deal *Deal) error
	Update(ctx context.Context, db *gorm.DB, deal *Deal) error
	FindByID(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*Deal, error)

	// FindByClientPhone backs the per-agency duplicate-client guard.
	FindByClientPhone(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, phone string) (*Deal, error)

	List(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, filter ListDealFilter, page pagination.Pagination) ([]*Deal, error)

	// ListAll returns every matching deal without pagination, for the
	// computation paths that fold over full deal history.
	ListAll(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, filter ListDealFilter) ([]*Deal, error)

	Delete(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) error
}
