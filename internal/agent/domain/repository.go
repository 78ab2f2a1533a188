package domain

import (
	"context"
	"time"

	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListAgentFilter struct {
	Role        string
	PositionID  *uuid.UUID
	UplineID    *uuid.UUID
	IsActive    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// VisibleIDs restricts results to the caller's visibility set when
	// non-nil. An empty non-nil slice matches nothing.
	VisibleIDs []uuid.UUID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, agent *Agent) error
	Update(ctx context.Context, db *gorm.DB, agent *Agent) error
	FindByID(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*Agent, error)

	// FindByIDAnyAgency backs identity resolution, before a tenant is
	// known for the request.
	FindByIDAnyAgency(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Agent, error)
	List(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, filter ListAgentFilter, page pagination.Pagination) ([]*Agent, error)
	SetUpline(ctx context.Context, db *gorm.DB, agencyID, agentID uuid.UUID, uplineID *uuid.UUID) error
}
