package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, position *Position) error
	Update(ctx context.Context, db *gorm.DB, position *Position) error
	FindByID(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*Position, error)
	ListByAgency(ctx context.Context, db *gorm.DB, agencyID uuid.UUID) ([]Position, error)
}
