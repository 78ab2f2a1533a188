package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, agency *Agency) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Agency, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Agency, error)
	Update(ctx context.Context, db *gorm.DB, agency *Agency) error
}
