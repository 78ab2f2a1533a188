package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, carrierID *uuid.UUID) ([]Product, error)
}
