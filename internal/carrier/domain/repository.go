package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, carrier *Carrier) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Carrier, error)
	List(ctx context.Context, db *gorm.DB) ([]Carrier, error)

	UpsertStatusMapping(ctx context.Context, db *gorm.DB, mapping *StatusMapping) error
	FindStatusMapping(ctx context.Context, db *gorm.DB, carrierID uuid.UUID, rawStatus string) (*StatusMapping, error)
	ListStatusMappings(ctx context.Context, db *gorm.DB, carrierID uuid.UUID) ([]StatusMapping, error)
}
