package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists snapshot rows. There is no update path: a
// snapshot is inserted with its deal and only removed when the deal
// itself is deleted.
type Repository interface {
	InsertAll(ctx context.Context, db *gorm.DB, snapshots []*HierarchySnapshot) error
	ListByDeal(ctx context.Context, db *gorm.DB, agencyID, dealID uuid.UUID) ([]*HierarchySnapshot, error)
	ListByDeals(ctx context.Context, db *gorm.DB, agencyID uuid.UUID, dealIDs []uuid.UUID) ([]*HierarchySnapshot, error)
	DeleteByDeal(ctx context.Context, db *gorm.DB, agencyID, dealID uuid.UUID) error
}
