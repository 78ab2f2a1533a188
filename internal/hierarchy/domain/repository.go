package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	ListNodes(ctx context.Context, db *gorm.DB, agencyID uuid.UUID) ([]Node, error)
	FindNode(ctx context.Context, db *gorm.DB, agencyID, id uuid.UUID) (*Node, error)

	// FindNodeAnyAgency looks an agent up without tenant scoping. Used
	// only to distinguish "upline does not exist" from "upline belongs
	// to another agency" during reassignment validation.
	FindNodeAnyAgency(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Node, error)
}
