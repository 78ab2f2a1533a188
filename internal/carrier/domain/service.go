package domain

import (
	"context"
	"errors"
)

type CreateCarrierRequest struct {
	Name string
	Code string
}

type GetCarrierRequest struct {
	ID string
}

type UpsertStatusMappingRequest struct {
	CarrierID          string
	RawStatus          string
	StandardizedStatus string
	Impact             string
	Placement          *string
}

type ListStatusMappingsRequest struct {
	CarrierID string
}

type Service interface {
	Create(context.Context, CreateCarrierRequest) (Carrier, error)
	GetByID(context.Context, GetCarrierRequest) (Carrier, error)
	List(context.Context) ([]Carrier, error)

	UpsertStatusMapping(context.Context, UpsertStatusMappingRequest) (StatusMapping, error)
	ListStatusMappings(context.Context, ListStatusMappingsRequest) ([]StatusMapping, error)

	// ResolveStatus returns the mapping for (carrier, rawStatus) with
	// case-insensitive matching, or nil when the status is unmapped.
	ResolveStatus(ctx context.Context, carrierID, rawStatus string) (*StatusMapping, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidCode      = errors.New("invalid_code")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidImpact    = errors.New("invalid_impact")
	ErrInvalidPlacement = errors.New("invalid_placement")
	ErrCodeExists       = errors.New("code_exists")
	ErrNotFound         = errors.New("not_found")
)
