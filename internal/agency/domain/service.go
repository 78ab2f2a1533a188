package domain

import (
	"context"
	"errors"
)

type CreateAgencyRequest struct {
	Name string
	Slug string
}

type UpdateAgencyRequest struct {
	ID       string
	Name     string
	Settings map[string]any
}

type GetAgencyRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateAgencyRequest) (Agency, error)
	GetByID(context.Context, GetAgencyRequest) (Agency, error)
	Update(context.Context, UpdateAgencyRequest) (Agency, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidSlug = errors.New("invalid_slug")
	ErrInvalidID   = errors.New("invalid_id")
	ErrSlugExists  = errors.New("slug_exists")
	ErrNotFound    = errors.New("not_found")
)
