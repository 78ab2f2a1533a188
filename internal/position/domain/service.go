package domain

import (
	"context"
	"errors"
)

type CreatePositionRequest struct {
	Name  string
	Level int
}

type UpdatePositionRequest struct {
	ID    string
	Name  string
	Level *int
}

type GetPositionRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreatePositionRequest) (Position, error)
	Update(context.Context, UpdatePositionRequest) (Position, error)
	GetByID(context.Context, GetPositionRequest) (Position, error)
	List(context.Context) ([]Position, error)
}

var (
	ErrInvalidAgency = errors.New("invalid_agency")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidLevel  = errors.New("invalid_level")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
)
