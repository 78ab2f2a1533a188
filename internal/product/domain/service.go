package domain

import (
	"context"
	"errors"
)

type CreateProductRequest struct {
	CarrierID string
	Name      string
	Code      string
}

type GetProductRequest struct {
	ID string
}

type ListProductRequest struct {
	CarrierID string
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	GetByID(context.Context, GetProductRequest) (Product, error)
	List(context.Context, ListProductRequest) ([]Product, error)
}

var (
	ErrInvalidCarrier = errors.New("invalid_carrier")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidCode    = errors.New("invalid_code")
	ErrInvalidID      = errors.New("invalid_id")
	ErrCodeExists     = errors.New("code_exists")
	ErrNotFound       = errors.New("not_found")
)
