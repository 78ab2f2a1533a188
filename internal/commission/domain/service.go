package domain

import (
	"context"
	"errors"
)

type UpsertRateRequest struct {
	PositionID string
	ProductID  string
	Percentage string
}

type ListRatesRequest struct {
	ProductID string
}

type Service interface {
	Upsert(context.Context, UpsertRateRequest) (CommissionRate, error)
	List(context.Context, ListRatesRequest) ([]CommissionRate, error)
}

var (
	ErrInvalidPosition   = errors.New("invalid_position")
	ErrInvalidProduct    = errors.New("invalid_product")
	ErrInvalidPercentage = errors.New("invalid_percentage")
)
