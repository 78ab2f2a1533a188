package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DealDebt struct {
	DealID       uuid.UUID       `json:"deal_id"`
	DebtAmount   decimal.Decimal `json:"debt_amount"`
	DaysActive   int             `json:"days_active"`
	IsEarlyLapse bool            `json:"is_early_lapse"`
}

type DebtResponse struct {
	AgentID   uuid.UUID       `json:"agent_id"`
	TotalDebt decimal.Decimal `json:"total_debt"`
	PerDeal   []DealDebt      `json:"per_deal"`
}

type DebtRequest struct {
	// AgentID defaults to the caller.
	AgentID string
}

type Service interface {
	Debt(ctx context.Context, req DebtRequest) (DebtResponse, error)
}

var (
	ErrInvalidAgency = errors.New("invalid_agency")
	ErrInvalidID     = errors.New("invalid_id")
	ErrForbidden     = errors.New("forbidden")
)
