package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reasons a deal contributes nothing to payout totals.
const (
	ExclusionUnmappedStatus = "unmapped_status"
	ExclusionNegativeImpact = "negative_impact"
	ExclusionNoPremium      = "no_premium"
)

// ExpectedPayoutResponse reports per-level allocations for one deal.
// Payable is false when the deal is excluded; Exclusion says why, so
// callers can tell configuration gaps apart from true zeros.
type ExpectedPayoutResponse struct {
	DealID    uuid.UUID       `json:"deal_id"`
	Payable   bool            `json:"payable"`
	Exclusion string          `json:"exclusion,omitempty"`
	Pool      decimal.Decimal `json:"pool"`
	TotalPct  decimal.Decimal `json:"total_pct"`
	Payouts   []Allocation    `json:"payouts"`
}

type AgentSummaryRequest struct {
	// AgentID defaults to the caller.
	AgentID string
}

// AgentSummary splits an agent's expected payouts into personal
// production (level 0 rows) and override production (level > 0).
type AgentSummary struct {
	AgentID         uuid.UUID       `json:"agent_id"`
	PersonalAmount  decimal.Decimal `json:"personal_amount"`
	OverrideAmount  decimal.Decimal `json:"override_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PremiumTotal    decimal.Decimal `json:"premium_total"`
	DealCount       int             `json:"deal_count"`
	ExcludedDeals   int             `json:"excluded_deals"`
	UnconfiguredLvl int             `json:"unconfigured_levels"`
}

type CarrierSummary struct {
	CarrierID    uuid.UUID       `json:"carrier_id"`
	PayoutTotal  decimal.Decimal `json:"payout_total"`
	PremiumTotal decimal.Decimal `json:"premium_total"`
	DealCount    int             `json:"deal_count"`
}

type CarrierSummaryRequest struct {
	IncludeFullAgency bool
}

type Service interface {
	ExpectedPayout(ctx context.Context, dealID string) (ExpectedPayoutResponse, error)
	AgentSummary(ctx context.Context, req AgentSummaryRequest) (AgentSummary, error)
	CarrierSummaries(ctx context.Context, req CarrierSummaryRequest) ([]CarrierSummary, error)
}

var (
	ErrInvalidAgency = errors.New("invalid_agency")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrForbidden     = errors.New("forbidden")
)
