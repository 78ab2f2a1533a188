package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregation scopes. Own covers the agent's written deals, downline
// the strict descendants' deals, agency the whole tenant.
const (
	ScopeOwn      = "own"
	ScopeDownline = "downline"
	ScopeAgency   = "agency"
)

type AggregateRequest struct {
	Scope string

	// AgentID defaults to the caller. Ignored for agency scope.
	AgentID string

	// AsOf anchors the trailing windows; defaults to now.
	AsOf *time.Time

	CarrierID string

	// Windows in months; 0 means all-time. Defaults to {3, 6, 9, 0}.
	Windows []int
}

type CarrierWindow struct {
	WindowMetrics
	Statuses map[string]int `json:"statuses"`
	States   []StateCount   `json:"states"`
	AgeBands []AgeBandCount `json:"age_bands"`
}

type CarrierAnalytics struct {
	CarrierID uuid.UUID       `json:"carrier_id"`
	Months    []MonthMetrics  `json:"months"`
	Windows   []CarrierWindow `json:"windows"`
}

type AggregateResponse struct {
	Scope    string             `json:"scope"`
	AsOf     time.Time          `json:"as_of"`
	Windows  []WindowMetrics    `json:"windows"`
	Carriers []CarrierAnalytics `json:"carriers"`
	Trend    []TrendPoint       `json:"trend"`
}

type ProductionDistributionRequest struct {
	// AgentID defaults to the caller.
	AgentID string
}

// ProductionSlice credits one direct downline with the positive
// production of its entire subtree.
type ProductionSlice struct {
	AgentID    uuid.UUID       `json:"agent_id"`
	Name       string          `json:"name"`
	Production decimal.Decimal `json:"production"`
	DealCount  int             `json:"deal_count"`
}

type ProductionDistributionResponse struct {
	AgentID uuid.UUID         `json:"agent_id"`
	Total   decimal.Decimal   `json:"total"`
	Slices  []ProductionSlice `json:"slices"`
}

type LeaderboardRequest struct {
	IncludeFullAgency bool

	// Limit caps the number of entries; defaults to 10.
	Limit int
}

type LeaderboardEntry struct {
	Rank       int             `json:"rank"`
	AgentID    uuid.UUID       `json:"agent_id"`
	Name       string          `json:"name"`
	Production decimal.Decimal `json:"production"`
	DealCount  int             `json:"deal_count"`
}

type Service interface {
	Aggregate(ctx context.Context, req AggregateRequest) (AggregateResponse, error)

	// ProductionDistribution splits positive production across the
	// agent's direct downlines, each slice covering the downline's
	// whole subtree.
	ProductionDistribution(ctx context.Context, req ProductionDistributionRequest) (ProductionDistributionResponse, error)

	// Leaderboard ranks visible agents by the positive production of
	// their own written deals.
	Leaderboard(ctx context.Context, req LeaderboardRequest) ([]LeaderboardEntry, error)
}

var (
	ErrInvalidAgency  = errors.New("invalid_agency")
	ErrInvalidScope   = errors.New("invalid_scope")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidCarrier = errors.New("invalid_carrier")
	ErrForbidden      = errors.New("forbidden")
)
