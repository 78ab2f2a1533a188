package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverridePoolRatio is the commissionable share of annual premium
// distributed across a deal's hierarchy chain.
var OverridePoolRatio = decimal.NewFromFloat(0.75)

// Share is one ledger row's stake in a deal: the percentage captured at
// write time, null when no rate was configured.
type Share struct {
	AgentID    uuid.UUID
	Level      int
	Percentage decimal.NullDecimal
}

// Allocation is one agent's expected payout for one deal. HasRate
// distinguishes a configured zero from an unconfigured row.
type Allocation struct {
	AgentID uuid.UUID       `json:"agent_id"`
	Level   int             `json:"level"`
	Amount  decimal.Decimal `json:"amount"`
	HasRate bool            `json:"has_rate"`
}

// Pool returns the unrounded commissionable pool for a premium.
func Pool(premium decimal.Decimal) decimal.Decimal {
	return premium.Mul(OverridePoolRatio)
}

// TotalPercentage sums the configured percentages of a share set,
// treating nulls as zero.
func TotalPercentage(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, share := range shares {
		if share.Percentage.Valid {
			total = total.Add(share.Percentage.Decimal)
		}
	}
	return total
}

// Allocate distributes the pool proportionally across the shares that
// have a configured percentage. Each amount is rounded to cents
// individually; when every share has a rate and the total is positive
// the rounded amounts sum to the rounded pool within one cent.
func Allocate(premium decimal.Decimal, shares []Share) []Allocation {
	total := TotalPercentage(shares)
	pool := Pool(premium)

	allocations := make([]Allocation, 0, len(shares))
	for _, share := range shares {
		amount := decimal.Zero
		if share.Percentage.Valid && total.IsPositive() {
			amount = pool.Mul(share.Percentage.Decimal).Div(total).Round(2)
		}
		allocations = append(allocations, Allocation{
			AgentID: share.AgentID,
			Level:   share.Level,
			Amount:  amount,
			HasRate: share.Percentage.Valid,
		})
	}
	return allocations
}
