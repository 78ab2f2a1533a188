package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HierarchySnapshot is one row of the commission ledger captured at the
// moment a deal is written. Rows are append-only; later hierarchy or
// rate changes never touch them. Level 0 is the writing agent, level N
// the Nth upline.
type HierarchySnapshot struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DealID   uuid.UUID `json:"deal_id" gorm:"type:uuid;index:idx_hierarchy_snapshots_deal"`
	AgencyID uuid.UUID `json:"agency_id" gorm:"type:uuid;index"`
	AgentID  uuid.UUID `json:"agent_id" gorm:"type:uuid;index"`

	PositionID *uuid.UUID `json:"position_id" gorm:"type:uuid"`
	Level      int        `json:"level"`

	// Percentage is the commission rate in effect when the snapshot was
	// taken. Null means no rate was configured for the agent's position
	// and product; such rows earn nothing but stay in the ledger.
	Percentage decimal.NullDecimal `json:"percentage" gorm:"type:decimal(5,2)"`

	CreatedAt time.Time `json:"created_at"`
}

func (HierarchySnapshot) TableName() string {
	return "hierarchy_snapshots"
}
