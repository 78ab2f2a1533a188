package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deal is one written policy. The snapshot set in the ledger is created
// with it in the same transaction; the deal row itself stays mutable
// (status and premium corrections) while the snapshots do not.
type Deal struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	AgencyID  uuid.UUID `json:"agency_id" gorm:"type:uuid;index:idx_deals_agency_agent"`
	AgentID   uuid.UUID `json:"agent_id" gorm:"type:uuid;index:idx_deals_agency_agent"`
	CarrierID uuid.UUID `json:"carrier_id" gorm:"type:uuid;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid"`

	ClientFirstName   string     `json:"client_first_name"`
	ClientLastName    string     `json:"client_last_name"`
	ClientPhone       string     `json:"client_phone" gorm:"index"`
	ClientState       string     `json:"client_state"`
	ClientDateOfBirth *time.Time `json:"client_date_of_birth"`

	// AnnualPremium is null when the carrier has not reported it yet.
	AnnualPremium decimal.NullDecimal `json:"annual_premium" gorm:"type:decimal(12,2)"`

	// Status is the raw carrier string; StatusStandardized is derived
	// from the carrier's status mappings and empty when unmapped.
	Status             string `json:"status"`
	StatusStandardized string `json:"status_standardized"`

	PolicyEffectiveDate *time.Time `json:"policy_effective_date"`
	SubmissionDate      time.Time  `json:"submission_date"`

	// LapseDate is set when the status resolves to a negative impact.
	// It anchors the vesting clock for clawback.
	LapseDate *time.Time `json:"lapse_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Deal) TableName() string {
	return "deals"
}

// EffectiveMonthDate is the month anchor used by reporting: the policy
// effective date when known, the submission date otherwise.
func (d Deal) EffectiveMonthDate() time.Time {
	if d.PolicyEffectiveDate != nil {
		return *d.PolicyEffectiveDate
	}
	return d.SubmissionDate
}
