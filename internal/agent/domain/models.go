package domain

import (
	"time"

	"github.com/google/uuid"
)

// Agent roles. Clients are modeled as agents with RoleClient so the
// hierarchy keeps a single node table; they never appear in visibility
// sets or payout chains.
const (
	RoleAdmin  = "admin"
	RoleAgent  = "agent"
	RoleClient = "client"
)

type Agent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AgencyID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_agents_agency_email" json:"agency_id"`
	UplineID   *uuid.UUID `gorm:"type:uuid;index" json:"upline_id,omitempty"`
	PositionID *uuid.UUID `gorm:"type:uuid" json:"position_id,omitempty"`
	FirstName  string     `gorm:"not null" json:"first_name"`
	LastName   string     `gorm:"not null" json:"last_name"`
	Email      string     `gorm:"not null;uniqueIndex:idx_agents_agency_email" json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Role       string     `gorm:"not null;default:agent" json:"role"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }

func (a Agent) FullName() string {
	return a.FirstName + " " + a.LastName
}
