package domain

import (
	"github.com/google/uuid"
)

// MaxDepth is the hard traversal ceiling. Chains and downlines deeper
// than this are truncated, never followed further, so a corrupted graph
// that encodes a cycle degrades to a bounded result instead of looping.
const MaxDepth = 20

// Node is one agent row projected to the fields hierarchy traversal needs.
type Node struct {
	ID         uuid.UUID  `json:"id"`
	AgencyID   uuid.UUID  `json:"agency_id"`
	UplineID   *uuid.UUID `json:"upline_id,omitempty"`
	PositionID *uuid.UUID `json:"position_id,omitempty"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
}

// ChainEntry is one hop of an upline chain. Level 0 is the agent itself,
// increasing toward the root.
type ChainEntry struct {
	AgentID    uuid.UUID  `json:"agent_id"`
	PositionID *uuid.UUID `json:"position_id,omitempty"`
	Level      int        `json:"level"`
}

// RoleClient mirrors the agent role used to exclude client nodes from
// visibility sets and payout chains.
const RoleClient = "client"

// Reassignment rejection reasons.
const (
	ReasonSelfUpline       = "self_upline"
	ReasonDescendantUpline = "descendant_upline"
	ReasonCrossTenant      = "cross_tenant_upline"
	ReasonAgentNotFound    = "agent_not_found"
	ReasonUplineNotFound   = "upline_not_found"
)

// ReassignmentCheck is the outcome of validating a proposed upline edge.
type ReassignmentCheck struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// PositionCheckEntry reports whether one chain member has a position
// configured. Deals cannot be written under a chain with gaps because
// snapshot rows would capture null percentages for those levels.
type PositionCheckEntry struct {
	AgentID     uuid.UUID  `json:"agent_id"`
	Name        string     `json:"name"`
	Level       int        `json:"level"`
	PositionID  *uuid.UUID `json:"position_id,omitempty"`
	HasPosition bool       `json:"has_position"`
}
