package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Service interface {
	// Downline returns all strict descendants of the agent, ordered by
	// surname then given name. maxDepth <= 0 means the full ceiling.
	Downline(ctx context.Context, agentID uuid.UUID, maxDepth int) ([]Node, error)

	// UplineChain returns the chain from nearest upline to root.
	UplineChain(ctx context.Context, agentID uuid.UUID) ([]ChainEntry, error)

	IsDescendant(ctx context.Context, ancestorID, candidateID uuid.UUID) (bool, error)

	// VisibleAgentIDs is the security boundary for every read path.
	// Admins with includeFullAgency get every non-client agent in the
	// tenant; everyone else gets self plus full downline.
	VisibleAgentIDs(ctx context.Context, includeFullAgency bool) ([]uuid.UUID, error)

	ValidateUplineReassignment(ctx context.Context, agentID uuid.UUID, proposedUplineID *uuid.UUID) (ReassignmentCheck, error)

	// CheckUplinePositions reports, level by level, whether every member
	// of the agent's chain (self included) has a position configured.
	CheckUplinePositions(ctx context.Context, agentID uuid.UUID) ([]PositionCheckEntry, error)
}

var (
	ErrInvalidAgency = errors.New("invalid_agency")
	ErrNotFound      = errors.New("not_found")
)
