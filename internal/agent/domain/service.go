package domain

import (
	"context"
	"errors"
	"time"

	"github.com/agentspace/agentspace/pkg/db/pagination"
)

type CreateAgentRequest struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Role       string
	UplineID   string
	PositionID string
}

type UpdateAgentRequest struct {
	ID         string
	FirstName  string
	LastName   string
	Phone      string
	PositionID string
	IsActive   *bool
}

type GetAgentRequest struct {
	ID string
}

type ListAgentRequest struct {
	PageToken   string
	PageSize    int32
	Role        string
	UplineID    string
	IsActive    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// IncludeFullAgency widens the result to the whole tenant. Honored
	// for admin callers only.
	IncludeFullAgency bool
}

type ListAgentResponse struct {
	pagination.PageInfo
	Agents []Agent `json:"agents"`
}

type ReassignUplineRequest struct {
	AgentID  string
	UplineID string // empty detaches the agent to a root
}

type Service interface {
	Create(context.Context, CreateAgentRequest) (Agent, error)
	Update(context.Context, UpdateAgentRequest) (Agent, error)
	GetByID(context.Context, GetAgentRequest) (Agent, error)
	List(context.Context, ListAgentRequest) (ListAgentResponse, error)
	ReassignUpline(context.Context, ReassignUplineRequest) (Agent, error)
}

var (
	ErrInvalidAgency   = errors.New("invalid_agency")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidUpline   = errors.New("invalid_upline")
	ErrInvalidPosition = errors.New("invalid_position")
	ErrEmailExists     = errors.New("email_exists")
	ErrNotFound        = errors.New("not_found")
	ErrForbidden       = errors.New("forbidden")
)
