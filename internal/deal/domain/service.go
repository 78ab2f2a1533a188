package domain

import (
	"context"
	"errors"
	"time"

	ledgerdomain "github.com/agentspace/agentspace/internal/ledger/domain"
	"github.com/agentspace/agentspace/pkg/db/pagination"
)

type CreateDealRequest struct {
	// AgentID is the writing agent. Empty defaults to the caller.
	AgentID   string `json:"agent_id"`
	CarrierID string `json:"carrier_id"`
	ProductID string `json:"product_id"`

	ClientFirstName   string     `json:"client_first_name"`
	ClientLastName    string     `json:"client_last_name"`
	ClientPhone       string     `json:"client_phone"`
	ClientState       string     `json:"client_state"`
	ClientDateOfBirth *time.Time `json:"client_date_of_birth"`

	AnnualPremium *float64 `json:"annual_premium"`
	Status        string   `json:"status"`

	PolicyEffectiveDate *time.Time `json:"policy_effective_date"`
	SubmissionDate      *time.Time `json:"submission_date"`
}

type UpdateDealRequest struct {
	ID string `json:"-"`

	ClientFirstName   string     `json:"client_first_name"`
	ClientLastName    string     `json:"client_last_name"`
	ClientPhone       string     `json:"client_phone"`
	ClientState       string     `json:"client_state"`
	ClientDateOfBirth *time.Time `json:"client_date_of_birth"`

	AnnualPremium       *float64   `json:"annual_premium"`
	PolicyEffectiveDate *time.Time `json:"policy_effective_date"`
}

type UpdateDealStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`

	// LapseDate overrides the vesting anchor for negative statuses.
	// Defaults to the time of the status change.
	LapseDate *time.Time `json:"lapse_date"`
}

type GetDealRequest struct {
	ID string
}

type DeleteDealRequest struct {
	ID string
}

type ListDealRequest struct {
	PageToken     string
	PageSize      int32
	CarrierID     string
	ProductID     string
	Status        string
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time

	IncludeFullAgency bool
}

type DealWithSnapshots struct {
	Deal      Deal                              `json:"deal"`
	Snapshots []*ledgerdomain.HierarchySnapshot `json:"snapshots"`
}

type ListDealResponse struct {
	pagination.PageInfo
	Deals []Deal `json:"deals"`
}

type Service interface {
	Create(context.Context, CreateDealRequest) (DealWithSnapshots, error)
	Update(context.Context, UpdateDealRequest) (Deal, error)
	UpdateStatus(context.Context, UpdateDealStatusRequest) (Deal, error)
	GetByID(context.Context, GetDealRequest) (DealWithSnapshots, error)
	List(context.Context, ListDealRequest) (ListDealResponse, error)
	Delete(context.Context, DeleteDealRequest) error
}

var (
	ErrInvalidAgency     = errors.New("invalid_agency")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidAgent      = errors.New("invalid_agent")
	ErrInvalidCarrier    = errors.New("invalid_carrier")
	ErrInvalidProduct    = errors.New("invalid_product")
	ErrInvalidClient     = errors.New("invalid_client")
	ErrInvalidPremium    = errors.New("invalid_premium")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrClientPhoneExists = errors.New("client_phone_exists")
	ErrNotFound          = errors.New("not_found")
	ErrForbidden         = errors.New("forbidden")
)
