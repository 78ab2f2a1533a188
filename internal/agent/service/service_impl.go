package service

import (
	"context"
	"strings"
	"time"

	"github.com/agentspace/agentspace/internal/agencyctx"
	"github.com/agentspace/agentspace/internal/agent/domain"
	hierarchydomain "github.com/agentspace/agentspace/internal/hierarchy/domain"
	"github.com/agentspace/agentspace/internal/lock"
	obsmetrics "github.com/agentspace/agentspace/internal/observability/metrics"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	pkgdb "github.com/agentspace/agentspace/pkg/db"
	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reassignLockTTL  = 10 * time.Second
	reassignLockWait = 5 * time.Second
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         domain.Repository
	PositionRepo positiondomain.Repository
	Hierarchy    hierarchydomain.Service
	Locker       *lock.Locker        `optional:"true"`
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	positionRepo positiondomain.Repository
	hierarchy    hierarchydomain.Service
	locker       *lock.Locker
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("agent.service"),
		repo:         p.Repo,
		positionRepo: p.PositionRepo,
		hierarchy:    p.Hierarchy,
		locker:       p.Locker,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAgentRequest) (domain.Agent, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.Agent{}, domain.ErrInvalidAgency
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return domain.Agent{}, domain.ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Agent{}, domain.ErrInvalidEmail
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleAgent
	}
	switch role {
	case domain.RoleAdmin, domain.RoleAgent, domain.RoleClient:
	default:
		return domain.Agent{}, domain.ErrInvalidRole
	}

	var uplineID *uuid.UUID
	if value := strings.TrimSpace(req.UplineID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return domain.Agent{}, domain.ErrInvalidUpline
		}
		upline, err := s.repo.FindByID(ctx, s.db, identity.AgencyID, id)
		if err != nil {
			return domain.Agent{}, err
		}
		if upline == nil {
			return domain.Agent{}, domain.ErrInvalidUpline
		}
		uplineID = &id
	}

	var positionID *uuid.UUID
	if value := strings.TrimSpace(req.PositionID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return domain.Agent{}, domain.ErrInvalidPosition
		}
		position, err := s.positionRepo.FindByID(ctx, s.db, identity.AgencyID, id)
		if err != nil {
			return domain.Agent{}, err
		}
		if position == nil {
			return domain.Agent{}, domain.ErrInvalidPosition
		}
		positionID = &id
	}

	now := time.Now().UTC()
	agent := domain.Agent{
		ID:         uuid.New(),
		AgencyID:   identity.AgencyID,
		UplineID:   uplineID,
		PositionID: positionID,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      strings.TrimSpace(req.Phone),
		Role:       role,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &agent); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Agent{}, domain.ErrEmailExists
		}
		return domain.Agent{}, err
	}
	return agent, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAgentRequest) (domain.Agent, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.Agent{}, domain.ErrInvalidAgency
	}

	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Agent{}, domain.ErrInvalidID
	}

	agent, err := s.repo.FindByID(ctx, s.db, identity.AgencyID, id)
	if err != nil {
		return domain.Agent{}, err
	}
	if agent == nil {
		return domain.Agent{}, domain.ErrNotFound
	}

	if firstName := strings.TrimSpace(req.FirstName); firstName != "" {
		agent.FirstName = firstName
	}
	if lastName := strings.TrimSpace(req.LastName); lastName != "" {
		agent.LastName = lastName
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		agent.Phone = phone
	}
	if value := strings.TrimSpace(req.PositionID); value != "" {
		positionID, err := uuid.Parse(value)
		if err != nil {
			return domain.Agent{}, domain.ErrInvalidPosition
		}
		position, err := s.positionRepo.FindByID(ctx, s.db, identity.AgencyID, positionID)
		if err != nil {
			return domain.Agent{}, err
		}
		if position == nil {
			return domain.Agent{}, domain.ErrInvalidPosition
		}
		agent.PositionID = &positionID
	}
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}
	agent.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, agent); err != nil {
		return domain.Agent{}, err
	}
	return *agent, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAgentRequest) (domain.Agent, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.Agent{}, domain.ErrInvalidAgency
	}

	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Agent{}, domain.ErrInvalidID
	}

	if err := s.authorizeRead(ctx, identity, id); err != nil {
		return domain.Agent{}, err
	}

	agent, err := s.repo.FindByID(ctx, s.db, identity.AgencyID, id)
	if err != nil {
		return domain.Agent{}, err
	}
	if agent == nil {
		return domain.Agent{}, domain.ErrNotFound
	}
	return *agent, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAgentRequest) (domain.ListAgentResponse, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.ListAgentResponse{}, domain.ErrInvalidAgency
	}

	visible, err := s.hierarchy.VisibleAgentIDs(ctx, req.IncludeFullAgency)
	if err != nil {
		return domain.ListAgentResponse{}, err
	}

	filter := domain.ListAgentFilter{
		Role:        strings.TrimSpace(req.Role),
		IsActive:    req.IsActive,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		VisibleIDs:  visible,
	}
	if value := strings.TrimSpace(req.UplineID); value != "" {
		uplineID, err := uuid.Parse(value)
		if err != nil {
			return domain.ListAgentResponse{}, domain.ErrInvalidUpline
		}
		filter.UplineID = &uplineID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, identity.AgencyID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListAgentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(agent *domain.Agent) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        agent.ID.String(),
			CreatedAt: agent.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	agents := make([]domain.Agent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		agents = append(agents, *item)
	}

	resp := domain.ListAgentResponse{Agents: agents}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// ReassignUpline validates and commits a new upline edge. The
// validate-then-write sequence is serialized per agency via an advisory
// lock so two concurrent reassignments cannot jointly create a cycle.
func (s *Service) ReassignUpline(ctx context.Context, req domain.ReassignUplineRequest) (domain.Agent, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.Agent{}, domain.ErrInvalidAgency
	}
	if !identity.IsAdmin {
		return domain.Agent{}, domain.ErrForbidden
	}

	agentID, err := uuid.Parse(strings.TrimSpace(req.AgentID))
	if err != nil {
		return domain.Agent{}, domain.ErrInvalidID
	}

	var uplineID *uuid.UUID
	if value := strings.TrimSpace(req.UplineID); value != "" {
		id, parseErr := uuid.Parse(value)
		if parseErr != nil {
			return domain.Agent{}, domain.ErrInvalidUpline
		}
		uplineID = &id
	}

	apply := func(ctx context.Context) error {
		check, err := s.hierarchy.ValidateUplineReassignment(ctx, agentID, uplineID)
		if err != nil {
			return err
		}
		if !check.OK {
			s.metrics.RecordUplineReassignment(ctx, identity.AgencyID.String(), "rejected")
			s.log.Warn("upline reassignment rejected",
				zap.String("agent_id", agentID.String()),
				zap.String("reason", check.Reason),
			)
			if check.Reason == hierarchydomain.ReasonAgentNotFound {
				return domain.ErrNotFound
			}
			return domain.ErrInvalidUpline
		}
		return s.repo.SetUpline(ctx, s.db, identity.AgencyID, agentID, uplineID)
	}

	if s.locker != nil {
		key := "agentspace:reassign:" + identity.AgencyID.String()
		err = s.locker.WithLock(ctx, key, reassignLockTTL, reassignLockWait, apply)
	} else {
		err = apply(ctx)
	}
	if err != nil {
		return domain.Agent{}, err
	}

	s.metrics.RecordUplineReassignment(ctx, identity.AgencyID.String(), "applied")

	agent, err := s.repo.FindByID(ctx, s.db, identity.AgencyID, agentID)
	if err != nil {
		return domain.Agent{}, err
	}
	if agent == nil {
		return domain.Agent{}, domain.ErrNotFound
	}
	return *agent, nil
}

func (s *Service) authorizeRead(ctx context.Context, identity agencyctx.Identity, targetID uuid.UUID) error {
	if identity.IsAdmin || identity.AgentID == targetID {
		return nil
	}
	visible, err := s.hierarchy.VisibleAgentIDs(ctx, false)
	if err != nil {
		return err
	}
	for _, id := range visible {
		if id == targetID {
			return nil
		}
	}
	return domain.ErrForbidden
}
