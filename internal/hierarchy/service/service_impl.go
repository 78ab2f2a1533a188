package service

import (
	"context"

	"github.com/agentspace/agentspace/internal/agencyctx"
	"github.com/agentspace/agentspace/internal/hierarchy/domain"
	obsmetrics "github.com/agentspace/agentspace/internal/observability/metrics"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("hierarchy.service"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) graph(ctx context.Context, agencyID uuid.UUID) (*domain.Graph, error) {
	nodes, err := s.repo.ListNodes(ctx, s.db, agencyID)
	if err != nil {
		return nil, err
	}
	return domain.NewGraph(nodes), nil
}

func (s *Service) Downline(ctx context.Context, agentID uuid.UUID, maxDepth int) ([]domain.Node, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidAgency
	}

	graph, err := s.graph(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if _, ok := graph.Node(agentID); !ok {
		return nil, domain.ErrNotFound
	}

	ids, truncated := graph.Downline(agentID, maxDepth)
	if truncated {
		s.warnTruncated(ctx, agencyID, agentID, "downline")
	}
	graph.SortByName(ids)

	nodes := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		if node, ok := graph.Node(id); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (s *Service) UplineChain(ctx context.Context, agentID uuid.UUID) ([]domain.ChainEntry, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidAgency
	}

	graph, err := s.graph(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if _, ok := graph.Node(agentID); !ok {
		return nil, domain.ErrNotFound
	}

	chain, truncated := graph.UplineChain(agentID)
	if truncated {
		s.warnTruncated(ctx, agencyID, agentID, "upline_chain")
	}
	return chain, nil
}

func (s *Service) IsDescendant(ctx context.Context, ancestorID, candidateID uuid.UUID) (bool, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return false, domain.ErrInvalidAgency
	}

	graph, err := s.graph(ctx, agencyID)
	if err != nil {
		return false, err
	}
	return graph.IsDescendant(ancestorID, candidateID), nil
}

func (s *Service) VisibleAgentIDs(ctx context.Context, includeFullAgency bool) ([]uuid.UUID, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidAgency
	}

	nodes, err := s.repo.ListNodes(ctx, s.db, identity.AgencyID)
	if err != nil {
		return nil, err
	}

	if identity.IsAdmin && includeFullAgency {
		ids := make([]uuid.UUID, 0, len(nodes))
		for _, node := range nodes {
			if node.Role == domain.RoleClient {
				continue
			}
			ids = append(ids, node.ID)
		}
		return ids, nil
	}

	graph := domain.NewGraph(nodes)
	if _, ok := graph.Node(identity.AgentID); !ok {
		return nil, domain.ErrNotFound
	}
	downline, truncated := graph.Downline(identity.AgentID, domain.MaxDepth)
	if truncated {
		s.warnTruncated(ctx, identity.AgencyID, identity.AgentID, "visibility")
	}

	ids := make([]uuid.UUID, 0, len(downline)+1)
	ids = append(ids, identity.AgentID)
	for _, id := range downline {
		node, ok := graph.Node(id)
		if !ok || node.Role == domain.RoleClient {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) ValidateUplineReassignment(ctx context.Context, agentID uuid.UUID, proposedUplineID *uuid.UUID) (domain.ReassignmentCheck, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return domain.ReassignmentCheck{}, domain.ErrInvalidAgency
	}

	graph, err := s.graph(ctx, agencyID)
	if err != nil {
		return domain.ReassignmentCheck{}, err
	}
	if _, ok := graph.Node(agentID); !ok {
		return domain.ReassignmentCheck{Reason: domain.ReasonAgentNotFound}, nil
	}

	// Detaching to a root is always valid.
	if proposedUplineID == nil {
		return domain.ReassignmentCheck{OK: true}, nil
	}

	if *proposedUplineID == agentID {
		return domain.ReassignmentCheck{Reason: domain.ReasonSelfUpline}, nil
	}

	if _, ok := graph.Node(*proposedUplineID); !ok {
		other, err := s.repo.FindNodeAnyAgency(ctx, s.db, *proposedUplineID)
		if err != nil {
			return domain.ReassignmentCheck{}, err
		}
		if other != nil {
			return domain.ReassignmentCheck{Reason: domain.ReasonCrossTenant}, nil
		}
		return domain.ReassignmentCheck{Reason: domain.ReasonUplineNotFound}, nil
	}

	if graph.IsDescendant(agentID, *proposedUplineID) {
		return domain.ReassignmentCheck{Reason: domain.ReasonDescendantUpline}, nil
	}

	return domain.ReassignmentCheck{OK: true}, nil
}

func (s *Service) CheckUplinePositions(ctx context.Context, agentID uuid.UUID) ([]domain.PositionCheckEntry, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidAgency
	}

	graph, err := s.graph(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	self, ok := graph.Node(agentID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	chain, truncated := graph.UplineChain(agentID)
	if truncated {
		s.warnTruncated(ctx, agencyID, agentID, "position_check")
	}

	entries := make([]domain.PositionCheckEntry, 0, len(chain)+1)
	entries = append(entries, domain.PositionCheckEntry{
		AgentID:     self.ID,
		Name:        self.FirstName + " " + self.LastName,
		Level:       0,
		PositionID:  self.PositionID,
		HasPosition: self.PositionID != nil,
	})
	for _, entry := range chain {
		node, _ := graph.Node(entry.AgentID)
		entries = append(entries, domain.PositionCheckEntry{
			AgentID:     entry.AgentID,
			Name:        node.FirstName + " " + node.LastName,
			Level:       entry.Level,
			PositionID:  entry.PositionID,
			HasPosition: entry.PositionID != nil,
		})
	}
	return entries, nil
}

func (s *Service) warnTruncated(ctx context.Context, agencyID, agentID uuid.UUID, op string) {
	s.log.Warn("hierarchy traversal hit depth ceiling",
		zap.String("agency_id", agencyID.String()),
		zap.String("agent_id", agentID.String()),
		zap.String("operation", op),
		zap.Int("max_depth", domain.MaxDepth),
	)
	s.metrics.RecordDepthCeilingHit(ctx, agencyID.String())
}
