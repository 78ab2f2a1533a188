package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/agentspace/agentspace/internal/agencyctx"
	"github.com/agentspace/agentspace/internal/analytics/domain"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	"github.com/agentspace/agentspace/internal/config"
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	hierarchydomain "github.com/agentspace/agentspace/internal/hierarchy/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	DealRepo      dealdomain.Repository
	CarrierRepo   carrierdomain.Repository
	Hierarchy     hierarchydomain.Service
	HierarchyRepo hierarchydomain.Repository
	Reporting     *config.ReportingConfigHolder `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	dealRepo      dealdomain.Repository
	carrierRepo   carrierdomain.Repository
	hierarchy     hierarchydomain.Service
	hierarchyRepo hierarchydomain.Repository
	reporting     *config.ReportingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("analytics.service"),
		dealRepo:      p.DealRepo,
		carrierRepo:   p.CarrierRepo,
		hierarchy:     p.Hierarchy,
		hierarchyRepo: p.HierarchyRepo,
		reporting:     p.Reporting,
	}
}

// reportingConfig falls back to defaults when no holder is wired,
// which is the case in tests.
func (s *Service) reportingConfig() config.ReportingConfig {
	if s.reporting == nil {
		return config.DefaultReportingConfig()
	}
	return s.reporting.Get()
}

func (s *Service) Aggregate(ctx context.Context, req domain.AggregateRequest) (domain.AggregateResponse, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.AggregateResponse{}, domain.ErrInvalidAgency
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	reporting := s.reportingConfig()
	windows := req.Windows
	if len(windows) == 0 {
		windows = reporting.WindowMonths
	}

	writerIDs, err := s.resolveScope(ctx, identity, req)
	if err != nil {
		return domain.AggregateResponse{}, err
	}

	filter := dealdomain.ListDealFilter{AgentIDs: writerIDs}
	if value := strings.TrimSpace(req.CarrierID); value != "" {
		carrierID, err := uuid.Parse(value)
		if err != nil {
			return domain.AggregateResponse{}, domain.ErrInvalidCarrier
		}
		filter.CarrierID = &carrierID
	}

	deals, err := s.dealRepo.ListAll(ctx, s.db, identity.AgencyID, filter)
	if err != nil {
		return domain.AggregateResponse{}, err
	}

	facts, err := s.buildFacts(ctx, deals, asOf)
	if err != nil {
		return domain.AggregateResponse{}, err
	}

	resp := domain.AggregateResponse{
		Scope: req.Scope,
		AsOf:  asOf,
		Trend: domain.Trend(facts, asOf, reporting.TrendMaxPoints),
	}
	for _, window := range windows {
		resp.Windows = append(resp.Windows, domain.Window(facts, asOf, window))
	}

	factsByCarrier := make(map[uuid.UUID][]domain.Fact)
	for _, fact := range facts {
		factsByCarrier[fact.CarrierID] = append(factsByCarrier[fact.CarrierID], fact)
	}
	carrierIDs := make([]uuid.UUID, 0, len(factsByCarrier))
	for carrierID := range factsByCarrier {
		carrierIDs = append(carrierIDs, carrierID)
	}
	sort.Slice(carrierIDs, func(i, j int) bool {
		return carrierIDs[i].String() < carrierIDs[j].String()
	})

	for _, carrierID := range carrierIDs {
		carrierFacts := factsByCarrier[carrierID]
		analytics := domain.CarrierAnalytics{
			CarrierID: carrierID,
			Months:    domain.MonthSeries(carrierFacts),
		}
		for _, window := range windows {
			analytics.Windows = append(analytics.Windows, domain.CarrierWindow{
				WindowMetrics: domain.Window(carrierFacts, asOf, window),
				Statuses:      domain.StatusCounts(carrierFacts, asOf, window),
				States:        domain.TopStates(carrierFacts, asOf, window),
				AgeBands:      domain.AgeBandCounts(carrierFacts, asOf, window),
			})
		}
		resp.Carriers = append(resp.Carriers, analytics)
	}
	return resp, nil
}

func (s *Service) ProductionDistribution(ctx context.Context, req domain.ProductionDistributionRequest) (domain.ProductionDistributionResponse, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.ProductionDistributionResponse{}, domain.ErrInvalidAgency
	}

	agentID := identity.AgentID
	if value := strings.TrimSpace(req.AgentID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return domain.ProductionDistributionResponse{}, domain.ErrInvalidID
		}
		agentID = id
	}
	if agentID != identity.AgentID && !identity.IsAdmin {
		if err := s.authorizeAgent(ctx, agentID); err != nil {
			return domain.ProductionDistributionResponse{}, err
		}
	}

	direct, err := s.hierarchy.Downline(ctx, agentID, 1)
	if err != nil {
		return domain.ProductionDistributionResponse{}, err
	}

	mappings := make(map[uuid.UUID]carrierdomain.MappingSet)
	resp := domain.ProductionDistributionResponse{AgentID: agentID}
	for _, child := range direct {
		if child.Role == hierarchydomain.RoleClient {
			continue
		}

		subtree, err := s.hierarchy.Downline(ctx, child.ID, 0)
		if err != nil {
			return domain.ProductionDistributionResponse{}, err
		}
		ids := make([]uuid.UUID, 0, len(subtree)+1)
		ids = append(ids, child.ID)
		for _, node := range subtree {
			ids = append(ids, node.ID)
		}

		deals, err := s.dealRepo.ListAll(ctx, s.db, identity.AgencyID, dealdomain.ListDealFilter{AgentIDs: ids})
		if err != nil {
			return domain.ProductionDistributionResponse{}, err
		}
		production, count, err := s.positiveProduction(ctx, mappings, deals)
		if err != nil {
			return domain.ProductionDistributionResponse{}, err
		}

		resp.Slices = append(resp.Slices, domain.ProductionSlice{
			AgentID:    child.ID,
			Name:       nodeName(child),
			Production: production,
			DealCount:  count,
		})
		resp.Total = resp.Total.Add(production)
	}

	sort.Slice(resp.Slices, func(i, j int) bool {
		if !resp.Slices[i].Production.Equal(resp.Slices[j].Production) {
			return resp.Slices[i].Production.GreaterThan(resp.Slices[j].Production)
		}
		return resp.Slices[i].Name < resp.Slices[j].Name
	})
	return resp, nil
}

func (s *Service) Leaderboard(ctx context.Context, req domain.LeaderboardRequest) ([]domain.LeaderboardEntry, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidAgency
	}

	visible, err := s.hierarchy.VisibleAgentIDs(ctx, req.IncludeFullAgency)
	if err != nil {
		return nil, err
	}

	nodes, err := s.hierarchyRepo.ListNodes(ctx, s.db, identity.AgencyID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(nodes))
	for _, node := range nodes {
		names[node.ID] = nodeName(node)
	}

	deals, err := s.dealRepo.ListAll(ctx, s.db, identity.AgencyID, dealdomain.ListDealFilter{AgentIDs: visible})
	if err != nil {
		return nil, err
	}

	mappings := make(map[uuid.UUID]carrierdomain.MappingSet)
	byAgent := make(map[uuid.UUID]*domain.LeaderboardEntry)
	for _, deal := range deals {
		if !deal.AnnualPremium.Valid {
			continue
		}
		set, err := s.mappingSet(ctx, mappings, deal.CarrierID)
		if err != nil {
			return nil, err
		}
		mapping := set.Resolve(deal.Status)
		if mapping == nil || mapping.Impact != carrierdomain.ImpactPositive {
			continue
		}

		entry, ok := byAgent[deal.AgentID]
		if !ok {
			entry = &domain.LeaderboardEntry{AgentID: deal.AgentID, Name: names[deal.AgentID]}
			byAgent[deal.AgentID] = entry
		}
		entry.Production = entry.Production.Add(deal.AnnualPremium.Decimal)
		entry.DealCount++
	}

	entries := make([]domain.LeaderboardEntry, 0, len(byAgent))
	for _, entry := range byAgent {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Production.Equal(entries[j].Production) {
			return entries[i].Production.GreaterThan(entries[j].Production)
		}
		return entries[i].Name < entries[j].Name
	})

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Service) positiveProduction(ctx context.Context, cache map[uuid.UUID]carrierdomain.MappingSet, deals []*dealdomain.Deal) (decimal.Decimal, int, error) {
	total := decimal.Zero
	count := 0
	for _, deal := range deals {
		if !deal.AnnualPremium.Valid {
			continue
		}
		set, err := s.mappingSet(ctx, cache, deal.CarrierID)
		if err != nil {
			return decimal.Decimal{}, 0, err
		}
		mapping := set.Resolve(deal.Status)
		if mapping == nil || mapping.Impact != carrierdomain.ImpactPositive {
			continue
		}
		total = total.Add(deal.AnnualPremium.Decimal)
		count++
	}
	return total, count, nil
}

func (s *Service) mappingSet(ctx context.Context, cache map[uuid.UUID]carrierdomain.MappingSet, carrierID uuid.UUID) (carrierdomain.MappingSet, error) {
	set, ok := cache[carrierID]
	if ok {
		return set, nil
	}
	carrierMappings, err := s.carrierRepo.ListStatusMappings(ctx, s.db, carrierID)
	if err != nil {
		return carrierdomain.MappingSet{}, err
	}
	set = carrierdomain.NewMappingSet(carrierMappings)
	cache[carrierID] = set
	return set, nil
}

func nodeName(node hierarchydomain.Node) string {
	return strings.TrimSpace(node.FirstName + " " + node.LastName)
}

func (s *Service) resolveScope(ctx context.Context, identity agencyctx.Identity, req domain.AggregateRequest) ([]uuid.UUID, error) {
	scope := strings.ToLower(strings.TrimSpace(req.Scope))
	if scope == "" {
		scope = domain.ScopeOwn
	}

	agentID := identity.AgentID
	if value := strings.TrimSpace(req.AgentID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		agentID = id
	}
	if agentID != identity.AgentID && !identity.IsAdmin {
		if err := s.authorizeAgent(ctx, agentID); err != nil {
			return nil, err
		}
	}

	switch scope {
	case domain.ScopeOwn:
		return []uuid.UUID{agentID}, nil
	case domain.ScopeDownline:
		downline, err := s.hierarchy.Downline(ctx, agentID, 0)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(downline))
		for _, node := range downline {
			ids = append(ids, node.ID)
		}
		// Non-nil empty set matches nothing rather than everything.
		if ids == nil {
			ids = []uuid.UUID{}
		}
		return ids, nil
	case domain.ScopeAgency:
		if !identity.IsAdmin {
			return nil, domain.ErrForbidden
		}
		return s.hierarchy.VisibleAgentIDs(ctx, true)
	default:
		return nil, domain.ErrInvalidScope
	}
}

// buildFacts flattens deals into aggregation facts, classifying each
// through its carrier's status mappings. The month anchor is the
// policy effective date when present, the submission date otherwise.
func (s *Service) buildFacts(ctx context.Context, deals []*dealdomain.Deal, asOf time.Time) ([]domain.Fact, error) {
	mappings := make(map[uuid.UUID]carrierdomain.MappingSet)

	facts := make([]domain.Fact, 0, len(deals))
	for _, deal := range deals {
		set, err := s.mappingSet(ctx, mappings, deal.CarrierID)
		if err != nil {
			return nil, err
		}

		fact := domain.Fact{
			CarrierID: deal.CarrierID,
			Month:     deal.EffectiveMonthDate(),
			Premium:   deal.AnnualPremium,
			Status:    deal.StatusStandardized,
			State:     deal.ClientState,
			AgeBand:   domain.AgeBand(deal.ClientDateOfBirth, asOf),
		}
		if fact.Status == "" {
			fact.Status = deal.Status
		}
		if mapping := set.Resolve(deal.Status); mapping != nil {
			impact := mapping.Impact
			fact.Impact = &impact
			fact.Placement = mapping.Placement
			fact.Status = mapping.StandardizedStatus
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func (s *Service) authorizeAgent(ctx context.Context, agentID uuid.UUID) error {
	visible, err := s.hierarchy.VisibleAgentIDs(ctx, false)
	if err != nil {
		return err
	}
	for _, id := range visible {
		if id == agentID {
			return nil
		}
	}
	return domain.ErrForbidden
}
