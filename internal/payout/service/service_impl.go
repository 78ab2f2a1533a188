package service

import (
	"context"
	"sort"
	"strings"

	"github.com/agentspace/agentspace/internal/agencyctx"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	hierarchydomain "github.com/agentspace/agentspace/internal/hierarchy/domain"
	ledgerdomain "github.com/agentspace/agentspace/internal/ledger/domain"
	obsmetrics "github.com/agentspace/agentspace/internal/observability/metrics"
	"github.com/agentspace/agentspace/internal/payout/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	DealRepo     dealdomain.Repository
	SnapshotRepo ledgerdomain.Repository
	CarrierRepo  carrierdomain.Repository
	Hierarchy    hierarchydomain.Service
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	dealRepo     dealdomain.Repository
	snapshotRepo ledgerdomain.Repository
	carrierRepo  carrierdomain.Repository
	hierarchy    hierarchydomain.Service
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payout.service"),
		dealRepo:     p.DealRepo,
		snapshotRepo: p.SnapshotRepo,
		carrierRepo:  p.CarrierRepo,
		hierarchy:    p.Hierarchy,
		metrics:      p.Metrics,
	}
}

func (s *Service) ExpectedPayout(ctx context.Context, dealID string) (domain.ExpectedPayoutResponse, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.ExpectedPayoutResponse{}, domain.ErrInvalidAgency
	}

	id, err := uuid.Parse(strings.TrimSpace(dealID))
	if err != nil {
		return domain.ExpectedPayoutResponse{}, domain.ErrInvalidID
	}

	deal, err := s.dealRepo.FindByID(ctx, s.db, identity.AgencyID, id)
	if err != nil {
		return domain.ExpectedPayoutResponse{}, err
	}
	if deal == nil {
		return domain.ExpectedPayoutResponse{}, domain.ErrNotFound
	}
	if !identity.IsAdmin && deal.AgentID != identity.AgentID {
		if err := s.authorizeAgent(ctx, deal.AgentID); err != nil {
			return domain.ExpectedPayoutResponse{}, err
		}
	}

	mappings, err := s.loadMappings(ctx, []uuid.UUID{deal.CarrierID})
	if err != nil {
		return domain.ExpectedPayoutResponse{}, err
	}

	resp := domain.ExpectedPayoutResponse{DealID: deal.ID}
	if exclusion := payoutExclusion(deal, mappings[deal.CarrierID]); exclusion != "" {
		resp.Exclusion = exclusion
		return resp, nil
	}

	snapshots, err := s.snapshotRepo.ListByDeal(ctx, s.db, identity.AgencyID, deal.ID)
	if err != nil {
		return domain.ExpectedPayoutResponse{}, err
	}

	shares := sharesFromSnapshots(snapshots)
	premium := deal.AnnualPremium.Decimal

	resp.Payable = true
	resp.Pool = domain.Pool(premium).Round(2)
	resp.TotalPct = domain.TotalPercentage(shares)
	resp.Payouts = domain.Allocate(premium, shares)

	s.metrics.RecordPayoutComputation(ctx, identity.AgencyID.String())
	return resp, nil
}

func (s *Service) AgentSummary(ctx context.Context, req domain.AgentSummaryRequest) (domain.AgentSummary, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.AgentSummary{}, domain.ErrInvalidAgency
	}

	agentID := identity.AgentID
	if value := strings.TrimSpace(req.AgentID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return domain.AgentSummary{}, domain.ErrInvalidID
		}
		agentID = id
	}
	if agentID != identity.AgentID && !identity.IsAdmin {
		if err := s.authorizeAgent(ctx, agentID); err != nil {
			return domain.AgentSummary{}, err
		}
	}

	// The agent earns on deals written anywhere in their subtree.
	downline, err := s.hierarchy.Downline(ctx, agentID, 0)
	if err != nil {
		return domain.AgentSummary{}, err
	}
	writerIDs := make([]uuid.UUID, 0, len(downline)+1)
	writerIDs = append(writerIDs, agentID)
	for _, node := range downline {
		writerIDs = append(writerIDs, node.ID)
	}

	deals, err := s.dealRepo.ListAll(ctx, s.db, identity.AgencyID, dealdomain.ListDealFilter{AgentIDs: writerIDs})
	if err != nil {
		return domain.AgentSummary{}, err
	}

	snapshotsByDeal, mappings, err := s.loadComputationState(ctx, identity.AgencyID, deals)
	if err != nil {
		return domain.AgentSummary{}, err
	}

	summary := domain.AgentSummary{
		AgentID:        agentID,
		PersonalAmount: decimal.Zero,
		OverrideAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		PremiumTotal:   decimal.Zero,
	}
	for _, deal := range deals {
		if exclusion := payoutExclusion(deal, mappings[deal.CarrierID]); exclusion != "" {
			summary.ExcludedDeals++
			continue
		}

		shares := sharesFromSnapshots(snapshotsByDeal[deal.ID])
		counted := false
		for _, allocation := range domain.Allocate(deal.AnnualPremium.Decimal, shares) {
			if allocation.AgentID != agentID {
				continue
			}
			if !allocation.HasRate {
				summary.UnconfiguredLvl++
			}
			if allocation.Level == 0 {
				summary.PersonalAmount = summary.PersonalAmount.Add(allocation.Amount)
			} else {
				summary.OverrideAmount = summary.OverrideAmount.Add(allocation.Amount)
			}
			if !counted {
				summary.PremiumTotal = summary.PremiumTotal.Add(deal.AnnualPremium.Decimal)
				summary.DealCount++
				counted = true
			}
		}
	}
	summary.TotalAmount = summary.PersonalAmount.Add(summary.OverrideAmount)

	s.metrics.RecordPayoutComputation(ctx, identity.AgencyID.String())
	return summary, nil
}

func (s *Service) CarrierSummaries(ctx context.Context, req domain.CarrierSummaryRequest) ([]domain.CarrierSummary, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidAgency
	}

	visible, err := s.hierarchy.VisibleAgentIDs(ctx, req.IncludeFullAgency)
	if err != nil {
		return nil, err
	}

	deals, err := s.dealRepo.ListAll(ctx, s.db, identity.AgencyID, dealdomain.ListDealFilter{AgentIDs: visible})
	if err != nil {
		return nil, err
	}

	snapshotsByDeal, mappings, err := s.loadComputationState(ctx, identity.AgencyID, deals)
	if err != nil {
		return nil, err
	}

	byCarrier := make(map[uuid.UUID]*domain.CarrierSummary)
	for _, deal := range deals {
		if exclusion := payoutExclusion(deal, mappings[deal.CarrierID]); exclusion != "" {
			continue
		}

		summary, ok := byCarrier[deal.CarrierID]
		if !ok {
			summary = &domain.CarrierSummary{
				CarrierID:    deal.CarrierID,
				PayoutTotal:  decimal.Zero,
				PremiumTotal: decimal.Zero,
			}
			byCarrier[deal.CarrierID] = summary
		}

		shares := sharesFromSnapshots(snapshotsByDeal[deal.ID])
		for _, allocation := range domain.Allocate(deal.AnnualPremium.Decimal, shares) {
			summary.PayoutTotal = summary.PayoutTotal.Add(allocation.Amount)
		}
		summary.PremiumTotal = summary.PremiumTotal.Add(deal.AnnualPremium.Decimal)
		summary.DealCount++
	}

	summaries := make([]domain.CarrierSummary, 0, len(byCarrier))
	for _, summary := range byCarrier {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CarrierID.String() < summaries[j].CarrierID.String()
	})

	s.metrics.RecordPayoutComputation(ctx, identity.AgencyID.String())
	return summaries, nil
}

// loadComputationState batches the snapshot rows and status mappings
// behind a deal set so aggregation runs without per-deal queries.
func (s *Service) loadComputationState(ctx context.Context, agencyID uuid.UUID, deals []*dealdomain.Deal) (map[uuid.UUID][]*ledgerdomain.HierarchySnapshot, map[uuid.UUID]carrierdomain.MappingSet, error) {
	dealIDs := make([]uuid.UUID, 0, len(deals))
	carrierSeen := make(map[uuid.UUID]struct{})
	var carrierIDs []uuid.UUID
	for _, deal := range deals {
		dealIDs = append(dealIDs, deal.ID)
		if _, ok := carrierSeen[deal.CarrierID]; !ok {
			carrierSeen[deal.CarrierID] = struct{}{}
			carrierIDs = append(carrierIDs, deal.CarrierID)
		}
	}

	snapshots, err := s.snapshotRepo.ListByDeals(ctx, s.db, agencyID, dealIDs)
	if err != nil {
		return nil, nil, err
	}
	snapshotsByDeal := make(map[uuid.UUID][]*ledgerdomain.HierarchySnapshot, len(dealIDs))
	for _, snapshot := range snapshots {
		snapshotsByDeal[snapshot.DealID] = append(snapshotsByDeal[snapshot.DealID], snapshot)
	}

	mappings, err := s.loadMappings(ctx, carrierIDs)
	if err != nil {
		return nil, nil, err
	}
	return snapshotsByDeal, mappings, nil
}

func (s *Service) loadMappings(ctx context.Context, carrierIDs []uuid.UUID) (map[uuid.UUID]carrierdomain.MappingSet, error) {
	sets := make(map[uuid.UUID]carrierdomain.MappingSet, len(carrierIDs))
	for _, carrierID := range carrierIDs {
		mappings, err := s.carrierRepo.ListStatusMappings(ctx, s.db, carrierID)
		if err != nil {
			return nil, err
		}
		sets[carrierID] = carrierdomain.NewMappingSet(mappings)
	}
	return sets, nil
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

// payoutExclusion reports why a deal earns nothing, empty when payable.
// Unmapped statuses are excluded outright rather than defaulted.
func payoutExclusion(deal *dealdomain.Deal, mappings carrierdomain.MappingSet) string {
	mapping := mappings.Resolve(deal.Status)
	if mapping == nil {
		return domain.ExclusionUnmappedStatus
	}
	if mapping.Impact == carrierdomain.ImpactNegative {
		return domain.ExclusionNegativeImpact
	}
	if !deal.AnnualPremium.Valid {
		return domain.ExclusionNoPremium
	}
	return ""
}

func sharesFromSnapshots(snapshots []*ledgerdomain.HierarchySnapshot) []domain.Share {
	shares := make([]domain.Share, 0, len(snapshots))
	for _, snapshot := range snapshots {
		shares = append(shares, domain.Share{
			AgentID:    snapshot.AgentID,
			Level:      snapshot.Level,
			Percentage: snapshot.Percentage,
		})
	}
	return shares
}
