package service

import (
	"context"
	"strings"

	"github.com/agentspace/agentspace/internal/agencyctx"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	"github.com/agentspace/agentspace/internal/debt/domain"
	hierarchydomain "github.com/agentspace/agentspace/internal/hierarchy/domain"
	ledgerdomain "github.com/agentspace/agentspace/internal/ledger/domain"
	payoutdomain "github.com/agentspace/agentspace/internal/payout/domain"
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
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	dealRepo     dealdomain.Repository
	snapshotRepo ledgerdomain.Repository
	carrierRepo  carrierdomain.Repository
	hierarchy    hierarchydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("debt.service"),
		dealRepo:     p.DealRepo,
		snapshotRepo: p.SnapshotRepo,
		carrierRepo:  p.CarrierRepo,
		hierarchy:    p.Hierarchy,
	}
}

// Debt folds the vesting curve over every lapsed deal the agent earned
// on. Deals with unmapped statuses, no premium, or no configured rate
// for the agent owe nothing and are omitted entirely.
func (s *Service) Debt(ctx context.Context, req domain.DebtRequest) (domain.DebtResponse, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.DebtResponse{}, domain.ErrInvalidAgency
	}

	agentID := identity.AgentID
	if value := strings.TrimSpace(req.AgentID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return domain.DebtResponse{}, domain.ErrInvalidID
		}
		agentID = id
	}
	if agentID != identity.AgentID && !identity.IsAdmin {
		if err := s.authorizeAgent(ctx, agentID); err != nil {
			return domain.DebtResponse{}, err
		}
	}

	downline, err := s.hierarchy.Downline(ctx, agentID, 0)
	if err != nil {
		return domain.DebtResponse{}, err
	}
	writerIDs := make([]uuid.UUID, 0, len(downline)+1)
	writerIDs = append(writerIDs, agentID)
	for _, node := range downline {
		writerIDs = append(writerIDs, node.ID)
	}

	deals, err := s.dealRepo.ListAll(ctx, s.db, identity.AgencyID, dealdomain.ListDealFilter{AgentIDs: writerIDs})
	if err != nil {
		return domain.DebtResponse{}, err
	}

	dealIDs := make([]uuid.UUID, 0, len(deals))
	for _, deal := range deals {
		dealIDs = append(dealIDs, deal.ID)
	}
	snapshots, err := s.snapshotRepo.ListByDeals(ctx, s.db, identity.AgencyID, dealIDs)
	if err != nil {
		return domain.DebtResponse{}, err
	}
	snapshotsByDeal := make(map[uuid.UUID][]*ledgerdomain.HierarchySnapshot)
	for _, snapshot := range snapshots {
		snapshotsByDeal[snapshot.DealID] = append(snapshotsByDeal[snapshot.DealID], snapshot)
	}

	mappings := make(map[uuid.UUID]carrierdomain.MappingSet)

	resp := domain.DebtResponse{
		AgentID:   agentID,
		TotalDebt: decimal.Zero,
		PerDeal:   []domain.DealDebt{},
	}
	for _, deal := range deals {
		set, ok := mappings[deal.CarrierID]
		if !ok {
			carrierMappings, err := s.carrierRepo.ListStatusMappings(ctx, s.db, deal.CarrierID)
			if err != nil {
				return domain.DebtResponse{}, err
			}
			set = carrierdomain.NewMappingSet(carrierMappings)
			mappings[deal.CarrierID] = set
		}

		dealDebt, ok := s.dealDebt(deal, snapshotsByDeal[deal.ID], set, agentID)
		if !ok {
			continue
		}
		resp.PerDeal = append(resp.PerDeal, dealDebt)
		resp.TotalDebt = resp.TotalDebt.Add(dealDebt.DebtAmount)
	}
	return resp, nil
}

func (s *Service) dealDebt(deal *dealdomain.Deal, snapshots []*ledgerdomain.HierarchySnapshot, mappings carrierdomain.MappingSet, agentID uuid.UUID) (domain.DealDebt, bool) {
	mapping := mappings.Resolve(deal.Status)
	if mapping == nil || mapping.Impact != carrierdomain.ImpactNegative {
		return domain.DealDebt{}, false
	}
	if !deal.AnnualPremium.Valid || deal.PolicyEffectiveDate == nil {
		return domain.DealDebt{}, false
	}

	var agentPct decimal.Decimal
	hasRate := false
	total := decimal.Zero
	for _, snapshot := range snapshots {
		if !snapshot.Percentage.Valid {
			continue
		}
		total = total.Add(snapshot.Percentage.Decimal)
		if snapshot.AgentID == agentID {
			agentPct = snapshot.Percentage.Decimal
			hasRate = true
		}
	}
	if !hasRate || !total.IsPositive() {
		return domain.DealDebt{}, false
	}

	lapseDate := deal.UpdatedAt
	if deal.LapseDate != nil {
		lapseDate = *deal.LapseDate
	}
	daysActive := domain.DaysActive(*deal.PolicyEffectiveDate, lapseDate)

	original := payoutdomain.Pool(deal.AnnualPremium.Decimal).Mul(agentPct).Div(total)
	amount, isEarly := domain.Clawback(original, daysActive)

	return domain.DealDebt{
		DealID:       deal.ID,
		DebtAmount:   amount,
		DaysActive:   daysActive,
		IsEarlyLapse: isEarly,
	}, true
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
