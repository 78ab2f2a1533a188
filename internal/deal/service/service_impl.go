package service

import (
	"context"
	"strings"
	"time"

	"github.com/agentspace/agentspace/internal/agencyctx"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	commissiondomain "github.com/agentspace/agentspace/internal/commission/domain"
	"github.com/agentspace/agentspace/internal/deal/domain"
	hierarchydomain "github.com/agentspace/agentspace/internal/hierarchy/domain"
	ledgerdomain "github.com/agentspace/agentspace/internal/ledger/domain"
	obsmetrics "github.com/agentspace/agentspace/internal/observability/metrics"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
	"github.com/agentspace/agentspace/pkg/db/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Repo           domain.Repository
	SnapshotRepo   ledgerdomain.Repository
	HierarchyRepo  hierarchydomain.Repository
	Hierarchy      hierarchydomain.Service
	CarrierRepo    carrierdomain.Repository
	ProductRepo    productdomain.Repository
	CommissionRepo commissiondomain.Repository
	Metrics        *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	repo           domain.Repository
	snapshotRepo   ledgerdomain.Repository
	hierarchyRepo  hierarchydomain.Repository
	hierarchy      hierarchydomain.Service
	carrierRepo    carrierdomain.Repository
	productRepo    productdomain.Repository
	commissionRepo commissiondomain.Repository
	metrics        *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("deal.service"),
		repo:           p.Repo,
		snapshotRepo:   p.SnapshotRepo,
		hierarchyRepo:  p.HierarchyRepo,
		hierarchy:      p.Hierarchy,
		carrierRepo:    p.CarrierRepo,
		productRepo:    p.ProductRepo,
		commissionRepo: p.CommissionRepo,
		metrics:        p.Metrics,
	}
}

// Create inserts the deal and its full hierarchy snapshot set in one
// transaction. A deal without its ledger rows is never observable.
func (s *Service) Create(ctx context.Context, req domain.CreateDealRequest) (domain.DealWithSnapshots, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.DealWithSnapshots{}, domain.ErrInvalidAgency
	}

	agentID := identity.AgentID
	if value := strings.TrimSpace(req.AgentID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return domain.DealWithSnapshots{}, domain.ErrInvalidAgent
		}
		agentID = id
	}
	if agentID != identity.AgentID && !identity.IsAdmin {
		if err := s.authorizeAgent(ctx, agentID); err != nil {
			return domain.DealWithSnapshots{}, err
		}
	}

	carrierID, err := uuid.Parse(strings.TrimSpace(req.CarrierID))
	if err != nil {
		return domain.DealWithSnapshots{}, domain.ErrInvalidCarrier
	}
	carrier, err := s.carrierRepo.FindByID(ctx, s.db, carrierID)
	if err != nil {
		return domain.DealWithSnapshots{}, err
	}
	if carrier == nil {
		return domain.DealWithSnapshots{}, domain.ErrInvalidCarrier
	}

	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return domain.DealWithSnapshots{}, domain.ErrInvalidProduct
	}
	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return domain.DealWithSnapshots{}, err
	}
	if product == nil || product.CarrierID != carrierID {
		return domain.DealWithSnapshots{}, domain.ErrInvalidProduct
	}

	firstName := strings.TrimSpace(req.ClientFirstName)
	lastName := strings.TrimSpace(req.ClientLastName)
	if firstName == "" || lastName == "" {
		return domain.DealWithSnapshots{}, domain.ErrInvalidClient
	}

	premium, err := parsePremium(req.AnnualPremium)
	if err != nil {
		return domain.DealWithSnapshots{}, err
	}

	now := time.Now().UTC()
	submissionDate := now
	if req.SubmissionDate != nil {
		submissionDate = req.SubmissionDate.UTC()
	}

	deal := domain.Deal{
		ID:                  uuid.New(),
		AgencyID:            identity.AgencyID,
		AgentID:             agentID,
		CarrierID:           carrierID,
		ProductID:           productID,
		ClientFirstName:     firstName,
		ClientLastName:      lastName,
		ClientPhone:         strings.TrimSpace(req.ClientPhone),
		ClientState:         strings.ToUpper(strings.TrimSpace(req.ClientState)),
		ClientDateOfBirth:   req.ClientDateOfBirth,
		AnnualPremium:       premium,
		Status:              strings.TrimSpace(req.Status),
		PolicyEffectiveDate: req.PolicyEffectiveDate,
		SubmissionDate:      submissionDate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.resolveStatus(ctx, &deal, now)

	var snapshots []*ledgerdomain.HierarchySnapshot
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if deal.ClientPhone != "" {
			existing, err := s.repo.FindByClientPhone(ctx, tx, identity.AgencyID, deal.ClientPhone)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrClientPhoneExists
			}
		}

		chain, err := s.captureChain(ctx, tx, identity.AgencyID, agentID)
		if err != nil {
			return err
		}

		snapshots, err = s.buildSnapshots(ctx, tx, &deal, chain, now)
		if err != nil {
			return err
		}

		if err := s.repo.Insert(ctx, tx, &deal); err != nil {
			return err
		}
		return s.snapshotRepo.InsertAll(ctx, tx, snapshots)
	})
	if err != nil {
		return domain.DealWithSnapshots{}, err
	}

	s.metrics.RecordDealCreated(ctx, identity.AgencyID.String())
	s.metrics.RecordSnapshotsCaptured(ctx, identity.AgencyID.String(), len(snapshots))
	s.log.Info("deal created",
		zap.String("deal_id", deal.ID.String()),
		zap.String("agent_id", agentID.String()),
		zap.Int("snapshot_count", len(snapshots)),
	)

	return domain.DealWithSnapshots{Deal: deal, Snapshots: snapshots}, nil
}

// captureChain loads the agency graph inside the transaction and
// returns the writing agent at level 0 followed by its upline chain.
func (s *Service) captureChain(ctx context.Context, tx *gorm.DB, agencyID, agentID uuid.UUID) ([]hierarchydomain.ChainEntry, error) {
	nodes, err := s.hierarchyRepo.ListNodes(ctx, tx, agencyID)
	if err != nil {
		return nil, err
	}
	graph := hierarchydomain.NewGraph(nodes)

	self, ok := graph.Node(agentID)
	if !ok {
		return nil, domain.ErrInvalidAgent
	}
	if self.Role == hierarchydomain.RoleClient {
		return nil, domain.ErrInvalidAgent
	}

	uplines, truncated := graph.UplineChain(agentID)
	if truncated {
		s.log.Warn("upline chain hit depth ceiling during snapshot capture",
			zap.String("agency_id", agencyID.String()),
			zap.String("agent_id", agentID.String()),
		)
		s.metrics.RecordDepthCeilingHit(ctx, agencyID.String())
	}

	chain := make([]hierarchydomain.ChainEntry, 0, len(uplines)+1)
	chain = append(chain, hierarchydomain.ChainEntry{
		AgentID:    self.ID,
		PositionID: self.PositionID,
		Level:      0,
	})
	chain = append(chain, uplines...)
	return chain, nil
}

func (s *Service) buildSnapshots(ctx context.Context, tx *gorm.DB, deal *domain.Deal, chain []hierarchydomain.ChainEntry, now time.Time) ([]*ledgerdomain.HierarchySnapshot, error) {
	positionIDs := make([]uuid.UUID, 0, len(chain))
	for _, entry := range chain {
		if entry.PositionID != nil {
			positionIDs = append(positionIDs, *entry.PositionID)
		}
	}

	rates, err := s.commissionRepo.RatesFor(ctx, tx, positionIDs, deal.ProductID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*ledgerdomain.HierarchySnapshot, 0, len(chain))
	for _, entry := range chain {
		var percentage decimal.NullDecimal
		if entry.PositionID != nil {
			if rate, ok := rates[*entry.PositionID]; ok {
				percentage = decimal.NewNullDecimal(rate)
			}
		}
		snapshots = append(snapshots, &ledgerdomain.HierarchySnapshot{
			ID:         uuid.New(),
			DealID:     deal.ID,
			AgencyID:   deal.AgencyID,
			AgentID:    entry.AgentID,
			PositionID: entry.PositionID,
			Level:      entry.Level,
			Percentage: percentage,
			CreatedAt:  now,
		})
	}
	return snapshots, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateDealRequest) (domain.Deal, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.Deal{}, domain.ErrInvalidAgency
	}

	deal, err := s.findAuthorized(ctx, identity, req.ID)
	if err != nil {
		return domain.Deal{}, err
	}

	if firstName := strings.TrimSpace(req.ClientFirstName); firstName != "" {
		deal.ClientFirstName = firstName
	}
	if lastName := strings.TrimSpace(req.ClientLastName); lastName != "" {
		deal.ClientLastName = lastName
	}
	if state := strings.TrimSpace(req.ClientState); state != "" {
		deal.ClientState = strings.ToUpper(state)
	}
	if req.ClientDateOfBirth != nil {
		deal.ClientDateOfBirth = req.ClientDateOfBirth
	}
	if phone := strings.TrimSpace(req.ClientPhone); phone != "" && phone != deal.ClientPhone {
		existing, err := s.repo.FindByClientPhone(ctx, s.db, identity.AgencyID, phone)
		if err != nil {
			return domain.Deal{}, err
		}
		if existing != nil && existing.ID != deal.ID {
			return domain.Deal{}, domain.ErrClientPhoneExists
		}
		deal.ClientPhone = phone
	}
	if req.AnnualPremium != nil {
		premium, err := parsePremium(req.AnnualPremium)
		if err != nil {
			return domain.Deal{}, err
		}
		deal.AnnualPremium = premium
	}
	if req.PolicyEffectiveDate != nil {
		deal.PolicyEffectiveDate = req.PolicyEffectiveDate
	}
	deal.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, deal); err != nil {
		return domain.Deal{}, err
	}
	return *deal, nil
}

// UpdateStatus records the raw carrier status and re-derives the
// standardized status. Snapshots are untouched.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateDealStatusRequest) (domain.Deal, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.Deal{}, domain.ErrInvalidAgency
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		return domain.Deal{}, domain.ErrInvalidStatus
	}

	deal, err := s.findAuthorized(ctx, identity, req.ID)
	if err != nil {
		return domain.Deal{}, err
	}

	now := time.Now().UTC()
	deal.Status = status
	deal.StatusStandardized = ""
	deal.LapseDate = nil
	if req.LapseDate != nil {
		lapse := req.LapseDate.UTC()
		deal.LapseDate = &lapse
	}
	s.resolveStatus(ctx, deal, now)
	deal.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, deal); err != nil {
		return domain.Deal{}, err
	}
	return *deal, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetDealRequest) (domain.DealWithSnapshots, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.DealWithSnapshots{}, domain.ErrInvalidAgency
	}

	deal, err := s.findAuthorized(ctx, identity, req.ID)
	if err != nil {
		return domain.DealWithSnapshots{}, err
	}

	snapshots, err := s.snapshotRepo.ListByDeal(ctx, s.db, identity.AgencyID, deal.ID)
	if err != nil {
		return domain.DealWithSnapshots{}, err
	}
	return domain.DealWithSnapshots{Deal: *deal, Snapshots: snapshots}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListDealRequest) (domain.ListDealResponse, error) {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.ListDealResponse{}, domain.ErrInvalidAgency
	}

	visible, err := s.hierarchy.VisibleAgentIDs(ctx, req.IncludeFullAgency)
	if err != nil {
		return domain.ListDealResponse{}, err
	}

	filter := domain.ListDealFilter{
		Status:        strings.ToLower(strings.TrimSpace(req.Status)),
		SubmittedFrom: req.SubmittedFrom,
		SubmittedTo:   req.SubmittedTo,
		AgentIDs:      visible,
	}
	if value := strings.TrimSpace(req.CarrierID); value != "" {
		carrierID, err := uuid.Parse(value)
		if err != nil {
			return domain.ListDealResponse{}, domain.ErrInvalidCarrier
		}
		filter.CarrierID = &carrierID
	}
	if value := strings.TrimSpace(req.ProductID); value != "" {
		productID, err := uuid.Parse(value)
		if err != nil {
			return domain.ListDealResponse{}, domain.ErrInvalidProduct
		}
		filter.ProductID = &productID
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
		return domain.ListDealResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(deal *domain.Deal) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        deal.ID.String(),
			CreatedAt: deal.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	deals := make([]domain.Deal, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		deals = append(deals, *item)
	}

	resp := domain.ListDealResponse{Deals: deals}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// Delete removes the deal and its snapshot rows together. This is the
// only path that removes ledger rows.
func (s *Service) Delete(ctx context.Context, req domain.DeleteDealRequest) error {
	identity, ok := agencyctx.IdentityFromContext(ctx)
	if !ok {
		return domain.ErrInvalidAgency
	}
	if !identity.IsAdmin {
		return domain.ErrForbidden
	}

	deal, err := s.findAuthorized(ctx, identity, req.ID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.snapshotRepo.DeleteByDeal(ctx, tx, identity.AgencyID, deal.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, identity.AgencyID, deal.ID)
	})
}

func (s *Service) findAuthorized(ctx context.Context, identity agencyctx.Identity, rawID string) (*domain.Deal, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	deal, err := s.repo.FindByID(ctx, s.db, identity.AgencyID, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, domain.ErrNotFound
	}
	if !identity.IsAdmin && deal.AgentID != identity.AgentID {
		if err := s.authorizeAgent(ctx, deal.AgentID); err != nil {
			return nil, err
		}
	}
	return deal, nil
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

// resolveStatus derives the standardized status from the carrier's
// mappings. Unmapped statuses stay raw-only; downstream computations
// exclude them. A negative impact stamps the lapse date when absent.
func (s *Service) resolveStatus(ctx context.Context, deal *domain.Deal, now time.Time) {
	if deal.Status == "" {
		return
	}
	mapping, err := s.carrierRepo.FindStatusMapping(ctx, s.db, deal.CarrierID, deal.Status)
	if err != nil {
		s.log.Warn("status mapping lookup failed",
			zap.String("deal_id", deal.ID.String()),
			zap.Error(err),
		)
		return
	}
	if mapping == nil {
		return
	}
	deal.StatusStandardized = mapping.StandardizedStatus
	if mapping.Impact == carrierdomain.ImpactNegative && deal.LapseDate == nil {
		lapse := now
		deal.LapseDate = &lapse
	}
}

func parsePremium(value *float64) (decimal.NullDecimal, error) {
	if value == nil {
		return decimal.NullDecimal{}, nil
	}
	if *value < 0 {
		return decimal.NullDecimal{}, domain.ErrInvalidPremium
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*value)), nil
}
