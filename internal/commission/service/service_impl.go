package service

import (
	"context"
	"strings"
	"time"

	"github.com/agentspace/agentspace/internal/agencyctx"
	"github.com/agentspace/agentspace/internal/commission/domain"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
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
	Repo         domain.Repository
	PositionRepo positiondomain.Repository
	ProductRepo  productdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	positionRepo positiondomain.Repository
	productRepo  productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("commission.service"),
		repo:         p.Repo,
		positionRepo: p.PositionRepo,
		productRepo:  p.ProductRepo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRateRequest) (domain.CommissionRate, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return domain.CommissionRate{}, domain.ErrInvalidPosition
	}

	positionID, err := uuid.Parse(strings.TrimSpace(req.PositionID))
	if err != nil {
		return domain.CommissionRate{}, domain.ErrInvalidPosition
	}
	position, err := s.positionRepo.FindByID(ctx, s.db, agencyID, positionID)
	if err != nil {
		return domain.CommissionRate{}, err
	}
	if position == nil {
		return domain.CommissionRate{}, domain.ErrInvalidPosition
	}

	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return domain.CommissionRate{}, domain.ErrInvalidProduct
	}
	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return domain.CommissionRate{}, err
	}
	if product == nil {
		return domain.CommissionRate{}, domain.ErrInvalidProduct
	}

	percentage, err := decimal.NewFromString(strings.TrimSpace(req.Percentage))
	if err != nil {
		return domain.CommissionRate{}, domain.ErrInvalidPercentage
	}
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return domain.CommissionRate{}, domain.ErrInvalidPercentage
	}

	now := time.Now().UTC()
	rate := domain.CommissionRate{
		ID:         uuid.New(),
		PositionID: positionID,
		ProductID:  productID,
		Percentage: percentage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Upsert(ctx, s.db, &rate); err != nil {
		return domain.CommissionRate{}, err
	}
	return rate, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRatesRequest) ([]domain.CommissionRate, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPosition
	}

	if value := strings.TrimSpace(req.ProductID); value != "" {
		productID, err := uuid.Parse(value)
		if err != nil {
			return nil, domain.ErrInvalidProduct
		}
		return s.repo.ListByProduct(ctx, s.db, productID)
	}

	positions, err := s.positionRepo.ListByAgency(ctx, s.db, agencyID)
	if err != nil {
		return nil, err
	}
	positionIDs := make([]uuid.UUID, 0, len(positions))
	for _, position := range positions {
		positionIDs = append(positionIDs, position.ID)
	}
	return s.repo.ListByPositions(ctx, s.db, positionIDs)
}
