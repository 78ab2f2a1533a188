package service

import (
	"context"
	"strings"
	"time"

	"github.com/agentspace/agentspace/internal/carrier/domain"
	pkgdb "github.com/agentspace/agentspace/pkg/db"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("carrier.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCarrierRequest) (domain.Carrier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Carrier{}, domain.ErrInvalidName
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Carrier{}, domain.ErrInvalidCode
	}

	now := time.Now().UTC()
	carrier := domain.Carrier{
		ID:        uuid.New(),
		Name:      name,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &carrier); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Carrier{}, domain.ErrCodeExists
		}
		return domain.Carrier{}, err
	}
	return carrier, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCarrierRequest) (domain.Carrier, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Carrier{}, domain.ErrInvalidID
	}

	carrier, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Carrier{}, err
	}
	if carrier == nil {
		return domain.Carrier{}, domain.ErrNotFound
	}
	return *carrier, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Carrier, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) UpsertStatusMapping(ctx context.Context, req domain.UpsertStatusMappingRequest) (domain.StatusMapping, error) {
	carrierID, err := uuid.Parse(strings.TrimSpace(req.CarrierID))
	if err != nil {
		return domain.StatusMapping{}, domain.ErrInvalidID
	}

	carrier, err := s.repo.FindByID(ctx, s.db, carrierID)
	if err != nil {
		return domain.StatusMapping{}, err
	}
	if carrier == nil {
		return domain.StatusMapping{}, domain.ErrNotFound
	}

	rawStatus := strings.TrimSpace(req.RawStatus)
	if rawStatus == "" {
		return domain.StatusMapping{}, domain.ErrInvalidStatus
	}

	impact := strings.ToLower(strings.TrimSpace(req.Impact))
	switch impact {
	case domain.ImpactPositive, domain.ImpactNegative, domain.ImpactNeutral:
	default:
		return domain.StatusMapping{}, domain.ErrInvalidImpact
	}

	var placement *string
	if req.Placement != nil {
		value := strings.ToLower(strings.TrimSpace(*req.Placement))
		switch value {
		case domain.PlacementPositive, domain.PlacementNegative:
			placement = &value
		case "":
		default:
			return domain.StatusMapping{}, domain.ErrInvalidPlacement
		}
	}

	standardized := strings.TrimSpace(req.StandardizedStatus)
	if standardized == "" {
		standardized = rawStatus
	}

	now := time.Now().UTC()
	mapping := domain.StatusMapping{
		ID:                 uuid.New(),
		CarrierID:          carrierID,
		RawStatus:          rawStatus,
		StandardizedStatus: standardized,
		Impact:             impact,
		Placement:          placement,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.UpsertStatusMapping(ctx, s.db, &mapping); err != nil {
		return domain.StatusMapping{}, err
	}
	return mapping, nil
}

func (s *Service) ListStatusMappings(ctx context.Context, req domain.ListStatusMappingsRequest) ([]domain.StatusMapping, error) {
	carrierID, err := uuid.Parse(strings.TrimSpace(req.CarrierID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListStatusMappings(ctx, s.db, carrierID)
}

func (s *Service) ResolveStatus(ctx context.Context, carrierID, rawStatus string) (*domain.StatusMapping, error) {
	id, err := uuid.Parse(strings.TrimSpace(carrierID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	rawStatus = strings.TrimSpace(rawStatus)
	if rawStatus == "" {
		return nil, nil
	}
	return s.repo.FindStatusMapping(ctx, s.db, id, rawStatus)
}
