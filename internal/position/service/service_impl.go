package service

import (
	"context"
	"strings"
	"time"

	"github.com/agentspace/agentspace/internal/agencyctx"
	"github.com/agentspace/agentspace/internal/position/domain"
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
		log:  p.Log.Named("position.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePositionRequest) (domain.Position, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return domain.Position{}, domain.ErrInvalidAgency
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Position{}, domain.ErrInvalidName
	}
	if req.Level < 0 {
		return domain.Position{}, domain.ErrInvalidLevel
	}

	now := time.Now().UTC()
	position := domain.Position{
		ID:        uuid.New(),
		AgencyID:  agencyID,
		Name:      name,
		Level:     req.Level,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &position); err != nil {
		return domain.Position{}, err
	}
	return position, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePositionRequest) (domain.Position, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return domain.Position{}, domain.ErrInvalidAgency
	}

	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Position{}, domain.ErrInvalidID
	}

	position, err := s.repo.FindByID(ctx, s.db, agencyID, id)
	if err != nil {
		return domain.Position{}, err
	}
	if position == nil {
		return domain.Position{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		position.Name = name
	}
	if req.Level != nil {
		if *req.Level < 0 {
			return domain.Position{}, domain.ErrInvalidLevel
		}
		position.Level = *req.Level
	}
	position.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, position); err != nil {
		return domain.Position{}, err
	}
	return *position, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPositionRequest) (domain.Position, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return domain.Position{}, domain.ErrInvalidAgency
	}

	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Position{}, domain.ErrInvalidID
	}

	position, err := s.repo.FindByID(ctx, s.db, agencyID, id)
	if err != nil {
		return domain.Position{}, err
	}
	if position == nil {
		return domain.Position{}, domain.ErrNotFound
	}
	return *position, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Position, error) {
	agencyID, ok := agencyctx.AgencyIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidAgency
	}
	return s.repo.ListByAgency(ctx, s.db, agencyID)
}
