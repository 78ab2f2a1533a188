package service

import (
	"context"
	"strings"
	"time"

	"github.com/agentspace/agentspace/internal/agency/domain"
	pkgdb "github.com/agentspace/agentspace/pkg/db"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:  p.Log.Named("agency.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAgencyRequest) (domain.Agency, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Agency{}, domain.ErrInvalidName
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == "" {
		return domain.Agency{}, domain.ErrInvalidSlug
	}

	now := time.Now().UTC()
	agency := domain.Agency{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		Settings:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &agency); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Agency{}, domain.ErrSlugExists
		}
		return domain.Agency{}, err
	}

	return agency, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAgencyRequest) (domain.Agency, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Agency{}, domain.ErrInvalidID
	}

	agency, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Agency{}, err
	}
	if agency == nil {
		return domain.Agency{}, domain.ErrNotFound
	}
	return *agency, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAgencyRequest) (domain.Agency, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Agency{}, domain.ErrInvalidID
	}

	agency, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Agency{}, err
	}
	if agency == nil {
		return domain.Agency{}, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		agency.Name = name
	}
	if req.Settings != nil {
		agency.Settings = datatypes.JSONMap(req.Settings)
	}
	agency.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, agency); err != nil {
		return domain.Agency{}, err
	}
	return *agency, nil
}
