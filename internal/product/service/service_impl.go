package service

import (
	"context"
	"strings"
	"time"

	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	"github.com/agentspace/agentspace/internal/product/domain"
	pkgdb "github.com/agentspace/agentspace/pkg/db"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	CarrierRepo carrierdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	carrierRepo carrierdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("product.service"),
		repo:        p.Repo,
		carrierRepo: p.CarrierRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	carrierID, err := uuid.Parse(strings.TrimSpace(req.CarrierID))
	if err != nil {
		return domain.Product{}, domain.ErrInvalidCarrier
	}
	carrier, err := s.carrierRepo.FindByID(ctx, s.db, carrierID)
	if err != nil {
		return domain.Product{}, err
	}
	if carrier == nil {
		return domain.Product{}, domain.ErrInvalidCarrier
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Product{}, domain.ErrInvalidCode
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:        uuid.New(),
		CarrierID: carrierID,
		Name:      name,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrCodeExists
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetProductRequest) (domain.Product, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Product{}, domain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) ([]domain.Product, error) {
	var carrierID *uuid.UUID
	if value := strings.TrimSpace(req.CarrierID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, domain.ErrInvalidCarrier
		}
		carrierID = &id
	}
	return s.repo.List(ctx, s.db, carrierID)
}
