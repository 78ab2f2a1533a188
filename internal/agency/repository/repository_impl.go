package repository

import (
	"context"
	"errors"

	"github.com/agentspace/agentspace/internal/agency/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, agency *domain.Agency) error {
	return db.WithContext(ctx).Create(agency).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Agency, error) {
	var agency domain.Agency
	err := db.WithContext(ctx).First(&agency, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Agency, error) {
	var agency domain.Agency
	err := db.WithContext(ctx).First(&agency, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, agency *domain.Agency) error {
	return db.WithContext(ctx).Save(agency).Error
}
