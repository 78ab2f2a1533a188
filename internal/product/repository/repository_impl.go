package repository

import (
	"context"
	"errors"

	"github.com/agentspace/agentspace/internal/product/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, carrierID *uuid.UUID) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if carrierID != nil {
		stmt = stmt.Where("carrier_id = ?", *carrierID)
	}
	var products []domain.Product
	if err := stmt.Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
