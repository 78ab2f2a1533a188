package seed

import (
	"context"
	"errors"
	"time"

	agencydomain "github.com/agentspace/agentspace/internal/agency/domain"
	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	commissiondomain "github.com/agentspace/agentspace/internal/commission/domain"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoAgencyName = "Demo Agency"
	demoAgencySlug = "demo"
)

// EnsureDemoAgency seeds a small working agency for local development:
// three positions with rates, an admin over a three-level agent chain,
// one carrier with status mappings, and one product. Safe to re-run.
func EnsureDemoAgency(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		agency, created, err := ensureAgency(ctx, tx)
		if err != nil || !created {
			return err
		}

		now := time.Now().UTC()

		positions := []positiondomain.Position{
			{ID: uuid.New(), AgencyID: agency.ID, Name: "Agency Owner", Level: 3, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), AgencyID: agency.ID, Name: "Manager", Level: 2, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), AgencyID: agency.ID, Name: "Producer", Level: 1, CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.WithContext(ctx).Create(&positions).Error; err != nil {
			return err
		}

		owner := agentdomain.Agent{
			ID: uuid.New(), AgencyID: agency.ID, PositionID: &positions[0].ID,
			FirstName: "Olive", LastName: "Owner", Email: "owner@demo.agentspace.dev",
			Role: agentdomain.RoleAdmin, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
		manager := agentdomain.Agent{
			ID: uuid.New(), AgencyID: agency.ID, UplineID: &owner.ID, PositionID: &positions[1].ID,
			FirstName: "Marty", LastName: "Manager", Email: "manager@demo.agentspace.dev",
			Role: agentdomain.RoleAgent, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
		producer := agentdomain.Agent{
			ID: uuid.New(), AgencyID: agency.ID, UplineID: &manager.ID, PositionID: &positions[2].ID,
			FirstName: "Pat", LastName: "Producer", Email: "producer@demo.agentspace.dev",
			Role: agentdomain.RoleAgent, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
		agents := []agentdomain.Agent{owner, manager, producer}
		if err := tx.WithContext(ctx).Create(&agents).Error; err != nil {
			return err
		}

		carrier := carrierdomain.Carrier{
			ID: uuid.New(), Name: "Acme Life", Code: "ACME", CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&carrier).Error; err != nil {
			return err
		}

		positive := carrierdomain.PlacementPositive
		negative := carrierdomain.PlacementNegative
		mappings := []carrierdomain.StatusMapping{
			{ID: uuid.New(), CarrierID: carrier.ID, RawStatus: "Active", StandardizedStatus: "active", Impact: carrierdomain.ImpactPositive, Placement: &positive, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), CarrierID: carrier.ID, RawStatus: "Pending", StandardizedStatus: "pending", Impact: carrierdomain.ImpactNeutral, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), CarrierID: carrier.ID, RawStatus: "Lapsed", StandardizedStatus: "lapsed", Impact: carrierdomain.ImpactNegative, Placement: &negative, CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), CarrierID: carrier.ID, RawStatus: "Declined", StandardizedStatus: "declined", Impact: carrierdomain.ImpactNegative, Placement: &negative, CreatedAt: now, UpdatedAt: now},
		}
		if err := tx.WithContext(ctx).Create(&mappings).Error; err != nil {
			return err
		}

		product := productdomain.Product{
			ID: uuid.New(), CarrierID: carrier.ID, Name: "Term Life 20", Code: "ACME-TL20",
			CreatedAt: now, UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}

		rates := []commissiondomain.CommissionRate{
			{ID: uuid.New(), PositionID: positions[0].ID, ProductID: product.ID, Percentage: decimal.NewFromInt(10), CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), PositionID: positions[1].ID, ProductID: product.ID, Percentage: decimal.NewFromInt(20), CreatedAt: now, UpdatedAt: now},
			{ID: uuid.New(), PositionID: positions[2].ID, ProductID: product.ID, Percentage: decimal.NewFromInt(50), CreatedAt: now, UpdatedAt: now},
		}
		return tx.WithContext(ctx).Create(&rates).Error
	})
}

func ensureAgency(ctx context.Context, tx *gorm.DB) (agencydomain.Agency, bool, error) {
	var agency agencydomain.Agency
	err := tx.WithContext(ctx).Where("slug = ?", demoAgencySlug).First(&agency).Error
	if err == nil {
		return agency, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return agencydomain.Agency{}, false, err
	}

	now := time.Now().UTC()
	agency = agencydomain.Agency{
		ID:        uuid.New(),
		Name:      demoAgencyName,
		Slug:      demoAgencySlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&agency).Error; err != nil {
		return agencydomain.Agency{}, false, err
	}
	return agency, true, nil
}
