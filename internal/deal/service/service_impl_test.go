package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	agencydomain "github.com/agentspace/agentspace/internal/agency/domain"
	"github.com/agentspace/agentspace/internal/agencyctx"
	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	carrierrepository "github.com/agentspace/agentspace/internal/carrier/repository"
	commissiondomain "github.com/agentspace/agentspace/internal/commission/domain"
	commissionrepository "github.com/agentspace/agentspace/internal/commission/repository"
	"github.com/agentspace/agentspace/internal/deal/domain"
	dealrepository "github.com/agentspace/agentspace/internal/deal/repository"
	hierarchyrepository "github.com/agentspace/agentspace/internal/hierarchy/repository"
	hierarchyservice "github.com/agentspace/agentspace/internal/hierarchy/service"
	ledgerdomain "github.com/agentspace/agentspace/internal/ledger/domain"
	ledgerrepository "github.com/agentspace/agentspace/internal/ledger/repository"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	productdomain "github.com/agentspace/agentspace/internal/product/domain"
	productrepository "github.com/agentspace/agentspace/internal/product/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db *gorm.DB

	svc domain.Service

	agencyID uuid.UUID
	owner    agentdomain.Agent
	manager  agentdomain.Agent
	producer agentdomain.Agent
	client   agentdomain.Agent

	carrier carrierdomain.Carrier
	product productdomain.Product

	ownerPosition    positiondomain.Position
	managerPosition  positiondomain.Position
	producerPosition positiondomain.Position
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&agencydomain.Agency{},
		&positiondomain.Position{},
		&agentdomain.Agent{},
		&carrierdomain.Carrier{},
		&carrierdomain.StatusMapping{},
		&productdomain.Product{},
		&commissiondomain.CommissionRate{},
		&domain.Deal{},
		&ledgerdomain.HierarchySnapshot{},
	))
	return db
}

// setupDealTest seeds a three-level agency: owner (admin, 10%) over
// manager (20%) over producer (50%), one carrier with mapped statuses
// and one product.
func setupDealTest(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	f := &fixture{db: db, agencyID: uuid.New()}
	now := time.Now().UTC()

	require.NoError(t, db.Create(&agencydomain.Agency{
		ID: f.agencyID, Name: "Test Agency", Slug: "test-agency",
	}).Error)

	f.ownerPosition = positiondomain.Position{ID: uuid.New(), AgencyID: f.agencyID, Name: "Agency Owner", Level: 3}
	f.managerPosition = positiondomain.Position{ID: uuid.New(), AgencyID: f.agencyID, Name: "Manager", Level: 2}
	f.producerPosition = positiondomain.Position{ID: uuid.New(), AgencyID: f.agencyID, Name: "Producer", Level: 1}
	require.NoError(t, db.Create([]*positiondomain.Position{&f.ownerPosition, &f.managerPosition, &f.producerPosition}).Error)

	f.owner = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, PositionID: &f.ownerPosition.ID,
		FirstName: "Olive", LastName: "Owner", Email: "olive@test.dev",
		Role: agentdomain.RoleAdmin, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	f.manager = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.owner.ID, PositionID: &f.managerPosition.ID,
		FirstName: "Marty", LastName: "Manager", Email: "marty@test.dev",
		Role: agentdomain.RoleAgent, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	f.producer = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.manager.ID, PositionID: &f.producerPosition.ID,
		FirstName: "Pat", LastName: "Producer", Email: "pat@test.dev",
		Role: agentdomain.RoleAgent, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	f.client = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.producer.ID,
		FirstName: "Cleo", LastName: "Client", Email: "cleo@test.dev",
		Role: agentdomain.RoleClient, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, db.Create([]*agentdomain.Agent{&f.owner, &f.manager, &f.producer, &f.client}).Error)

	f.carrier = carrierdomain.Carrier{ID: uuid.New(), Name: "Acme Life", Code: "ACME"}
	require.NoError(t, db.Create(&f.carrier).Error)

	placed := carrierdomain.PlacementPositive
	notPlaced := carrierdomain.PlacementNegative
	mappings := []*carrierdomain.StatusMapping{
		{ID: uuid.New(), CarrierID: f.carrier.ID, RawStatus: "Active", StandardizedStatus: "active", Impact: carrierdomain.ImpactPositive, Placement: &placed},
		{ID: uuid.New(), CarrierID: f.carrier.ID, RawStatus: "Pending", StandardizedStatus: "pending", Impact: carrierdomain.ImpactNeutral},
		{ID: uuid.New(), CarrierID: f.carrier.ID, RawStatus: "Lapsed", StandardizedStatus: "lapsed", Impact: carrierdomain.ImpactNegative, Placement: &notPlaced},
	}
	require.NoError(t, db.Create(mappings).Error)

	f.product = productdomain.Product{ID: uuid.New(), CarrierID: f.carrier.ID, Name: "Term Life 20", Code: "ACME-TL20"}
	require.NoError(t, db.Create(&f.product).Error)

	rates := []*commissiondomain.CommissionRate{
		{ID: uuid.New(), PositionID: f.ownerPosition.ID, ProductID: f.product.ID, Percentage: decimal.NewFromInt(10)},
		{ID: uuid.New(), PositionID: f.managerPosition.ID, ProductID: f.product.ID, Percentage: decimal.NewFromInt(20)},
		{ID: uuid.New(), PositionID: f.producerPosition.ID, ProductID: f.product.ID, Percentage: decimal.NewFromInt(50)},
	}
	require.NoError(t, db.Create(rates).Error)

	log := zap.NewNop()
	hierarchy := hierarchyservice.New(hierarchyservice.Params{
		DB: db, Log: log, Repo: hierarchyrepository.Provide(),
	})
	f.svc = New(Params{
		DB:             db,
		Log:            log,
		Repo:           dealrepository.Provide(),
		SnapshotRepo:   ledgerrepository.Provide(),
		HierarchyRepo:  hierarchyrepository.Provide(),
		Hierarchy:      hierarchy,
		CarrierRepo:    carrierrepository.Provide(),
		ProductRepo:    productrepository.Provide(),
		CommissionRepo: commissionrepository.Provide(),
	})
	return f
}

func (f *fixture) ctxFor(agent agentdomain.Agent) context.Context {
	return agencyctx.WithIdentity(context.Background(), agencyctx.Identity{
		AgentID:  agent.ID,
		AgencyID: f.agencyID,
		IsAdmin:  agent.Role == agentdomain.RoleAdmin,
	})
}

func (f *fixture) createRequest() domain.CreateDealRequest {
	return domain.CreateDealRequest{
		CarrierID:       f.carrier.ID.String(),
		ProductID:       f.product.ID.String(),
		ClientFirstName: "Jane",
		ClientLastName:  "Doe",
		ClientPhone:     "555-0100",
		ClientState:     "tx",
		AnnualPremium:   floatPtr(1200),
		Status:          "Active",
	}
}

func TestCreateDealCapturesHierarchySnapshots(t *testing.T) {
	f := setupDealTest(t)

	result, err := f.svc.Create(f.ctxFor(f.producer), f.createRequest())
	require.NoError(t, err)
	require.Len(t, result.Snapshots, 3)

	assert.Equal(t, "active", result.Deal.StatusStandardized)
	assert.Equal(t, "TX", result.Deal.ClientState)

	byLevel := make(map[int]*ledgerdomain.HierarchySnapshot, 3)
	for _, snapshot := range result.Snapshots {
		byLevel[snapshot.Level] = snapshot
	}

	require.NotNil(t, byLevel[0])
	assert.Equal(t, f.producer.ID, byLevel[0].AgentID)
	require.True(t, byLevel[0].Percentage.Valid)
	assert.True(t, byLevel[0].Percentage.Decimal.Equal(decimal.NewFromInt(50)))

	require.NotNil(t, byLevel[1])
	assert.Equal(t, f.manager.ID, byLevel[1].AgentID)
	assert.True(t, byLevel[1].Percentage.Decimal.Equal(decimal.NewFromInt(20)))

	require.NotNil(t, byLevel[2])
	assert.Equal(t, f.owner.ID, byLevel[2].AgentID)
	assert.True(t, byLevel[2].Percentage.Decimal.Equal(decimal.NewFromInt(10)))
}

func TestCreateDealSnapshotNullPercentageWithoutRate(t *testing.T) {
	f := setupDealTest(t)

	// No rate configured for the manager position on this product.
	err := f.db.Where("position_id = ?", f.managerPosition.ID).Delete(&commissiondomain.CommissionRate{}).Error
	require.NoError(t, err)

	result, err := f.svc.Create(f.ctxFor(f.producer), f.createRequest())
	require.NoError(t, err)

	for _, snapshot := range result.Snapshots {
		if snapshot.AgentID == f.manager.ID {
			assert.False(t, snapshot.Percentage.Valid)
		} else {
			assert.True(t, snapshot.Percentage.Valid)
		}
	}
}

func TestSnapshotsImmutableAfterRateChange(t *testing.T) {
	f := setupDealTest(t)
	ctx := f.ctxFor(f.producer)

	result, err := f.svc.Create(ctx, f.createRequest())
	require.NoError(t, err)

	err = f.db.Model(&commissiondomain.CommissionRate{}).
		Where("position_id = ?", f.producerPosition.ID).
		Update("percentage", decimal.NewFromInt(75)).Error
	require.NoError(t, err)

	fetched, err := f.svc.GetByID(ctx, domain.GetDealRequest{ID: result.Deal.ID.String()})
	require.NoError(t, err)
	require.Len(t, fetched.Snapshots, 3)

	for _, snapshot := range fetched.Snapshots {
		if snapshot.Level == 0 {
			assert.True(t, snapshot.Percentage.Decimal.Equal(decimal.NewFromInt(50)),
				"snapshot must keep the rate captured at write time")
		}
	}
}

func TestCreateDealDuplicateClientPhone(t *testing.T) {
	f := setupDealTest(t)
	ctx := f.ctxFor(f.producer)

	_, err := f.svc.Create(ctx, f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.createRequest())
	assert.ErrorIs(t, err, domain.ErrClientPhoneExists)

	var count int64
	require.NoError(t, f.db.Model(&domain.Deal{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateDealClientCannotWrite(t *testing.T) {
	f := setupDealTest(t)

	req := f.createRequest()
	req.AgentID = f.client.ID.String()

	_, err := f.svc.Create(f.ctxFor(f.owner), req)
	assert.ErrorIs(t, err, domain.ErrInvalidAgent)
}

func TestCreateDealOutsideDownlineForbidden(t *testing.T) {
	f := setupDealTest(t)

	req := f.createRequest()
	req.AgentID = f.manager.ID.String()

	_, err := f.svc.Create(f.ctxFor(f.producer), req)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateDealUnmappedStatusStaysRaw(t *testing.T) {
	f := setupDealTest(t)

	req := f.createRequest()
	req.Status = "SomethingTheCarrierInvented"

	result, err := f.svc.Create(f.ctxFor(f.producer), req)
	require.NoError(t, err)
	assert.Empty(t, result.Deal.StatusStandardized)
	assert.Nil(t, result.Deal.LapseDate)
}

func TestCreateDealNegativeStatusStampsLapseDate(t *testing.T) {
	f := setupDealTest(t)

	req := f.createRequest()
	req.Status = "Lapsed"

	result, err := f.svc.Create(f.ctxFor(f.producer), req)
	require.NoError(t, err)
	assert.Equal(t, "lapsed", result.Deal.StatusStandardized)
	assert.NotNil(t, result.Deal.LapseDate)
}

func TestUpdateStatusRederivesMapping(t *testing.T) {
	f := setupDealTest(t)
	ctx := f.ctxFor(f.producer)

	req := f.createRequest()
	req.Status = "Pending"
	result, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	require.Nil(t, result.Deal.LapseDate)

	lapse := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	updated, err := f.svc.UpdateStatus(ctx, domain.UpdateDealStatusRequest{
		ID:        result.Deal.ID.String(),
		Status:    "Lapsed",
		LapseDate: timePtr(lapse),
	})
	require.NoError(t, err)
	assert.Equal(t, "lapsed", updated.StatusStandardized)
	require.NotNil(t, updated.LapseDate)
	assert.True(t, updated.LapseDate.Equal(lapse))
}

func TestDeleteDealRemovesSnapshots(t *testing.T) {
	f := setupDealTest(t)

	result, err := f.svc.Create(f.ctxFor(f.producer), f.createRequest())
	require.NoError(t, err)

	// Only admins delete.
	err = f.svc.Delete(f.ctxFor(f.producer), domain.DeleteDealRequest{ID: result.Deal.ID.String()})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.Delete(f.ctxFor(f.owner), domain.DeleteDealRequest{ID: result.Deal.ID.String()})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&ledgerdomain.HierarchySnapshot{}).
		Where("deal_id = ?", result.Deal.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetDealOutsideVisibilityForbidden(t *testing.T) {
	f := setupDealTest(t)

	result, err := f.svc.Create(f.ctxFor(f.manager), f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.GetByID(f.ctxFor(f.producer), domain.GetDealRequest{ID: result.Deal.ID.String()})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// The writer's upline sees it.
	_, err = f.svc.GetByID(f.ctxFor(f.owner), domain.GetDealRequest{ID: result.Deal.ID.String()})
	assert.NoError(t, err)
}
