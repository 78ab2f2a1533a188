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
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	dealrepository "github.com/agentspace/agentspace/internal/deal/repository"
	dealservice "github.com/agentspace/agentspace/internal/deal/service"
	hierarchyrepository "github.com/agentspace/agentspace/internal/hierarchy/repository"
	hierarchyservice "github.com/agentspace/agentspace/internal/hierarchy/service"
	ledgerdomain "github.com/agentspace/agentspace/internal/ledger/domain"
	ledgerrepository "github.com/agentspace/agentspace/internal/ledger/repository"
	"github.com/agentspace/agentspace/internal/payout/domain"
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

	svc   domain.Service
	deals dealdomain.Service

	agencyID uuid.UUID
	owner    agentdomain.Agent
	manager  agentdomain.Agent
	producer agentdomain.Agent

	carrier carrierdomain.Carrier
	product productdomain.Product
}

func floatPtr(v float64) *float64 { return &v }

func setupPayoutTest(t *testing.T) *fixture {
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
		&dealdomain.Deal{},
		&ledgerdomain.HierarchySnapshot{},
	))

	f := &fixture{db: db, agencyID: uuid.New()}
	now := time.Now().UTC()

	require.NoError(t, db.Create(&agencydomain.Agency{
		ID: f.agencyID, Name: "Test Agency", Slug: "test-agency",
	}).Error)

	ownerPos := positiondomain.Position{ID: uuid.New(), AgencyID: f.agencyID, Name: "Agency Owner", Level: 3}
	managerPos := positiondomain.Position{ID: uuid.New(), AgencyID: f.agencyID, Name: "Manager", Level: 2}
	producerPos := positiondomain.Position{ID: uuid.New(), AgencyID: f.agencyID, Name: "Producer", Level: 1}
	require.NoError(t, db.Create([]*positiondomain.Position{&ownerPos, &managerPos, &producerPos}).Error)

	f.owner = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, PositionID: &ownerPos.ID,
		FirstName: "Olive", LastName: "Owner", Email: "olive@test.dev",
		Role: agentdomain.RoleAdmin, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	f.manager = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.owner.ID, PositionID: &managerPos.ID,
		FirstName: "Marty", LastName: "Manager", Email: "marty@test.dev",
		Role: agentdomain.RoleAgent, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	f.producer = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.manager.ID, PositionID: &producerPos.ID,
		FirstName: "Pat", LastName: "Producer", Email: "pat@test.dev",
		Role: agentdomain.RoleAgent, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, db.Create([]*agentdomain.Agent{&f.owner, &f.manager, &f.producer}).Error)

	f.carrier = carrierdomain.Carrier{ID: uuid.New(), Name: "Acme Life", Code: "ACME"}
	require.NoError(t, db.Create(&f.carrier).Error)

	mappings := []*carrierdomain.StatusMapping{
		{ID: uuid.New(), CarrierID: f.carrier.ID, RawStatus: "Active", StandardizedStatus: "active", Impact: carrierdomain.ImpactPositive},
		{ID: uuid.New(), CarrierID: f.carrier.ID, RawStatus: "Pending", StandardizedStatus: "pending", Impact: carrierdomain.ImpactNeutral},
		{ID: uuid.New(), CarrierID: f.carrier.ID, RawStatus: "Lapsed", StandardizedStatus: "lapsed", Impact: carrierdomain.ImpactNegative},
	}
	require.NoError(t, db.Create(mappings).Error)

	f.product = productdomain.Product{ID: uuid.New(), CarrierID: f.carrier.ID, Name: "Term Life 20", Code: "ACME-TL20"}
	require.NoError(t, db.Create(&f.product).Error)

	rates := []*commissiondomain.CommissionRate{
		{ID: uuid.New(), PositionID: ownerPos.ID, ProductID: f.product.ID, Percentage: decimal.NewFromInt(10)},
		{ID: uuid.New(), PositionID: managerPos.ID, ProductID: f.product.ID, Percentage: decimal.NewFromInt(20)},
		{ID: uuid.New(), PositionID: producerPos.ID, ProductID: f.product.ID, Percentage: decimal.NewFromInt(50)},
	}
	require.NoError(t, db.Create(rates).Error)

	log := zap.NewNop()
	hierarchy := hierarchyservice.New(hierarchyservice.Params{
		DB: db, Log: log, Repo: hierarchyrepository.Provide(),
	})
	dealRepo := dealrepository.Provide()
	snapshotRepo := ledgerrepository.Provide()
	carrierRepo := carrierrepository.Provide()

	f.deals = dealservice.New(dealservice.Params{
		DB:             db,
		Log:            log,
		Repo:           dealRepo,
		SnapshotRepo:   snapshotRepo,
		HierarchyRepo:  hierarchyrepository.Provide(),
		Hierarchy:      hierarchy,
		CarrierRepo:    carrierRepo,
		ProductRepo:    productrepository.Provide(),
		CommissionRepo: commissionrepository.Provide(),
	})
	f.svc = New(Params{
		DB:           db,
		Log:          log,
		DealRepo:     dealRepo,
		SnapshotRepo: snapshotRepo,
		CarrierRepo:  carrierRepo,
		Hierarchy:    hierarchy,
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

func (f *fixture) writeDeal(t *testing.T, writer agentdomain.Agent, premium float64, status, phone string) dealdomain.DealWithSnapshots {
	t.Helper()
	result, err := f.deals.Create(f.ctxFor(writer), dealdomain.CreateDealRequest{
		CarrierID:       f.carrier.ID.String(),
		ProductID:       f.product.ID.String(),
		ClientFirstName: "Jane",
		ClientLastName:  "Doe",
		ClientPhone:     phone,
		ClientState:     "TX",
		AnnualPremium:   floatPtr(premium),
		Status:          status,
	})
	require.NoError(t, err)
	return result
}

func TestExpectedPayoutSplit(t *testing.T) {
	f := setupPayoutTest(t)
	deal := f.writeDeal(t, f.producer, 1200, "Active", "555-0101")

	resp, err := f.svc.ExpectedPayout(f.ctxFor(f.producer), deal.Deal.ID.String())
	require.NoError(t, err)

	assert.True(t, resp.Payable)
	assert.Empty(t, resp.Exclusion)
	assert.Equal(t, "900", resp.Pool.String())
	assert.Equal(t, "80", resp.TotalPct.String())
	require.Len(t, resp.Payouts, 3)

	byAgent := make(map[uuid.UUID]domain.Allocation, 3)
	for _, allocation := range resp.Payouts {
		byAgent[allocation.AgentID] = allocation
	}
	assert.Equal(t, "562.5", byAgent[f.producer.ID].Amount.String())
	assert.Equal(t, "225", byAgent[f.manager.ID].Amount.String())
	assert.Equal(t, "112.5", byAgent[f.owner.ID].Amount.String())

	sum := decimal.Zero
	for _, allocation := range resp.Payouts {
		sum = sum.Add(allocation.Amount)
	}
	assert.True(t, sum.Equal(resp.Pool), "allocations must conserve the pool")
}

func TestExpectedPayoutExclusions(t *testing.T) {
	f := setupPayoutTest(t)
	ctx := f.ctxFor(f.owner)

	unmapped := f.writeDeal(t, f.producer, 1200, "Mystery", "555-0102")
	resp, err := f.svc.ExpectedPayout(ctx, unmapped.Deal.ID.String())
	require.NoError(t, err)
	assert.False(t, resp.Payable)
	assert.Equal(t, domain.ExclusionUnmappedStatus, resp.Exclusion)

	lapsed := f.writeDeal(t, f.producer, 1200, "Lapsed", "555-0103")
	resp, err = f.svc.ExpectedPayout(ctx, lapsed.Deal.ID.String())
	require.NoError(t, err)
	assert.False(t, resp.Payable)
	assert.Equal(t, domain.ExclusionNegativeImpact, resp.Exclusion)
}

func TestExpectedPayoutNoPremium(t *testing.T) {
	f := setupPayoutTest(t)

	result, err := f.deals.Create(f.ctxFor(f.producer), dealdomain.CreateDealRequest{
		CarrierID:       f.carrier.ID.String(),
		ProductID:       f.product.ID.String(),
		ClientFirstName: "Jane",
		ClientLastName:  "Doe",
		Status:          "Active",
	})
	require.NoError(t, err)

	resp, err := f.svc.ExpectedPayout(f.ctxFor(f.owner), result.Deal.ID.String())
	require.NoError(t, err)
	assert.False(t, resp.Payable)
	assert.Equal(t, domain.ExclusionNoPremium, resp.Exclusion)
}

func TestExpectedPayoutVisibility(t *testing.T) {
	f := setupPayoutTest(t)
	deal := f.writeDeal(t, f.manager, 1000, "Active", "555-0104")

	_, err := f.svc.ExpectedPayout(f.ctxFor(f.producer), deal.Deal.ID.String())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAgentSummarySplitsPersonalAndOverride(t *testing.T) {
	f := setupPayoutTest(t)

	// Producer's deal: manager earns a 225 override.
	f.writeDeal(t, f.producer, 1200, "Active", "555-0105")
	// Manager's own deal: pool 750 split 20/10, manager keeps 500.
	f.writeDeal(t, f.manager, 1000, "Active", "555-0106")

	summary, err := f.svc.AgentSummary(f.ctxFor(f.manager), domain.AgentSummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, f.manager.ID, summary.AgentID)
	assert.Equal(t, "500", summary.PersonalAmount.String())
	assert.Equal(t, "225", summary.OverrideAmount.String())
	assert.Equal(t, "725", summary.TotalAmount.String())
	assert.Equal(t, 2, summary.DealCount)
	assert.Equal(t, "2200", summary.PremiumTotal.String())
}

func TestAgentSummaryCountsExclusions(t *testing.T) {
	f := setupPayoutTest(t)

	f.writeDeal(t, f.producer, 1200, "Active", "555-0107")
	f.writeDeal(t, f.producer, 800, "Mystery", "555-0108")

	summary, err := f.svc.AgentSummary(f.ctxFor(f.producer), domain.AgentSummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, "562.5", summary.PersonalAmount.String())
	assert.Equal(t, 1, summary.ExcludedDeals)
}

func TestCarrierSummaries(t *testing.T) {
	f := setupPayoutTest(t)
	f.writeDeal(t, f.producer, 1200, "Active", "555-0109")

	summaries, err := f.svc.CarrierSummaries(f.ctxFor(f.owner), domain.CarrierSummaryRequest{IncludeFullAgency: true})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, f.carrier.ID, summaries[0].CarrierID)
	assert.Equal(t, "900", summaries[0].PayoutTotal.String())
	assert.Equal(t, "1200", summaries[0].PremiumTotal.String())
	assert.Equal(t, 1, summaries[0].DealCount)
}
