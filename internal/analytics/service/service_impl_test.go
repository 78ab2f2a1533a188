package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	agencydomain "github.com/agentspace/agentspace/internal/agency/domain"
	"github.com/agentspace/agentspace/internal/agencyctx"
	agentdomain "github.com/agentspace/agentspace/internal/agent/domain"
	"github.com/agentspace/agentspace/internal/analytics/domain"
	carrierdomain "github.com/agentspace/agentspace/internal/carrier/domain"
	carrierrepository "github.com/agentspace/agentspace/internal/carrier/repository"
	dealdomain "github.com/agentspace/agentspace/internal/deal/domain"
	dealrepository "github.com/agentspace/agentspace/internal/deal/repository"
	hierarchyrepository "github.com/agentspace/agentspace/internal/hierarchy/repository"
	hierarchyservice "github.com/agentspace/agentspace/internal/hierarchy/service"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc domain.Service

	agencyID uuid.UUID
	owner    agentdomain.Agent
	manager  agentdomain.Agent
	producer agentdomain.Agent

	carrierID uuid.UUID
	productID uuid.UUID
}

func setupAnalyticsTest(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&agencydomain.Agency{},
		&agentdomain.Agent{},
		&carrierdomain.Carrier{},
		&carrierdomain.StatusMapping{},
		&dealdomain.Deal{},
	))

	f := &fixture{db: db, agencyID: uuid.New(), carrierID: uuid.New(), productID: uuid.New()}

	f.owner = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID,
		FirstName: "Olive", LastName: "Owner", Email: "olive@test.dev",
		Role: agentdomain.RoleAdmin, IsActive: true,
	}
	f.manager = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.owner.ID,
		FirstName: "Marty", LastName: "Manager", Email: "marty@test.dev",
		Role: agentdomain.RoleAgent, IsActive: true,
	}
	f.producer = agentdomain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.manager.ID,
		FirstName: "Pat", LastName: "Producer", Email: "pat@test.dev",
		Role: agentdomain.RoleAgent, IsActive: true,
	}
	require.NoError(t, db.Create([]*agentdomain.Agent{&f.owner, &f.manager, &f.producer}).Error)

	require.NoError(t, db.Create(&carrierdomain.Carrier{ID: f.carrierID, Name: "Acme Life", Code: "ACME"}).Error)
	mappings := []*carrierdomain.StatusMapping{
		{ID: uuid.New(), CarrierID: f.carrierID, RawStatus: "Active", StandardizedStatus: "active", Impact: carrierdomain.ImpactPositive},
		{ID: uuid.New(), CarrierID: f.carrierID, RawStatus: "Lapsed", StandardizedStatus: "lapsed", Impact: carrierdomain.ImpactNegative},
	}
	require.NoError(t, db.Create(mappings).Error)

	log := zap.NewNop()
	hierarchy := hierarchyservice.New(hierarchyservice.Params{
		DB: db, Log: log, Repo: hierarchyrepository.Provide(),
	})
	f.svc = New(Params{
		DB:            db,
		Log:           log,
		DealRepo:      dealrepository.Provide(),
		CarrierRepo:   carrierrepository.Provide(),
		Hierarchy:     hierarchy,
		HierarchyRepo: hierarchyrepository.Provide(),
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

func (f *fixture) insertDeal(t *testing.T, writer agentdomain.Agent, status string, submitted time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&dealdomain.Deal{
		ID:              uuid.New(),
		AgencyID:        f.agencyID,
		AgentID:         writer.ID,
		CarrierID:       f.carrierID,
		ProductID:       f.productID,
		ClientFirstName: "Jane",
		ClientLastName:  "Doe",
		ClientState:     "TX",
		AnnualPremium:   decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		Status:          status,
		SubmissionDate:  submitted,
		CreatedAt:       submitted,
		UpdatedAt:       submitted,
	}).Error)
}

func TestAggregateOwnScope(t *testing.T) {
	f := setupAnalyticsTest(t)
	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.manager, "Lapsed", month)

	resp, err := f.svc.Aggregate(f.ctxFor(f.producer), domain.AggregateRequest{
		Scope: domain.ScopeOwn,
		AsOf:  &asOf,
	})
	require.NoError(t, err)

	// Only the producer's own deal counts; default windows are 3/6/9/all.
	require.Len(t, resp.Windows, 4)
	for _, window := range resp.Windows {
		assert.Equal(t, 1, window.Submitted)
		assert.Equal(t, 1, window.Active)
		assert.Zero(t, window.Inactive)
	}
	require.Len(t, resp.Carriers, 1)
	assert.Equal(t, f.carrierID, resp.Carriers[0].CarrierID)
}

func TestAggregateDownlineScope(t *testing.T) {
	f := setupAnalyticsTest(t)
	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.manager, "Lapsed", month)

	// Downline is strict: the manager's own deal is excluded.
	resp, err := f.svc.Aggregate(f.ctxFor(f.manager), domain.AggregateRequest{
		Scope:   domain.ScopeDownline,
		AsOf:    &asOf,
		Windows: []int{0},
	})
	require.NoError(t, err)
	require.Len(t, resp.Windows, 1)
	assert.Equal(t, 1, resp.Windows[0].Submitted)
	assert.Equal(t, 1, resp.Windows[0].Active)
}

func TestAggregateDownlineScopeEmptyForLeaf(t *testing.T) {
	f := setupAnalyticsTest(t)
	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	f.insertDeal(t, f.producer, "Active", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	// A leaf agent with no downline must see nothing, not everything.
	resp, err := f.svc.Aggregate(f.ctxFor(f.producer), domain.AggregateRequest{
		Scope:   domain.ScopeDownline,
		AsOf:    &asOf,
		Windows: []int{0},
	})
	require.NoError(t, err)
	require.Len(t, resp.Windows, 1)
	assert.Zero(t, resp.Windows[0].Submitted)
	assert.Empty(t, resp.Carriers)
}

func TestAggregateAgencyScopeAdminOnly(t *testing.T) {
	f := setupAnalyticsTest(t)

	_, err := f.svc.Aggregate(f.ctxFor(f.manager), domain.AggregateRequest{Scope: domain.ScopeAgency})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.manager, "Lapsed", month)

	resp, err := f.svc.Aggregate(f.ctxFor(f.owner), domain.AggregateRequest{
		Scope:   domain.ScopeAgency,
		AsOf:    &asOf,
		Windows: []int{0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Windows[0].Submitted)
	require.NotNil(t, resp.Windows[0].Persistency)
	assert.InDelta(t, 0.5, *resp.Windows[0].Persistency, 1e-9)
}

func TestProductionDistributionCreditsWholeSubtree(t *testing.T) {
	f := setupAnalyticsTest(t)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.manager, "Active", month)
	f.insertDeal(t, f.manager, "Lapsed", month)

	resp, err := f.svc.ProductionDistribution(f.ctxFor(f.owner), domain.ProductionDistributionRequest{})
	require.NoError(t, err)

	// The manager slice carries the producer's production too; the
	// lapsed deal contributes nothing.
	require.Len(t, resp.Slices, 1)
	assert.Equal(t, f.manager.ID, resp.Slices[0].AgentID)
	assert.Equal(t, "Marty Manager", resp.Slices[0].Name)
	assert.True(t, resp.Slices[0].Production.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 3, resp.Slices[0].DealCount)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(3000)))
}

func TestProductionDistributionDirectDownlineOnly(t *testing.T) {
	f := setupAnalyticsTest(t)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	f.insertDeal(t, f.producer, "Active", month)

	resp, err := f.svc.ProductionDistribution(f.ctxFor(f.manager), domain.ProductionDistributionRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Slices, 1)
	assert.Equal(t, f.producer.ID, resp.Slices[0].AgentID)
	assert.True(t, resp.Slices[0].Production.Equal(decimal.NewFromInt(1000)))
}

func TestProductionDistributionForeignAgentForbidden(t *testing.T) {
	f := setupAnalyticsTest(t)

	_, err := f.svc.ProductionDistribution(f.ctxFor(f.producer), domain.ProductionDistributionRequest{
		AgentID: f.manager.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLeaderboardRanksByPositiveProduction(t *testing.T) {
	f := setupAnalyticsTest(t)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.manager, "Active", month)
	f.insertDeal(t, f.manager, "Lapsed", month)

	entries, err := f.svc.Leaderboard(f.ctxFor(f.owner), domain.LeaderboardRequest{IncludeFullAgency: true})
	require.NoError(t, err)

	// The owner wrote nothing and does not appear.
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, f.producer.ID, entries[0].AgentID)
	assert.True(t, entries[0].Production.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 2, entries[0].DealCount)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, f.manager.ID, entries[1].AgentID)
	assert.True(t, entries[1].Production.Equal(decimal.NewFromInt(1000)))
}

func TestLeaderboardLimit(t *testing.T) {
	f := setupAnalyticsTest(t)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.producer, "Active", month)
	f.insertDeal(t, f.manager, "Active", month)

	entries, err := f.svc.Leaderboard(f.ctxFor(f.owner), domain.LeaderboardRequest{
		IncludeFullAgency: true,
		Limit:             1,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, f.producer.ID, entries[0].AgentID)
}

func TestAggregateInvalidScope(t *testing.T) {
	f := setupAnalyticsTest(t)

	_, err := f.svc.Aggregate(f.ctxFor(f.owner), domain.AggregateRequest{Scope: "galaxy"})
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}
