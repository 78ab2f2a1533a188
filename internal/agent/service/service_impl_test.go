package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/agentspace/agentspace/internal/agencyctx"
	"github.com/agentspace/agentspace/internal/agent/domain"
	agentrepository "github.com/agentspace/agentspace/internal/agent/repository"
	hierarchyrepository "github.com/agentspace/agentspace/internal/hierarchy/repository"
	hierarchyservice "github.com/agentspace/agentspace/internal/hierarchy/service"
	positiondomain "github.com/agentspace/agentspace/internal/position/domain"
	positionrepository "github.com/agentspace/agentspace/internal/position/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc domain.Service

	agencyID uuid.UUID
	owner    domain.Agent
	manager  domain.Agent
	producer domain.Agent
}

func setupAgentTest(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&positiondomain.Position{}, &domain.Agent{}))

	f := &fixture{db: db, agencyID: uuid.New()}

	f.owner = domain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID,
		FirstName: "Olive", LastName: "Owner", Email: "olive@test.dev",
		Role: domain.RoleAdmin, IsActive: true,
	}
	f.manager = domain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.owner.ID,
		FirstName: "Marty", LastName: "Manager", Email: "marty@test.dev",
		Role: domain.RoleAgent, IsActive: true,
	}
	f.producer = domain.Agent{
		ID: uuid.New(), AgencyID: f.agencyID, UplineID: &f.manager.ID,
		FirstName: "Pat", LastName: "Producer", Email: "pat@test.dev",
		Role: domain.RoleAgent, IsActive: true,
	}
	require.NoError(t, db.Create([]*domain.Agent{&f.owner, &f.manager, &f.producer}).Error)

	log := zap.NewNop()
	hierarchy := hierarchyservice.New(hierarchyservice.Params{
		DB: db, Log: log, Repo: hierarchyrepository.Provide(),
	})
	f.svc = New(Params{
		DB:           db,
		Log:          log,
		Repo:         agentrepository.Provide(),
		PositionRepo: positionrepository.Provide(),
		Hierarchy:    hierarchy,
	})
	return f
}

func (f *fixture) ctxFor(agent domain.Agent) context.Context {
	return agencyctx.WithIdentity(context.Background(), agencyctx.Identity{
		AgentID:  agent.ID,
		AgencyID: f.agencyID,
		IsAdmin:  agent.Role == domain.RoleAdmin,
	})
}

func TestCreateAgentValidation(t *testing.T) {
	f := setupAgentTest(t)
	ctx := f.ctxFor(f.owner)

	_, err := f.svc.Create(ctx, domain.CreateAgentRequest{LastName: "Only", Email: "x@test.dev"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(ctx, domain.CreateAgentRequest{FirstName: "No", LastName: "Email", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = f.svc.Create(ctx, domain.CreateAgentRequest{FirstName: "Bad", LastName: "Role", Email: "bad@test.dev", Role: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	agent, err := f.svc.Create(ctx, domain.CreateAgentRequest{
		FirstName: "New", LastName: "Agent", Email: "New@Test.Dev",
		UplineID: f.manager.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "new@test.dev", agent.Email)
	assert.Equal(t, domain.RoleAgent, agent.Role)
	require.NotNil(t, agent.UplineID)
	assert.Equal(t, f.manager.ID, *agent.UplineID)
}

func TestCreateAgentDuplicateEmail(t *testing.T) {
	f := setupAgentTest(t)

	_, err := f.svc.Create(f.ctxFor(f.owner), domain.CreateAgentRequest{
		FirstName: "Dup", LastName: "Licate", Email: "marty@test.dev",
	})
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestGetAgentVisibility(t *testing.T) {
	f := setupAgentTest(t)

	// The manager sees their downline but the producer cannot look up.
	_, err := f.svc.GetByID(f.ctxFor(f.manager), domain.GetAgentRequest{ID: f.producer.ID.String()})
	assert.NoError(t, err)

	_, err = f.svc.GetByID(f.ctxFor(f.producer), domain.GetAgentRequest{ID: f.manager.ID.String()})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.GetByID(f.ctxFor(f.producer), domain.GetAgentRequest{ID: f.producer.ID.String()})
	assert.NoError(t, err)
}

func TestReassignUplineAdminOnly(t *testing.T) {
	f := setupAgentTest(t)

	_, err := f.svc.ReassignUpline(f.ctxFor(f.manager), domain.ReassignUplineRequest{
		AgentID:  f.producer.ID.String(),
		UplineID: f.owner.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReassignUpline(t *testing.T) {
	f := setupAgentTest(t)
	ctx := f.ctxFor(f.owner)

	agent, err := f.svc.ReassignUpline(ctx, domain.ReassignUplineRequest{
		AgentID:  f.producer.ID.String(),
		UplineID: f.owner.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, agent.UplineID)
	assert.Equal(t, f.owner.ID, *agent.UplineID)
}

func TestReassignUplineDetach(t *testing.T) {
	f := setupAgentTest(t)

	agent, err := f.svc.ReassignUpline(f.ctxFor(f.owner), domain.ReassignUplineRequest{
		AgentID: f.producer.ID.String(),
	})
	require.NoError(t, err)
	assert.Nil(t, agent.UplineID)
}

func TestReassignUplineRejectsDescendant(t *testing.T) {
	f := setupAgentTest(t)

	_, err := f.svc.ReassignUpline(f.ctxFor(f.owner), domain.ReassignUplineRequest{
		AgentID:  f.manager.ID.String(),
		UplineID: f.producer.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUpline)

	// The edge must be unchanged after the rejection.
	var manager domain.Agent
	require.NoError(t, f.db.First(&manager, "id = ?", f.manager.ID).Error)
	require.NotNil(t, manager.UplineID)
	assert.Equal(t, f.owner.ID, *manager.UplineID)
}

func TestReassignUplineUnknownAgent(t *testing.T) {
	f := setupAgentTest(t)

	_, err := f.svc.ReassignUpline(f.ctxFor(f.owner), domain.ReassignUplineRequest{
		AgentID: uuid.New().String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAgentsScopedToVisibility(t *testing.T) {
	f := setupAgentTest(t)

	resp, err := f.svc.List(f.ctxFor(f.manager), domain.ListAgentRequest{})
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(resp.Agents))
	for _, agent := range resp.Agents {
		ids = append(ids, agent.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{f.manager.ID, f.producer.ID}, ids)
}
