package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/agentspace/agentspace/internal/carrier/domain"
	carrierrepository "github.com/agentspace/agentspace/internal/carrier/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCarrierTest(t *testing.T) domain.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Carrier{}, &domain.StatusMapping{}))

	return New(Params{DB: db, Log: zap.NewNop(), Repo: carrierrepository.Provide()})
}

func TestCreateCarrierNormalizesCode(t *testing.T) {
	svc := setupCarrierTest(t)
	ctx := context.Background()

	carrier, err := svc.Create(ctx, domain.CreateCarrierRequest{Name: "Acme Life", Code: " acme "})
	require.NoError(t, err)
	assert.Equal(t, "ACME", carrier.Code)

	_, err = svc.Create(ctx, domain.CreateCarrierRequest{Name: "Other", Code: "ACME"})
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestUpsertStatusMappingValidation(t *testing.T) {
	svc := setupCarrierTest(t)
	ctx := context.Background()

	carrier, err := svc.Create(ctx, domain.CreateCarrierRequest{Name: "Acme Life", Code: "ACME"})
	require.NoError(t, err)

	_, err = svc.UpsertStatusMapping(ctx, domain.UpsertStatusMappingRequest{
		CarrierID: carrier.ID.String(), RawStatus: "Active", Impact: "sideways",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidImpact)

	mapping, err := svc.UpsertStatusMapping(ctx, domain.UpsertStatusMappingRequest{
		CarrierID: carrier.ID.String(), RawStatus: "Active", Impact: "Positive",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ImpactPositive, mapping.Impact)
	// Standardized status defaults to the raw status.
	assert.Equal(t, "Active", mapping.StandardizedStatus)
}

func TestResolveStatusCaseInsensitive(t *testing.T) {
	svc := setupCarrierTest(t)
	ctx := context.Background()

	carrier, err := svc.Create(ctx, domain.CreateCarrierRequest{Name: "Acme Life", Code: "ACME"})
	require.NoError(t, err)

	_, err = svc.UpsertStatusMapping(ctx, domain.UpsertStatusMappingRequest{
		CarrierID:          carrier.ID.String(),
		RawStatus:          "Inforce",
		StandardizedStatus: "active",
		Impact:             domain.ImpactPositive,
	})
	require.NoError(t, err)

	mapping, err := svc.ResolveStatus(ctx, carrier.ID.String(), "INFORCE")
	require.NoError(t, err)
	require.NotNil(t, mapping)
	assert.Equal(t, "active", mapping.StandardizedStatus)

	mapping, err = svc.ResolveStatus(ctx, carrier.ID.String(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, mapping)
}
