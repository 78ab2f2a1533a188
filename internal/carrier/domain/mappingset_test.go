package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingSetResolveCaseInsensitive(t *testing.T) {
	carrierID := uuid.New()
	set := NewMappingSet([]StatusMapping{
		{CarrierID: carrierID, RawStatus: "Inforce", StandardizedStatus: "active", Impact: ImpactPositive},
		{CarrierID: carrierID, RawStatus: "LAPSED", StandardizedStatus: "lapsed", Impact: ImpactNegative},
	})

	mapping := set.Resolve("inforce")
	require.NotNil(t, mapping)
	assert.Equal(t, "active", mapping.StandardizedStatus)

	mapping = set.Resolve("  Lapsed ")
	require.NotNil(t, mapping)
	assert.Equal(t, ImpactNegative, mapping.Impact)

	assert.Nil(t, set.Resolve("declined"))
}

func TestMappingSetZeroValue(t *testing.T) {
	var set MappingSet
	assert.Nil(t, set.Resolve("anything"))
}
