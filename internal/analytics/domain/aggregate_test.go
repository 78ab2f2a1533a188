package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func premium(value string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(value), Valid: true}
}

func TestNullSafeRatio(t *testing.T) {
	assert.Nil(t, NullSafeRatio(0, 0))

	ratio := NullSafeRatio(3, 4)
	require.NotNil(t, ratio)
	assert.InDelta(t, 0.75, *ratio, 1e-9)

	ratio = NullSafeRatio(0, 5)
	require.NotNil(t, ratio)
	assert.Zero(t, *ratio)
}

func TestWindowBoundaries(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	carrierID := uuid.New()

	facts := []Fact{
		// Inside a 3-month window anchored at June: April through June.
		{CarrierID: carrierID, Month: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Impact: strPtr("positive")},
		{CarrierID: carrierID, Month: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), Impact: strPtr("negative")},
		// March is the first month outside it.
		{CarrierID: carrierID, Month: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), Impact: strPtr("positive")},
		// Future months never count.
		{CarrierID: carrierID, Month: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Impact: strPtr("positive")},
	}

	window := Window(facts, asOf, 3)
	assert.Equal(t, 2, window.Submitted)
	assert.Equal(t, 1, window.Active)
	assert.Equal(t, 1, window.Inactive)
	require.NotNil(t, window.Persistency)
	assert.InDelta(t, 0.5, *window.Persistency, 1e-9)

	allTime := Window(facts, asOf, 0)
	assert.Equal(t, 3, allTime.Submitted)
}

func TestWindowNeutralImpactOutsideRatios(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	facts := []Fact{
		{Month: month, Impact: strPtr("neutral")},
		{Month: month},
	}

	window := Window(facts, asOf, 6)
	assert.Equal(t, 2, window.Submitted)
	assert.Nil(t, window.Persistency)
	assert.Nil(t, window.Placement)
}

func TestWindowAveragePremiumSkipsNulls(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	facts := []Fact{
		{Month: month, Premium: premium("1000")},
		{Month: month, Premium: premium("2500")},
		{Month: month},
	}

	window := Window(facts, asOf, 0)
	require.NotNil(t, window.AvgPremiumSubmitted)
	assert.InDelta(t, 1750, *window.AvgPremiumSubmitted, 1e-9)
}

func TestMonthSeriesOrdering(t *testing.T) {
	facts := []Fact{
		{Month: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)},
		{Month: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Month: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	series := MonthSeries(facts)
	require.Len(t, series, 2)
	assert.Equal(t, "2025-02", series[0].Month)
	assert.Equal(t, "2025-05", series[1].Month)
	assert.Equal(t, 2, series[1].Submitted)
}

func TestTrendTrailingWindow(t *testing.T) {
	asOf := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	facts := []Fact{
		// January lapse falls out of the trailing nine months by October.
		{Month: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Impact: strPtr("negative")},
		{Month: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), Impact: strPtr("positive")},
	}

	points := Trend(facts, asOf, 0)
	require.Len(t, points, 12)

	byMonth := make(map[string]TrendPoint, len(points))
	for _, point := range points {
		byMonth[point.Month] = point
	}

	june := byMonth["2025-06"]
	require.NotNil(t, june.Persistency)
	assert.InDelta(t, 0.5, *june.Persistency, 1e-9)

	october := byMonth["2025-10"]
	require.NotNil(t, october.Persistency)
	assert.InDelta(t, 1.0, *october.Persistency, 1e-9)
}

func TestTrendCapKeepsTail(t *testing.T) {
	asOf := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	facts := []Fact{
		{Month: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	points := Trend(facts, asOf, 24)
	require.Len(t, points, 24)
	assert.Equal(t, "2024-01", points[0].Month)
	assert.Equal(t, "2025-12", points[len(points)-1].Month)
}

func TestTopStatesCapAndTiebreak(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	var facts []Fact
	add := func(state string, count int) {
		for i := 0; i < count; i++ {
			facts = append(facts, Fact{Month: month, State: state})
		}
	}
	add("TX", 5)
	add("CA", 3)
	add("FL", 3)
	add("NY", 2)
	add("OH", 1)
	add("WA", 1)
	add("", 4)

	states := TopStates(facts, asOf, 0)
	require.Len(t, states, TopStatesLimit)
	assert.Equal(t, StateCount{State: "TX", Count: 5}, states[0])
	// CA before FL on the alphabetical tiebreak.
	assert.Equal(t, "CA", states[1].State)
	assert.Equal(t, "FL", states[2].State)
	// OH before WA for the last slot.
	assert.Equal(t, "OH", states[4].State)
}

func TestAgeBandBoundaries(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	born := func(year, month, day int) *time.Time {
		v := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return &v
	}

	assert.Equal(t, "UNK", AgeBand(nil, asOf))
	assert.Equal(t, "UNK", AgeBand(born(2026, 1, 1), asOf))
	assert.Equal(t, "0-25", AgeBand(born(2000, 5, 1), asOf))
	// Birthday not yet reached this year: still 25.
	assert.Equal(t, "0-25", AgeBand(born(1999, 12, 1), asOf))
	assert.Equal(t, "26-35", AgeBand(born(1999, 5, 1), asOf))
	assert.Equal(t, "36-45", AgeBand(born(1985, 1, 1), asOf))
	assert.Equal(t, "46-55", AgeBand(born(1975, 1, 1), asOf))
	assert.Equal(t, "56-65", AgeBand(born(1965, 1, 1), asOf))
	assert.Equal(t, "65+", AgeBand(born(1950, 1, 1), asOf))
}

func TestAgeBandCountsIncludeZeros(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	facts := []Fact{
		{Month: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), AgeBand: "36-45"},
	}

	counts := AgeBandCounts(facts, asOf, 0)
	require.Len(t, counts, 7)
	assert.Equal(t, AgeBandCount{Band: "0-25", Count: 0}, counts[0])
	assert.Equal(t, AgeBandCount{Band: "36-45", Count: 1}, counts[2])
	assert.Equal(t, AgeBandCount{Band: "UNK", Count: 0}, counts[6])
}
