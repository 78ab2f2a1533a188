package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrendWindowMonths is the trailing span of the smoothed persistency
// series, computed per calendar month regardless of requested windows.
const TrendWindowMonths = 9

// TopStatesLimit caps the geographic breakdown.
const TopStatesLimit = 5

// ageBands is the fixed ordinal ordering for the age breakdown.
// Unknown birth dates land in the trailing bucket.
var ageBands = []string{"0-25", "26-35", "36-45", "46-55", "56-65", "65+", "UNK"}

// Fact is one deal flattened for aggregation. Impact and Placement are
// nil when the deal's status is unmapped or the mapping has no
// placement class; nil never enters a ratio denominator.
type Fact struct {
	CarrierID uuid.UUID
	Month     time.Time
	Impact    *string
	Placement *string
	Premium   decimal.NullDecimal
	Status    string
	State     string
	AgeBand   string
}

type MonthMetrics struct {
	Month               string   `json:"month"`
	Submitted           int      `json:"submitted"`
	Active              int      `json:"active"`
	Inactive            int      `json:"inactive"`
	Placed              int      `json:"placed"`
	NotPlaced           int      `json:"not_placed"`
	AvgPremiumSubmitted *float64 `json:"avg_premium_submitted"`
}

type WindowMetrics struct {
	// WindowMonths is 0 for all-time.
	WindowMonths        int      `json:"window_months"`
	Submitted           int      `json:"submitted"`
	Active              int      `json:"active"`
	Inactive            int      `json:"inactive"`
	Placed              int      `json:"placed"`
	NotPlaced           int      `json:"not_placed"`
	Persistency         *float64 `json:"persistency"`
	Placement           *float64 `json:"placement"`
	AvgPremiumSubmitted *float64 `json:"avg_premium_submitted"`
}

type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

type AgeBandCount struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

type TrendPoint struct {
	Month       string   `json:"month"`
	Submitted   int      `json:"submitted"`
	Persistency *float64 `json:"persistency"`
}

// bucket accumulates one (carrier, month) cell.
type bucket struct {
	submitted    int
	active       int
	inactive     int
	placed       int
	notPlaced    int
	premiumSum   decimal.Decimal
	premiumCount int
}

func (b *bucket) add(fact Fact) {
	b.submitted++
	if fact.Impact != nil {
		switch *fact.Impact {
		case "positive":
			b.active++
		case "negative":
			b.inactive++
		}
	}
	if fact.Placement != nil {
		switch *fact.Placement {
		case "positive":
			b.placed++
		case "negative":
			b.notPlaced++
		}
	}
	if fact.Premium.Valid {
		b.premiumSum = b.premiumSum.Add(fact.Premium.Decimal)
		b.premiumCount++
	}
}

// MonthKey truncates a timestamp to the first of its month, UTC.
func MonthKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NullSafeRatio is num/den as a pointer, nil when den is zero.
func NullSafeRatio(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	ratio := float64(num) / float64(den)
	return &ratio
}

// MonthSeries rolls the facts up into per-month metrics, oldest first.
func MonthSeries(facts []Fact) []MonthMetrics {
	buckets := make(map[time.Time]*bucket)
	for _, fact := range facts {
		key := MonthKey(fact.Month)
		cell, ok := buckets[key]
		if !ok {
			cell = &bucket{}
			buckets[key] = cell
		}
		cell.add(fact)
	}

	months := make([]time.Time, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	series := make([]MonthMetrics, 0, len(months))
	for _, month := range months {
		cell := buckets[month]
		metrics := MonthMetrics{
			Month:     month.Format("2006-01"),
			Submitted: cell.submitted,
			Active:    cell.active,
			Inactive:  cell.inactive,
			Placed:    cell.placed,
			NotPlaced: cell.notPlaced,
		}
		if cell.premiumCount > 0 {
			avg, _ := cell.premiumSum.Div(decimal.NewFromInt(int64(cell.premiumCount))).Round(2).Float64()
			metrics.AvgPremiumSubmitted = &avg
		}
		series = append(series, metrics)
	}
	return series
}

// Window sums the facts inside a trailing window anchored at asOf and
// derives the null-safe ratios. windowMonths 0 means all-time.
func Window(facts []Fact, asOf time.Time, windowMonths int) WindowMetrics {
	end := MonthKey(asOf)
	var start time.Time
	if windowMonths > 0 {
		start = end.AddDate(0, -(windowMonths - 1), 0)
	}

	cell := &bucket{}
	for _, fact := range facts {
		month := MonthKey(fact.Month)
		if month.After(end) {
			continue
		}
		if windowMonths > 0 && month.Before(start) {
			continue
		}
		cell.add(fact)
	}

	metrics := WindowMetrics{
		WindowMonths: windowMonths,
		Submitted:    cell.submitted,
		Active:       cell.active,
		Inactive:     cell.inactive,
		Placed:       cell.placed,
		NotPlaced:    cell.notPlaced,
		Persistency:  NullSafeRatio(cell.active, cell.active+cell.inactive),
		Placement:    NullSafeRatio(cell.placed, cell.placed+cell.notPlaced),
	}
	if cell.premiumCount > 0 {
		avg, _ := cell.premiumSum.Div(decimal.NewFromInt(int64(cell.premiumCount))).Round(2).Float64()
		metrics.AvgPremiumSubmitted = &avg
	}
	return metrics
}

// Trend computes the smoothed persistency series: for each calendar
// month up to asOf, persistency over the trailing nine months.
func Trend(facts []Fact, asOf time.Time, maxPoints int) []TrendPoint {
	if len(facts) == 0 {
		return nil
	}

	end := MonthKey(asOf)
	earliest := end
	for _, fact := range facts {
		if month := MonthKey(fact.Month); month.Before(earliest) {
			earliest = month
		}
	}

	var points []TrendPoint
	for month := earliest; !month.After(end); month = month.AddDate(0, 1, 0) {
		windowStart := month.AddDate(0, -(TrendWindowMonths - 1), 0)
		submitted, active, inactive := 0, 0, 0
		for _, fact := range facts {
			factMonth := MonthKey(fact.Month)
			if factMonth.Before(windowStart) || factMonth.After(month) {
				continue
			}
			submitted++
			if fact.Impact != nil {
				switch *fact.Impact {
				case "positive":
					active++
				case "negative":
					inactive++
				}
			}
		}
		points = append(points, TrendPoint{
			Month:       month.Format("2006-01"),
			Submitted:   submitted,
			Persistency: NullSafeRatio(active, active+inactive),
		})
	}

	if maxPoints > 0 && len(points) > maxPoints {
		points = points[len(points)-maxPoints:]
	}
	return points
}

// StatusCounts tallies standardized statuses inside a window.
func StatusCounts(facts []Fact, asOf time.Time, windowMonths int) map[string]int {
	counts := make(map[string]int)
	forEachInWindow(facts, asOf, windowMonths, func(fact Fact) {
		if fact.Status != "" {
			counts[fact.Status]++
		}
	})
	return counts
}

// TopStates returns the most frequent client states in a window,
// capped at TopStatesLimit, alphabetical among ties.
func TopStates(facts []Fact, asOf time.Time, windowMonths int) []StateCount {
	counts := make(map[string]int)
	forEachInWindow(facts, asOf, windowMonths, func(fact Fact) {
		if fact.State != "" {
			counts[fact.State]++
		}
	})

	states := make([]StateCount, 0, len(counts))
	for state, count := range counts {
		states = append(states, StateCount{State: state, Count: count})
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].Count != states[j].Count {
			return states[i].Count > states[j].Count
		}
		return states[i].State < states[j].State
	})
	if len(states) > TopStatesLimit {
		states = states[:TopStatesLimit]
	}
	return states
}

// AgeBandCounts tallies the fixed ordinal age bands inside a window.
// Every band appears in the output, zeros included, in order.
func AgeBandCounts(facts []Fact, asOf time.Time, windowMonths int) []AgeBandCount {
	counts := make(map[string]int, len(ageBands))
	forEachInWindow(facts, asOf, windowMonths, func(fact Fact) {
		counts[fact.AgeBand]++
	})

	out := make([]AgeBandCount, 0, len(ageBands))
	for _, band := range ageBands {
		out = append(out, AgeBandCount{Band: band, Count: counts[band]})
	}
	return out
}

// AgeBand places a birth date into its ordinal band as of a reference
// date. A missing birth date maps to "UNK".
func AgeBand(dateOfBirth *time.Time, asOf time.Time) string {
	if dateOfBirth == nil {
		return "UNK"
	}
	age := asOf.Year() - dateOfBirth.Year()
	if asOf.YearDay() < dateOfBirth.YearDay() {
		age--
	}
	switch {
	case age < 0:
		return "UNK"
	case age <= 25:
		return "0-25"
	case age <= 35:
		return "26-35"
	case age <= 45:
		return "36-45"
	case age <= 55:
		return "46-55"
	case age <= 65:
		return "56-65"
	default:
		return "65+"
	}
}

func forEachInWindow(facts []Fact, asOf time.Time, windowMonths int, fn func(Fact)) {
	end := MonthKey(asOf)
	var start time.Time
	if windowMonths > 0 {
		start = end.AddDate(0, -(windowMonths - 1), 0)
	}
	for _, fact := range facts {
		month := MonthKey(fact.Month)
		if month.After(end) {
			continue
		}
		if windowMonths > 0 && month.Before(start) {
			continue
		}
		fn(fact)
	}
}
