// Package analysis computes the derived views of the price and typhoon
// tables: per-commodity statistics, spike flags, typhoon-to-spike lag, and
// the summary series the report and charts render. Every function here is a
// pure transformation of its inputs; nothing does I/O, keeps state between
// calls, or mutates an argument. Empty inputs yield empty results, never
// errors.
package analysis

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

// DefaultSpikeMultiplier is the number of standard deviations above the mean
// a price must exceed to count as a spike.
const DefaultSpikeMultiplier = 1.5

// CommodityStats summarizes one commodity's observed retail prices. StdPrice
// is the sample standard deviation and is NaN when Count < 2, where the
// deviation is undefined; consumers must check before comparing against it.
type CommodityStats struct {
	Commodity string
	Count     int
	MeanPrice float64
	StdPrice  float64
	MinPrice  float64
	MaxPrice  float64
}

// MarshalJSON renders an undefined std as null; NaN has no JSON encoding.
func (s CommodityStats) MarshalJSON() ([]byte, error) {
	type alias CommodityStats
	if !math.IsNaN(s.StdPrice) {
		return json.Marshal(alias(s))
	}
	return json.Marshal(struct {
		alias
		StdPrice *float64
	}{alias: alias(s)})
}

// FlaggedPrice is a price observation with its spike flag attached.
type FlaggedPrice struct {
	dataset.PriceObservation
	Spike bool
}

// CommodityStatsOf groups observations by commodity and computes count, mean,
// sample standard deviation, min, and max of the retail price within each
// group. Stats are recomputed in full on every call; there is no incremental
// path.
func CommodityStatsOf(prices []dataset.PriceObservation) map[string]CommodityStats {
	type acc struct {
		n    int
		mean float64
		m2   float64
		min  float64
		max  float64
	}
	accs := make(map[string]*acc)
	for _, p := range prices {
		if p.Commodity == "" {
			continue
		}
		a := accs[p.Commodity]
		if a == nil {
			a = &acc{min: math.Inf(1), max: math.Inf(-1)}
			accs[p.Commodity] = a
		}
		x := p.RetailPrice
		if x < a.min {
			a.min = x
		}
		if x > a.max {
			a.max = x
		}
		// Welford update
		a.n++
		delta := x - a.mean
		a.mean += delta / float64(a.n)
		a.m2 += delta * (x - a.mean)
	}

	stats := make(map[string]CommodityStats, len(accs))
	for name, a := range accs {
		s := CommodityStats{
			Commodity: name,
			Count:     a.n,
			MeanPrice: a.mean,
			StdPrice:  math.NaN(),
			MinPrice:  a.min,
			MaxPrice:  a.max,
		}
		if a.n > 1 {
			s.StdPrice = math.Sqrt(a.m2 / float64(a.n-1))
		}
		stats[name] = s
	}
	return stats
}

// FlagSpikes attaches a spike flag to every observation: true iff the
// commodity's standard deviation is defined and the price strictly exceeds
// mean + multiplier*std. A commodity missing from stats, or one with an
// undefined deviation, never flags. Output order follows input order; the
// input is not modified. A multiplier <= 0 falls back to the default.
func FlagSpikes(prices []dataset.PriceObservation, stats map[string]CommodityStats, multiplier float64) []FlaggedPrice {
	if multiplier <= 0 {
		multiplier = DefaultSpikeMultiplier
	}
	flagged := make([]FlaggedPrice, 0, len(prices))
	for _, p := range prices {
		spike := false
		if s, ok := stats[p.Commodity]; ok && !math.IsNaN(s.StdPrice) {
			spike = p.RetailPrice > s.MeanPrice+multiplier*s.StdPrice
		}
		flagged = append(flagged, FlaggedPrice{PriceObservation: p, Spike: spike})
	}
	return flagged
}

// SortedStats flattens a stats map into a slice ordered by commodity name.
func SortedStats(stats map[string]CommodityStats) []CommodityStats {
	out := make([]CommodityStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Commodity < out[j].Commodity })
	return out
}
