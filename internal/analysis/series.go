package analysis

import (
	"sort"

	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

// Overview captures the headline numbers of one analysis pass.
type Overview struct {
	Commodities int
	Records     int
	TotalSpikes int
	MeanPrice   float64
}

// MonthlyPoint is the average price across all observations in one month.
type MonthlyPoint struct {
	Month     dataset.Month
	MeanPrice float64
	Count     int
}

// SpikeCount is a commodity's total number of flagged observations.
type SpikeCount struct {
	Commodity string
	Spikes    int
}

// Summarize computes the overview of a flagged price table.
func Summarize(flagged []FlaggedPrice) Overview {
	var o Overview
	var sum float64
	seen := make(map[string]bool)
	for _, f := range flagged {
		o.Records++
		sum += f.RetailPrice
		if !seen[f.Commodity] {
			seen[f.Commodity] = true
			o.Commodities++
		}
		if f.Spike {
			o.TotalSpikes++
		}
	}
	if o.Records > 0 {
		o.MeanPrice = sum / float64(o.Records)
	}
	return o
}

// MonthlySeries averages prices per month across every commodity, the
// national trend line. Sorted by month ascending.
func MonthlySeries(prices []dataset.PriceObservation) []MonthlyPoint {
	sums := make(map[dataset.Month]float64)
	counts := make(map[dataset.Month]int)
	for _, p := range prices {
		sums[p.Date] += p.RetailPrice
		counts[p.Date]++
	}

	out := make([]MonthlyPoint, 0, len(sums))
	for m, sum := range sums {
		out = append(out, MonthlyPoint{Month: m, MeanPrice: sum / float64(counts[m]), Count: counts[m]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// CommoditySeries averages one commodity's prices per month.
func CommoditySeries(prices []dataset.PriceObservation, commodity string) []MonthlyPoint {
	var filtered []dataset.PriceObservation
	for _, p := range prices {
		if p.Commodity == commodity {
			filtered = append(filtered, p)
		}
	}
	return MonthlySeries(filtered)
}

// SpikeCounts totals spikes per commodity, most first, ties by name. topN
// truncates the result; topN <= 0 keeps everything. Commodities without a
// single spike do not appear.
func SpikeCounts(flagged []FlaggedPrice, topN int) []SpikeCount {
	counts := make(map[string]int)
	for _, f := range flagged {
		if f.Spike {
			counts[f.Commodity]++
		}
	}

	out := make([]SpikeCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, SpikeCount{Commodity: name, Spikes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spikes != out[j].Spikes {
			return out[i].Spikes > out[j].Spikes
		}
		return out[i].Commodity < out[j].Commodity
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// VolatilityRanking orders commodities by standard deviation descending, ties
// by name. Commodities with an undefined deviation are excluded. topN <= 0
// keeps everything.
func VolatilityRanking(stats map[string]CommodityStats, topN int) []CommodityStats {
	out := make([]CommodityStats, 0, len(stats))
	for _, s := range stats {
		if s.Count > 1 {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StdPrice != out[j].StdPrice {
			return out[i].StdPrice > out[j].StdPrice
		}
		return out[i].Commodity < out[j].Commodity
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// CategorySummary is the overview of one source category.
type CategorySummary struct {
	Category string
	Overview
}

// SummarizeByCategory rolls the overview up per source category, in category
// order. Rows without a category label are left out.
func SummarizeByCategory(flagged []FlaggedPrice) []CategorySummary {
	obs := make([]dataset.PriceObservation, len(flagged))
	for i, f := range flagged {
		obs[i] = f.PriceObservation
	}

	var out []CategorySummary
	for _, cat := range Categories(obs) {
		var group []FlaggedPrice
		for _, f := range flagged {
			if f.Category == cat {
				group = append(group, f)
			}
		}
		out = append(out, CategorySummary{Category: cat, Overview: Summarize(group)})
	}
	return out
}

// Categories lists the distinct category labels present, sorted.
func Categories(prices []dataset.PriceObservation) []string {
	seen := make(map[string]bool)
	for _, p := range prices {
		if p.Category != "" {
			seen[p.Category] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FilterCategory keeps observations with the given category label.
func FilterCategory(prices []dataset.PriceObservation, category string) []dataset.PriceObservation {
	var out []dataset.PriceObservation
	for _, p := range prices {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// PriceSpan returns the earliest and latest observation months. ok is false
// for an empty table.
func PriceSpan(prices []dataset.PriceObservation) (from, to dataset.Month, ok bool) {
	for i, p := range prices {
		if i == 0 {
			from, to = p.Date, p.Date
			continue
		}
		if p.Date.Before(from) {
			from = p.Date
		}
		if p.Date.After(to) {
			to = p.Date
		}
	}
	return from, to, len(prices) > 0
}

// TyphoonsInRange keeps dated events whose month falls inside [from, to],
// sorted by date then name. Used to overlay typhoons on the price trend.
func TyphoonsInRange(typhoons []dataset.TyphoonEvent, from, to dataset.Month) []dataset.TyphoonEvent {
	var out []dataset.TyphoonEvent
	for _, ty := range typhoons {
		if !ty.Dated {
			continue
		}
		if ty.Date.Before(from) || ty.Date.After(to) {
			continue
		}
		out = append(out, ty)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
