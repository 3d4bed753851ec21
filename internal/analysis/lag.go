package analysis

import (
	"sort"

	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

// DefaultLagWindowMonths bounds how far after a typhoon a spike is still
// attributed to it.
const DefaultLagWindowMonths = 2

// LagRecord ties a typhoon to the first price spike it was followed by for
// one commodity. LagMonths is the whole-month distance from the typhoon's
// month to FirstSpike and is never negative.
type LagRecord struct {
	Typhoon    string
	Commodity  string
	FirstSpike dataset.Month
	LagMonths  int
}

// LagStats aggregates lag records for one commodity.
type LagStats struct {
	Commodity string
	MeanLag   float64
	MedianLag float64
	Count     int
}

// ComputeLag emits one LagRecord per (typhoon, commodity) pair where the
// commodity had at least one spike inside the typhoon's window: the closed
// interval from the typhoon's month through windowMonths calendar months
// later. Undated typhoons are skipped, and typhoons with no qualifying spike
// emit nothing. The result is sorted by typhoon date, typhoon name, then
// commodity; a negative window is treated as zero.
func ComputeLag(typhoons []dataset.TyphoonEvent, flagged []FlaggedPrice, windowMonths int) []LagRecord {
	if windowMonths < 0 {
		windowMonths = 0
	}

	dated := make([]dataset.TyphoonEvent, 0, len(typhoons))
	for _, ty := range typhoons {
		if ty.Dated {
			dated = append(dated, ty)
		}
	}
	sort.Slice(dated, func(i, j int) bool {
		if dated[i].Date != dated[j].Date {
			return dated[i].Date.Before(dated[j].Date)
		}
		return dated[i].Name < dated[j].Name
	})

	var records []LagRecord
	for _, ty := range dated {
		start := ty.Date
		end := start.AddMonths(windowMonths)

		firsts := make(map[string]dataset.Month)
		for _, f := range flagged {
			if !f.Spike {
				continue
			}
			if f.Date.Before(start) || f.Date.After(end) {
				continue
			}
			if first, ok := firsts[f.Commodity]; !ok || f.Date.Before(first) {
				firsts[f.Commodity] = f.Date
			}
		}
		if len(firsts) == 0 {
			continue
		}

		names := make([]string, 0, len(firsts))
		for name := range firsts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			first := firsts[name]
			records = append(records, LagRecord{
				Typhoon:    ty.Name,
				Commodity:  name,
				FirstSpike: first,
				LagMonths:  first.MonthsSince(start),
			})
		}
	}
	return records
}

// SummarizeLag aggregates lag records per commodity: mean, median, and count
// of LagMonths. Commodities with no records are absent, not zero-filled.
func SummarizeLag(records []LagRecord) map[string]LagStats {
	lags := make(map[string][]float64)
	for _, r := range records {
		lags[r.Commodity] = append(lags[r.Commodity], float64(r.LagMonths))
	}

	out := make(map[string]LagStats, len(lags))
	for name, vals := range lags {
		var sum float64
		for _, v := range vals {
			sum += v
		}
		out[name] = LagStats{
			Commodity: name,
			MeanLag:   sum / float64(len(vals)),
			MedianLag: median(vals),
			Count:     len(vals),
		}
	}
	return out
}

// SortedLagStats flattens a lag summary ordered by mean lag ascending, ties
// by name, for "fastest to spike first" reporting.
func SortedLagStats(summary map[string]LagStats) []LagStats {
	out := make([]LagStats, 0, len(summary))
	for _, s := range summary {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanLag != out[j].MeanLag {
			return out[i].MeanLag < out[j].MeanLag
		}
		return out[i].Commodity < out[j].Commodity
	})
	return out
}

// LagHistogram counts lag records per whole month from 0 through maxMonth.
// Records beyond maxMonth are ignored; with maxMonth at least the lag window
// none are.
func LagHistogram(records []LagRecord, maxMonth int) []int {
	if maxMonth < 0 {
		maxMonth = 0
	}
	bins := make([]int, maxMonth+1)
	for _, r := range records {
		if r.LagMonths >= 0 && r.LagMonths <= maxMonth {
			bins[r.LagMonths]++
		}
	}
	return bins
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}
