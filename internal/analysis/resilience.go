package analysis

import (
	"sort"
)

// ResilienceMetric positions one commodity on the volatility/lag plane:
// steadier prices and slower post-typhoon spikes read as more resilient.
// LagSynthetic marks a MeanLag that was filled in because the commodity had
// no observed lag records; synthetic values never appear unless the caller
// opted in, and the flag travels with the row all the way to rendered output.
type ResilienceMetric struct {
	Commodity    string
	Volatility   float64
	MeanLag      float64
	SpikeCount   int
	SpikeRate    float64
	LagSynthetic bool
}

// ResilienceOptions controls how commodities without observed lag are
// handled. With FillMissingLag unset they are omitted. When set, MeanLag is
// filled with half the lag window, a fixed placeholder rather than anything
// sampled, and LagSynthetic is raised on the row.
type ResilienceOptions struct {
	FillMissingLag bool
	WindowMonths   int
}

// ResilienceMetrics combines per-commodity volatility, mean observed lag, and
// spike frequency. Commodities with an undefined deviation are excluded, as
// are commodities without lag records unless opts.FillMissingLag is set.
// Sorted most resilient first: lowest volatility, then lowest lag, then name.
func ResilienceMetrics(stats map[string]CommodityStats, lagSummary map[string]LagStats, flagged []FlaggedPrice, opts ResilienceOptions) []ResilienceMetric {
	window := opts.WindowMonths
	if window <= 0 {
		window = DefaultLagWindowMonths
	}

	spikes := make(map[string]int)
	for _, f := range flagged {
		if f.Spike {
			spikes[f.Commodity]++
		}
	}

	out := make([]ResilienceMetric, 0, len(stats))
	for name, s := range stats {
		if s.Count < 2 {
			continue
		}
		m := ResilienceMetric{
			Commodity:  name,
			Volatility: s.StdPrice,
			SpikeCount: spikes[name],
			SpikeRate:  float64(spikes[name]) / float64(s.Count),
		}
		if ls, ok := lagSummary[name]; ok {
			m.MeanLag = ls.MeanLag
		} else if opts.FillMissingLag {
			m.MeanLag = float64(window) / 2
			m.LagSynthetic = true
		} else {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Volatility != out[j].Volatility {
			return out[i].Volatility < out[j].Volatility
		}
		if out[i].MeanLag != out[j].MeanLag {
			return out[i].MeanLag < out[j].MeanLag
		}
		return out[i].Commodity < out[j].Commodity
	})
	return out
}
