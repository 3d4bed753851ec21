package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/palengkelab/agriprice-cli/internal/utils"
)

// Markdown renders the report in a compact section format suitable for
// committing alongside the data or pasting into a doc.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# AgriPrice Analysis Report\n\n")
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if len(r.Quality.Sources) > 0 {
		fmt.Fprintf(&b, "Sources: %s\n", strings.Join(r.Quality.Sources, ", "))
	}
	b.WriteString("\n[OVERVIEW]\n")
	fmt.Fprintf(&b, "- Commodities: %d\n", r.Overview.Commodities)
	fmt.Fprintf(&b, "- Records: %d\n", r.Overview.Records)
	fmt.Fprintf(&b, "- Price spikes: %d\n", r.Overview.TotalSpikes)
	fmt.Fprintf(&b, "- Average retail price: %.2f\n", r.Overview.MeanPrice)
	fmt.Fprintf(&b, "- Spike threshold: mean + %.2f std\n", r.Options.SpikeMultiplier)
	fmt.Fprintf(&b, "- Lag window: %d months\n", r.Options.WindowMonths)

	if len(r.Categories) > 0 {
		b.WriteString("\n[CATEGORIES]\n\n")
		b.WriteString("| Category | Commodities | Records | Spikes | Mean price |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, c := range r.Categories {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %.2f |\n",
				c.Category, c.Commodities, c.Records, c.TotalSpikes, c.MeanPrice)
		}
	}

	if len(r.Stats) > 0 {
		b.WriteString("\n[COMMODITY STATISTICS]\n\n")
		b.WriteString("| Commodity | Obs | Mean | Std | Min | Max |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Stats {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %s | %.2f | %.2f |\n",
				s.Commodity, s.Count, s.MeanPrice, fmtStd(s.StdPrice), s.MinPrice, s.MaxPrice)
		}
	}

	if len(r.SpikeCounts) > 0 {
		b.WriteString("\n[PRICE SPIKES]\n")
		for _, c := range r.SpikeCounts {
			fmt.Fprintf(&b, "- %s: %d\n", c.Commodity, c.Spikes)
		}
	}

	if len(r.Volatility) > 0 {
		b.WriteString("\n[VOLATILITY]\n")
		for _, s := range r.Volatility {
			fmt.Fprintf(&b, "- %s: std %.2f over %d observations\n", s.Commodity, s.StdPrice, s.Count)
		}
	}

	if len(r.LagRecords) > 0 {
		b.WriteString("\n[TYPHOON LAG]\n\n")
		b.WriteString("| Typhoon | Commodity | First spike | Lag (months) |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, rec := range r.LagRecords {
			fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", rec.Typhoon, rec.Commodity, rec.FirstSpike, rec.LagMonths)
		}
	}

	if len(r.LagSummary) > 0 {
		b.WriteString("\n[LAG SUMMARY]\n\n")
		b.WriteString("| Commodity | Mean lag | Median lag | Records |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, s := range r.LagSummary {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %d |\n", s.Commodity, s.MeanLag, s.MedianLag, s.Count)
		}
		b.WriteString("\nLag distribution:\n")
		for monthIdx, n := range r.LagHistogram {
			fmt.Fprintf(&b, "- %d months: %d\n", monthIdx, n)
		}
	}

	if len(r.Resilience) > 0 {
		b.WriteString("\n[RESILIENCE]\n\n")
		b.WriteString("| Commodity | Volatility | Mean lag | Spikes | Spike rate | Lag source |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, m := range r.Resilience {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %d | %.3f | %s |\n",
				m.Commodity, m.Volatility, m.MeanLag, m.SpikeCount, m.SpikeRate, lagSource(m.LagSynthetic))
		}
	}

	b.WriteString("\n[DATA QUALITY]\n")
	fmt.Fprintf(&b, "- Rows skipped during load: %d\n", r.Quality.SkippedRows)
	fmt.Fprintf(&b, "- Typhoons without a parseable date: %d\n", r.Quality.UndatedTyphoons)
	if r.Quality.Cache != nil {
		st := r.Quality.Cache
		fmt.Fprintf(&b, "- Cache: %d entries, %d hits, %d misses\n", st.Entries, st.Hits, st.Misses)
	}
	return b.String()
}

// WriteFile renders the markdown report and writes it atomically.
func (r *Report) WriteFile(path string) error {
	return utils.SafeWriteFile(path, []byte(r.Markdown()))
}

func fmtStd(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func lagSource(synthetic bool) string {
	if synthetic {
		return "synthetic"
	}
	return "observed"
}
