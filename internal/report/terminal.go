package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/palengkelab/agriprice-cli/internal/analysis"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderText renders the whole report for the terminal.
func (r *Report) RenderText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s generated %s\n\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	sb.WriteString(RenderOverview(r.Overview, r.Options))
	if len(r.SpikeCounts) > 0 {
		sb.WriteString("\n")
		sb.WriteString(RenderSpikeTable(r.SpikeCounts))
	}
	if len(r.LagSummary) > 0 {
		sb.WriteString("\n")
		sb.WriteString(RenderLagSummary(r.LagSummary, r.LagHistogram))
	}
	if len(r.Resilience) > 0 {
		sb.WriteString("\n")
		sb.WriteString(RenderResilienceTable(r.Resilience))
	}
	return sb.String()
}

// RenderOverview renders the headline numbers.
func RenderOverview(o analysis.Overview, opts Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Commodities:   %d\n", o.Commodities)
	fmt.Fprintf(&sb, "Records:       %d\n", o.Records)
	fmt.Fprintf(&sb, "Price spikes:  %d\n", o.TotalSpikes)
	fmt.Fprintf(&sb, "Average price: %.2f\n", o.MeanPrice)
	fmt.Fprintf(&sb, "Threshold:     mean + %.2f std, window %d months\n", opts.SpikeMultiplier, opts.WindowMonths)
	return sb.String()
}

// RenderStatsTable renders per-commodity statistics.
func RenderStatsTable(stats []analysis.CommodityStats) string {
	if len(stats) == 0 {
		return "No price data.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %6s %10s %10s %10s %10s\n",
		"Commodity", "Obs", "Mean", "Std", "Min", "Max"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("%-28s %6d %10.2f %10s %10.2f %10.2f\n",
			truncate(s.Commodity, 28), s.Count, s.MeanPrice, fmtStd(s.StdPrice), s.MinPrice, s.MaxPrice))
	}
	return sb.String()
}

// RenderSpikeTable renders spike counts, most first, counts in red.
func RenderSpikeTable(counts []analysis.SpikeCount) string {
	if len(counts) == 0 {
		return "No price spikes detected.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %s\n", "Commodity", "Spikes"))
	sb.WriteString(strings.Repeat("─", 36))
	sb.WriteString("\n")
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("%-28s %s\n",
			truncate(c.Commodity, 28), colorize(colorRed, fmt.Sprintf("%d", c.Spikes))))
	}
	return sb.String()
}

// RenderLagRecords renders the raw typhoon-to-spike records.
func RenderLagRecords(records []analysis.LagRecord) string {
	if len(records) == 0 {
		return "No spikes within any typhoon window.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-28s %-12s %s\n",
		"Typhoon", "Commodity", "First spike", "Lag"))
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%-20s %-28s %-12s %d mo\n",
			truncate(rec.Typhoon, 20), truncate(rec.Commodity, 28), rec.FirstSpike.String(), rec.LagMonths))
	}
	return sb.String()
}

// RenderLagSummary renders per-commodity lag aggregates and the lag
// distribution.
func RenderLagSummary(summary []analysis.LagStats, bins []int) string {
	if len(summary) == 0 {
		return "No lag records to summarize.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %10s %10s %8s\n",
		"Commodity", "Mean lag", "Median", "Records"))
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")
	for _, s := range summary {
		sb.WriteString(fmt.Sprintf("%-28s %10.2f %10.2f %8d\n",
			truncate(s.Commodity, 28), s.MeanLag, s.MedianLag, s.Count))
	}

	if len(bins) > 0 {
		sb.WriteString("\nLag distribution:\n")
		for m, n := range bins {
			sb.WriteString(fmt.Sprintf("  %d mo  %-4d %s\n", m, n, strings.Repeat("█", n)))
		}
	}
	return sb.String()
}

// RenderResilienceTable renders the volatility/lag view, synthetic lag rows
// in yellow, observed in green.
func RenderResilienceTable(metrics []analysis.ResilienceMetric) string {
	if len(metrics) == 0 {
		return "No resilience metrics available.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %10s %10s %8s %10s %s\n",
		"Commodity", "Volatility", "Mean lag", "Spikes", "Rate", "Lag source"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")
	for _, m := range metrics {
		source := colorize(colorGreen, "observed")
		if m.LagSynthetic {
			source = colorize(colorYellow, "synthetic")
		}
		sb.WriteString(fmt.Sprintf("%-28s %10.2f %10.2f %8d %10.3f %s\n",
			truncate(m.Commodity, 28), m.Volatility, m.MeanLag, m.SpikeCount, m.SpikeRate, source))
	}
	return sb.String()
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
