// Package report assembles one full analysis pass over the loaded tables and
// renders it as markdown or terminal output. The heavy lifting lives in the
// analysis package; Build only wires its pieces together and stamps the
// result with a run ID so artifacts rendered from the same pass can be
// correlated.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/palengkelab/agriprice-cli/internal/analysis"
	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

// Options control one analysis pass. Zero fields fall back to defaults.
type Options struct {
	// SpikeMultiplier scales the deviation in the spike threshold.
	SpikeMultiplier float64
	// WindowMonths bounds the typhoon-to-spike attribution window.
	WindowMonths int
	// TopN caps ranked listings (spike counts, volatility).
	TopN int
	// FillMissingLag includes commodities without observed lag in the
	// resilience view, marked synthetic.
	FillMissingLag bool
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{
		SpikeMultiplier: analysis.DefaultSpikeMultiplier,
		WindowMonths:    analysis.DefaultLagWindowMonths,
		TopN:            10,
	}
}

// Quality carries the data-quality notes of a pass: what the loader dropped
// or degraded, and cache activity when a cache was in play.
type Quality struct {
	SkippedRows     int
	UndatedTyphoons int
	Sources         []string
	Cache           *dataset.CacheStats
}

// Report is the full derived view of one analysis pass.
type Report struct {
	RunID         string
	GeneratedAt   time.Time
	Options       Options
	Overview      analysis.Overview
	Categories    []analysis.CategorySummary
	Stats         []analysis.CommodityStats
	Trend         []analysis.MonthlyPoint
	TrendTyphoons []dataset.TyphoonEvent
	SpikeCounts   []analysis.SpikeCount
	Volatility    []analysis.CommodityStats
	LagRecords    []analysis.LagRecord
	LagSummary    []analysis.LagStats
	LagHistogram  []int
	Resilience    []analysis.ResilienceMetric
	Flagged       []analysis.FlaggedPrice
	Quality       Quality
}

// Build runs the full analysis over the loaded tables. Nil tables behave as
// empty ones; every derived section of the result is then empty but the
// report itself is still valid.
func Build(prices *dataset.PriceTable, typhoons *dataset.TyphoonTable, opts Options) *Report {
	if opts.SpikeMultiplier <= 0 {
		opts.SpikeMultiplier = analysis.DefaultSpikeMultiplier
	}
	if opts.WindowMonths <= 0 {
		opts.WindowMonths = analysis.DefaultLagWindowMonths
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}

	var rows []dataset.PriceObservation
	var sources []string
	skipped := 0
	if prices != nil {
		rows = prices.Rows
		sources = prices.Sources
		skipped = prices.Skipped
	}
	var events []dataset.TyphoonEvent
	undated := 0
	if typhoons != nil {
		events = typhoons.Events
		undated = typhoons.Undated
	}

	stats := analysis.CommodityStatsOf(rows)
	flagged := analysis.FlagSpikes(rows, stats, opts.SpikeMultiplier)
	lagRecords := analysis.ComputeLag(events, flagged, opts.WindowMonths)
	lagSummary := analysis.SummarizeLag(lagRecords)

	r := &Report{
		RunID:        uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		Options:      opts,
		Overview:     analysis.Summarize(flagged),
		Categories:   analysis.SummarizeByCategory(flagged),
		Stats:        analysis.SortedStats(stats),
		Trend:        analysis.MonthlySeries(rows),
		SpikeCounts:  analysis.SpikeCounts(flagged, opts.TopN),
		Volatility:   analysis.VolatilityRanking(stats, opts.TopN),
		LagRecords:   lagRecords,
		LagSummary:   analysis.SortedLagStats(lagSummary),
		LagHistogram: analysis.LagHistogram(lagRecords, opts.WindowMonths+1),
		Resilience: analysis.ResilienceMetrics(stats, lagSummary, flagged, analysis.ResilienceOptions{
			FillMissingLag: opts.FillMissingLag,
			WindowMonths:   opts.WindowMonths,
		}),
		Flagged: flagged,
		Quality: Quality{SkippedRows: skipped, UndatedTyphoons: undated, Sources: sources},
	}
	if from, to, ok := analysis.PriceSpan(rows); ok {
		r.TrendTyphoons = analysis.TyphoonsInRange(events, from, to)
	}
	return r
}

// Spikes returns only the flagged observations that are spikes, in input
// order.
func (r *Report) Spikes() []analysis.FlaggedPrice {
	var out []analysis.FlaggedPrice
	for _, f := range r.Flagged {
		if f.Spike {
			out = append(out, f)
		}
	}
	return out
}
