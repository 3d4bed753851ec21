package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/palengkelab/agriprice-cli/internal/charts"
	"github.com/palengkelab/agriprice-cli/internal/report"
	"github.com/palengkelab/agriprice-cli/internal/utils"
)

var chartsOut string

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Render the analysis as PNG charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, typhoons, err := loadTables()
		if err != nil {
			return err
		}
		r := report.Build(prices, typhoons, buildOptions())

		dir := cfg.ChartDir
		if chartsOut != "" {
			dir = chartsOut
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}

		renders := []struct {
			name string
			fn   func(path string) error
		}{
			{"trend.png", func(p string) error { return charts.SaveTrend(r.Trend, r.TrendTyphoons, p) }},
			{"spikes.png", func(p string) error { return charts.SaveSpikeCounts(r.SpikeCounts, p) }},
			{"volatility.png", func(p string) error { return charts.SaveVolatility(r.Volatility, p) }},
			{"lag.png", func(p string) error { return charts.SaveLagHistogram(r.LagHistogram, p) }},
			{"resilience.png", func(p string) error { return charts.SaveResilience(r.Resilience, p) }},
		}
		for _, c := range renders {
			path := filepath.Join(dir, c.name)
			if err := c.fn(path); err != nil {
				if errors.Is(err, charts.ErrNoData) {
					fmt.Fprintf(os.Stderr, "⚠ Skipped %s: %v\n", c.name, err)
					continue
				}
				return err
			}
			fmt.Printf("✓ Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartsCmd.Flags().StringVarP(&chartsOut, "out", "o", "", "chart directory (default from config)")
}
