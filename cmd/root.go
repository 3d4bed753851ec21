package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/palengkelab/agriprice-cli/internal/config"
	"github.com/palengkelab/agriprice-cli/internal/dataset"
	"github.com/palengkelab/agriprice-cli/internal/report"
)

var (
	// Global flags
	cfgFile     string
	flagDataDir string

	// Loaded configuration
	cfg *cfgpkg.Config

	// dataCache keeps parsed CSVs across loads within one process. The watch
	// command invalidates entries when files change.
	dataCache = dataset.NewCache()
)

var rootCmd = &cobra.Command{
	Use:   "agriprice",
	Short: "AgriPrice CLI: Philippine commodity price and typhoon analytics",
	Long: `AgriPrice analyzes Philippine agricultural retail prices alongside typhoon
records: per-commodity statistics, price spike detection, typhoon-to-spike
lag, and resilience rankings, rendered as reports, charts, and workbooks.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.agriprice/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory with price and typhoon CSVs (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	if rootCmd.PersistentFlags().Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
}

// loadTables reads the configured price and typhoon CSVs. A missing typhoon
// file downgrades to a warning so price-only datasets still work.
func loadTables() (*dataset.PriceTable, *dataset.TyphoonTable, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}

	loader := dataset.NewLoader(cfg.PriceSchema(), cfg.TyphoonSchema(), dataCache)
	paths, err := cfg.ResolvePriceFiles()
	if err != nil {
		return nil, nil, err
	}
	prices, err := loader.LoadPriceSet(paths)
	if err != nil {
		return nil, nil, err
	}

	var typhoons *dataset.TyphoonTable
	if tp := cfg.ResolveTyphoonFile(); tp != "" {
		typhoons, err = loader.LoadTyphoons(tp)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, nil, err
			}
			fmt.Fprintf(os.Stderr, "⚠ Warning: typhoon file %s not found, skipping lag analysis\n", tp)
			typhoons = nil
		}
	}
	return prices, typhoons, nil
}

// buildOptions maps the loaded config onto analysis options.
func buildOptions() report.Options {
	opts := report.DefaultOptions()
	if cfg == nil {
		return opts
	}
	opts.SpikeMultiplier = cfg.SpikeMultiplier
	opts.WindowMonths = cfg.LagWindowMonths
	opts.TopN = cfg.TopN
	opts.FillMissingLag = cfg.FillMissingLag
	return opts
}
