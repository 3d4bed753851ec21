package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/palengkelab/agriprice-cli/internal/report"
	"github.com/palengkelab/agriprice-cli/internal/utils"
)

var (
	repOut        string
	repJSON       bool
	repMultiplier float64
	repWindow     int
	repTopN       int
	repFillLag    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full analysis and write a Markdown report",
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, typhoons, err := loadTables()
		if err != nil {
			return err
		}

		opts := buildOptions()
		f := cmd.Flags()
		if f.Changed("multiplier") {
			opts.SpikeMultiplier = repMultiplier
		}
		if f.Changed("window") {
			opts.WindowMonths = repWindow
		}
		if f.Changed("top") {
			opts.TopN = repTopN
		}
		if f.Changed("fill-lag") {
			opts.FillMissingLag = repFillLag
		}

		r := report.Build(prices, typhoons, opts)
		fmt.Print(r.RenderText())

		outDir := cfg.OutputDir
		if repOut != "" {
			outDir = repOut
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		mdPath := filepath.Join(outDir, "report.md")
		if err := r.WriteFile(mdPath); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote report to %s\n", mdPath)

		if repJSON {
			b, err := utils.PrettyJSON(r)
			if err != nil {
				return err
			}
			jsonPath := filepath.Join(outDir, "report.json")
			if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
				return fmt.Errorf("write json report: %w", err)
			}
			fmt.Printf("✓ Wrote JSON report to %s\n", jsonPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOut, "out", "o", "", "output directory (default from config)")
	reportCmd.Flags().BoolVar(&repJSON, "json", false, "also write the report as JSON")
	reportCmd.Flags().Float64Var(&repMultiplier, "multiplier", 0, "spike threshold in std deviations above the mean (overrides config)")
	reportCmd.Flags().IntVar(&repWindow, "window", 0, "lag window after a typhoon in months (overrides config)")
	reportCmd.Flags().IntVar(&repTopN, "top", 0, "number of entries in ranked tables (overrides config)")
	reportCmd.Flags().BoolVar(&repFillLag, "fill-lag", false, "fill missing lag with a synthetic half-window estimate")
}
