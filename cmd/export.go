package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/palengkelab/agriprice-cli/internal/export"
	"github.com/palengkelab/agriprice-cli/internal/report"
	"github.com/palengkelab/agriprice-cli/internal/utils"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the analysis as an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, typhoons, err := loadTables()
		if err != nil {
			return err
		}
		r := report.Build(prices, typhoons, buildOptions())

		path := exportOut
		if path == "" {
			if err := utils.EnsureDir(cfg.OutputDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path = filepath.Join(cfg.OutputDir, "analysis.xlsx")
		}
		if err := export.WriteWorkbook(r, path); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote workbook to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "workbook path (default <output_dir>/analysis.xlsx)")
}
