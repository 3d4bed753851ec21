package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palengkelab/agriprice-cli/internal/analysis"
	"github.com/palengkelab/agriprice-cli/internal/report"
	"github.com/palengkelab/agriprice-cli/internal/utils"
)

var (
	lagWindow int
	lagJSON   bool
)

var lagCmd = &cobra.Command{
	Use:   "lag",
	Short: "Measure the lag between typhoons and the first price spike",
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, typhoons, err := loadTables()
		if err != nil {
			return err
		}
		if typhoons == nil || len(typhoons.Events) == 0 {
			return fmt.Errorf("no typhoon data loaded; set typhoon_file in config")
		}

		opts := buildOptions()
		if cmd.Flags().Changed("window") {
			opts.WindowMonths = lagWindow
		}

		stats := analysis.CommodityStatsOf(prices.Rows)
		flagged := analysis.FlagSpikes(prices.Rows, stats, opts.SpikeMultiplier)
		records := analysis.ComputeLag(typhoons.Events, flagged, opts.WindowMonths)
		summary := analysis.SortedLagStats(analysis.SummarizeLag(records))

		if lagJSON {
			b, err := utils.PrettyJSON(struct {
				Records []analysis.LagRecord
				Summary []analysis.LagStats
			}{records, summary})
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}

		fmt.Print(report.RenderLagRecords(records))
		if len(summary) > 0 {
			fmt.Println()
			bins := analysis.LagHistogram(records, opts.WindowMonths+1)
			fmt.Print(report.RenderLagSummary(summary, bins))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lagCmd)
	lagCmd.Flags().IntVar(&lagWindow, "window", 0, "lag window after a typhoon in months (overrides config)")
	lagCmd.Flags().BoolVar(&lagJSON, "json", false, "print lag records and summary as JSON")
}
