package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/palengkelab/agriprice-cli/internal/analysis"
	"github.com/palengkelab/agriprice-cli/internal/report"
	"github.com/palengkelab/agriprice-cli/internal/utils"
)

var (
	spkCommodity  string
	spkCategory   string
	spkJSON       bool
	spkMultiplier float64
	spkAll        bool
)

var spikesCmd = &cobra.Command{
	Use:   "spikes",
	Short: "Detect and list price spikes",
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, _, err := loadTables()
		if err != nil {
			return err
		}

		rows := prices.Rows
		if spkCategory != "" {
			rows = analysis.FilterCategory(rows, spkCategory)
			if len(rows) == 0 {
				return fmt.Errorf("no observations for category %q (have: %s)",
					spkCategory, strings.Join(analysis.Categories(prices.Rows), ", "))
			}
		}

		multiplier := buildOptions().SpikeMultiplier
		if cmd.Flags().Changed("multiplier") {
			multiplier = spkMultiplier
		}

		stats := analysis.CommodityStatsOf(rows)
		flagged := analysis.FlagSpikes(rows, stats, multiplier)
		if spkCommodity != "" {
			var filtered []analysis.FlaggedPrice
			for _, fp := range flagged {
				if strings.EqualFold(fp.Commodity, spkCommodity) {
					filtered = append(filtered, fp)
				}
			}
			if len(filtered) == 0 {
				return fmt.Errorf("no observations for commodity %q", spkCommodity)
			}
			flagged = filtered
		}

		var spikes []analysis.FlaggedPrice
		for _, fp := range flagged {
			if fp.Spike {
				spikes = append(spikes, fp)
			}
		}

		if spkJSON {
			b, err := utils.PrettyJSON(spikes)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}

		topN := buildOptions().TopN
		if spkAll {
			topN = 0
		}
		fmt.Print(report.RenderSpikeTable(analysis.SpikeCounts(flagged, topN)))
		if len(spikes) > 0 {
			fmt.Println()
			for _, s := range spikes {
				fmt.Printf("  %s  %-28s %10.2f\n", s.Date.String(), s.Commodity, s.RetailPrice)
			}
		}
		if spkCommodity != "" {
			series := analysis.CommoditySeries(rows, flagged[0].Commodity)
			fmt.Printf("\nMonthly averages for %s:\n", flagged[0].Commodity)
			for _, pt := range series {
				fmt.Printf("  %s  %10.2f\n", pt.Month.String(), pt.MeanPrice)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(spikesCmd)
	spikesCmd.Flags().StringVarP(&spkCommodity, "commodity", "c", "", "limit output to one commodity")
	spikesCmd.Flags().StringVar(&spkCategory, "category", "", "limit output to one source category")
	spikesCmd.Flags().BoolVar(&spkJSON, "json", false, "print spike observations as JSON")
	spikesCmd.Flags().Float64Var(&spkMultiplier, "multiplier", 0, "spike threshold in std deviations above the mean (overrides config)")
	spikesCmd.Flags().BoolVar(&spkAll, "all", false, "list every commodity instead of the configured top N")
}
