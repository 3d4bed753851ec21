package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/palengkelab/agriprice-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set AgriPrice configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_dir: %s\n", cfg.DataDir)
		if len(cfg.PriceFiles) > 0 {
			fmt.Printf("price_files: %s\n", strings.Join(cfg.PriceFiles, ", "))
		}
		fmt.Printf("typhoon_file: %s\n", cfg.TyphoonFile)
		fmt.Printf("spike_multiplier: %.2f\n", cfg.SpikeMultiplier)
		fmt.Printf("lag_window_months: %d\n", cfg.LagWindowMonths)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		fmt.Printf("fill_missing_lag: %t\n", cfg.FillMissingLag)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		fmt.Printf("chart_dir: %s\n", cfg.ChartDir)
		fmt.Printf("price_date_column: %s\n", cfg.PriceDateColumn)
		fmt.Printf("price_year_column: %s\n", cfg.PriceYearColumn)
		fmt.Printf("price_month_column: %s\n", cfg.PriceMonthColumn)
		fmt.Printf("price_commodity_column: %s\n", cfg.PriceCommodityColumn)
		fmt.Printf("price_value_column: %s\n", cfg.PriceValueColumn)
		fmt.Printf("typhoon_name_column: %s\n", cfg.TyphoonNameColumn)
		fmt.Printf("typhoon_date_column: %s\n", cfg.TyphoonDateColumn)
		fmt.Printf("typhoon_class_column: %s\n", cfg.TyphoonClassColumn)
		fmt.Printf("typhoon_intensity_column: %s\n", cfg.TyphoonIntensityColumn)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_dir":
			cfg.DataDir = val
		case "price_files":
			var files []string
			for _, f := range strings.Split(val, ",") {
				if f = strings.TrimSpace(f); f != "" {
					files = append(files, f)
				}
			}
			cfg.PriceFiles = files
		case "typhoon_file":
			cfg.TyphoonFile = val
		case "spike_multiplier":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for spike_multiplier: %v", val)
			}
			cfg.SpikeMultiplier = f
		case "lag_window_months":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for lag_window_months: %v", val)
			}
			cfg.LagWindowMonths = i
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for top_n: %v", val)
			}
			cfg.TopN = i
		case "fill_missing_lag":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for fill_missing_lag: %v", val)
			}
			cfg.FillMissingLag = b
		case "output_dir":
			cfg.OutputDir = val
		case "chart_dir":
			cfg.ChartDir = val
		case "price_date_column":
			cfg.PriceDateColumn = val
		case "price_year_column":
			cfg.PriceYearColumn = val
		case "price_month_column":
			cfg.PriceMonthColumn = val
		case "price_commodity_column":
			cfg.PriceCommodityColumn = val
		case "price_value_column":
			cfg.PriceValueColumn = val
		case "typhoon_name_column":
			cfg.TyphoonNameColumn = val
		case "typhoon_date_column":
			cfg.TyphoonDateColumn = val
		case "typhoon_class_column":
			cfg.TyphoonClassColumn = val
		case "typhoon_intensity_column":
			cfg.TyphoonIntensityColumn = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
