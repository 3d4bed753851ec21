package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

// Config holds every tunable of an analysis run. Column keys make the CSV
// schema mapping explicit; files that do not match fail loudly instead of
// being guessed at.
type Config struct {
	DataDir     string   `mapstructure:"data_dir" yaml:"data_dir"`
	PriceFiles  []string `mapstructure:"price_files" yaml:"price_files"`
	TyphoonFile string   `mapstructure:"typhoon_file" yaml:"typhoon_file"`

	SpikeMultiplier float64 `mapstructure:"spike_multiplier" yaml:"spike_multiplier"`
	LagWindowMonths int     `mapstructure:"lag_window_months" yaml:"lag_window_months"`
	TopN            int     `mapstructure:"top_n" yaml:"top_n"`
	FillMissingLag  bool    `mapstructure:"fill_missing_lag" yaml:"fill_missing_lag"`

	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	ChartDir  string `mapstructure:"chart_dir" yaml:"chart_dir"`

	// Price CSV schema mapping
	PriceDateColumn      string `mapstructure:"price_date_column" yaml:"price_date_column"`
	PriceYearColumn      string `mapstructure:"price_year_column" yaml:"price_year_column"`
	PriceMonthColumn     string `mapstructure:"price_month_column" yaml:"price_month_column"`
	PriceCommodityColumn string `mapstructure:"price_commodity_column" yaml:"price_commodity_column"`
	PriceValueColumn     string `mapstructure:"price_value_column" yaml:"price_value_column"`

	// Typhoon CSV schema mapping
	TyphoonNameColumn      string `mapstructure:"typhoon_name_column" yaml:"typhoon_name_column"`
	TyphoonDateColumn      string `mapstructure:"typhoon_date_column" yaml:"typhoon_date_column"`
	TyphoonClassColumn     string `mapstructure:"typhoon_class_column" yaml:"typhoon_class_column"`
	TyphoonIntensityColumn string `mapstructure:"typhoon_intensity_column" yaml:"typhoon_intensity_column"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.agriprice/config.yaml, creating the directory if
// necessary.
func Save(c *Config, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".agriprice")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AGRIPRICE")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", "data")
	v.SetDefault("price_files", []string{})
	v.SetDefault("typhoon_file", "typhoons.csv")
	v.SetDefault("spike_multiplier", 1.5)
	v.SetDefault("lag_window_months", 2)
	v.SetDefault("top_n", 10)
	v.SetDefault("fill_missing_lag", false)
	v.SetDefault("output_dir", "out")
	v.SetDefault("chart_dir", "")
	// Price CSV schema defaults
	v.SetDefault("price_date_column", "Date")
	v.SetDefault("price_year_column", "Year")
	v.SetDefault("price_month_column", "Month")
	v.SetDefault("price_commodity_column", "Commodity")
	v.SetDefault("price_value_column", "Retail_Price")
	// Typhoon CSV schema defaults
	v.SetDefault("typhoon_name_column", "Typhoon_Name")
	v.SetDefault("typhoon_date_column", "Date_Entered_PAR")
	v.SetDefault("typhoon_class_column", "Classification")
	v.SetDefault("typhoon_intensity_column", "Peak_Intensity")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".agriprice")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve chart_dir default: <output_dir>/charts
	if c.ChartDir == "" {
		c.ChartDir = filepath.Join(c.OutputDir, "charts")
	}
	return &c, nil
}

// PriceSchema returns the configured price CSV column mapping.
func (c *Config) PriceSchema() dataset.PriceSchema {
	return dataset.PriceSchema{
		Date:      c.PriceDateColumn,
		Year:      c.PriceYearColumn,
		Month:     c.PriceMonthColumn,
		Commodity: c.PriceCommodityColumn,
		Price:     c.PriceValueColumn,
	}
}

// TyphoonSchema returns the configured typhoon CSV column mapping.
func (c *Config) TyphoonSchema() dataset.TyphoonSchema {
	return dataset.TyphoonSchema{
		Name:           c.TyphoonNameColumn,
		Date:           c.TyphoonDateColumn,
		Classification: c.TyphoonClassColumn,
		PeakIntensity:  c.TyphoonIntensityColumn,
	}
}

// ResolveTyphoonFile returns the typhoon CSV path, relative entries resolved
// against data_dir. Empty means typhoon analysis is skipped.
func (c *Config) ResolveTyphoonFile() string {
	if c.TyphoonFile == "" {
		return ""
	}
	if filepath.IsAbs(c.TyphoonFile) {
		return c.TyphoonFile
	}
	return filepath.Join(c.DataDir, c.TyphoonFile)
}

// ResolvePriceFiles returns the price CSV paths for this run. An explicit
// price_files list wins; otherwise every .csv in data_dir is used, minus the
// typhoon file.
func (c *Config) ResolvePriceFiles() ([]string, error) {
	if len(c.PriceFiles) > 0 {
		out := make([]string, 0, len(c.PriceFiles))
		for _, f := range c.PriceFiles {
			if filepath.IsAbs(f) {
				out = append(out, f)
			} else {
				out = append(out, filepath.Join(c.DataDir, f))
			}
		}
		return out, nil
	}

	entries, err := os.ReadDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	typhoonBase := filepath.Base(c.ResolveTyphoonFile())
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		if name == typhoonBase {
			continue
		}
		out = append(out, filepath.Join(c.DataDir, name))
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("no price CSV files in %s", c.DataDir)
	}
	return out, nil
}
