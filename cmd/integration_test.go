package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	cfgpkg "github.com/palengkelab/agriprice-cli/internal/config"
)

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	resetCLIState()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// runCmdErr executes the root command expecting a failure.
func runCmdErr(t *testing.T, args ...string) error {
	t.Helper()
	resetCLIState()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		t.Fatalf("command %v succeeded, want error", args)
	}
	return err
}

// resetCLIState clears sticky flags that persist Changed state across
// invocations, along with their bound variables.
func resetCLIState() {
	reset := func(c *cobra.Command, names ...string) {
		f := c.Flags()
		for _, n := range names {
			if fl := f.Lookup(n); fl != nil {
				_ = fl.Value.Set(fl.DefValue)
				fl.Changed = false
			}
		}
	}
	reset(reportCmd, "out", "json", "multiplier", "window", "top", "fill-lag")
	reset(spikesCmd, "commodity", "category", "json", "multiplier", "all")
	reset(lagCmd, "window", "json")
	reset(chartsCmd, "out")
	reset(exportCmd, "out")
	reset(watchCmd, "out")
	for _, n := range []string{"config", "data-dir"} {
		if fl := rootCmd.PersistentFlags().Lookup(n); fl != nil {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		}
	}

	// Reset bound variables
	cfgFile = ""
	flagDataDir = ""
	cfg = nil
	repOut, repJSON, repMultiplier, repWindow, repTopN, repFillLag = "", false, 0, 0, 0, false
	spkCommodity, spkCategory, spkJSON, spkMultiplier, spkAll = "", "", false, 0, false
	lagWindow, lagJSON = 0, false
	chartsOut = ""
	exportOut = ""
	watchOut = ""
	dataCache.Clear()
}

// writeDataDir lays out a small dataset: one commodity that spikes the month
// after the typhoon, one that stays calm.
func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	fish := "Commodity,Date,Retail_Price\n" +
		"Bangus,2021-01-15,160\n" +
		"Bangus,2021-02-15,162\n" +
		"Bangus,2021-03-15,161\n" +
		"Bangus,2021-04-15,163\n" +
		"Bangus,2021-06-15,900\n"
	fruits := "Commodity,Date,Retail_Price\n" +
		"Banana,2021-01-15,30\n" +
		"Banana,2021-02-15,30.5\n" +
		"Banana,2021-03-15,31\n"
	typhoons := "Typhoon_Name,Date_Entered_PAR,Classification,Peak_Intensity\n" +
		"Odette,2021-05-10,Typhoon,195 km/h\n"

	files := map[string]string{
		"Fish -Food-Prices.csv":   fish,
		"Fruits -Food-Prices.csv": fruits,
		"typhoons.csv":            typhoons,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestCLI_ReportWritesMarkdownAndJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	dataDir := writeDataDir(t)
	outDir := filepath.Join(t.TempDir(), "out")

	runCmd(t, "report", "--data-dir", dataDir, "--out", outDir, "--json")

	md, err := os.ReadFile(filepath.Join(outDir, "report.md"))
	if err != nil {
		t.Fatalf("report.md not written: %v", err)
	}
	for _, want := range []string{"[OVERVIEW]", "[TYPHOON LAG]", "Bangus", "Odette"} {
		if !strings.Contains(string(md), want) {
			t.Fatalf("report.md missing %q", want)
		}
	}

	js, err := os.ReadFile(filepath.Join(outDir, "report.json"))
	if err != nil {
		t.Fatalf("report.json not written: %v", err)
	}
	if !strings.Contains(string(js), "\"RunID\"") {
		t.Fatal("report.json missing RunID")
	}
}

func TestCLI_ReportMultiplierOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	dataDir := writeDataDir(t)
	outDir := filepath.Join(t.TempDir(), "out")

	// A huge multiplier pushes the threshold past every observation.
	runCmd(t, "report", "--data-dir", dataDir, "--out", outDir, "--multiplier", "50")

	md, err := os.ReadFile(filepath.Join(outDir, "report.md"))
	if err != nil {
		t.Fatalf("report.md not written: %v", err)
	}
	if strings.Contains(string(md), "[PRICE SPIKES]") {
		t.Fatal("multiplier 50 should flag no spikes")
	}
	if strings.Contains(string(md), "[TYPHOON LAG]") {
		t.Fatal("no spikes should mean no lag records")
	}
}

func TestCLI_SpikesCommands(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	dataDir := writeDataDir(t)

	runCmd(t, "spikes", "--data-dir", dataDir)
	runCmd(t, "spikes", "--data-dir", dataDir, "--commodity", "Bangus", "--json")
	runCmd(t, "spikes", "--data-dir", dataDir, "--category", "Fish")

	err := runCmdErr(t, "spikes", "--data-dir", dataDir, "--commodity", "Durian")
	if !strings.Contains(err.Error(), "no observations") {
		t.Fatalf("error = %v, want no-observations error", err)
	}
	err = runCmdErr(t, "spikes", "--data-dir", dataDir, "--category", "Spices")
	if !strings.Contains(err.Error(), "no observations for category") {
		t.Fatalf("error = %v, want no-category error", err)
	}
}

func TestCLI_LagCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	dataDir := writeDataDir(t)

	runCmd(t, "lag", "--data-dir", dataDir)
	runCmd(t, "lag", "--data-dir", dataDir, "--window", "3", "--json")
}

func TestCLI_ExportWritesWorkbook(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := writeDataDir(t)
	out := filepath.Join(t.TempDir(), "analysis.xlsx")

	runCmd(t, "export", "--data-dir", dataDir, "--out", out)

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("workbook is empty")
	}
}

func TestCLI_ChartsWritePNGs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := writeDataDir(t)
	out := filepath.Join(t.TempDir(), "charts")

	runCmd(t, "charts", "--data-dir", dataDir, "--out", out)

	for _, name := range []string{"trend.png", "spikes.png", "volatility.png", "lag.png", "resilience.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("chart %s not written: %v", name, err)
		}
	}
}

func TestCLI_ConfigSetAndLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	runCmd(t, "config", "set", "spike_multiplier", "2.75")
	runCmd(t, "config", "show")

	c, err := cfgpkg.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.SpikeMultiplier != 2.75 {
		t.Fatalf("SpikeMultiplier = %v, want 2.75", c.SpikeMultiplier)
	}

	err = runCmdErr(t, "config", "set", "bogus_key", "1")
	if !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("error = %v, want unknown-key error", err)
	}
}
