package report

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/palengkelab/agriprice-cli/internal/analysis"
	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

func month(y, m int) dataset.Month {
	return dataset.Month{Year: y, Month: time.Month(m)}
}

// fixtureTables returns a small but complete input: Rice spikes once after
// the typhoon, Banana stays calm, and both tables carry quality counters.
func fixtureTables() (*dataset.PriceTable, *dataset.TyphoonTable) {
	prices := &dataset.PriceTable{
		Rows: []dataset.PriceObservation{
			{Date: month(2021, 1), Commodity: "Rice", RetailPrice: 40, Category: "Cereals"},
			{Date: month(2021, 2), Commodity: "Rice", RetailPrice: 41, Category: "Cereals"},
			{Date: month(2021, 3), Commodity: "Rice", RetailPrice: 40, Category: "Cereals"},
			{Date: month(2021, 4), Commodity: "Rice", RetailPrice: 42, Category: "Cereals"},
			{Date: month(2021, 6), Commodity: "Rice", RetailPrice: 400, Category: "Cereals"},
			{Date: month(2021, 1), Commodity: "Banana", RetailPrice: 30, Category: "Fruits"},
			{Date: month(2021, 2), Commodity: "Banana", RetailPrice: 30.5, Category: "Fruits"},
			{Date: month(2021, 3), Commodity: "Banana", RetailPrice: 31, Category: "Fruits"},
		},
		Skipped: 2,
		Sources: []string{"prices.csv"},
	}
	typhoons := &dataset.TyphoonTable{
		Events: []dataset.TyphoonEvent{
			{Name: "Odette", Date: month(2021, 5), Dated: true, Classification: "Typhoon"},
		},
		Undated: 1,
	}
	return prices, typhoons
}

func TestBuild(t *testing.T) {
	prices, typhoons := fixtureTables()
	r := Build(prices, typhoons, DefaultOptions())

	if r.RunID == "" {
		t.Fatal("Build produced empty RunID")
	}
	if r.GeneratedAt.IsZero() {
		t.Fatal("Build produced zero GeneratedAt")
	}

	if r.Overview.Commodities != 2 || r.Overview.Records != 8 || r.Overview.TotalSpikes != 1 {
		t.Fatalf("Overview = %+v, want 2 commodities, 8 records, 1 spike", r.Overview)
	}
	if got := []string{r.Stats[0].Commodity, r.Stats[1].Commodity}; got[0] != "Banana" || got[1] != "Rice" {
		t.Fatalf("Stats order = %v, want [Banana Rice]", got)
	}

	if len(r.Categories) != 2 || r.Categories[0].Category != "Cereals" || r.Categories[1].Category != "Fruits" {
		t.Fatalf("Categories = %+v, want [Cereals Fruits]", r.Categories)
	}
	if r.Categories[0].TotalSpikes != 1 || r.Categories[1].TotalSpikes != 0 {
		t.Fatalf("Categories spike counts = %+v, want Cereals 1, Fruits 0", r.Categories)
	}

	wantCounts := []analysis.SpikeCount{{Commodity: "Rice", Spikes: 1}}
	if !reflect.DeepEqual(r.SpikeCounts, wantCounts) {
		t.Fatalf("SpikeCounts = %+v, want %+v", r.SpikeCounts, wantCounts)
	}

	wantLag := []analysis.LagRecord{
		{Typhoon: "Odette", Commodity: "Rice", FirstSpike: month(2021, 6), LagMonths: 1},
	}
	if !reflect.DeepEqual(r.LagRecords, wantLag) {
		t.Fatalf("LagRecords = %+v, want %+v", r.LagRecords, wantLag)
	}
	wantSummary := []analysis.LagStats{{Commodity: "Rice", MeanLag: 1, MedianLag: 1, Count: 1}}
	if !reflect.DeepEqual(r.LagSummary, wantSummary) {
		t.Fatalf("LagSummary = %+v, want %+v", r.LagSummary, wantSummary)
	}
	if want := []int{0, 1, 0, 0}; !reflect.DeepEqual(r.LagHistogram, want) {
		t.Fatalf("LagHistogram = %v, want %v", r.LagHistogram, want)
	}

	if len(r.Resilience) != 1 || r.Resilience[0].Commodity != "Rice" || r.Resilience[0].LagSynthetic {
		t.Fatalf("Resilience = %+v, want single observed Rice entry", r.Resilience)
	}

	if len(r.Trend) != 5 {
		t.Fatalf("Trend has %d points, want 5", len(r.Trend))
	}
	if len(r.TrendTyphoons) != 1 || r.TrendTyphoons[0].Name != "Odette" {
		t.Fatalf("TrendTyphoons = %+v, want Odette", r.TrendTyphoons)
	}

	q := r.Quality
	if q.SkippedRows != 2 || q.UndatedTyphoons != 1 || !reflect.DeepEqual(q.Sources, []string{"prices.csv"}) {
		t.Fatalf("Quality = %+v", q)
	}
}

func TestBuildFillMissingLag(t *testing.T) {
	prices, typhoons := fixtureTables()
	opts := DefaultOptions()
	opts.FillMissingLag = true
	r := Build(prices, typhoons, opts)

	if len(r.Resilience) != 2 {
		t.Fatalf("Resilience has %d entries, want 2", len(r.Resilience))
	}
	banana := r.Resilience[0]
	if banana.Commodity != "Banana" || !banana.LagSynthetic || banana.MeanLag != 1 {
		t.Fatalf("Resilience[0] = %+v, want synthetic Banana with lag 1", banana)
	}
	if r.Resilience[1].Commodity != "Rice" || r.Resilience[1].LagSynthetic {
		t.Fatalf("Resilience[1] = %+v, want observed Rice", r.Resilience[1])
	}
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil, nil, Options{})

	if r.Options.SpikeMultiplier != 1.5 || r.Options.WindowMonths != 2 || r.Options.TopN != 10 {
		t.Fatalf("defaulted Options = %+v", r.Options)
	}
	if r.Overview.Records != 0 || len(r.Stats) != 0 || len(r.LagRecords) != 0 {
		t.Fatalf("empty Build produced data: %+v", r)
	}
	if got := r.Spikes(); len(got) != 0 {
		t.Fatalf("Spikes() = %+v, want none", got)
	}
	md := r.Markdown()
	if !strings.Contains(md, "[OVERVIEW]") || !strings.Contains(md, "[DATA QUALITY]") {
		t.Fatalf("empty markdown missing sections:\n%s", md)
	}
}

func TestSpikes(t *testing.T) {
	prices, typhoons := fixtureTables()
	r := Build(prices, typhoons, DefaultOptions())

	spikes := r.Spikes()
	if len(spikes) != 1 {
		t.Fatalf("Spikes() returned %d entries, want 1", len(spikes))
	}
	if spikes[0].Commodity != "Rice" || spikes[0].RetailPrice != 400 {
		t.Fatalf("Spikes()[0] = %+v, want the Rice 400 observation", spikes[0])
	}
}

func TestMarkdownSections(t *testing.T) {
	prices, typhoons := fixtureTables()
	r := Build(prices, typhoons, DefaultOptions())
	md := r.Markdown()

	for _, want := range []string{
		"# AgriPrice Analysis Report",
		r.RunID,
		"[OVERVIEW]",
		"[CATEGORIES]",
		"[COMMODITY STATISTICS]",
		"[PRICE SPIKES]",
		"[VOLATILITY]",
		"[TYPHOON LAG]",
		"[LAG SUMMARY]",
		"[RESILIENCE]",
		"[DATA QUALITY]",
		"Odette",
		"Rice",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownUndefinedStd(t *testing.T) {
	prices := &dataset.PriceTable{
		Rows: []dataset.PriceObservation{
			{Date: month(2021, 1), Commodity: "Onion", RetailPrice: 55},
		},
	}
	r := Build(prices, nil, Options{})
	if !strings.Contains(r.Markdown(), "n/a") {
		t.Fatal("single-observation commodity should render std as n/a")
	}
}

func TestWriteFile(t *testing.T) {
	prices, typhoons := fixtureTables()
	r := Build(prices, typhoons, DefaultOptions())

	path := filepath.Join(t.TempDir(), "report.md")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report back: %v", err)
	}
	if !strings.Contains(string(data), "# AgriPrice Analysis Report") {
		t.Fatal("written report missing title")
	}
}

func TestRenderText(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	prices, typhoons := fixtureTables()
	r := Build(prices, typhoons, DefaultOptions())
	out := r.RenderText()

	for _, want := range []string{"Commodities:   2", "Spikes", "observed", "Rice"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderText missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Fatal("RenderText emitted ANSI codes with NO_COLOR set")
	}
}

func TestRenderEmptyTables(t *testing.T) {
	if got := RenderStatsTable(nil); got != "No price data.\n" {
		t.Fatalf("RenderStatsTable(nil) = %q", got)
	}
	if got := RenderSpikeTable(nil); got != "No price spikes detected.\n" {
		t.Fatalf("RenderSpikeTable(nil) = %q", got)
	}
	if got := RenderLagRecords(nil); got != "No spikes within any typhoon window.\n" {
		t.Fatalf("RenderLagRecords(nil) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"Rice", 10, "Rice"},
		{"Whole Chicken Dressed", 10, "Whole C..."},
		{"ab", 2, "ab"},
		{"abcd", 3, "abc"},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.maxLen); got != c.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", c.in, c.maxLen, got, c.want)
		}
	}
}
