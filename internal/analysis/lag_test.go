package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/palengkelab/agriprice-cli/internal/dataset"
)

var lagTyphoons = []dataset.TyphoonEvent{
	{Name: "Odette", Date: month(2021, time.June), Dated: true, Classification: "Typhoon"},
	{Name: "Ghost", Dated: false},
	{Name: "Paeng", Date: month(2022, time.October), Dated: true},
}

// Window of 2 months around Odette (2021-06) covers 2021-06 through 2021-08.
var lagFlagged = []FlaggedPrice{
	flagged(2021, time.May, "Rice", true),     // before the window
	flagged(2021, time.July, "Rice", true),    // first qualifying rice spike
	flagged(2021, time.August, "Rice", true),  // later spike, must not win
	flagged(2021, time.June, "Sugar", true),   // same month as the typhoon
	flagged(2021, time.August, "Mango", true), // exactly at the window end
	flagged(2021, time.September, "Banana", true),
	flagged(2021, time.July, "Tomato", false), // in window but not a spike
}

func TestComputeLag(t *testing.T) {
	records := ComputeLag(lagTyphoons, lagFlagged, 2)

	want := []LagRecord{
		{Typhoon: "Odette", Commodity: "Mango", FirstSpike: month(2021, time.August), LagMonths: 2},
		{Typhoon: "Odette", Commodity: "Rice", FirstSpike: month(2021, time.July), LagMonths: 1},
		{Typhoon: "Odette", Commodity: "Sugar", FirstSpike: month(2021, time.June), LagMonths: 0},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %#v, want %#v", records, want)
	}

	for _, r := range records {
		if r.LagMonths < 0 {
			t.Fatalf("negative lag in %#v", r)
		}
		if r.Typhoon == "Ghost" {
			t.Fatalf("undated typhoon produced a record: %#v", r)
		}
		if r.Typhoon == "Paeng" {
			t.Fatalf("typhoon without qualifying spikes produced a record: %#v", r)
		}
	}
}

func TestComputeLagIdempotent(t *testing.T) {
	first := ComputeLag(lagTyphoons, lagFlagged, 2)
	second := ComputeLag(lagTyphoons, lagFlagged, 2)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated runs differ: %#v vs %#v", first, second)
	}
}

func TestComputeLagZeroWindow(t *testing.T) {
	records := ComputeLag(lagTyphoons, lagFlagged, 0)
	if len(records) != 1 || records[0].Commodity != "Sugar" || records[0].LagMonths != 0 {
		t.Fatalf("zero-window records = %#v, want only same-month Sugar", records)
	}
	// A negative window behaves like zero.
	if neg := ComputeLag(lagTyphoons, lagFlagged, -3); !reflect.DeepEqual(neg, records) {
		t.Fatalf("negative window records = %#v, want %#v", neg, records)
	}
}

func TestComputeLagYearCarry(t *testing.T) {
	typhoons := []dataset.TyphoonEvent{
		{Name: "Rolly", Date: month(2021, time.December), Dated: true},
	}
	spikes := []FlaggedPrice{
		flagged(2022, time.February, "Rice", true),
		flagged(2022, time.March, "Rice", true), // just past the window
	}
	records := ComputeLag(typhoons, spikes, 2)
	if len(records) != 1 {
		t.Fatalf("records = %#v, want one", records)
	}
	if records[0].FirstSpike != month(2022, time.February) || records[0].LagMonths != 2 {
		t.Fatalf("year-carry record = %#v, want first spike 2022-02 with lag 2", records[0])
	}
}

func TestComputeLagEmptyInputs(t *testing.T) {
	if records := ComputeLag(nil, lagFlagged, 2); len(records) != 0 {
		t.Fatalf("records without typhoons = %#v, want none", records)
	}
	if records := ComputeLag(lagTyphoons, nil, 2); len(records) != 0 {
		t.Fatalf("records without prices = %#v, want none", records)
	}
}

func TestSummarizeLag(t *testing.T) {
	records := []LagRecord{
		{Typhoon: "A", Commodity: "Rice", LagMonths: 1},
		{Typhoon: "B", Commodity: "Rice", LagMonths: 3},
		{Typhoon: "A", Commodity: "Sugar", LagMonths: 0},
		{Typhoon: "B", Commodity: "Sugar", LagMonths: 1},
		{Typhoon: "C", Commodity: "Sugar", LagMonths: 4},
	}
	summary := SummarizeLag(records)
	if len(summary) != 2 {
		t.Fatalf("summary len = %d, want 2", len(summary))
	}

	rice := summary["Rice"]
	if rice.Count != 2 || !almostEqual(rice.MeanLag, 2, 1e-9) || !almostEqual(rice.MedianLag, 2, 1e-9) {
		t.Fatalf("rice summary = %#v, want mean 2 median 2 count 2", rice)
	}

	sugar := summary["Sugar"]
	if sugar.Count != 3 || !almostEqual(sugar.MeanLag, 5.0/3.0, 1e-9) || !almostEqual(sugar.MedianLag, 1, 1e-9) {
		t.Fatalf("sugar summary = %#v, want mean 5/3 median 1 count 3", sugar)
	}

	if _, ok := summary["Mango"]; ok {
		t.Fatalf("commodity without records must be absent, got %#v", summary["Mango"])
	}

	if empty := SummarizeLag(nil); len(empty) != 0 {
		t.Fatalf("summary of no records = %#v, want empty", empty)
	}
}

func TestSortedLagStats(t *testing.T) {
	summary := map[string]LagStats{
		"Rice":  {Commodity: "Rice", MeanLag: 2, Count: 2},
		"Sugar": {Commodity: "Sugar", MeanLag: 5.0 / 3.0, Count: 3},
		"Corn":  {Commodity: "Corn", MeanLag: 2, Count: 1},
	}
	sorted := SortedLagStats(summary)
	want := []string{"Sugar", "Corn", "Rice"}
	for i, s := range sorted {
		if s.Commodity != want[i] {
			t.Fatalf("sorted[%d] = %q, want %q", i, s.Commodity, want[i])
		}
	}
}

func TestLagHistogram(t *testing.T) {
	records := []LagRecord{
		{LagMonths: 0}, {LagMonths: 1}, {LagMonths: 1}, {LagMonths: 2}, {LagMonths: 5},
	}
	bins := LagHistogram(records, 3)
	want := []int{1, 2, 1, 0}
	if !reflect.DeepEqual(bins, want) {
		t.Fatalf("bins = %v, want %v", bins, want)
	}
	if empty := LagHistogram(nil, 2); !reflect.DeepEqual(empty, []int{0, 0, 0}) {
		t.Fatalf("empty bins = %v, want zeros", empty)
	}
}

func flagged(y int, m time.Month, commodity string, spike bool) FlaggedPrice {
	return FlaggedPrice{PriceObservation: obs(y, m, commodity, 100), Spike: spike}
}
