// Package export writes a full analysis run as an Excel workbook, one sheet
// per report section.
package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/palengkelab/agriprice-cli/internal/report"
)

const (
	sheetOverview   = "Overview"
	sheetStats      = "Commodity Stats"
	sheetSpikes     = "Spikes"
	sheetLagRecords = "Lag Records"
	sheetLagSummary = "Lag Summary"
	sheetResilience = "Resilience"
)

// WriteWorkbook saves the report as an .xlsx workbook at path.
func WriteWorkbook(r *report.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetOverview)
	writeOverview(f, r)
	writeStats(f, r)
	writeSpikes(f, r)
	writeLagRecords(f, r)
	writeLagSummary(f, r)
	writeResilience(f, r)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, width float64) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetColWidth(sheet, cell, cell, width)
	}
}

func writeOverview(f *excelize.File, r *report.Report) {
	rows := [][2]any{
		{"Run ID", r.RunID},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Commodities", r.Overview.Commodities},
		{"Records", r.Overview.Records},
		{"Price spikes", r.Overview.TotalSpikes},
		{"Mean retail price", r.Overview.MeanPrice},
		{"Spike multiplier", r.Options.SpikeMultiplier},
		{"Lag window (months)", r.Options.WindowMonths},
		{"Skipped rows", r.Quality.SkippedRows},
		{"Undated typhoons", r.Quality.UndatedTyphoons},
	}
	for _, src := range r.Quality.Sources {
		rows = append(rows, [2]any{"Source", src})
	}
	for _, c := range r.Categories {
		rows = append(rows, [2]any{"Category " + c.Category,
			fmt.Sprintf("%d commodities, %d records, %d spikes", c.Commodities, c.Records, c.TotalSpikes)})
	}

	f.SetColWidth(sheetOverview, "A", "A", 22)
	f.SetColWidth(sheetOverview, "B", "B", 42)
	for i, row := range rows {
		f.SetCellValue(sheetOverview, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheetOverview, fmt.Sprintf("B%d", i+1), row[1])
	}
}

func writeStats(f *excelize.File, r *report.Report) {
	f.NewSheet(sheetStats)
	writeHeader(f, sheetStats, []string{"Commodity", "Observations", "Mean", "Std", "Min", "Max"}, 16)

	for i, s := range r.Stats {
		row := i + 2
		f.SetCellValue(sheetStats, fmt.Sprintf("A%d", row), s.Commodity)
		f.SetCellValue(sheetStats, fmt.Sprintf("B%d", row), s.Count)
		f.SetCellValue(sheetStats, fmt.Sprintf("C%d", row), s.MeanPrice)
		if math.IsNaN(s.StdPrice) {
			f.SetCellValue(sheetStats, fmt.Sprintf("D%d", row), "n/a")
		} else {
			f.SetCellValue(sheetStats, fmt.Sprintf("D%d", row), s.StdPrice)
		}
		f.SetCellValue(sheetStats, fmt.Sprintf("E%d", row), s.MinPrice)
		f.SetCellValue(sheetStats, fmt.Sprintf("F%d", row), s.MaxPrice)
	}
}

func writeSpikes(f *excelize.File, r *report.Report) {
	f.NewSheet(sheetSpikes)
	writeHeader(f, sheetSpikes, []string{"Month", "Commodity", "Category", "Retail Price", "Source"}, 18)

	row := 2
	for _, p := range r.Flagged {
		if !p.Spike {
			continue
		}
		f.SetCellValue(sheetSpikes, fmt.Sprintf("A%d", row), p.Date.String())
		f.SetCellValue(sheetSpikes, fmt.Sprintf("B%d", row), p.Commodity)
		f.SetCellValue(sheetSpikes, fmt.Sprintf("C%d", row), p.Category)
		f.SetCellValue(sheetSpikes, fmt.Sprintf("D%d", row), p.RetailPrice)
		f.SetCellValue(sheetSpikes, fmt.Sprintf("E%d", row), p.Source)
		row++
	}
}

func writeLagRecords(f *excelize.File, r *report.Report) {
	f.NewSheet(sheetLagRecords)
	writeHeader(f, sheetLagRecords, []string{"Typhoon", "Commodity", "First Spike", "Lag (months)"}, 18)

	for i, rec := range r.LagRecords {
		row := i + 2
		f.SetCellValue(sheetLagRecords, fmt.Sprintf("A%d", row), rec.Typhoon)
		f.SetCellValue(sheetLagRecords, fmt.Sprintf("B%d", row), rec.Commodity)
		f.SetCellValue(sheetLagRecords, fmt.Sprintf("C%d", row), rec.FirstSpike.String())
		f.SetCellValue(sheetLagRecords, fmt.Sprintf("D%d", row), rec.LagMonths)
	}
}

func writeLagSummary(f *excelize.File, r *report.Report) {
	f.NewSheet(sheetLagSummary)
	writeHeader(f, sheetLagSummary, []string{"Commodity", "Mean Lag", "Median Lag", "Records"}, 16)

	for i, s := range r.LagSummary {
		row := i + 2
		f.SetCellValue(sheetLagSummary, fmt.Sprintf("A%d", row), s.Commodity)
		f.SetCellValue(sheetLagSummary, fmt.Sprintf("B%d", row), s.MeanLag)
		f.SetCellValue(sheetLagSummary, fmt.Sprintf("C%d", row), s.MedianLag)
		f.SetCellValue(sheetLagSummary, fmt.Sprintf("D%d", row), s.Count)
	}
}

func writeResilience(f *excelize.File, r *report.Report) {
	f.NewSheet(sheetResilience)
	writeHeader(f, sheetResilience, []string{"Commodity", "Volatility", "Mean Lag", "Spikes", "Spike Rate", "Lag Source"}, 16)

	for i, m := range r.Resilience {
		row := i + 2
		source := "observed"
		if m.LagSynthetic {
			source = "synthetic"
		}
		f.SetCellValue(sheetResilience, fmt.Sprintf("A%d", row), m.Commodity)
		f.SetCellValue(sheetResilience, fmt.Sprintf("B%d", row), m.Volatility)
		f.SetCellValue(sheetResilience, fmt.Sprintf("C%d", row), m.MeanLag)
		f.SetCellValue(sheetResilience, fmt.Sprintf("D%d", row), m.SpikeCount)
		f.SetCellValue(sheetResilience, fmt.Sprintf("E%d", row), m.SpikeRate)
		f.SetCellValue(sheetResilience, fmt.Sprintf("F%d", row), source)
	}
}
