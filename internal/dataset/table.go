package dataset

// PriceObservation is one cleaned row of a price table: a commodity's retail
// price for one calendar month. Category and Source identify the file the
// row came from when several per-category tables are merged into one.
type PriceObservation struct {
	Date        Month
	Commodity   string
	RetailPrice float64
	Category    string
	Source      string
}

// TyphoonEvent is one row of the typhoon table. Dated is false when the
// source date could not be parsed; undated events stay in the table for
// listings but are skipped wherever a date is needed.
type TyphoonEvent struct {
	Name           string
	Date           Month
	Dated          bool
	Classification string
	PeakIntensity  string
}

// PriceTable is the result of loading one or more price CSVs. Rows keep file
// order within a source and source order across files. Tables are immutable
// once loaded; the cache hands the same table to every caller.
type PriceTable struct {
	Rows    []PriceObservation
	Skipped int      // rows dropped for an unparseable date or price
	Sources []string // files merged into this table, in load order
}

// TyphoonTable is the result of loading a typhoon CSV.
type TyphoonTable struct {
	Events  []TyphoonEvent
	Undated int // events whose date failed to parse
}

// MergeTables concatenates price tables, preserving argument order. Skipped
// counts and source lists are combined.
func MergeTables(tables ...*PriceTable) *PriceTable {
	merged := &PriceTable{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		merged.Rows = append(merged.Rows, t.Rows...)
		merged.Skipped += t.Skipped
		merged.Sources = append(merged.Sources, t.Sources...)
	}
	return merged
}
