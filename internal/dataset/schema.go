package dataset

import (
	"fmt"
	"strings"
)

// PriceSchema names the CSV headers carrying each field of a price table.
// Headers are normalized (trimmed, inner spaces replaced with underscores)
// before matching, and matching is exact: the loader never guesses a column
// from substrings. Either Date, or both Year and Month, must resolve; when
// Date is absent the observation month is synthesized from the year/month
// pair.
type PriceSchema struct {
	Date      string
	Year      string
	Month     string
	Commodity string
	Price     string
}

// TyphoonSchema names the CSV headers carrying each field of a typhoon table.
type TyphoonSchema struct {
	Name           string
	Date           string
	Classification string
	PeakIntensity  string
}

// DefaultPriceSchema matches the cleaned PSA price exports.
func DefaultPriceSchema() PriceSchema {
	return PriceSchema{
		Date:      "Date",
		Year:      "Year",
		Month:     "Month",
		Commodity: "Commodity",
		Price:     "Retail_Price",
	}
}

// DefaultTyphoonSchema matches the PAGASA typhoon export.
func DefaultTyphoonSchema() TyphoonSchema {
	return TyphoonSchema{
		Name:           "Typhoon_Name",
		Date:           "Date_Entered_PAR",
		Classification: "Classification",
		PeakIntensity:  "Peak_Intensity",
	}
}

// NormalizeHeader applies the mechanical cleanup both schema names and CSV
// headers go through before comparison: trim surrounding whitespace, collapse
// inner spaces to underscores.
func NormalizeHeader(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

// Validate checks that the schema names enough columns to produce
// observations.
func (s PriceSchema) Validate() error {
	if s.Commodity == "" {
		return fmt.Errorf("price schema: commodity column not set")
	}
	if s.Price == "" {
		return fmt.Errorf("price schema: price column not set")
	}
	if s.Date == "" && (s.Year == "" || s.Month == "") {
		return fmt.Errorf("price schema: need a date column or both year and month columns")
	}
	return nil
}

// Validate checks that the schema names enough columns to produce events.
func (s TyphoonSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("typhoon schema: name column not set")
	}
	if s.Date == "" {
		return fmt.Errorf("typhoon schema: date column not set")
	}
	return nil
}

// headerIndex maps normalized header names to their column positions. Later
// duplicates do not shadow earlier columns.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// column resolves a schema name against a header index; -1 when the schema
// name is empty or the column is absent.
func column(idx map[string]int, name string) int {
	if name == "" {
		return -1
	}
	if i, ok := idx[NormalizeHeader(name)]; ok {
		return i
	}
	return -1
}
