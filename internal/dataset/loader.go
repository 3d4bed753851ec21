// Package dataset loads the price and typhoon CSV tables the analyzer
// consumes. Column positions come from explicit schemas, never from guessing;
// rows that fail date or price coercion are dropped and counted rather than
// surfaced as errors. Parsed tables can be shared through an explicit Cache
// keyed by file content, so re-reading an unchanged file is free and a
// changed file misses naturally.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Loader reads price and typhoon CSVs through an optional cache. The cache is
// owned by whoever builds the Loader: create one per scope that should share
// parsed tables (a command run, a watch session) and invalidate entries when
// a file is known to have changed. A nil cache disables caching.
type Loader struct {
	Prices   PriceSchema
	Typhoons TyphoonSchema
	cache    *Cache
}

// NewLoader builds a Loader with the given schemas. cache may be nil.
func NewLoader(prices PriceSchema, typhoons TyphoonSchema, cache *Cache) *Loader {
	return &Loader{Prices: prices, Typhoons: typhoons, cache: cache}
}

// LoadPrices reads one price CSV. An empty category derives the label from
// the file name.
func (l *Loader) LoadPrices(path, category string) (*PriceTable, error) {
	if err := l.Prices.Validate(); err != nil {
		return nil, err
	}
	if l.cache == nil {
		return l.readPrices(path, category)
	}
	key := filepath.Clean(path)
	id, err := identify(path)
	if err != nil {
		return nil, err
	}
	if t, ok := l.cache.price(key, id); ok {
		return t, nil
	}
	t, err := l.readPrices(path, category)
	if err != nil {
		return nil, err
	}
	l.cache.storePrice(key, id, t)
	return t, nil
}

// LoadPriceSet reads several price CSVs and merges them into one table, each
// file labeled with its own category.
func (l *Loader) LoadPriceSet(paths []string) (*PriceTable, error) {
	tables := make([]*PriceTable, 0, len(paths))
	for _, p := range paths {
		t, err := l.LoadPrices(p, "")
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return MergeTables(tables...), nil
}

// LoadTyphoons reads the typhoon CSV. Events with unparseable dates are kept
// with Dated false and counted in Undated.
func (l *Loader) LoadTyphoons(path string) (*TyphoonTable, error) {
	if err := l.Typhoons.Validate(); err != nil {
		return nil, err
	}
	if l.cache == nil {
		return l.readTyphoons(path)
	}
	key := filepath.Clean(path)
	id, err := identify(path)
	if err != nil {
		return nil, err
	}
	if t, ok := l.cache.typhoon(key, id); ok {
		return t, nil
	}
	t, err := l.readTyphoons(path)
	if err != nil {
		return nil, err
	}
	l.cache.storeTyphoon(key, id, t)
	return t, nil
}

func (l *Loader) readPrices(path, category string) (*PriceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	base := filepath.Base(path)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &PriceTable{Sources: []string{base}}, nil
		}
		return nil, fmt.Errorf("%s: read header: %w", base, err)
	}
	idx := headerIndex(header)
	dateCol := column(idx, l.Prices.Date)
	yearCol := column(idx, l.Prices.Year)
	monthCol := column(idx, l.Prices.Month)
	commodityCol := column(idx, l.Prices.Commodity)
	priceCol := column(idx, l.Prices.Price)
	if commodityCol < 0 {
		return nil, fmt.Errorf("%s: no %q column", base, l.Prices.Commodity)
	}
	if priceCol < 0 {
		return nil, fmt.Errorf("%s: no %q column", base, l.Prices.Price)
	}
	if dateCol < 0 && (yearCol < 0 || monthCol < 0) {
		return nil, fmt.Errorf("%s: no %q column and no %q/%q pair", base, l.Prices.Date, l.Prices.Year, l.Prices.Month)
	}
	if category == "" {
		category = CategoryFromFile(path)
	}

	table := &PriceTable{Sources: []string{base}}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: read row: %w", base, err)
		}
		commodity := strings.TrimSpace(field(rec, commodityCol))
		price, priceOK := parsePrice(field(rec, priceCol))
		date, dateOK := rowMonth(rec, dateCol, yearCol, monthCol)
		if commodity == "" || !priceOK || !dateOK {
			table.Skipped++
			continue
		}
		table.Rows = append(table.Rows, PriceObservation{
			Date:        date,
			Commodity:   commodity,
			RetailPrice: price,
			Category:    category,
			Source:      base,
		})
	}
	return table, nil
}

func (l *Loader) readTyphoons(path string) (*TyphoonTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open typhoons: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	base := filepath.Base(path)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &TyphoonTable{}, nil
		}
		return nil, fmt.Errorf("%s: read header: %w", base, err)
	}
	idx := headerIndex(header)
	nameCol := column(idx, l.Typhoons.Name)
	dateCol := column(idx, l.Typhoons.Date)
	classCol := column(idx, l.Typhoons.Classification)
	peakCol := column(idx, l.Typhoons.PeakIntensity)
	if nameCol < 0 {
		return nil, fmt.Errorf("%s: no %q column", base, l.Typhoons.Name)
	}
	if dateCol < 0 {
		return nil, fmt.Errorf("%s: no %q column", base, l.Typhoons.Date)
	}

	table := &TyphoonTable{}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: read row: %w", base, err)
		}
		name := strings.TrimSpace(field(rec, nameCol))
		if name == "" {
			continue
		}
		ev := TyphoonEvent{
			Name:           name,
			Classification: strings.TrimSpace(field(rec, classCol)),
			PeakIntensity:  strings.TrimSpace(field(rec, peakCol)),
		}
		if m, err := ParseMonth(field(rec, dateCol)); err == nil {
			ev.Date = m
			ev.Dated = true
		} else {
			table.Undated++
		}
		table.Events = append(table.Events, ev)
	}
	return table, nil
}

// CategoryFromFile derives a category label from a price file name:
// "Fish-Food-Prices.csv" becomes "Fish". Files without the suffix use the
// bare name.
func CategoryFromFile(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(base, "-Food-Prices"); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// rowMonth resolves the observation month: a date column when present and
// non-empty, otherwise the year/month pair.
func rowMonth(rec []string, dateCol, yearCol, monthCol int) (Month, bool) {
	if dateCol >= 0 {
		if raw := strings.TrimSpace(field(rec, dateCol)); raw != "" {
			if m, err := ParseMonth(raw); err == nil {
				return m, true
			}
			return Month{}, false
		}
	}
	if yearCol >= 0 && monthCol >= 0 {
		if m, err := MonthFromParts(field(rec, yearCol), field(rec, monthCol)); err == nil {
			return m, true
		}
	}
	return Month{}, false
}

// parsePrice coerces a price cell to a non-negative float. Comma grouping and
// a leading peso sign are stripped.
func parsePrice(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.TrimPrefix(raw, "₱")
	raw = strings.ReplaceAll(raw, ",", "")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
