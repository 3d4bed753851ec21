package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month is a calendar month with day-level detail discarded. Price series and
// typhoon landfall dates in the source tables are month-granular, so all date
// arithmetic downstream works on Months rather than time.Time values. The
// canonical day is the 1st; Time returns it in UTC.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

var monthLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2006",
}

// ParseMonth parses a date string at month granularity. Day-of-month in the
// input is accepted and discarded. Returns an error when no known layout
// matches.
func ParseMonth(s string) (Month, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Month{}, fmt.Errorf("parse month: empty value")
	}
	for _, l := range monthLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, fmt.Errorf("parse month: unrecognized date %q", s)
}

// MonthFromParts builds a Month from separate year and month fields, as found
// in tables that carry Year and Month columns instead of a date. The month
// field may be numeric ("7") or an English month name ("July").
func MonthFromParts(year, month string) (Month, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return Month{}, fmt.Errorf("parse year %q: %w", year, err)
	}
	raw := strings.TrimSpace(month)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > 12 {
			return Month{}, fmt.Errorf("month %d out of range", n)
		}
		return Month{Year: y, Month: time.Month(n)}, nil
	}
	for _, l := range []string{"January", "Jan"} {
		if t, err := time.Parse(l, raw); err == nil {
			return Month{Year: y, Month: t.Month()}, nil
		}
	}
	return Month{}, fmt.Errorf("parse month %q: unrecognized", month)
}

// AddMonths returns the month n calendar months after m, carrying into the
// year as needed. Negative n moves backward.
func (m Month) AddMonths(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	y := idx / 12
	r := idx % 12
	if r < 0 {
		y--
		r += 12
	}
	return Month{Year: y, Month: time.Month(r + 1)}
}

// MonthsSince returns the whole-month difference m - o. Positive when m is
// later than o.
func (m Month) MonthsSince(o Month) int {
	return (m.Year-o.Year)*12 + int(m.Month) - int(o.Month)
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Time returns the canonical first day of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// String renders the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalJSON renders the month in its YYYY-MM string form.
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
