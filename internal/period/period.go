// Package period implements the (year, month) coordinate that keys one
// increment of fact data and one bronze snapshot of dimension data.
package period

import (
	"fmt"
	"strconv"
	"strings"
)

// Period identifies one fact-loading unit or one dimension snapshot.
type Period struct {
	Year  int
	Month int
}

// Parse parses a "YYYY-MM" string into a Period.
func Parse(s string) (Period, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("period: want YYYY-MM, got %q", s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("period: bad year in %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("period: bad month in %q: %w", s, err)
	}
	p := Period{Year: y, Month: m}
	if !p.Valid() {
		return Period{}, fmt.Errorf("period: out of range: %q", s)
	}
	return p, nil
}

// Valid reports whether the period denotes a real month.
func (p Period) Valid() bool {
	return p.Year >= 1 && p.Year <= 9999 && p.Month >= 1 && p.Month <= 12
}

// Key returns the normalized zero-padded "YYYY-MM" key. This exact form is
// used in object paths, the fact table's RunMonth column, and the control
// store, so it must stay stable.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MonthZ returns the zero-padded two-digit month, e.g. "05".
func (p Period) MonthZ() string {
	return fmt.Sprintf("%02d", p.Month)
}

// Next returns the month after p.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// LE reports p <= q.
func (p Period) LE(q Period) bool {
	return p == q || p.Before(q)
}

func (p Period) String() string { return p.Key() }
