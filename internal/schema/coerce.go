package schema

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lakeetl/pkg/records"
)

// Coercer converts raw string fields into the contract's typed shape,
// in place. Every cast is fallible: a value that cannot be converted becomes
// nil instead of failing the row, so the validation rules get to classify the
// defect with a proper reason.
type Coercer struct {
	Contract Contract
}

// Apply coerces each record in place and returns the same slice.
func (c Coercer) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, f := range c.Contract.Fields {
			v, ok := r[f.Name]
			if !ok || v == nil {
				r[f.Name] = nil
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue // already typed
			}
			s = strings.TrimSpace(s)
			if s == "" {
				r[f.Name] = nil
				continue
			}
			r[f.Name] = coerceField(f, s)
		}
	}
	return in
}

// coerceField casts one string value; nil on any failure.
func coerceField(f Field, s string) any {
	switch f.Type {
	case "int":
		return toInt(s)
	case "float":
		return toFloat(s)
	case "money":
		return toMoney(s)
	case "date":
		return toDate(s, f.Layout, f.Fallbacks)
	case "bool":
		return toFlag(s)
	default: // "text"
		return s
	}
}

func toInt(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Tolerate grouped values like "1.234" or "1,234" in integer columns.
	norm, ok := NormalizeMoney(s)
	if !ok || strings.Contains(norm, ".") {
		return nil
	}
	if i, err := strconv.ParseInt(norm, 10, 64); err == nil {
		return i
	}
	return nil
}

func toFloat(s string) any {
	// Plain decimals parse as-is; "20.005" is a fraction here, not grouping.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	norm, ok := NormalizeMoney(s)
	if !ok {
		return nil
	}
	if f, err := strconv.ParseFloat(norm, 64); err == nil {
		return f
	}
	return nil
}

func toMoney(s string) any {
	norm, ok := NormalizeMoney(s)
	if !ok {
		return nil
	}
	if d, err := decimal.NewFromString(norm); err == nil {
		return d
	}
	return nil
}

// toDate tries the primary layout and then the fallbacks in order; the first
// layout that parses wins.
func toDate(s, layout string, fallbacks []string) any {
	if layout != "" {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	for _, l := range fallbacks {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return nil
}

// toFlag maps make/ship style flags the way the source data spells them.
// Anything not recognizably true is false; flags never coerce to nil.
func toFlag(s string) any {
	switch strings.ToUpper(s) {
	case "1", "TRUE", "T", "Y", "YES":
		return true
	}
	return false
}
