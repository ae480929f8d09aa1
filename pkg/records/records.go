// Package records defines the Record type flowing through the pipeline: a
// mapping from column name to a typed value (int64, float64, decimal.Decimal,
// string, bool, time.Time, or nil).
//
// Raw bronze rows arrive with every field as a string (or nil for empty
// cells); schema coercion rewrites fields in place into their typed form.
// Accessors below return (value, ok) pairs so rule predicates can treat a
// missing field, a nil field, and a wrongly-typed field uniformly as "not
// there".
package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single row keyed by canonical column name.
type Record map[string]any

// Clone returns a shallow copy of r. Values are shared; callers that mutate
// field values (not just reassign keys) must copy those themselves.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNil reports whether the field is absent or nil.
func (r Record) IsNil(field string) bool {
	v, ok := r[field]
	return !ok || v == nil
}

// Int64 returns the field as int64.
func (r Record) Int64(field string) (int64, bool) {
	switch t := r[field].(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	}
	return 0, false
}

// Float64 returns the field as float64.
func (r Record) Float64(field string) (float64, bool) {
	if t, ok := r[field].(float64); ok {
		return t, true
	}
	return 0, false
}

// String returns the field as string.
func (r Record) String(field string) (string, bool) {
	if t, ok := r[field].(string); ok {
		return t, true
	}
	return "", false
}

// Bool returns the field as bool.
func (r Record) Bool(field string) (bool, bool) {
	if t, ok := r[field].(bool); ok {
		return t, true
	}
	return false, false
}

// Time returns the field as time.Time.
func (r Record) Time(field string) (time.Time, bool) {
	if t, ok := r[field].(time.Time); ok {
		return t, true
	}
	return time.Time{}, false
}

// Decimal returns the field as decimal.Decimal.
func (r Record) Decimal(field string) (decimal.Decimal, bool) {
	if t, ok := r[field].(decimal.Decimal); ok {
		return t, true
	}
	return decimal.Decimal{}, false
}
