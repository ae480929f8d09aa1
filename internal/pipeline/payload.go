package pipeline

import (
	"encoding/json"
	"fmt"

	"lakeetl/internal/period"
)

// Payload is the external invocation shape: a trigger may name one month,
// a list of months, or an explicit object key, plus per-run switches.
type Payload struct {
	RunMonth    string   `json:"run_month"`
	RunMonths   []string `json:"run_months"`
	RefreshDims *bool    `json:"refresh_dims"`
	Overwrite   bool     `json:"overwrite"`
	S3Key       string   `json:"s3_key"`
}

// Invocation is the normalized form the pipelines run on.
type Invocation struct {
	Periods     []period.Period
	RefreshDims bool
	Overwrite   bool
	// Key carries an explicit object key trigger, when given.
	Key string
}

// ParsePayload decodes and normalizes an invocation payload. refreshDefault
// applies when the payload does not set refresh_dims. Months are deduplicated
// in first-seen order; run_month and run_months may be combined.
func ParsePayload(b []byte, refreshDefault bool) (Invocation, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Invocation{}, fmt.Errorf("payload: %w", err)
	}

	months := p.RunMonths
	if p.RunMonth != "" {
		months = append([]string{p.RunMonth}, months...)
	}

	inv := Invocation{
		RefreshDims: refreshDefault,
		Overwrite:   p.Overwrite,
		Key:         p.S3Key,
	}
	if p.RefreshDims != nil {
		inv.RefreshDims = *p.RefreshDims
	}

	seen := make(map[period.Period]bool, len(months))
	for _, m := range months {
		per, err := period.Parse(m)
		if err != nil {
			return Invocation{}, err
		}
		if seen[per] {
			continue
		}
		seen[per] = true
		inv.Periods = append(inv.Periods, per)
	}

	if len(inv.Periods) == 0 && inv.Key == "" {
		return Invocation{}, fmt.Errorf("payload: no run_month, run_months, or s3_key")
	}
	return inv, nil
}
