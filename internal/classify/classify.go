package classify

import (
	"lakeetl/internal/schema"
	"lakeetl/pkg/records"
)

// Classifier composes schema coercion, dedup ranking, and the ordered rule
// list into a single classification pass over one entity's batch.
type Classifier struct {
	Contract schema.Contract
	Rules    []Rule
	Tie      TieBreak

	// Prep optionally rewrites each record after coercion and before ranking
	// and rule evaluation (e.g. upper-casing coded domains).
	Prep func(records.Record)

	// Finalize optionally rewrites each valid record before it is emitted
	// (e.g. replacing a missing budget with zero, storing normalized domain
	// codes). Invalid records are quarantined as classified, untouched.
	Finalize func(records.Record)
}

// Run classifies the raw batch. The result has exactly one element per input
// record, in input order; valid and invalid records together partition the
// batch.
func (c Classifier) Run(raw []records.Record) []Classified {
	recs := schema.Coercer{Contract: c.Contract}.Apply(raw)
	if c.Prep != nil {
		for _, r := range recs {
			c.Prep(r)
		}
	}

	rows := Rank(recs, c.Contract.PrimaryKey, c.Tie)

	out := make([]Classified, len(rows))
	for i, row := range rows {
		reason := Evaluate(row, c.Rules)
		cl := Classified{Rec: row.Rec, Valid: reason == ReasonNone, Reason: reason}
		if cl.Valid && c.Finalize != nil {
			c.Finalize(cl.Rec)
		}
		out[i] = cl
	}
	return out
}

// Split partitions a classification result into its valid and invalid sets.
func Split(all []Classified) (valid, invalid []Classified) {
	for _, cl := range all {
		if cl.Valid {
			valid = append(valid, cl)
		} else {
			invalid = append(invalid, cl)
		}
	}
	return valid, invalid
}
