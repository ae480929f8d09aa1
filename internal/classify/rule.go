// Package classify implements the row classification pass: an ordered rule
// engine, the primary-key deduplication resolver, and the referential
// integrity checks, composed into one pass per entity batch.
//
// Rules are three-valued, mirroring SQL comparison semantics over nullable
// columns: a rule can pass, fail, or be undecidable because an operand is
// null. Only a definite failure claims the record's reason code; the first
// failing rule in declaration order wins. A record with no failing rule but
// at least one undecidable rule is invalid with the UNKNOWN fallback reason.
package classify

import "lakeetl/pkg/records"

// Verdict is the outcome of evaluating one rule against one row.
type Verdict int8

const (
	// Pass: the rule's condition definitely holds.
	Pass Verdict = iota
	// Fail: the rule's condition definitely does not hold.
	Fail
	// Undecided: a null operand makes the condition unevaluable.
	Undecided
)

// Row is a record plus its dedup rank within its primary-key group and its
// original position in the input batch.
type Row struct {
	Rec   records.Record
	Rank  int
	Index int
}

// Rule is a named predicate with the reason code emitted on failure.
type Rule struct {
	Name   string
	Reason Reason
	Check  func(Row) Verdict
}

// Classified is the classification result for one input record. Every input
// record yields exactly one Classified; the valid and invalid sets partition
// the input.
type Classified struct {
	Rec    records.Record
	Valid  bool
	Reason Reason
}

// Evaluate runs the ordered rule list against one row and returns its
// classification reason: ReasonNone when every rule passes, the first failing
// rule's reason otherwise, or ReasonUnknown when nothing failed outright but
// some rule was undecidable.
func Evaluate(row Row, rules []Rule) Reason {
	undecided := false
	for _, rule := range rules {
		switch rule.Check(row) {
		case Fail:
			return rule.Reason
		case Undecided:
			undecided = true
		}
	}
	if undecided {
		return ReasonUnknown
	}
	return ReasonNone
}
