// Package schedule plans the next period to process. Progress is read from
// the control store: the month after the last SUCCEEDED orders run is the
// candidate, bounded by a hard end month so a daily trigger cannot run past
// the dataset.
package schedule

import (
	"context"
	"fmt"

	"lakeetl/internal/audit"
	"lakeetl/internal/period"
)

// Decision statuses.
const (
	StatusProceed  = "PROCEED"
	StatusNoAction = "NO_ACTION"
)

// Planner computes the next unprocessed period for one table.
type Planner struct {
	Audit audit.Store
	Table string // progress is tracked per table, normally "orders"
	Start period.Period
	End   period.Period // hard bound, inclusive
}

// Decision is the planner's outcome. Period is meaningful only for PROCEED.
type Decision struct {
	Status string
	Period period.Period
	Reason string
}

// Next proposes the period after the last succeeded run, or Start when the
// control store has no succeeded run yet.
func (pl Planner) Next(ctx context.Context) (Decision, error) {
	last, ok, err := pl.Audit.MaxSucceededPeriod(ctx, pl.Table)
	if err != nil {
		return Decision{}, fmt.Errorf("schedule: read progress: %w", err)
	}

	candidate := pl.Start
	if ok {
		candidate = last.Next()
	}

	if !candidate.LE(pl.End) {
		return Decision{
			Status: StatusNoAction,
			Reason: fmt.Sprintf("candidate %s past end month %s", candidate, pl.End),
		}, nil
	}
	return Decision{Status: StatusProceed, Period: candidate}, nil
}
