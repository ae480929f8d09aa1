// Package audit is the pipeline's control store: one row per run per table,
// plus an error sink for step-level failures. Audit writes are best-effort by
// contract: a failure to record never fails the run it describes.
package audit

import (
	"context"
	"log"
	"time"

	"lakeetl/internal/period"
)

// Run statuses written to the control store. The literal strings are part of
// the control contract; the next-period planner matches on SUCCEEDED exactly.
const (
	StatusSucceeded     = "SUCCEEDED"
	StatusSkipped       = "SKIPPED"
	StatusSkippedExists = "SKIPPED_EXISTS"
	StatusSkippedEmpty  = "SKIPPED_EMPTY"
	StatusError         = "ERROR"
)

// Entry is one run-level audit row.
type Entry struct {
	RunID      string
	Period     period.Period
	Source     string
	Table      string
	Status     string
	RecordsOut int64
	StartedAt  time.Time
	EndedAt    time.Time
	Note       string
}

// ErrorEntry is one step-level failure row.
type ErrorEntry struct {
	RunID     string
	TS        time.Time
	Source    string
	Table     string
	Step      string
	Severity  string
	ErrorCode string
	Message   string
}

// Store persists audit rows and answers the planner's progress query.
type Store interface {
	RecordRun(ctx context.Context, e Entry) error
	RecordError(ctx context.Context, e ErrorEntry) error
	// MaxSucceededPeriod returns the latest period with a SUCCEEDED run for
	// the given table; ok is false when no such run exists.
	MaxSucceededPeriod(ctx context.Context, table string) (p period.Period, ok bool, err error)
}

// Logger wraps a Store with the best-effort contract: write failures are
// printed and swallowed so audit trouble never turns a good run into a bad
// one.
type Logger struct {
	Store Store
}

func (l Logger) Run(ctx context.Context, e Entry) {
	if l.Store == nil {
		return
	}
	if err := l.Store.RecordRun(ctx, e); err != nil {
		log.Printf("audit: run row dropped: table=%s status=%s err=%v", e.Table, e.Status, err)
	}
}

func (l Logger) Error(ctx context.Context, e ErrorEntry) {
	if l.Store == nil {
		return
	}
	if e.TS.IsZero() {
		e.TS = time.Now().UTC()
	}
	if err := l.Store.RecordError(ctx, e); err != nil {
		log.Printf("audit: error row dropped: table=%s step=%s err=%v", e.Table, e.Step, err)
	}
}
