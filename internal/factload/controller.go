// Package factload loads one period of order lines into the append-only
// fact_sales table, idempotently: a period already present is skipped, an
// empty source is skipped, and a load is confirmed by recounting the period
// after the insert. The guards are check-then-act against a destination that
// has no cross-statement transactions, so a concurrent load of the same
// period can still race; the recount makes the outcome observable.
package factload

import (
	"context"
	"fmt"
	"log"
	"time"

	"lakeetl/internal/audit"
	"lakeetl/internal/engine"
	"lakeetl/internal/period"
	"lakeetl/pkg/records"
)

// State is the controller's view of one period's load lifecycle.
type State string

const (
	StateNotLoaded State = "NotLoaded"
	StateLoading   State = "Loading"
	StateLoaded    State = "Loaded"
	StateFailed    State = "Failed"
)

// Source yields the order lines of one period.
type Source interface {
	ReadPeriod(ctx context.Context, p period.Period) ([]records.Record, error)
}

// FactStore is the destination fact table.
type FactStore interface {
	// PeriodCount counts rows already present for the period.
	PeriodCount(ctx context.Context, p period.Period) (int64, error)
	// DeletePeriod removes the period's rows; used only for overwrites.
	DeletePeriod(ctx context.Context, p period.Period) (int64, error)
	// InsertPeriod bulk-inserts the period's rows in one operation.
	InsertPeriod(ctx context.Context, p period.Period, rows []records.Record) (int64, error)
}

// Outcome is the result of one period load attempt.
type Outcome struct {
	Period period.Period
	State  State
	Status string // audit status written to the control store
	Rows   int64
	Note   string
}

// Controller drives idempotent period loads. The bulk insert runs as a
// submitted computation and is observed through the engine's polling
// contract.
type Controller struct {
	Source Source
	Store  FactStore
	Engine engine.Engine
	Audit  audit.Logger

	// RunID tags audit rows; set once per invocation.
	RunID string
	// SourceName tags audit rows with the upstream system.
	SourceName string
	// Poll is the status polling interval.
	Poll time.Duration
}

const factTable = "fact_sales"

// LoadPeriod attempts to load one period. Overwrite clears the period first
// instead of skipping when it already exists. The returned error is non-nil
// only for the ERROR outcome.
func (c *Controller) LoadPeriod(ctx context.Context, p period.Period, overwrite bool) (Outcome, error) {
	started := time.Now().UTC()

	out, err := c.loadPeriod(ctx, p, overwrite)
	out.Period = p

	c.Audit.Run(ctx, audit.Entry{
		RunID:      c.RunID,
		Period:     p,
		Source:     c.SourceName,
		Table:      factTable,
		Status:     out.Status,
		RecordsOut: out.Rows,
		StartedAt:  started,
		EndedAt:    time.Now().UTC(),
		Note:       out.Note,
	})
	if err != nil {
		c.Audit.Error(ctx, audit.ErrorEntry{
			RunID:     c.RunID,
			Source:    c.SourceName,
			Table:     factTable,
			Step:      "factload",
			Severity:  "ERROR",
			ErrorCode: out.Status,
			Message:   err.Error(),
		})
	}
	return out, err
}

func (c *Controller) loadPeriod(ctx context.Context, p period.Period, overwrite bool) (Outcome, error) {
	if overwrite {
		deleted, err := c.Store.DeletePeriod(ctx, p)
		if err != nil {
			return Outcome{State: StateFailed, Status: audit.StatusError, Note: "overwrite delete failed"},
				fmt.Errorf("factload: clear period %s: %w", p, err)
		}
		if deleted > 0 {
			log.Printf("factload: period=%s overwrite deleted=%d", p, deleted)
		}
	} else {
		existing, err := c.Store.PeriodCount(ctx, p)
		if err != nil {
			return Outcome{State: StateFailed, Status: audit.StatusError, Note: "existence check failed"},
				fmt.Errorf("factload: count period %s: %w", p, err)
		}
		if existing > 0 {
			log.Printf("factload: period=%s already loaded rows=%d, skipping", p, existing)
			return Outcome{State: StateLoaded, Status: audit.StatusSkippedExists, Rows: existing}, nil
		}
	}

	rows, err := c.Source.ReadPeriod(ctx, p)
	if err != nil {
		return Outcome{State: StateFailed, Status: audit.StatusError, Note: "source read failed"},
			fmt.Errorf("factload: read period %s: %w", p, err)
	}
	if len(rows) == 0 {
		log.Printf("factload: period=%s source is empty, skipping", p)
		return Outcome{State: StateNotLoaded, Status: audit.StatusSkippedEmpty}, nil
	}

	log.Printf("factload: period=%s state=%s rows_in=%d", p, StateLoading, len(rows))
	id, err := c.Engine.Submit(ctx, engine.Computation{
		Name: fmt.Sprintf("insert %s %s", factTable, p),
		Run: func(ctx context.Context) (int64, error) {
			return c.Store.InsertPeriod(ctx, p, rows)
		},
	})
	if err != nil {
		return Outcome{State: StateFailed, Status: audit.StatusError, Note: "submit failed"},
			fmt.Errorf("factload: submit insert for %s: %w", p, err)
	}

	res, err := engine.Await(ctx, c.Engine, id, c.Poll)
	if err != nil {
		return Outcome{State: StateFailed, Status: audit.StatusError, Note: "await failed"},
			fmt.Errorf("factload: await insert for %s: %w", p, err)
	}
	if res.State != engine.StateSucceeded {
		return Outcome{State: StateFailed, Status: audit.StatusError, Note: res.Reason},
			fmt.Errorf("factload: insert for %s ended %s: %s", p, res.State, res.Reason)
	}

	// Confirmation recount: report what the destination actually holds, not
	// what the insert claimed.
	confirmed, err := c.Store.PeriodCount(ctx, p)
	if err != nil {
		return Outcome{State: StateFailed, Status: audit.StatusError, Note: "confirmation recount failed"},
			fmt.Errorf("factload: confirm period %s: %w", p, err)
	}
	log.Printf("factload: period=%s state=%s inserted=%d confirmed=%d", p, StateLoaded, res.Rows, confirmed)
	return Outcome{State: StateLoaded, Status: audit.StatusSucceeded, Rows: confirmed}, nil
}
