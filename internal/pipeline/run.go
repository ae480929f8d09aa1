// Package pipeline orchestrates one bronze-to-silver promotion run: each
// entity's snapshot is read from bronze, classified, and written to silver
// and quarantine, with one audit row per entity. Entities are isolated; one
// entity's failure never blocks its siblings.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"lakeetl/internal/audit"
	"lakeetl/internal/classify"
	"lakeetl/internal/csvio"
	"lakeetl/internal/engine"
	"lakeetl/internal/metrics"
	"lakeetl/internal/objstore"
	"lakeetl/internal/period"
	"lakeetl/internal/schema"
	"lakeetl/internal/silver"
	"lakeetl/pkg/records"
)

// Runner executes promotion runs against one lake.
type Runner struct {
	Store  objstore.Store
	Audit  audit.Logger
	Engine engine.Engine

	// RunID tags every audit row of this invocation.
	RunID string
	// Poll is the computation status polling interval.
	Poll time.Duration
}

// NewRunner builds a Runner with a fresh run id.
func NewRunner(store objstore.Store, auditLog audit.Logger, eng engine.Engine, poll time.Duration) *Runner {
	return &Runner{
		Store:  store,
		Audit:  auditLog,
		Engine: eng,
		RunID:  uuid.NewString(),
		Poll:   poll,
	}
}

// Promote runs one full promotion for the period: the orders staging plus,
// when refreshDims is set, every dimension refresh. The returned error joins
// the per-entity failures; a partial run is still a run.
func (r *Runner) Promote(ctx context.Context, p period.Period, refreshDims bool) error {
	entities := []Entity{Orders()}
	if refreshDims {
		entities = append(entities, Dimensions()...)
	}

	var errs []error
	for _, e := range entities {
		if err := r.PromoteEntity(ctx, e, p); err != nil {
			log.Printf("pipeline: run=%s period=%s table=%s failed: %v", r.RunID, p, e.Table, err)
			errs = append(errs, fmt.Errorf("%s: %w", e.Table, err))
		}
	}
	return errors.Join(errs...)
}

// PromoteEntity classifies one entity's snapshot and writes both output
// partitions. The classification and writes run as one submitted computation
// observed through the engine.
func (r *Runner) PromoteEntity(ctx context.Context, e Entity, p period.Period) error {
	started := time.Now().UTC()
	validOut, err := r.promoteEntity(ctx, e, p)

	metrics.RecordStep("promote", e.Table, err, time.Since(started))
	status := audit.StatusSucceeded
	note := ""
	if err != nil {
		status = audit.StatusError
		note = "promotion failed"
	}
	r.Audit.Run(ctx, audit.Entry{
		RunID:      r.RunID,
		Period:     p,
		Source:     e.Source,
		Table:      e.Table,
		Status:     status,
		RecordsOut: validOut,
		StartedAt:  started,
		EndedAt:    time.Now().UTC(),
		Note:       note,
	})
	if err != nil {
		r.Audit.Error(ctx, audit.ErrorEntry{
			RunID:    r.RunID,
			Source:   e.Source,
			Table:    e.Table,
			Step:     "promote",
			Severity: "ERROR",
			Message:  err.Error(),
		})
	}
	return err
}

func (r *Runner) promoteEntity(ctx context.Context, e Entity, p period.Period) (int64, error) {
	recs, err := r.readTable(ctx, e.BronzePrefix(p))
	if err != nil {
		return 0, fmt.Errorf("read bronze: %w", err)
	}

	if e.Enrich != nil {
		recs, err = e.Enrich(ctx, r, p, recs)
		if err != nil {
			return 0, fmt.Errorf("enrich: %w", err)
		}
	}

	cl := e.NewClassifier()
	var validOut int64
	id, err := r.Engine.Submit(ctx, engine.Computation{
		Name: fmt.Sprintf("promote %s %s", e.Table, p),
		Run: func(ctx context.Context) (int64, error) {
			all := cl.Run(recs)
			valid, invalid := classify.Split(all)

			validRows := make([]records.Record, len(valid))
			for i, c := range valid {
				validRows[i] = c.Rec
			}

			w := silver.Writer{Store: r.Store}
			nValid, err := w.WriteValid(ctx, e.ValidPrefix(p), e.File, cl.Contract, validRows)
			if err != nil {
				return 0, err
			}
			if _, err := w.WriteInvalid(ctx, e.InvalidPrefix(p), e.File, cl.Contract, invalid); err != nil {
				return int64(nValid), err
			}

			metrics.RecordClassified(e.Table, int64(len(valid)), int64(len(invalid)))
			log.Printf("pipeline: run=%s period=%s table=%s in=%d valid=%d invalid=%d",
				r.RunID, p, e.Table, len(all), len(valid), len(invalid))
			return int64(nValid), nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}

	res, err := engine.Await(ctx, r.Engine, id, r.Poll)
	if err != nil {
		return 0, err
	}
	if res.State != engine.StateSucceeded {
		return 0, fmt.Errorf("computation ended %s: %s", res.State, res.Reason)
	}
	validOut = res.Rows
	return validOut, nil
}

// readTable reads and concatenates every CSV object under prefix. A prefix
// with no objects yields an empty batch.
func (r *Runner) readTable(ctx context.Context, prefix string) ([]records.Record, error) {
	keys, err := r.Store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	parser := csvio.NewParser(csvio.Options{})
	var out []records.Record
	for _, key := range keys {
		if !strings.HasSuffix(key, ".csv") {
			continue
		}
		body, err := r.Store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		recs, skipped, err := parser.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		if skipped > 0 {
			log.Printf("pipeline: key=%s skipped_rows=%d", key, skipped)
		}
		out = append(out, recs...)
	}
	return out, nil
}

// joinStoreBudgets left-joins the budget snapshot onto the stores batch by
// StoreID. Stores without a budget row keep a nil Budget; the classifier
// defaults it to zero on valid rows.
func joinStoreBudgets(ctx context.Context, r *Runner, p period.Period, stores []records.Record) ([]records.Record, error) {
	raw, err := r.readTable(ctx, silver.BronzeTable("excel", "storesBudget", p))
	if err != nil {
		return nil, err
	}
	budgets := schema.Coercer{Contract: schema.StoreBudgets()}.Apply(raw)

	byStore := make(map[int64]any, len(budgets))
	for _, b := range budgets {
		id, ok := b.Int64("StoreID")
		if !ok {
			continue
		}
		byStore[id] = b["Budget"]
	}

	stores = schema.Coercer{Contract: schema.Stores()}.Apply(stores)
	for _, s := range stores {
		id, ok := s.Int64("StoreID")
		if !ok {
			continue
		}
		if budget, found := byStore[id]; found {
			s["Budget"] = budget
		}
	}
	return stores, nil
}
