// Package engine models the downstream set-oriented execution service:
// computations are submitted, run asynchronously, and observed by polling
// until they reach a terminal state. LocalEngine runs computations on
// goroutines; a remote backend only has to satisfy the same polling contract.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a computation's lifecycle state as reported by Status.
type State string

const (
	StateQueued    State = "QUEUED"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateCancelled State = "CANCELLED"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Computation is one unit of work. Run returns the number of rows the
// computation produced or affected.
type Computation struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Result is a computation's observed status. Reason carries the failure text
// verbatim; Rows is meaningful only for SUCCEEDED.
type Result struct {
	ID     string
	State  State
	Rows   int64
	Reason string
}

// ErrUnknownComputation is returned by Status for an id the engine never saw.
var ErrUnknownComputation = errors.New("unknown computation id")

// Engine submits computations and reports their status.
type Engine interface {
	Submit(ctx context.Context, c Computation) (string, error)
	Status(ctx context.Context, id string) (Result, error)
}

// Await polls the engine until the computation reaches a terminal state, the
// context is done, or the poll itself errors. The interval is bounded below so
// a misconfigured caller cannot hot-loop against a remote service.
func Await(ctx context.Context, eng Engine, id string, interval time.Duration) (Result, error) {
	const minInterval = 100 * time.Millisecond
	if interval < minInterval {
		interval = minInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := eng.Status(ctx, id)
		if err != nil {
			return Result{}, fmt.Errorf("poll %s: %w", id, err)
		}
		if res.State.Terminal() {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// LocalEngine runs each computation on its own goroutine and keeps results in
// memory for the lifetime of the process.
type LocalEngine struct {
	mu      sync.Mutex
	results map[string]Result
}

func NewLocal() *LocalEngine {
	return &LocalEngine{results: make(map[string]Result)}
}

func (e *LocalEngine) Submit(ctx context.Context, c Computation) (string, error) {
	if c.Run == nil {
		return "", errors.New("computation has no body")
	}
	id := uuid.NewString()

	e.mu.Lock()
	e.results[id] = Result{ID: id, State: StateRunning}
	e.mu.Unlock()

	go func() {
		rows, err := c.Run(ctx)
		res := Result{ID: id, State: StateSucceeded, Rows: rows}
		switch {
		case errors.Is(err, context.Canceled):
			res = Result{ID: id, State: StateCancelled, Reason: err.Error()}
		case err != nil:
			res = Result{ID: id, State: StateFailed, Reason: err.Error()}
		}
		e.mu.Lock()
		e.results[id] = res
		e.mu.Unlock()
	}()

	return id, nil
}

func (e *LocalEngine) Status(_ context.Context, id string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, ok := e.results[id]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownComputation, id)
	}
	return res, nil
}
