package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalEngineSuccess(t *testing.T) {
	ctx := context.Background()
	eng := NewLocal()

	id, err := eng.Submit(ctx, Computation{
		Name: "count",
		Run:  func(context.Context) (int64, error) { return 42, nil },
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := Await(ctx, eng, id, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if res.State != StateSucceeded {
		t.Errorf("state = %s, want %s", res.State, StateSucceeded)
	}
	if res.Rows != 42 {
		t.Errorf("rows = %d, want 42", res.Rows)
	}
}

func TestLocalEngineFailureCarriesReason(t *testing.T) {
	ctx := context.Background()
	eng := NewLocal()

	id, err := eng.Submit(ctx, Computation{
		Name: "boom",
		Run:  func(context.Context) (int64, error) { return 0, errors.New("partition scan failed") },
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := Await(ctx, eng, id, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if res.State != StateFailed {
		t.Errorf("state = %s, want %s", res.State, StateFailed)
	}
	if res.Reason != "partition scan failed" {
		t.Errorf("reason = %q, want the failure text verbatim", res.Reason)
	}
}

func TestLocalEngineCancellation(t *testing.T) {
	eng := NewLocal()
	runCtx, cancel := context.WithCancel(context.Background())

	id, err := eng.Submit(runCtx, Computation{
		Name: "slow",
		Run: func(ctx context.Context) (int64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	res, err := Await(context.Background(), eng, id, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if res.State != StateCancelled {
		t.Errorf("state = %s, want %s", res.State, StateCancelled)
	}
}

func TestStatusUnknownID(t *testing.T) {
	eng := NewLocal()
	_, err := eng.Status(context.Background(), "nope")
	if !errors.Is(err, ErrUnknownComputation) {
		t.Errorf("err = %v, want ErrUnknownComputation", err)
	}
}

func TestAwaitHonorsContext(t *testing.T) {
	eng := NewLocal()
	id, err := eng.Submit(context.Background(), Computation{
		Name: "never",
		Run: func(ctx context.Context) (int64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = Await(waitCtx, eng, id, 100*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
