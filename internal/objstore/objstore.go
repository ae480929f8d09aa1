// Package objstore abstracts the lake's object layer: bronze drops land here,
// silver and quarantine output is written back here. The production backend is
// S3-compatible storage; tests use the in-memory implementation.
package objstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for a key with no object.
	ErrNotFound = errors.New("object not found")
	// ErrPutFailed wraps upload failures after retries are exhausted.
	ErrPutFailed = errors.New("object put failed")
	// ErrGetFailed wraps download failures after retries are exhausted.
	ErrGetFailed = errors.New("object get failed")
)

// Store is the object-layer contract the pipeline depends on.
type Store interface {
	// Put writes body under key, replacing any existing object.
	Put(ctx context.Context, key string, body []byte) error
	// Get reads the object at key; ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every key under prefix, lexically ordered.
	List(ctx context.Context, prefix string) ([]string, error)
	// DeletePrefix removes every object under prefix. Deleting an empty
	// prefix is a no-op, which makes partition replacement idempotent.
	DeletePrefix(ctx context.Context, prefix string) error
}
