// Package config defines the canonical, JSON-serializable configuration model
// for the lake pipelines. It is intentionally small, explicit, and dependency-
// free so that a run can be loaded from disk and passed through the program
// without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":  "monthly-promote",
//	  "lake": { "bucket": "aw-datalake", "region": "us-east-1", "source": "github" },
//	  "control": { "dsn": "file:control.db" },
//	  "fact": { "dsn": "postgresql://...", "table": "analytics.fact_sales" },
//	  "run":  { "start_month": "2011-05", "end_month": "2014-05" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"lakeetl/internal/period"
)

// Config is the top-level object decoded from a run configuration file.
type Config struct {
	// Job names the run for metrics grouping and log lines.
	Job string `json:"job"`

	Lake    Lake    `json:"lake"`
	Control Control `json:"control"`
	Fact    Fact    `json:"fact"`
	Run     Run     `json:"run"`
	Metrics Metrics `json:"metrics"`
}

// Lake configures the object store holding bronze, silver, and quarantine.
type Lake struct {
	// Bucket is the lake bucket name.
	Bucket string `json:"bucket"`
	// Region is the AWS region; the ambient default applies when empty.
	Region string `json:"region"`
	// Endpoint is an optional custom endpoint (MinIO, LocalStack).
	Endpoint string `json:"endpoint"`
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool `json:"use_path_style"`
	// Source is the upstream system name in bronze paths, e.g. "github".
	Source string `json:"source"`
}

// Control configures the SQLite control store (run audit log + error sink).
type Control struct {
	// DSN is passed to database/sql, e.g. "file:control.db".
	DSN string `json:"dsn"`
}

// Fact configures the Postgres fact destination.
type Fact struct {
	// DSN is the connection string for pgxpool.
	DSN string `json:"dsn"`
	// Table is the fully qualified fact table, e.g. "analytics.fact_sales".
	Table string `json:"table"`
	// AutoCreateTable creates the fact table on startup when missing.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Run bounds the processing window and tunes polling.
type Run struct {
	// StartMonth is the first period ("YYYY-MM") when the control store has
	// no progress yet.
	StartMonth string `json:"start_month"`
	// EndMonth is the hard inclusive bound; the planner answers NO_ACTION
	// past it.
	EndMonth string `json:"end_month"`
	// PollSeconds is the computation status polling interval.
	PollSeconds int `json:"poll_seconds"`
	// RefreshDims includes the dimension refreshes in a promotion run.
	RefreshDims bool `json:"refresh_dims"`
	// Overwrite allows a fact load to replace an already loaded period.
	Overwrite bool `json:"overwrite"`
}

// Metrics configures the optional Pushgateway backend.
type Metrics struct {
	// PushgatewayURL enables metric pushing when non-empty.
	PushgatewayURL string `json:"pushgateway_url"`
}

// Load decodes a configuration file.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// PollInterval returns the polling interval with a safe default.
func (r Run) PollInterval() time.Duration {
	if r.PollSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(r.PollSeconds) * time.Second
}

// Window parses the start and end months. Call Validate first; Window assumes
// the fields lint clean.
func (r Run) Window() (start, end period.Period, err error) {
	start, err = period.Parse(r.StartMonth)
	if err != nil {
		return
	}
	end, err = period.Parse(r.EndMonth)
	return
}
