package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lakeetl/internal/period"
)

// SQLiteStore keeps the control tables in a local SQLite database. The run
// log and error sink are append-only.
type SQLiteStore struct {
	db *sql.DB
}

const controlDDL = `
CREATE TABLE IF NOT EXISTS etl_log (
	run_id      TEXT NOT NULL,
	run_month   TEXT NOT NULL,
	source      TEXT NOT NULL,
	table_name  TEXT NOT NULL,
	status      TEXT NOT NULL,
	records_out INTEGER NOT NULL DEFAULT 0,
	started_at  TEXT NOT NULL,
	ended_at    TEXT NOT NULL,
	note        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_etl_log_progress
	ON etl_log (table_name, status, run_month);

CREATE TABLE IF NOT EXISTS etl_errors (
	run_id     TEXT NOT NULL,
	ts         TEXT NOT NULL,
	source     TEXT NOT NULL,
	table_name TEXT NOT NULL,
	step       TEXT NOT NULL,
	severity   TEXT NOT NULL,
	error_code TEXT NOT NULL,
	message    TEXT NOT NULL
);
`

// OpenSQLite opens (and if needed initializes) the control database. The DSN
// is passed straight to database/sql, e.g. "file:control.db" or ":memory:".
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil, fmt.Errorf("audit: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("audit: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("audit: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, controlDDL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("audit: init schema: %w", err)
	}

	return &SQLiteStore{db: db}, func() { db.Close() }, nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO etl_log (run_id, run_month, source, table_name, status, records_out, started_at, ended_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Period.Key(), e.Source, e.Table, e.Status, e.RecordsOut,
		e.StartedAt.UTC().Format(time.RFC3339), e.EndedAt.UTC().Format(time.RFC3339), e.Note)
	if err != nil {
		return fmt.Errorf("audit: insert run row: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordError(ctx context.Context, e ErrorEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO etl_errors (run_id, ts, source, table_name, step, severity, error_code, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.TS.UTC().Format(time.RFC3339), e.Source, e.Table, e.Step, e.Severity, e.ErrorCode, e.Message)
	if err != nil {
		return fmt.Errorf("audit: insert error row: %w", err)
	}
	return nil
}

// MaxSucceededPeriod relies on run_month being zero-padded "YYYY-MM", which
// makes lexical MAX the chronological maximum.
func (s *SQLiteStore) MaxSucceededPeriod(ctx context.Context, table string) (period.Period, bool, error) {
	var key sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(run_month) FROM etl_log WHERE table_name = ? AND status = ?`,
		table, StatusSucceeded).Scan(&key)
	if err != nil {
		return period.Period{}, false, fmt.Errorf("audit: progress query: %w", err)
	}
	if !key.Valid {
		return period.Period{}, false, nil
	}
	p, err := period.Parse(key.String)
	if err != nil {
		return period.Period{}, false, fmt.Errorf("audit: bad run_month %q in control store: %w", key.String, err)
	}
	return p, true, nil
}
