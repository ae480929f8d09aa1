package factload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lakeetl/internal/period"
	"lakeetl/pkg/records"
)

// PostgresFactStore implements FactStore against a Postgres fact table using
// pgx COPY for the bulk insert.
type PostgresFactStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresFactStore connects a pool and returns the store plus a close
// function. table may be schema-qualified, e.g. "analytics.fact_sales".
func NewPostgresFactStore(ctx context.Context, dsn, table string) (*PostgresFactStore, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &PostgresFactStore{pool: pool, table: table}, func() { pool.Close() }, nil
}

// EnsureSchema creates the fact table when it does not exist yet.
func (s *PostgresFactStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"SalesOrderKey"       bigint,
	"SalesOrderDetailKey" bigint,
	"OrderDate"           date,
	"DueDate"             date,
	"ShipDate"            date,
	"EmployeeKey"         bigint,
	"CustomerKey"         bigint,
	"ProductKey"          bigint,
	"StoreKey"            bigint,
	"OrderQty"            bigint,
	"UnitPrice"           double precision,
	"UnitPriceDiscount"   double precision,
	"SubTotal"            double precision,
	"TaxAmt"              double precision,
	"Freight"             double precision,
	"TotalDue"            double precision,
	"LineTotal"           double precision,
	"RunMonth"            text NOT NULL
)`, pgFQN(s.table))
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s: %w", s.table, err)
	}
	return nil
}

func (s *PostgresFactStore) PeriodCount(ctx context.Context, p period.Period) (int64, error) {
	var n int64
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE "RunMonth" = $1`, pgFQN(s.table))
	if err := s.pool.QueryRow(ctx, q, p.Key()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count period %s: %w", p, err)
	}
	return n, nil
}

func (s *PostgresFactStore) DeletePeriod(ctx context.Context, p period.Period) (int64, error) {
	q := fmt.Sprintf(`DELETE FROM %s WHERE "RunMonth" = $1`, pgFQN(s.table))
	tag, err := s.pool.Exec(ctx, q, p.Key())
	if err != nil {
		return 0, fmt.Errorf("delete period %s: %w", p, err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresFactStore) InsertPeriod(ctx context.Context, p period.Period, recs []records.Record) (int64, error) {
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rows[i] = ProjectRow(rec, p)
	}

	n, err := s.pool.CopyFrom(ctx, splitFQN(s.table), FactColumns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("copy into %s: %s (%s)", s.table, pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("copy into %s: %w", s.table, err)
	}
	return n, nil
}

// pgIdent quotes a single identifier segment.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "analytics.fact_sales".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
