package sqlrunner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sql-trainer/backend/internal/config"
)

// PgxRunner executes queries directly against Postgres databases, one pool
// per practice-database slug. Queries run inside a read-only transaction,
// so learners cannot mutate the practice data. The pool already reconnects
// on broken connections, which stands in for the RPC runner's retry loop.
type PgxRunner struct {
	pools map[string]*pgxpool.Pool
	cfg   config.RunnerConfig
}

var _ Runner = (*PgxRunner)(nil)

func NewPgxRunner(ctx context.Context, cfg config.RunnerConfig) (*PgxRunner, error) {
	pools := make(map[string]*pgxpool.Pool, len(cfg.DSNs))

	for slug, dsn := range cfg.DSNs {
		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse DSN for %s: %w", slug, err)
		}
		poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("create pool for %s: %w", slug, err)
		}

		pools[slug] = pool
	}

	return &PgxRunner{pools: pools, cfg: cfg}, nil
}

func (r *PgxRunner) Close() {
	for _, pool := range r.pools {
		pool.Close()
	}
}

func (r *PgxRunner) Query(ctx context.Context, slug, query string) (ResultSet, error) {
	pool, ok := r.pools[slug]
	if !ok {
		return ResultSet{}, &ErrorResponse{
			Code:    ErrorCodeUnknownDatabase,
			Message: fmt.Sprintf("no connection configured for database %q", slug),
		}
	}

	query = strings.TrimSuffix(strings.TrimSpace(query), ";")

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return ResultSet{}, &ErrorResponse{Code: ErrorCodeTransport, Message: err.Error()}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return ResultSet{}, tagPgError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = field.Name
	}

	display := [][]any{}
	total := 0
	for rows.Next() {
		total++
		if r.cfg.MaxRows > 0 && len(display) >= r.cfg.MaxRows {
			continue // keep counting for an honest total
		}

		values, err := rows.Values()
		if err != nil {
			return ResultSet{}, &ErrorResponse{Code: ErrorCodeBadPayload, Message: err.Error()}
		}
		display = append(display, values)
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, tagPgError(err)
	}

	return ResultSet{Columns: columns, Rows: display, TotalRows: total}, nil
}

// tagPgError distinguishes SQL rejected by the database from transport
// failures, matching the RPC runner's taxonomy.
func tagPgError(err error) *ErrorResponse {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &ErrorResponse{Code: ErrorCodeQueryError, Message: pgErr.Message}
	}

	return &ErrorResponse{Code: ErrorCodeTransport, Message: err.Error()}
}
