package sqlrunner

import (
	"context"
	"errors"
	"testing"

	"github.com/sql-trainer/backend/internal/config"
	"github.com/sql-trainer/backend/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationRunner(t *testing.T, maxRows int) *PgxRunner {
	t.Helper()

	dsn := testhelper.NewPostgresDSN(t)

	runner, err := NewPgxRunner(context.Background(), config.RunnerConfig{
		Mode:    config.RunnerModePostgres,
		DSNs:    map[string]string{"hr": dsn},
		MaxRows: maxRows,
		Retries: 1,
	})
	require.NoError(t, err)
	t.Cleanup(runner.Close)

	return runner
}

func TestPgxRunner_Integration(t *testing.T) {
	runner := newIntegrationRunner(t, 2)
	ctx := context.Background()

	t.Run("query with capped rows", func(t *testing.T) {
		result, err := runner.Query(ctx, "hr", "SELECT n, n * 2 AS double FROM generate_series(1, 5) AS n;")
		require.NoError(t, err)

		assert.Equal(t, []string{"n", "double"}, result.Columns)
		assert.Len(t, result.Rows, 2, "rows are capped for display")
		assert.Equal(t, 5, result.TotalRows, "the total stays honest")
	})

	t.Run("empty result", func(t *testing.T) {
		result, err := runner.Query(ctx, "hr", "SELECT 1 WHERE false")
		require.NoError(t, err)

		assert.Empty(t, result.Rows)
		assert.Zero(t, result.TotalRows)
	})

	t.Run("bad SQL is a query error", func(t *testing.T) {
		_, err := runner.Query(ctx, "hr", "SELECT * FROM missing_table")

		var tagged *ErrorResponse
		require.True(t, errors.As(err, &tagged))
		assert.Equal(t, ErrorCodeQueryError, tagged.Code)
	})

	t.Run("writes are rejected", func(t *testing.T) {
		_, err := runner.Query(ctx, "hr", "CREATE TABLE scratch (id int)")

		var tagged *ErrorResponse
		require.True(t, errors.As(err, &tagged), "read-only transaction rejects DDL")
		assert.Equal(t, ErrorCodeQueryError, tagged.Code)
	})

	t.Run("unknown database", func(t *testing.T) {
		_, err := runner.Query(ctx, "library", "SELECT 1")

		var tagged *ErrorResponse
		require.True(t, errors.As(err, &tagged))
		assert.Equal(t, ErrorCodeUnknownDatabase, tagged.Code)
	})
}
