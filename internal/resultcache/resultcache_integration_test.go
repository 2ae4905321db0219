package resultcache

import (
	"context"
	"testing"

	"github.com/sql-trainer/backend/internal/sqlrunner"
	"github.com/sql-trainer/backend/internal/testhelper"
)

func TestRedisCache_Integration(t *testing.T) {
	container := testhelper.NewRedisContainer(t)
	redisClient := testhelper.NewRedisClient(t, container)

	cache := NewRedisCache(redisClient)
	ctx := context.Background()

	// Miss before anything is stored
	if _, ok := cache.Get(ctx, "hr", 1); ok {
		t.Fatal("Get reported a hit on an empty cache")
	}

	stored := sqlrunner.ResultSet{
		Columns:   []string{"name", "salary"},
		Rows:      [][]any{{"Ada", float64(120000)}, {"Grace", float64(115000)}},
		TotalRows: 42,
	}
	cache.Set(ctx, "hr", 1, stored)

	got, ok := cache.Get(ctx, "hr", 1)
	if !ok {
		t.Fatal("Get missed after Set")
	}
	if got.TotalRows != stored.TotalRows {
		t.Errorf("Get returned wrong total: got %d, want %d", got.TotalRows, stored.TotalRows)
	}
	if len(got.Columns) != 2 || got.Columns[0] != "name" {
		t.Errorf("Get returned wrong columns: %v", got.Columns)
	}
	if len(got.Rows) != 2 {
		t.Errorf("Get returned wrong row count: %d", len(got.Rows))
	}

	// Questions are cached independently
	if _, ok := cache.Get(ctx, "hr", 2); ok {
		t.Error("Get for another question hit the wrong entry")
	}
	if _, ok := cache.Get(ctx, "library", 1); ok {
		t.Error("Get for another database hit the wrong entry")
	}
}
