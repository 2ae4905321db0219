package grader

import (
	"testing"

	"github.com/sql-trainer/backend/internal/sqlrunner"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	result := sqlrunner.ResultSet{
		Columns: []string{"name", "salary", "active", "note"},
		Rows: [][]any{
			{"  Ada LOVELACE ", float64(3), true, nil},
			{"Grace", 3.00004, false, "N/A"},
		},
		TotalRows: 2,
	}

	table := Normalize(result)

	assert.Equal(t, NormalizedTable{
		{"ada lovelace", "3.00", "true", ""},
		{"grace", "3.00", "false", "n/a"},
	}, table)
}

func TestNormalize_Deterministic(t *testing.T) {
	result := sqlrunner.ResultSet{
		Columns:   []string{"a", "b"},
		Rows:      [][]any{{1.005, " MiXeD  "}},
		TotalRows: 1,
	}

	assert.Equal(t, Normalize(result), Normalize(result))
}

func TestNormalize_EmptyResult(t *testing.T) {
	assert.Empty(t, Normalize(sqlrunner.ResultSet{Columns: []string{"a"}}))
}

func TestNormalizeCell_IntegerTypes(t *testing.T) {
	assert.Equal(t, "7.00", normalizeCell(int64(7)))
	assert.Equal(t, "7.00", normalizeCell(7))
	assert.Equal(t, "7.00", normalizeCell(float64(7)))
}
