package grader

import (
	"testing"

	"github.com/sql-trainer/backend/internal/sqlrunner"
	"github.com/stretchr/testify/assert"
)

func table(columns []string, rows ...[]any) sqlrunner.ResultSet {
	return sqlrunner.ResultSet{Columns: columns, Rows: rows, TotalRows: len(rows)}
}

func noSignature() Signature {
	return SignatureOf("select * from t")
}

func TestCompare_BothEmpty(t *testing.T) {
	base := sqlrunner.ResultSet{Columns: []string{"a", "b"}}
	student := sqlrunner.ResultSet{Columns: []string{"x"}}

	got := CompareTables(base, student, noSignature())

	assert.True(t, got.Valid)
	assert.Equal(t, VerdictEquivalent, got.Verdict)
}

func TestCompare_ExactMatch(t *testing.T) {
	base := table([]string{"id", "name"}, []any{float64(1), "a"})
	student := table([]string{"id", "name"}, []any{float64(1), "a"})

	got := CompareTables(base, student, noSignature())

	assert.True(t, got.Valid)
	assert.Equal(t, msgPerfect, got.Message)
}

func TestCompare_NumericRounding(t *testing.T) {
	base := table([]string{"v"}, []any{3.0})
	student := table([]string{"v"}, []any{3.00004})

	got := CompareTables(base, student, noSignature())

	assert.True(t, got.Valid)
	assert.Equal(t, msgPerfect, got.Message)
}

func TestCompare_OrderInvariant_RequiredOrder(t *testing.T) {
	base := table([]string{"n"}, []any{float64(1)}, []any{float64(2)})
	student := table([]string{"n"}, []any{float64(2)}, []any{float64(1)})

	got := CompareTables(base, student, SignatureOf("select n from t order by n"))

	assert.False(t, got.Valid)
	assert.True(t, got.Conclusive)
	assert.Equal(t, VerdictWrongRowOrder, got.Verdict)
	assert.Equal(t, msgWrongOrder, got.Message)
}

func TestCompare_OrderInvariant_OrderNotRequired(t *testing.T) {
	base := table([]string{"n"}, []any{float64(1)}, []any{float64(2)})
	student := table([]string{"n"}, []any{float64(2)}, []any{float64(1)})

	got := CompareTables(base, student, noSignature())

	assert.True(t, got.Valid)
	assert.Equal(t, VerdictEquivalent, got.Verdict)
}

func TestCompare_ColumnOrderHint(t *testing.T) {
	base := table([]string{"first", "last"}, []any{"john", "doe"})
	student := table([]string{"last", "first"}, []any{"doe", "john"})

	got := CompareTables(base, student, noSignature())

	assert.False(t, got.Valid)
	assert.True(t, got.Conclusive, "the column order hint never falls through to the fingerprint tier")
	assert.Equal(t, VerdictColumnOrderHint, got.Verdict)
}

func TestCompare_Fingerprint(t *testing.T) {
	base := table([]string{"first", "last"}, []any{"John", "Doe"})
	student := table([]string{"full_name"}, []any{"JohnDoe "})

	got := CompareTables(base, student, noSignature())

	assert.True(t, got.Valid)
	assert.Equal(t, VerdictEquivalent, got.Verdict)
}

func TestCompare_FingerprintIgnoresPunctuation(t *testing.T) {
	base := table([]string{"name"}, []any{"Doe, John"})
	student := table([]string{"name"}, []any{"Doe  John"})

	got := CompareTables(base, student, noSignature())

	assert.True(t, got.Valid)
}

func TestCompare_Mismatch_Inconclusive(t *testing.T) {
	base := table([]string{"n"}, []any{float64(1)})
	student := table([]string{"n"}, []any{float64(9)})

	got := CompareTables(base, student, noSignature())

	assert.False(t, got.Valid)
	assert.False(t, got.Conclusive)
	assert.Equal(t, VerdictContentMismatch, got.Verdict)
}

func TestCompare_RowCountFastPath(t *testing.T) {
	// displayed rows are truncated, but the honest totals differ
	base := sqlrunner.ResultSet{Columns: []string{"n"}, Rows: [][]any{{float64(1)}}, TotalRows: 40}
	student := sqlrunner.ResultSet{Columns: []string{"n"}, Rows: [][]any{{float64(1)}}, TotalRows: 25}

	got := CompareTables(base, student, noSignature())

	assert.False(t, got.Valid)
	assert.True(t, got.Conclusive)
	assert.Equal(t, VerdictRowCountMismatch, got.Verdict)
	assert.Contains(t, got.Message, "40")
	assert.Contains(t, got.Message, "25")
}

func TestCompare_Idempotent(t *testing.T) {
	base := table([]string{"n"}, []any{float64(2)}, []any{float64(1)})
	student := table([]string{"n"}, []any{float64(1)}, []any{float64(2)})
	sig := SignatureOf("select n from t order by n")

	first := CompareTables(base, student, sig)
	second := CompareTables(base, student, sig)

	assert.Equal(t, first, second)
}
