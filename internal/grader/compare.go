package grader

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sql-trainer/backend/internal/sqlrunner"
)

const (
	msgCorrect         = "Congratulations, your query is correct."
	msgPerfect         = "Perfect! The data and the row order are both correct."
	msgWrongOrder      = "The data is correct, but the row order is wrong."
	msgColumnOrderHint = "The data looks right, but check the order of your columns."
	msgMismatch        = "The data does not match the expected result."
)

// Comparison is the tiered comparator's outcome.
type Comparison struct {
	Verdict Verdict
	Valid   bool
	Message string

	// Conclusive is false only for a plain content mismatch, the one
	// outcome the orchestrator may escalate to the semantic judge.
	Conclusive bool
}

// CompareTables grades the student result against the base result through
// the comparison tiers, strictest first. It is pure: no state survives a
// call, and identical inputs always produce identical outcomes.
//
// The base query's structural signature decides whether an order-invariant
// match is acceptable (tier 2 fails when the base required ORDER BY).
func CompareTables(base, student sqlrunner.ResultSet, baseSignature Signature) Comparison {
	// Two empty results are equivalent no matter what columns they claim.
	if base.TotalRows == 0 && student.TotalRows == 0 {
		return Comparison{Verdict: VerdictEquivalent, Valid: true, Message: msgCorrect, Conclusive: true}
	}

	// Row counts are honest even when the displayed rows are truncated,
	// so this is the one check that stays sound past the display cap.
	if base.TotalRows != student.TotalRows {
		return Comparison{
			Verdict: VerdictRowCountMismatch,
			Message: fmt.Sprintf("The row count differs: expected %d, got %d.", base.TotalRows, student.TotalRows),
			Conclusive: true,
		}
	}

	baseNorm := Normalize(base)
	studentNorm := Normalize(student)

	// Tier 1: exact match, row order and column order included.
	if tablesEqual(baseNorm, studentNorm) {
		return Comparison{Verdict: VerdictEquivalent, Valid: true, Message: msgPerfect, Conclusive: true}
	}

	// Tier 2: same rows, different order.
	if tablesEqual(sortedRows(baseNorm), sortedRows(studentNorm)) {
		if baseSignature.Has("ORDER BY") {
			return Comparison{Verdict: VerdictWrongRowOrder, Message: msgWrongOrder, Conclusive: true}
		}

		return Comparison{Verdict: VerdictEquivalent, Valid: true, Message: msgCorrect, Conclusive: true}
	}

	// Tier 3: rows match once each row's own values are sorted, which
	// points at column ordering or labeling. Advisory only: it never
	// passes, and it does not fall through to the looser tier below.
	if slices.Equal(rowValueSignatures(baseNorm), rowValueSignatures(studentNorm)) {
		return Comparison{Verdict: VerdictColumnOrderHint, Message: msgColumnOrderHint, Conclusive: true}
	}

	// Tier 4: per-row alphanumeric fingerprints, ignoring punctuation,
	// spacing and formatting.
	if slices.Equal(fingerprints(baseNorm), fingerprints(studentNorm)) {
		return Comparison{Verdict: VerdictEquivalent, Valid: true, Message: msgCorrect, Conclusive: true}
	}

	return Comparison{Verdict: VerdictContentMismatch, Message: msgMismatch, Conclusive: false}
}

func tablesEqual(a, b NormalizedTable) bool {
	return slices.EqualFunc(a, b, slices.Equal)
}

func sortedRows(table NormalizedTable) NormalizedTable {
	sorted := slices.Clone(table)
	slices.SortFunc(sorted, slices.Compare)
	return sorted
}

// rowValueSignatures sorts each row's own values before joining them, then
// sorts the resulting list, making the comparison column-order tolerant.
func rowValueSignatures(table NormalizedTable) []string {
	signatures := lo.Map(table, func(row []string, _ int) string {
		values := slices.Sorted(slices.Values(row))
		return strings.Join(values, "\x1f")
	})
	slices.Sort(signatures)
	return signatures
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// fingerprints reduces each row to its lowercase alphanumeric characters.
// Matching fingerprint lists mean the raw character content is equivalent
// despite formatting differences; it is a similarity check, not a proof.
func fingerprints(table NormalizedTable) []string {
	prints := lo.Map(table, func(row []string, _ int) string {
		return nonAlphanumeric.ReplaceAllString(strings.Join(row, ""), "")
	})
	slices.Sort(prints)
	return prints
}
