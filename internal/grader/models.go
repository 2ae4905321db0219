// Package grader contains the grading engine: result normalization, the
// structural keyword check, the tiered equivalence comparator, and the
// orchestration that turns a student's query into a verdict.
package grader

import (
	"github.com/sql-trainer/backend/internal/sqlrunner"
)

// Verdict identifies the terminal outcome of one grading.
type Verdict string

const (
	VerdictEquivalent         Verdict = "equivalent"
	VerdictRejectedBlank      Verdict = "rejected_blank"
	VerdictRejectedNotSelect  Verdict = "rejected_not_select"
	VerdictStudentQueryError  Verdict = "student_query_error"
	VerdictBaseQueryError     Verdict = "base_query_error"
	VerdictStructuralOmission Verdict = "structural_omission"
	VerdictWrongRowOrder      Verdict = "wrong_row_order"
	VerdictColumnOrderHint    Verdict = "column_order_hint"
	VerdictRowCountMismatch   Verdict = "row_count_mismatch"
	VerdictContentMismatch    Verdict = "content_mismatch"
	VerdictSemanticReject     Verdict = "semantic_reject"
)

// QueryResult is the learner-facing view of one query execution: either a
// table or the executor's error text.
type QueryResult struct {
	Data  *sqlrunner.ResultSet `json:"data"`
	Error string               `json:"error,omitempty"`
}

// Response is the grading engine's produced contract. Message and Error are
// mutually exclusive; tables are attached whenever the corresponding query
// executed, regardless of verdict, so the caller can render both outputs.
type Response struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Prompt  string `json:"prompt"`

	ResultTable   *QueryResult `json:"result_table,omitempty"`
	ExpectedTable *QueryResult `json:"expected_table,omitempty"`

	Verdict Verdict `json:"-"`
}

// QueryOutcome is a query execution result as handed to the engine: a table
// or the tagged executor error, never both.
type QueryOutcome struct {
	Table *sqlrunner.ResultSet
	Err   error
}

func (o QueryOutcome) ok() bool {
	return o.Err == nil && o.Table != nil
}

func (o QueryOutcome) asQueryResult() *QueryResult {
	if o.Err != nil {
		return &QueryResult{Error: o.Err.Error()}
	}

	return &QueryResult{Data: o.Table}
}
