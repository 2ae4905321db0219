package grader

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sql-trainer/backend/internal/metrics"
	"github.com/sql-trainer/backend/internal/sqlrunner"
)

const (
	msgBlank     = "Your query is blank."
	msgNotSelect = "Your query must start with SELECT."
	msgBaseError = "The reference query failed to execute. This is a problem with the exercise, not with your answer."

	msgSemanticConfirmed = "Semantic review confirmed that your query satisfies the question's requirements."
	msgSemanticReject    = "The queries are not equivalent."
)

// SemanticJudge decides whether two queries satisfy the same business
// requirement. Implementations must fail closed: on any internal failure
// they answer false rather than certify an answer they could not check.
type SemanticJudge interface {
	Judge(ctx context.Context, prompt, baseSQL, studentSQL string) bool
}

// BaseResultCache caches reference-query results, which are immutable for
// the lifetime of a catalog.
type BaseResultCache interface {
	Get(ctx context.Context, slug string, questionID int) (sqlrunner.ResultSet, bool)
	Set(ctx context.Context, slug string, questionID int, result sqlrunner.ResultSet)
}

// Grader sequences the syntactic gate, query execution, the structural
// check, the tiered comparison, and semantic escalation into one verdict.
// It holds no mutable state; concurrent gradings are independent.
type Grader struct {
	runner sqlrunner.Runner
	judge  SemanticJudge   // optional; mismatches become terminal without it
	cache  BaseResultCache // optional
}

func New(runner sqlrunner.Runner, judge SemanticJudge, cache BaseResultCache) *Grader {
	return &Grader{runner: runner, judge: judge, cache: cache}
}

// Input is one grading request, already resolved against the catalog.
type Input struct {
	Slug       string
	QuestionID int
	Prompt     string
	BaseSQL    string
	StudentSQL string
}

// IsSelect reports whether the trimmed query starts with the SELECT token.
func IsSelect(query string) bool {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < len("select") || !strings.EqualFold(trimmed[:len("select")], "select") {
		return false
	}
	if len(trimmed) == len("select") {
		return true
	}

	next := trimmed[len("select")]
	return !isWordByte(next)
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Grade runs the full state machine for one request. Rejected inputs never
// reach the executor; a failing student query skips the reference query.
func (g *Grader) Grade(ctx context.Context, input Input) Response {
	student := strings.TrimSpace(input.StudentSQL)

	if student == "" {
		return g.finish(Response{
			Verdict: VerdictRejectedBlank,
			Error:   msgBlank,
			Prompt:  input.Prompt,
		})
	}

	if !IsSelect(student) {
		return g.finish(Response{
			Verdict: VerdictRejectedNotSelect,
			Error:   msgNotSelect,
			Prompt:  input.Prompt,
		})
	}

	metrics.RecordQuestionAttempted()

	studentOutcome := g.run(ctx, input.Slug, student)
	if studentOutcome.Err != nil {
		// the reference query is not executed for a failing submission
		return g.GradeResults(ctx, input.Prompt, input.BaseSQL, student, QueryOutcome{}, studentOutcome)
	}

	baseOutcome := g.runBase(ctx, input)

	return g.GradeResults(ctx, input.Prompt, input.BaseSQL, student, baseOutcome, studentOutcome)
}

// GradeResults grades two already-executed queries. This is the engine's
// produced contract: it never panics, and every lower-layer error surfaces
// as a tagged verdict in the response.
func (g *Grader) GradeResults(ctx context.Context, prompt, baseSQL, studentSQL string, base, student QueryOutcome) Response {
	resp := Response{Prompt: prompt}

	if student.Err != nil {
		resp.Verdict = VerdictStudentQueryError
		resp.Error = student.Err.Error()
		resp.ResultTable = student.asQueryResult()
		if base.ok() {
			resp.ExpectedTable = base.asQueryResult()
		}

		return g.finish(resp)
	}
	resp.ResultTable = student.asQueryResult()

	if !base.ok() {
		metrics.RecordBaseQueryError()
		slog.Error("reference query failed", "error", base.Err)

		resp.Verdict = VerdictBaseQueryError
		resp.Error = msgBaseError
		if base.Err != nil {
			resp.ExpectedTable = base.asQueryResult()
		}

		return g.finish(resp)
	}
	resp.ExpectedTable = base.asQueryResult()

	// Structural correctness is checked before content: correct data
	// obtained without a required clause is still corrected.
	baseSignature := SignatureOf(baseSQL)
	if missing := MissingKeywords(baseSignature, SignatureOf(studentSQL)); len(missing) > 0 {
		resp.Verdict = VerdictStructuralOmission
		resp.Error = omissionMessage(missing)

		return g.finish(resp)
	}

	comparison := CompareTables(*base.Table, *student.Table, baseSignature)
	if comparison.Conclusive || g.judge == nil {
		resp.Verdict = comparison.Verdict
		resp.Valid = comparison.Valid
		if comparison.Valid {
			resp.Message = comparison.Message
		} else {
			resp.Error = comparison.Message
		}

		return g.finish(resp)
	}

	// The comparator is inconclusive; let the semantic judge decide.
	// A failing judge resolves to false, never to a pass.
	if g.judge.Judge(ctx, prompt, baseSQL, studentSQL) {
		resp.Verdict = VerdictEquivalent
		resp.Valid = true
		resp.Message = msgSemanticConfirmed
	} else {
		resp.Verdict = VerdictSemanticReject
		resp.Error = msgSemanticReject
	}

	return g.finish(resp)
}

func (g *Grader) run(ctx context.Context, slug, query string) QueryOutcome {
	result, err := g.runner.Query(ctx, slug, query)
	if err != nil {
		return QueryOutcome{Err: err}
	}

	return QueryOutcome{Table: &result}
}

// runBase executes the reference query, going through the cache when one
// is configured. Reference answers are immutable per catalog load.
func (g *Grader) runBase(ctx context.Context, input Input) QueryOutcome {
	if g.cache != nil {
		if cached, ok := g.cache.Get(ctx, input.Slug, input.QuestionID); ok {
			return QueryOutcome{Table: &cached}
		}
	}

	outcome := g.run(ctx, input.Slug, input.BaseSQL)

	if g.cache != nil && outcome.ok() {
		g.cache.Set(ctx, input.Slug, input.QuestionID, *outcome.Table)
	}

	return outcome
}

func (g *Grader) finish(resp Response) Response {
	metrics.RecordGrading(string(resp.Verdict))
	return resp
}
