package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GradingTotal tracks finished gradings by terminal verdict.
	GradingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqltrainer_grading_total",
			Help: "Total number of gradings by terminal verdict",
		},
		[]string{"verdict"},
	)

	// QuestionAttemptedTotal tracks the total number of questions attempted.
	QuestionAttemptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltrainer_question_attempted_total",
			Help: "Total number of questions attempted",
		},
	)

	// BaseQueryErrorTotal tracks reference-query execution failures, which
	// are operator-facing problems rather than learner mistakes.
	BaseQueryErrorTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltrainer_base_query_error_total",
			Help: "Total number of reference query execution errors",
		},
	)

	// RunnerRetryTotal tracks transient executor failures that were retried.
	RunnerRetryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqltrainer_runner_retry_total",
			Help: "Total number of retried transient query-runner failures",
		},
		[]string{"database"},
	)

	// SemanticEscalationTotal tracks semantic-judge escalations by outcome
	// (equivalent, rejected, or failed, which resolves fail-closed).
	SemanticEscalationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqltrainer_semantic_escalation_total",
			Help: "Total number of semantic judge escalations by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordGrading records a finished grading with its terminal verdict.
func RecordGrading(verdict string) {
	GradingTotal.WithLabelValues(verdict).Inc()
}

// RecordQuestionAttempted records a question attempt.
func RecordQuestionAttempted() {
	QuestionAttemptedTotal.Inc()
}

// RecordBaseQueryError records a reference query execution error.
func RecordBaseQueryError() {
	BaseQueryErrorTotal.Inc()
}

// RecordRunnerRetry records a retried transient runner failure.
func RecordRunnerRetry(database string) {
	RunnerRetryTotal.WithLabelValues(database).Inc()
}

// RecordSemanticEscalation records a semantic judge escalation outcome.
func RecordSemanticEscalation(outcome string) {
	SemanticEscalationTotal.WithLabelValues(outcome).Inc()
}
