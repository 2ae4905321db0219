package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sql-trainer/backend/internal/history"
	otelcodes "go.opentelemetry.io/otel/codes"
)

var archivedGradingTotalDesc = prometheus.NewDesc(
	"sqltrainer_archived_gradings_total",
	"Total number of archived gradings",
	[]string{"verdict"},
	nil,
)

var questionAttemptsDesc = prometheus.NewDesc(
	"sqltrainer_question_attempts",
	"Archived grading attempts per question",
	[]string{"database", "question_id"},
	nil,
)

var questionPassesDesc = prometheus.NewDesc(
	"sqltrainer_question_passes",
	"Archived passing gradings per question",
	[]string{"database", "question_id"},
	nil,
)

// HistoryCollector exposes the grading archive as Prometheus metrics.
type HistoryCollector struct {
	store *history.Store
}

func NewHistoryCollector(store *history.Store) *HistoryCollector {
	return &HistoryCollector{store: store}
}

func (c *HistoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- archivedGradingTotalDesc
	ch <- questionAttemptsDesc
	ch <- questionPassesDesc
}

func (c *HistoryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, span := tracer.Start(context.Background(), "HistoryCollector.Collect")
	defer span.End()

	counts, err := c.store.CountByVerdict(ctx)
	if err != nil {
		span.SetStatus(otelcodes.Error, "Failed to collect archived gradings")
		span.RecordError(err)

		ch <- prometheus.NewInvalidMetric(archivedGradingTotalDesc, err)
		return
	}

	for verdict, count := range counts {
		ch <- prometheus.MustNewConstMetric(archivedGradingTotalDesc, prometheus.GaugeValue, float64(count), verdict)
	}

	stats, err := c.store.CountByQuestion(ctx)
	if err != nil {
		span.SetStatus(otelcodes.Error, "Failed to collect question statistics")
		span.RecordError(err)

		ch <- prometheus.NewInvalidMetric(questionAttemptsDesc, err)
		return
	}

	span.SetStatus(otelcodes.Ok, "Grading archive collected successfully")

	for _, stat := range stats {
		questionID := strconv.Itoa(stat.QuestionID)

		ch <- prometheus.MustNewConstMetric(questionAttemptsDesc, prometheus.GaugeValue,
			float64(stat.Attempts), stat.Slug, questionID)
		ch <- prometheus.MustNewConstMetric(questionPassesDesc, prometheus.GaugeValue,
			float64(stat.Passes), stat.Slug, questionID)
	}
}

var _ prometheus.Collector = (*HistoryCollector)(nil)
