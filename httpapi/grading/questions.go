package gradingservice

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sql-trainer/backend/internal/events"
	"github.com/sql-trainer/backend/internal/httputils"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ListDatabases returns the slugs of the practice databases.
// GET /api/v1/databases
func (s *GradingService) ListDatabases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"databases": s.catalog.Slugs()})
}

// ListQuestions returns the learner-facing questions of one practice
// database, without the reference answers.
// GET /api/v1/questions?slug=...
func (s *GradingService) ListQuestions(c *gin.Context) {
	slug := c.Query("slug")

	_, span := tracer.Start(
		c.Request.Context(),
		"ListQuestions",
		trace.WithAttributes(attribute.String("question.database", slug)),
	)
	defer span.End()

	if slug == "" {
		span.SetStatus(otelcodes.Error, "Missing slug parameter")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "Missing required parameter: slug",
		})
		return
	}

	items := s.catalog.List(slug)
	if len(items) == 0 {
		span.SetStatus(otelcodes.Error, "Unknown database")
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "No questions for database " + slug,
		})
		return
	}

	span.SetStatus(otelcodes.Ok, "Questions listed")

	s.events.TriggerEvent(c.Request.Context(), events.Event{
		Type:       events.EventTypeQuestionViewed,
		DistinctID: httputils.GetClientID(c.Request.Context()),
		Payload:    map[string]any{"slug": slug},
	})

	c.JSON(http.StatusOK, gin.H{"questions": items})
}
