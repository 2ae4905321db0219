package gradingservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sql-trainer/backend/internal/events"
	"github.com/sql-trainer/backend/internal/grader"
	"github.com/sql-trainer/backend/internal/history"
	"github.com/sql-trainer/backend/internal/httputils"
	"github.com/sql-trainer/backend/internal/questions"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ValidateRequest is one submission to grade.
type ValidateRequest struct {
	Slug       string `json:"slug" binding:"required"`
	QuestionID int    `json:"question_id" binding:"required"`
	StudentSQL string `json:"student_sql"`
}

// Validate grades a submission against the question's reference answer.
// POST /api/v1/validate
func (s *GradingService) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
		return
	}

	ctx, span := tracer.Start(
		c.Request.Context(),
		"Validate",
		trace.WithAttributes(
			attribute.String("question.database", req.Slug),
			attribute.Int("question.id", req.QuestionID),
		),
	)
	defer span.End()

	question, err := s.catalog.Get(req.Slug, req.QuestionID)
	if err != nil {
		if errors.Is(err, questions.ErrNotFound) {
			span.SetStatus(otelcodes.Error, "Unknown question")
			c.JSON(http.StatusNotFound, gin.H{
				"error":             "not_found",
				"error_description": "Unknown question",
			})
			return
		}

		span.SetStatus(otelcodes.Error, "Catalog lookup failed")
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	resp := s.grader.Grade(ctx, grader.Input{
		Slug:       req.Slug,
		QuestionID: req.QuestionID,
		Prompt:     question.Prompt,
		BaseSQL:    question.ReferenceAnswer,
		StudentSQL: req.StudentSQL,
	})

	span.SetStatus(otelcodes.Ok, "Graded")
	span.SetAttributes(attribute.String("grading.verdict", string(resp.Verdict)))

	s.archive(ctx, req, resp)

	s.events.TriggerEvent(ctx, events.Event{
		Type:       events.EventTypeGradeAnswer,
		DistinctID: httputils.GetClientID(ctx),
		Payload: map[string]any{
			"slug":        req.Slug,
			"question_id": req.QuestionID,
			"verdict":     string(resp.Verdict),
			"valid":       resp.Valid,
		},
	})

	c.JSON(http.StatusOK, resp)
}

// archive records the grading; a write failure is logged and never shown
// to the learner.
func (s *GradingService) archive(ctx context.Context, req ValidateRequest, resp grader.Response) {
	if s.store == nil {
		return
	}

	_, err := s.store.Record(ctx, history.Entry{
		Slug:       req.Slug,
		QuestionID: req.QuestionID,
		StudentSQL: req.StudentSQL,
		Verdict:    string(resp.Verdict),
		Valid:      resp.Valid,
	})
	if err != nil {
		slog.Error("failed to archive grading", "error", err)
	}
}
