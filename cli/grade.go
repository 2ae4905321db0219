package cli

import (
	"context"
	"fmt"

	"github.com/sql-trainer/backend/internal/grader"
)

// Grade grades one submission against the catalog and returns the full
// grading response.
func (c *Context) Grade(ctx context.Context, slug string, questionID int, studentSQL string) (grader.Response, error) {
	if c.grader == nil {
		return grader.Response{}, fmt.Errorf("grader is not set")
	}

	question, err := c.catalog.Get(slug, questionID)
	if err != nil {
		return grader.Response{}, fmt.Errorf("look up question %s/%d: %w", slug, questionID, err)
	}

	return c.grader.Grade(ctx, grader.Input{
		Slug:       slug,
		QuestionID: questionID,
		Prompt:     question.Prompt,
		BaseSQL:    question.ReferenceAnswer,
		StudentSQL: studentSQL,
	}), nil
}
