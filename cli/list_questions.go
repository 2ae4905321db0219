package cli

import "github.com/sql-trainer/backend/internal/questions"

// ListQuestions returns the learner-facing questions of one practice
// database, ordered by id.
func (c *Context) ListQuestions(slug string) []questions.ListItem {
	return c.catalog.List(slug)
}
