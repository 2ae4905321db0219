// Package cli provides the CLI service for the backend.
package cli

import (
	"github.com/sql-trainer/backend/internal/grader"
	"github.com/sql-trainer/backend/internal/history"
	"github.com/sql-trainer/backend/internal/questions"
)

// Context is the context for the CLI.
type Context struct {
	catalog *questions.Catalog
	grader  *grader.Grader
	store   *history.Store
}

// NewContext creates a new Context. The grader and the history store may
// be nil for commands that only inspect the catalog.
func NewContext(catalog *questions.Catalog, grader *grader.Grader, store *history.Store) *Context {
	return &Context{
		catalog: catalog,
		grader:  grader,
		store:   store,
	}
}
