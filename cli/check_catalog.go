package cli

import (
	"fmt"

	"github.com/sql-trainer/backend/internal/grader"
	"github.com/sql-trainer/backend/internal/questions"
)

// CatalogIssue is one problem found in the question catalog.
type CatalogIssue struct {
	Question questions.Key
	Problem  string
}

func (i CatalogIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Question, i.Problem)
}

// CheckCatalog validates every catalog entry: prompts must be non-blank
// and reference answers must pass the read-only gate. Duplicate ids are
// already rejected when the catalog is loaded.
func (c *Context) CheckCatalog() []CatalogIssue {
	var issues []CatalogIssue

	for _, slug := range c.catalog.Slugs() {
		for _, item := range c.catalog.List(slug) {
			key := questions.Key{Slug: slug, ID: item.ID}

			question, err := c.catalog.Get(slug, item.ID)
			if err != nil {
				issues = append(issues, CatalogIssue{Question: key, Problem: err.Error()})
				continue
			}

			if item.Prompt == "" {
				issues = append(issues, CatalogIssue{Question: key, Problem: "blank prompt"})
			}
			if question.ReferenceAnswer == "" {
				issues = append(issues, CatalogIssue{Question: key, Problem: "blank reference answer"})
			} else if !grader.IsSelect(question.ReferenceAnswer) {
				issues = append(issues, CatalogIssue{Question: key, Problem: "reference answer is not a SELECT"})
			}
		}
	}

	return issues
}
