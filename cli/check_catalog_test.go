package cli

import (
	"testing"

	"github.com/sql-trainer/backend/internal/questions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCatalog(t *testing.T) {
	t.Run("clean catalog has no issues", func(t *testing.T) {
		catalog, err := questions.New([]questions.DatabaseEntry{
			{Slug: "hr", Questions: []questions.Question{
				{ID: 1, Prompt: "List every employee.", ReferenceAnswer: "SELECT name FROM employees"},
				{ID: 2, Prompt: "Count the employees.", ReferenceAnswer: "select count(*) from employees"},
			}},
		})
		require.NoError(t, err)

		c := NewContext(catalog, nil, nil)
		assert.Empty(t, c.CheckCatalog())
	})

	t.Run("flags blank prompts and non-SELECT answers", func(t *testing.T) {
		catalog, err := questions.New([]questions.DatabaseEntry{
			{Slug: "hr", Questions: []questions.Question{
				{ID: 1, Prompt: "", ReferenceAnswer: "SELECT 1"},
				{ID: 2, Prompt: "Drop it.", ReferenceAnswer: "DROP TABLE employees"},
				{ID: 3, Prompt: "Missing answer."},
			}},
		})
		require.NoError(t, err)

		c := NewContext(catalog, nil, nil)
		issues := c.CheckCatalog()
		require.Len(t, issues, 3)

		problems := make(map[string]string)
		for _, issue := range issues {
			problems[issue.Question.String()] = issue.Problem
		}
		assert.Equal(t, "blank prompt", problems["hr/1"])
		assert.Equal(t, "reference answer is not a SELECT", problems["hr/2"])
		assert.Equal(t, "blank reference answer", problems["hr/3"])
	})
}
