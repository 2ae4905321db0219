package questions_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sql-trainer/backend/internal/questions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalogFile(t, `[
		{
			"slug": "human-resources",
			"questions": [
				{"id": 1, "prompt": "List every employee.", "reference_answer": "SELECT * FROM employees"},
				{"id": 2, "prompt": "List departments by name.", "reference_answer": "SELECT name FROM departments ORDER BY name"}
			]
		},
		{
			"slug": "e-commerce",
			"questions": [
				{"id": 1, "prompt": "Count all orders.", "reference_answer": "SELECT COUNT(*) FROM orders"}
			]
		}
	]`)

	catalog, err := questions.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, catalog.Len())
	assert.Equal(t, []string{"human-resources", "e-commerce"}, catalog.Slugs())

	question, err := catalog.Get("human-resources", 2)
	require.NoError(t, err)
	assert.Equal(t, "List departments by name.", question.Prompt)
	assert.Equal(t, "SELECT name FROM departments ORDER BY name", question.ReferenceAnswer)
}

func TestGet_NotFound(t *testing.T) {
	catalog, err := questions.New([]questions.DatabaseEntry{
		{Slug: "hr", Questions: []questions.Question{{ID: 1, Prompt: "p", ReferenceAnswer: "SELECT 1"}}},
	})
	require.NoError(t, err)

	_, err = catalog.Get("hr", 99)
	assert.ErrorIs(t, err, questions.ErrNotFound)

	_, err = catalog.Get("unknown-db", 1)
	assert.ErrorIs(t, err, questions.ErrNotFound)
}

func TestNew_DuplicateKey(t *testing.T) {
	_, err := questions.New([]questions.DatabaseEntry{
		{Slug: "hr", Questions: []questions.Question{
			{ID: 1, Prompt: "a", ReferenceAnswer: "SELECT 1"},
			{ID: 1, Prompt: "b", ReferenceAnswer: "SELECT 2"},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate question hr/1")
}

func TestList_FiltersBySlugAndHidesAnswer(t *testing.T) {
	catalog, err := questions.New([]questions.DatabaseEntry{
		{Slug: "hr", Questions: []questions.Question{
			{ID: 2, Prompt: "second", ReferenceAnswer: "SELECT 2"},
			{ID: 1, Prompt: "first", ReferenceAnswer: "SELECT 1"},
		}},
		{Slug: "shop", Questions: []questions.Question{
			{ID: 1, Prompt: "other", ReferenceAnswer: "SELECT 3"},
		}},
	})
	require.NoError(t, err)

	items := catalog.List("hr")
	require.Len(t, items, 2)
	assert.Equal(t, questions.ListItem{ID: 1, Slug: "hr", Prompt: "first"}, items[0])
	assert.Equal(t, questions.ListItem{ID: 2, Slug: "hr", Prompt: "second"}, items[1])

	assert.Empty(t, catalog.List("nope"))
}
