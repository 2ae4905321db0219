package cli

import (
	"testing"

	"github.com/sql-trainer/backend/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDistinctSubmissions(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	ctx := t.Context()

	// the same query graded twice keeps only the latest verdict
	gradings := []history.Entry{
		{Slug: "hr", QuestionID: 1, StudentSQL: "select name from employees", Verdict: "content_mismatch"},
		{Slug: "hr", QuestionID: 1, StudentSQL: "select name from employees", Verdict: "equivalent", Valid: true},
		{Slug: "hr", QuestionID: 1, StudentSQL: "select * from employees", Verdict: "column_order_hint"},
		{Slug: "library", QuestionID: 2, StudentSQL: "select title from books", Verdict: "equivalent", Valid: true},
	}
	for _, entry := range gradings {
		_, err := store.Record(ctx, entry)
		require.NoError(t, err)
	}

	c := NewContext(nil, nil, store)
	submissions, err := c.getDistinctSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, submissions, 3)

	// newest first, deduplicated on (slug, question, query)
	assert.Equal(t, "select title from books", submissions[0].StudentSQL)
	assert.Equal(t, "select * from employees", submissions[1].StudentSQL)
	assert.Equal(t, "select name from employees", submissions[2].StudentSQL)
	assert.Equal(t, "equivalent", submissions[2].Verdict)
}

func TestGetDistinctSubmissions_NoStore(t *testing.T) {
	c := NewContext(nil, nil, nil)
	_, err := c.getDistinctSubmissions(t.Context())
	assert.Error(t, err)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "0123456789...", truncateString("0123456789abcdef", 10))
}
