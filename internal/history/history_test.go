package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestStore_RecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	first, err := store.Record(ctx, Entry{
		Slug: "hr", QuestionID: 1, StudentSQL: "select 1", Verdict: "equivalent", Valid: true,
	})
	require.NoError(t, err)
	second, err := store.Record(ctx, Entry{
		Slug: "hr", QuestionID: 2, StudentSQL: "select 2", Verdict: "content_mismatch",
	})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	entries, err := store.ListLatest(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, second, entries[0].ID)
	assert.Equal(t, "select 2", entries[0].StudentSQL)
	assert.False(t, entries[0].Valid)
	assert.Equal(t, "equivalent", entries[1].Verdict)
	assert.False(t, entries[1].GradedAt.IsZero())
}

func TestStore_ListLatestLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, Entry{Slug: "hr", QuestionID: i, StudentSQL: "select 1", Verdict: "equivalent", Valid: true})
		require.NoError(t, err)
	}

	entries, err := store.ListLatest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 4, entries[0].QuestionID)
}

func TestStore_CountByVerdict(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	for _, verdict := range []string{"equivalent", "equivalent", "content_mismatch"} {
		_, err := store.Record(ctx, Entry{Slug: "hr", QuestionID: 1, StudentSQL: "select 1", Verdict: verdict})
		require.NoError(t, err)
	}

	counts, err := store.CountByVerdict(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"equivalent": 2, "content_mismatch": 1}, counts)
}

func TestStore_CountByQuestion(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	gradings := []Entry{
		{Slug: "hr", QuestionID: 1, StudentSQL: "select 1", Verdict: "equivalent", Valid: true},
		{Slug: "hr", QuestionID: 1, StudentSQL: "select 2", Verdict: "content_mismatch"},
		{Slug: "library", QuestionID: 3, StudentSQL: "select 3", Verdict: "equivalent", Valid: true},
	}
	for _, entry := range gradings {
		_, err := store.Record(ctx, entry)
		require.NoError(t, err)
	}

	stats, err := store.CountByQuestion(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(2), stats["hr/1"].Attempts)
	assert.Equal(t, int64(1), stats["hr/1"].Passes)
	assert.Equal(t, int64(1), stats["library/3"].Attempts)
}
