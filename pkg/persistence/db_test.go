package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSubmission(userID string) *Submission {
	sub := NewSubmission(userID)
	sub.Name = "Jane Doe"
	sub.Email = "jane@x.com"
	sub.Phone = "+1555123"
	sub.Major = "science"
	sub.Country = "Germany"
	sub.Documents = []string{"passport.pdf", "transcript.pdf"}
	return sub
}

func TestSaveAndGetByUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sub := sampleSubmission("u1")
	require.NoError(t, store.Save(ctx, sub))

	got, err := store.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "jane@x.com", got.Email)
	assert.Equal(t, []string{"passport.pdf", "transcript.pdf"}, got.Documents)
	assert.Equal(t, StatusPending, got.Status)
}

func TestGetByUserReturnsNilWhenMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExists(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Save(ctx, sampleSubmission("u1")))

	exists, err = store.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListFiltersByStatusAndOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := sampleSubmission("u1")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.Save(ctx, older))

	newer := sampleSubmission("u2")
	require.NoError(t, store.Save(ctx, newer))

	reviewed := sampleSubmission("u3")
	reviewed.Status = StatusReviewed
	require.NoError(t, store.Save(ctx, reviewed))

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "u1", all[2].UserID, "oldest submission must come last")

	pending, err := store.List(ctx, StatusPending, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	limited, err := store.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Save(ctx, sampleSubmission("u1")))
	require.NoError(t, store.Save(ctx, sampleSubmission("u2")))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDocumentsColumnRoundTrip(t *testing.T) {
	cases := []struct {
		docs []string
	}{
		{nil},
		{[]string{"a.pdf"}},
		{[]string{"a.pdf", "b.pdf", "c.pdf"}},
	}
	for _, tc := range cases {
		got := documentsFromColumn(documentsColumn(tc.docs))
		assert.Equal(t, len(tc.docs), len(got))
		for i := range tc.docs {
			assert.Equal(t, tc.docs[i], got[i])
		}
	}
}
