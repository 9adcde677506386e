package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sb/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rev(n int64) *models.Revision {
	r := models.Revision(n)
	return &r
}

func TestArchiveSession_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &models.ArchivedSession{
		WorkingCopy: "/src/trunk",
		Bad:         rev(91),
		Good:        rev(90),
		Culprit:     rev(91),
		SkipCount:   2,
		Outcome:     models.OutcomeConcluded,
		StartedAt:   time.Now().UTC().Add(-time.Hour).Truncate(time.Second),
	}
	require.NoError(t, s.ArchiveSession(ctx, rec))
	require.NotEmpty(t, rec.ID, "id is assigned on insert")
	require.False(t, rec.EndedAt.IsZero())

	got, err := s.GetSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.WorkingCopy, got.WorkingCopy)
	assert.Equal(t, models.Revision(91), *got.Bad)
	assert.Equal(t, models.Revision(90), *got.Good)
	assert.Equal(t, models.Revision(91), *got.Culprit)
	assert.Equal(t, 2, got.SkipCount)
	assert.Equal(t, models.OutcomeConcluded, got.Outcome)
}

func TestArchiveSession_NullRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// An abandoned session may never have gotten both bounds.
	rec := &models.ArchivedSession{
		WorkingCopy: "/src/trunk",
		Bad:         rev(100),
		Outcome:     models.OutcomeAbandoned,
		StartedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.ArchiveSession(ctx, rec))

	got, err := s.GetSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Good)
	assert.Nil(t, got.Culprit)
	require.NotNil(t, got.Bad)
	assert.Equal(t, models.Revision(100), *got.Bad)
}

func TestGetSession_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSession(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestListSessions_FilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i, wc := range []string{"/src/trunk", "/src/branch", "/src/trunk"} {
		rec := &models.ArchivedSession{
			WorkingCopy: wc,
			Outcome:     models.OutcomeAbandoned,
			StartedAt:   base,
			EndedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.ArchiveSession(ctx, rec))
	}

	all, err := s.ListSessions(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].EndedAt.After(all[1].EndedAt), "newest first")

	trunk, err := s.ListSessions(ctx, "/src/trunk", 0)
	require.NoError(t, err)
	assert.Len(t, trunk, 2)

	one, err := s.ListSessions(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
