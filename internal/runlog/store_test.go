// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runlog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dcat-sync/internal/reconcile"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)

	started := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	sum := reconcile.Summary{
		Created: 3, Updated: 2, Unchanged: 40, Retired: 1,
		Errors: []error{errors.New("update ois-9: HTTP 412")},
	}
	require.NoError(t, s.Record(started, started.Add(4*time.Minute), sum, false))
	require.NoError(t, s.Record(started.Add(24*time.Hour), started.Add(24*time.Hour+time.Minute), reconcile.Summary{Unchanged: 46}, true))

	entries, err := s.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.True(t, entries[0].DryRun)
	assert.Equal(t, 46, entries[0].Unchanged)

	assert.Equal(t, 3, entries[1].Created)
	assert.Equal(t, 2, entries[1].Updated)
	assert.Equal(t, 1, entries[1].Retired)
	assert.Equal(t, 1, entries[1].Failed)
	assert.Equal(t, started, entries[1].StartedAt)
}

func TestList_Limit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(time.Now(), time.Now(), reconcile.Summary{}, false))
	}

	entries, err := s.List(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestList_Empty(t *testing.T) {
	s := openTestStore(t)
	entries, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
