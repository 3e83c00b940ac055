package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *HistoryManager {
	t.Helper()
	m, err := NewHistoryManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	return m
}

func TestStartAndFinishPlayback(t *testing.T) {
	m := newTestManager(t)

	entry, err := m.StartPlayback("/media/movie.mkv", "Movie", 5400)
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, float64(0), entry.Position)

	entry, err = m.FinishPlayback(entry, 1234.5)
	require.NoError(t, err)
	assert.Equal(t, 1234.5, entry.Position)

	entries, err := m.GetRecentEntries(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/media/movie.mkv", entries[0].Path)
	assert.Equal(t, 1234.5, entries[0].Position)
}

func TestGetRecentEntriesOrderAndLimit(t *testing.T) {
	m := newTestManager(t)

	for _, path := range []string{"/a", "/b", "/c"} {
		_, err := m.StartPlayback(path, "", 0)
		require.NoError(t, err)
	}

	entries, err := m.GetRecentEntries(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// chronological order, oldest of the returned window first
	assert.Equal(t, "/b", entries[0].Path)
	assert.Equal(t, "/c", entries[1].Path)
}

func TestGetEntriesByPath(t *testing.T) {
	m := newTestManager(t)

	_, err := m.StartPlayback("/a", "", 0)
	require.NoError(t, err)
	_, err = m.StartPlayback("/b", "", 0)
	require.NoError(t, err)
	_, err = m.StartPlayback("/a", "", 0)
	require.NoError(t, err)

	entries, err := m.GetEntriesByPath("/a", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSearchHistory(t *testing.T) {
	m := newTestManager(t)

	_, err := m.StartPlayback("/media/cats.mkv", "Cats", 0)
	require.NoError(t, err)
	_, err = m.StartPlayback("/media/dogs.mkv", "Dogs", 0)
	require.NoError(t, err)

	entries, err := m.SearchHistory("cat", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/media/cats.mkv", entries[0].Path)
}

func TestDeleteEntry(t *testing.T) {
	m := newTestManager(t)

	entry, err := m.StartPlayback("/a", "", 0)
	require.NoError(t, err)

	require.NoError(t, m.DeleteEntry(entry.ID))
	assert.Error(t, m.DeleteEntry(entry.ID))
}

func TestResetHistory(t *testing.T) {
	m := newTestManager(t)

	_, err := m.StartPlayback("/a", "", 0)
	require.NoError(t, err)

	require.NoError(t, m.ResetHistory())
	entries, err := m.GetRecentEntries(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
