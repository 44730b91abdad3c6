package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_StoreRetrieve(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, "reports/acme.json", []byte(`{"v":1}`)))
	data, err := s.Retrieve(ctx, "reports/acme.json")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	// overwrite
	require.NoError(t, s.Store(ctx, "reports/acme.json", []byte(`{"v":2}`)))
	data, err = s.Retrieve(ctx, "reports/acme.json")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Retrieve(context.Background(), "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage_ListDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"reports/b.json", "reports/a.json", "config/keywords.json"} {
		require.NoError(t, s.Store(ctx, name, []byte("x")))
	}

	names, err := s.List(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/a.json", "reports/b.json"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.Delete(ctx, "reports/a.json"))
	names, err = s.List(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/b.json"}, names)

	assert.NoError(t, s.Delete(ctx, "reports/a.json"))
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Store(ctx, "a", []byte("1")))
	data, err := s.Retrieve(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}

func TestSQLiteStorage_InMemoryInstancesAreIsolated(t *testing.T) {
	first, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer first.Close()
	second, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer second.Close()

	ctx := context.Background()
	require.NoError(t, first.Store(ctx, "a", []byte("1")))

	_, err = second.Retrieve(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	names, err := second.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSQLiteStorage_DeleteMatchesStoredName(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Store(ctx, " a ", []byte("1")))
	require.NoError(t, s.Store(ctx, "a", []byte("2")))

	require.NoError(t, s.Delete(ctx, " a "))
	_, err = s.Retrieve(ctx, " a ")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := s.Retrieve(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}
