package categories

import (
	"context"
	"testing"

	"github.com/brandpulse/review-analytics/internal/lexicon"
	"github.com/brandpulse/review-analytics/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlobBackend(t *testing.T) (*BlobBackend, *storage.SQLiteStorage) {
	t.Helper()
	s, err := storage.NewSQLiteStorage(t.TempDir() + "/keywords.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewBlobBackend(s), s
}

func TestBlobBackend_LoadMissing(t *testing.T) {
	backend, _ := newBlobBackend(t)

	got, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBlobBackend_SaveKeepsOtherCategories(t *testing.T) {
	backend, s := newBlobBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "Fit", []string{"snug", "Loose"}))
	require.NoError(t, backend.Save(ctx, "Shipping", []string{"late"}))
	require.NoError(t, backend.Save(ctx, "Fit", []string{"baggy"}))

	got, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"Fit":      {"baggy"},
		"Shipping": {"late"},
	}, got)

	raw, err := s.Retrieve(ctx, KeywordsObject)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Shipping"`)
}

func TestBlobBackend_CorruptObject(t *testing.T) {
	backend, s := newBlobBackend(t)
	ctx := context.Background()
	require.NoError(t, s.Store(ctx, KeywordsObject, []byte("not json")))

	_, err := backend.Load(ctx)
	assert.Error(t, err)
	assert.Error(t, backend.Save(ctx, "Fit", nil))
}

func TestBlobBackend_WithStore(t *testing.T) {
	backend, _ := newBlobBackend(t)
	ctx := context.Background()

	s := NewStore(backend)
	_, err := s.AddKeyword(lexicon.Custom, "zipper")
	require.NoError(t, err)
	s.Flush()

	reloaded := NewStore(backend)
	require.NoError(t, reloaded.Reload(ctx))
	kws, _ := reloaded.Keywords(lexicon.Custom)
	assert.Equal(t, []string{"zipper"}, kws)
}

func TestBlobBackend_Delete(t *testing.T) {
	backend, _ := newBlobBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "Fit", []string{"snug"}))
	require.NoError(t, backend.Save(ctx, "Shipping", []string{"late"}))

	require.NoError(t, backend.Delete(ctx, "Fit"))
	require.NoError(t, backend.Delete(ctx, "Missing"))

	got, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"Shipping": {"late"}}, got)
}
