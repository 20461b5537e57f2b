package prefs

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen(t *testing.T) {
	st := openMemory(t)

	var name string
	err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='preferences'").Scan(&name)
	require.NoError(t, err, "preferences table not created")
	assert.Equal(t, "preferences", name)

	assert.Empty(t, st.Favorites())
	assert.False(t, st.DarkMode())
}

func TestToggleFavoriteAddsAndRemoves(t *testing.T) {
	st := openMemory(t)
	ctx := context.Background()

	favs, err := st.ToggleFavorite(ctx, "OL2W")
	require.NoError(t, err)
	assert.Equal(t, []string{"OL2W"}, favs)

	favs, err = st.ToggleFavorite(ctx, "OL1W")
	require.NoError(t, err)
	assert.Equal(t, []string{"OL1W", "OL2W"}, favs)
	assert.True(t, st.IsFavorite("OL1W"))

	favs, err = st.ToggleFavorite(ctx, "OL2W")
	require.NoError(t, err)
	assert.Equal(t, []string{"OL1W"}, favs)
	assert.False(t, st.IsFavorite("OL2W"))
}

func TestToggleFavoriteTwiceRestoresSet(t *testing.T) {
	st := openMemory(t)
	ctx := context.Background()

	_, err := st.ToggleFavorite(ctx, "a")
	require.NoError(t, err)
	before := st.Favorites()

	_, err = st.ToggleFavorite(ctx, "x")
	require.NoError(t, err)
	_, err = st.ToggleFavorite(ctx, "x")
	require.NoError(t, err)

	assert.Equal(t, before, st.Favorites())
}

func TestConcurrentTogglesAreAtomic(t *testing.T) {
	st := openMemory(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := st.ToggleFavorite(ctx, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, ids, st.Favorites())
}

func TestFavoritesObservable(t *testing.T) {
	st := openMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := st.FavoritesValue().Subscribe(ctx)
	assert.Empty(t, <-ch)

	_, err := st.ToggleFavorite(ctx, "OL1W")
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, []string{"OL1W"}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification after toggle")
	}
}

func TestDarkMode(t *testing.T) {
	st := openMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := st.DarkModeValue().Subscribe(ctx)
	assert.False(t, <-ch)

	require.NoError(t, st.SetDarkMode(ctx, true))
	assert.True(t, st.DarkMode())
	assert.True(t, <-ch)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	st, err := Open(path)
	require.NoError(t, err)
	_, err = st.ToggleFavorite(ctx, "OL9W")
	require.NoError(t, err)
	require.NoError(t, st.SetDarkMode(ctx, true))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, []string{"OL9W"}, st.Favorites())
	assert.True(t, st.DarkMode())
}

func TestCorruptFavoritesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, put(context.Background(), st.db, KeyFavorites, "not json"))
	require.NoError(t, st.Close())

	_, err = Open(path)
	assert.Error(t, err)
}
