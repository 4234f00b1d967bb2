package sluggable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

func seedPosts(store *sluggable.MemoryStore) []string {
	return []string{
		store.Insert("posts", map[string]any{"title": "Hello World", "slug": "hello-world"}),
		store.Insert("posts", map[string]any{"title": "Hello World"}),
		store.Insert("posts", map[string]any{"title": "Renamed Post", "slug": "old-title"}),
	}
}

func TestGenerator_Backfill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	spec := sluggable.MustCompile(sluggable.Spec{Type: "post", Collection: "posts", Fields: []string{"title"}, Permanent: true})

	t.Run("updates changed slugs", func(t *testing.T) {
		t.Parallel()
		store := sluggable.NewMemoryStore()
		ids := seedPosts(store)
		gen := sluggable.NewGenerator(store)

		res, err := gen.Backfill(ctx, store, spec, store)
		require.NoError(t, err)
		assert.Equal(t, sluggable.BackfillResult{Scanned: 3, Updated: 2}, res)

		want := []string{"hello-world", "hello-world-1", "renamed-post"}
		for i, id := range ids {
			doc, ok := store.Get("posts", id)
			require.True(t, ok)
			assert.Equal(t, want[i], doc["slug"])
		}
	})

	t.Run("dry run leaves the store untouched", func(t *testing.T) {
		t.Parallel()
		store := sluggable.NewMemoryStore()
		ids := seedPosts(store)
		gen := sluggable.NewGenerator(store)

		res, err := gen.Backfill(ctx, store, spec, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Scanned)
		assert.Equal(t, 2, res.Updated)

		doc, ok := store.Get("posts", ids[2])
		require.True(t, ok)
		assert.Equal(t, "old-title", doc["slug"])
	})

	t.Run("save errors stop the run", func(t *testing.T) {
		t.Parallel()
		store := sluggable.NewMemoryStore()
		seedPosts(store)
		gen := sluggable.NewGenerator(store)

		boom := errors.New("read only")
		saver := sluggable.SaverFunc(func(context.Context, sluggable.Record) error { return boom })
		res, err := gen.Backfill(ctx, store, spec, saver)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, res.Scanned)
		assert.Zero(t, res.Updated)
	})

	t.Run("embedded types are rejected", func(t *testing.T) {
		t.Parallel()
		store := sluggable.NewMemoryStore()
		_, err := sluggable.NewGenerator(store).Backfill(ctx, store, chapterSpec, store)
		assert.ErrorIs(t, err, sluggable.ErrUnsupportedScope)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		store := sluggable.NewMemoryStore()
		seedPosts(store)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res, err := sluggable.NewGenerator(store).Backfill(cctx, store, spec, store)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, res.Scanned)
	})
}
