package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

const hexID = "64b7f0c2a1b2c3d4e5f60718"

func TestIDHelpers(t *testing.T) {
	t.Parallel()

	oid, err := bson.ObjectIDFromHex(hexID)
	require.NoError(t, err)

	t.Run("match object id or string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, bson.M{"$in": bson.A{oid, hexID}}, idMatch(hexID))
		assert.Equal(t, "user-1", idMatch("user-1"))
	})

	t.Run("exclude object id or string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, bson.M{"$nin": bson.A{oid, hexID}}, idExclude(hexID))
		assert.Equal(t, bson.M{"$ne": "user-1"}, idExclude("user-1"))
	})

	t.Run("string form", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, hexID, idString(oid))
		assert.Equal(t, "abc", idString("abc"))
		assert.Equal(t, "42", idString(int32(42)))
		assert.Empty(t, idString(nil))
	})
}

func TestSiblingFilter(t *testing.T) {
	t.Parallel()

	p := sluggable.NewPattern("hello-world")

	t.Run("global", func(t *testing.T) {
		t.Parallel()
		f := siblingFilter(sluggable.Query{
			Scope:     sluggable.Scope{Strategy: sluggable.StrategyGlobal, Collection: "posts"},
			SlugField: "slug",
			Pattern:   p,
		})
		assert.Equal(t, bson.M{"slug": bson.M{"$regex": p.Expr()}}, f)
	})

	t.Run("association excludes self", func(t *testing.T) {
		t.Parallel()
		f := siblingFilter(sluggable.Query{
			Scope: sluggable.Scope{
				Strategy:    sluggable.StrategyAssociation,
				Collection:  "posts",
				ParentField: "author_id",
				ParentID:    "a1",
			},
			SlugField: "handle",
			Pattern:   p,
			ExcludeID: "p1",
		})
		assert.Equal(t, bson.M{
			"handle":    bson.M{"$regex": p.Expr()},
			"author_id": "a1",
			"_id":       bson.M{"$ne": "p1"},
		}, f)
	})
}

func TestLookupFilter(t *testing.T) {
	t.Parallel()

	f := lookupFilter(sluggable.Lookup{
		Scope: sluggable.Scope{
			Strategy:    sluggable.StrategyAssociation,
			ParentField: "author_id",
			ParentID:    "a1",
		},
		SlugField: "slug",
		Slug:      "foo-2",
	})
	assert.Equal(t, bson.M{"slug": "foo-2", "author_id": "a1"}, f)

	f = lookupFilter(sluggable.Lookup{SlugField: "slug", Slug: "foo"})
	assert.Equal(t, bson.M{"slug": "foo"}, f)
}

func TestEmbeddedPipeline(t *testing.T) {
	t.Parallel()

	scope := sluggable.Scope{
		Strategy:   sluggable.StrategyEmbedded,
		Collection: "books",
		ParentID:   "b1",
		Path:       "chapters",
	}
	pipeline := embeddedPipeline(scope, bson.M{"slug": "intro"}, "slug", "c1")
	require.Len(t, pipeline, 5)

	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, bson.M{"_id": "b1"}, pipeline[0][0].Value)
	assert.Equal(t, "$chapters", pipeline[1][0].Value)
	assert.Equal(t, "$chapters", pipeline[2][0].Value)
	assert.Equal(t, bson.M{
		"slug":                    "intro",
		sluggable.EmbeddedIDField: bson.M{"$ne": "c1"},
	}, pipeline[3][0].Value)
}

func TestSlugIndexModel(t *testing.T) {
	t.Parallel()

	t.Run("global", func(t *testing.T) {
		t.Parallel()
		spec := sluggable.MustCompile(sluggable.Spec{Type: "post", Collection: "posts", Fields: []string{"title"}})
		model, err := slugIndexModel(spec)
		require.NoError(t, err)
		assert.Equal(t, bson.D{{Key: "slug", Value: 1}}, model.Keys)
	})

	t.Run("association prefixes foreign key", func(t *testing.T) {
		t.Parallel()
		spec := sluggable.MustCompile(sluggable.Spec{
			Type:         "post",
			Collection:   "posts",
			Fields:       []string{"title"},
			Scope:        "author",
			Associations: []sluggable.Association{{Name: "author", ForeignKey: "author_id", Inverse: "posts"}},
		})
		model, err := slugIndexModel(spec)
		require.NoError(t, err)
		assert.Equal(t, bson.D{{Key: "author_id", Value: 1}, {Key: "slug", Value: 1}}, model.Keys)
	})

	t.Run("embedded unsupported", func(t *testing.T) {
		t.Parallel()
		spec := sluggable.MustCompile(sluggable.Spec{
			Type:       "chapter",
			Collection: "books",
			Fields:     []string{"title"},
			Embedded:   &sluggable.Embedding{Collection: "books", Path: "chapters"},
		})
		_, err := slugIndexModel(spec)
		assert.ErrorIs(t, err, sluggable.ErrUnsupportedScope)
	})
}
