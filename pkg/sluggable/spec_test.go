package sluggable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slugkit/pkg/slug"
	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		spec, err := sluggable.Compile(sluggable.Spec{Type: "post", Collection: "posts", Fields: []string{"title"}})
		require.NoError(t, err)
		assert.Equal(t, sluggable.DefaultSlugField, spec.SlugField)
		assert.Equal(t, sluggable.StrategyGlobal, spec.Strategy())
		assert.Equal(t, "post", spec.RootType())
	})

	t.Run("association scope", func(t *testing.T) {
		t.Parallel()
		spec, err := sluggable.Compile(sluggable.Spec{
			Type:         "post",
			Collection:   "posts",
			Fields:       []string{"title"},
			Scope:        "author",
			Associations: []sluggable.Association{{Name: "author", ForeignKey: "author_id", Inverse: "posts"}},
		})
		require.NoError(t, err)
		assert.Equal(t, sluggable.StrategyAssociation, spec.Strategy())
	})

	t.Run("embedded", func(t *testing.T) {
		t.Parallel()
		spec, err := sluggable.Compile(sluggable.Spec{
			Type:     "chapter",
			Fields:   []string{"title"},
			Embedded: &sluggable.Embedding{Collection: "books", Path: "chapters"},
		})
		require.NoError(t, err)
		assert.Equal(t, sluggable.StrategyEmbedded, spec.Strategy())
	})

	t.Run("does not alias caller slices", func(t *testing.T) {
		t.Parallel()
		fields := []string{"title"}
		spec, err := sluggable.Compile(sluggable.Spec{Type: "post", Collection: "posts", Fields: fields})
		require.NoError(t, err)
		fields[0] = "body"
		assert.Equal(t, []string{"title"}, spec.Fields)
	})
}

func TestCompile_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec sluggable.Spec
		err  error
	}{
		{
			name: "missing type",
			spec: sluggable.Spec{Collection: "posts", Fields: []string{"title"}},
			err:  sluggable.ErrInvalidSpec,
		},
		{
			name: "missing fields",
			spec: sluggable.Spec{Type: "post", Collection: "posts"},
			err:  sluggable.ErrInvalidSpec,
		},
		{
			name: "missing collection",
			spec: sluggable.Spec{Type: "post", Fields: []string{"title"}},
			err:  sluggable.ErrInvalidSpec,
		},
		{
			name: "incomplete embedding",
			spec: sluggable.Spec{Type: "chapter", Fields: []string{"title"}, Embedded: &sluggable.Embedding{Collection: "books"}},
			err:  sluggable.ErrInvalidSpec,
		},
		{
			name: "incomplete association",
			spec: sluggable.Spec{
				Type:         "post",
				Collection:   "posts",
				Fields:       []string{"title"},
				Associations: []sluggable.Association{{Name: "author"}},
			},
			err: sluggable.ErrInvalidSpec,
		},
		{
			name: "unknown association",
			spec: sluggable.Spec{Type: "post", Collection: "posts", Fields: []string{"title"}, Scope: "author"},
			err:  sluggable.ErrUnknownAssociation,
		},
		{
			name: "inheritance outside a registry",
			spec: sluggable.Spec{Type: "article", Inherits: "post", Fields: []string{"title"}},
			err:  sluggable.ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := sluggable.Compile(tt.spec)
			require.ErrorIs(t, err, tt.err)
			assert.True(t, sluggable.IsConfigurationError(err))
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		sluggable.MustCompile(sluggable.Spec{Type: "post"})
	})
}

func TestSpec_BaseToken(t *testing.T) {
	t.Parallel()

	t.Run("fields joined in declared order", func(t *testing.T) {
		t.Parallel()
		spec := sluggable.MustCompile(sluggable.Spec{
			Type:       "person",
			Collection: "people",
			Fields:     []string{"first", "last", "missing"},
		})
		doc := sluggable.NewDocument(map[string]any{"first": "Zoë", "last": "O'Brien"})
		assert.Equal(t, "Zoë O'Brien", spec.BaseString(doc))
		assert.Equal(t, "zoe-o-brien", spec.BaseToken(doc))
	})

	t.Run("base function", func(t *testing.T) {
		t.Parallel()
		spec := sluggable.MustCompile(sluggable.Spec{
			Type:       "event",
			Collection: "events",
			Fields:     []string{"name"},
			Base: func(r sluggable.Record) string {
				return sluggable.FieldString(r.ReadField("year")) + " " + sluggable.FieldString(r.ReadField("name"))
			},
		})
		doc := sluggable.NewDocument(map[string]any{"name": "Go Conf!", "year": 2024})
		assert.Equal(t, "2024-go-conf", spec.BaseToken(doc))
	})

	t.Run("normalizer options", func(t *testing.T) {
		t.Parallel()
		spec := sluggable.MustCompile(sluggable.Spec{
			Type:       "tag",
			Collection: "tags",
			Fields:     []string{"name"},
			Normalize:  []slug.Option{slug.MaxLength(5)},
		})
		doc := sluggable.NewDocument(map[string]any{"name": "Distributed Systems"})
		assert.Equal(t, "distr", spec.BaseToken(doc))
	})
}

func TestStrategy_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "global", sluggable.StrategyGlobal.String())
	assert.Equal(t, "association", sluggable.StrategyAssociation.String())
	assert.Equal(t, "embedded", sluggable.StrategyEmbedded.String())
	assert.Equal(t, "unknown", sluggable.Strategy(0).String())
}
