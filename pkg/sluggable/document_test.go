package sluggable_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

func TestDocument_ChangeTracking(t *testing.T) {
	t.Parallel()

	doc := sluggable.LoadDocument("1", map[string]any{"title": "A"})
	assert.False(t, doc.IsNew())
	assert.False(t, doc.FieldChanged("title"))

	doc.Set("title", "A")
	assert.False(t, doc.FieldChanged("title"), "same value is not a change")

	doc.Set("title", "B")
	doc.Set("body", "text")
	assert.True(t, doc.FieldChanged("title"))
	assert.Equal(t, []string{"body", "title"}, doc.Changes())

	doc.MarkPersisted("")
	assert.Empty(t, doc.Changes())
	assert.Equal(t, "1", doc.SlugID())
}

func TestDocument_FieldsAreCopied(t *testing.T) {
	t.Parallel()

	src := map[string]any{"title": "A"}
	doc := sluggable.NewDocument(src)
	src["title"] = "B"
	assert.Equal(t, "A", doc.ReadField("title"))

	fields := doc.Fields()
	fields["title"] = "C"
	assert.Equal(t, "A", doc.ReadField("title"))
}

func TestDocument_SlugField(t *testing.T) {
	t.Parallel()

	doc := sluggable.NewDocument(nil)
	doc.WriteSlugField("foo")
	assert.Equal(t, "foo", doc.ReadField(sluggable.DefaultSlugField))
	assert.Equal(t, "foo", doc.Slug())

	custom := sluggable.NewDocument(nil)
	custom.SlugField = "handle"
	custom.WriteSlugField("bar")
	assert.Equal(t, "bar", custom.ReadField("handle"))
	assert.Nil(t, custom.ReadField("slug"))
}

func TestDocument_Relations(t *testing.T) {
	t.Parallel()

	doc := sluggable.NewDocument(nil)
	_, ok := doc.RelatedParent("author")
	assert.False(t, ok)
	_, ok = doc.EmbeddingParent()
	assert.False(t, ok)
	_, ok = doc.EmbeddedSiblings()
	assert.False(t, ok)

	doc.Relate("author", sluggable.Ref{ID: "a1"}).EmbedIn(sluggable.Ref{ID: "b1"}).WithSiblings()
	p, ok := doc.RelatedParent("author")
	assert.True(t, ok)
	assert.Equal(t, "a1", p.SlugID())

	p, ok = doc.EmbeddingParent()
	assert.True(t, ok)
	assert.Equal(t, "b1", p.SlugID())

	siblings, ok := doc.EmbeddedSiblings()
	assert.True(t, ok)
	assert.Empty(t, siblings)
}

func TestRef(t *testing.T) {
	t.Parallel()
	assert.True(t, sluggable.Ref{}.IsNew())
	assert.True(t, sluggable.Ref{ID: "1", New: true}.IsNew())
	assert.False(t, sluggable.Ref{ID: "1"}.IsNew())
}

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

func TestFieldString(t *testing.T) {
	t.Parallel()

	name := "ptr"
	var nilPtr *string

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{&name, "ptr"},
		{nilPtr, ""},
		{[]string{"a", "b"}, "a b"},
		{stringer{"custom"}, "custom"},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{int32(3), "3"},
		{uint(5), "5"},
		{uint64(9), "9"},
		{1.5, "1.5"},
		{float32(2.25), "2.25"},
		{time.Duration(0), "0s"},
		{[]int{1, 2}, "[1 2]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sluggable.FieldString(tt.in))
	}
}
