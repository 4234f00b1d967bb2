package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

func newTestStore(opts ...StoreOption) *SlugStore {
	s := &SlugStore{idColumn: DefaultIDColumn}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func TestMatchQuery(t *testing.T) {
	t.Parallel()

	p := sluggable.NewPattern("hello-world")

	t.Run("global", func(t *testing.T) {
		t.Parallel()
		sql, args, err := newTestStore().matchQuery(sluggable.Query{
			Scope:     sluggable.Scope{Strategy: sluggable.StrategyGlobal, Collection: "posts"},
			SlugField: "slug",
			Pattern:   p,
		})
		require.NoError(t, err)
		assert.Equal(t, `SELECT "slug" FROM "posts" WHERE "slug" ~ $1`, sql)
		assert.Equal(t, []any{p.Expr()}, args)
	})

	t.Run("association with exclusion", func(t *testing.T) {
		t.Parallel()
		sql, args, err := newTestStore(WithIDColumn("post_id")).matchQuery(sluggable.Query{
			Scope: sluggable.Scope{
				Strategy:    sluggable.StrategyAssociation,
				Collection:  "blog.posts",
				ParentField: "author_id",
				ParentID:    "a1",
			},
			SlugField: "slug",
			Pattern:   p,
			ExcludeID: "p1",
		})
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT "slug" FROM "blog"."posts" WHERE "slug" ~ $1 AND "author_id"::text = $2 AND "post_id"::text <> $3`,
			sql)
		assert.Equal(t, []any{p.Expr(), "a1", "p1"}, args)
	})

	t.Run("embedded unsupported", func(t *testing.T) {
		t.Parallel()
		_, _, err := newTestStore().matchQuery(sluggable.Query{
			Scope:   sluggable.Scope{Strategy: sluggable.StrategyEmbedded},
			Pattern: p,
		})
		assert.ErrorIs(t, err, sluggable.ErrUnsupportedScope)
	})
}

func TestScanRow(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("0190f2a4-1c2b-7d3e-8f40-5a6b7c8d9e0f")
	author := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	key, fields := scanRow(map[string]any{
		"id":        [16]byte(id),
		"author_id": [16]byte(author),
		"title":     "Hello",
		"views":     int64(3),
	}, "id")
	assert.Equal(t, id.String(), key)
	assert.Equal(t, map[string]any{
		"author_id": author.String(),
		"title":     "Hello",
		"views":     int64(3),
	}, fields)

	spec := sluggable.MustCompile(sluggable.Spec{
		Type:         "posts",
		Collection:   "posts",
		Fields:       []string{"title"},
		Scope:        "author",
		Associations: []sluggable.Association{{Name: "author", ForeignKey: "author_id", Inverse: "posts"}},
	})
	sib, err := sluggable.ResolveScope(sluggable.LoadDocument(key, fields), spec, newTestStore())
	require.NoError(t, err)

	_, args, err := newTestStore().matchQuery(sluggable.Query{
		Scope:     sib.Scope,
		SlugField: spec.SlugField,
		Pattern:   sluggable.NewPattern("hello"),
		ExcludeID: key,
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"^hello(?:-([0-9]+))?$", author.String(), id.String()}, args)
}

func TestLookupQuery(t *testing.T) {
	t.Parallel()

	sql, args, err := newTestStore().lookupQuery(sluggable.Lookup{
		Scope: sluggable.Scope{
			Strategy:    sluggable.StrategyAssociation,
			Collection:  "posts",
			ParentField: "author_id",
			ParentID:    "a1",
		},
		SlugField: "slug",
		Slug:      "foo-2",
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id"::text FROM "posts" WHERE "slug" = $1 AND "author_id"::text = $2 LIMIT 1`, sql)
	assert.Equal(t, []any{"foo-2", "a1"}, args)
}

func TestInsertQuery(t *testing.T) {
	t.Parallel()

	doc := sluggable.NewDocument(map[string]any{"title": "Hello", "slug": "hello"})
	doc.Collection = "posts"

	sql, args := newTestStore().insertQuery(doc)
	assert.Equal(t, `INSERT INTO "posts" ("slug", "title") VALUES ($1, $2) RETURNING "id"::text`, sql)
	assert.Equal(t, []any{"hello", "Hello"}, args)

	empty := sluggable.NewDocument(nil)
	empty.Collection = "posts"
	sql, args = newTestStore().insertQuery(empty)
	assert.Equal(t, `INSERT INTO "posts" DEFAULT VALUES RETURNING "id"::text`, sql)
	assert.Empty(t, args)
}

func TestUpdateQuery(t *testing.T) {
	t.Parallel()

	doc := sluggable.LoadDocument("7", map[string]any{"title": "Hello", "slug": "hello"})
	doc.Collection = "posts"

	sql, _ := newTestStore().updateQuery(doc)
	assert.Empty(t, sql, "no changes, no statement")

	doc.WriteSlugField("hello-1")
	sql, args := newTestStore().updateQuery(doc)
	assert.Equal(t, `UPDATE "posts" SET "slug" = $1 WHERE "id"::text = $2`, sql)
	assert.Equal(t, []any{"hello-1", "7"}, args)
}

func TestSlugIndexSQL(t *testing.T) {
	t.Parallel()

	spec := sluggable.MustCompile(sluggable.Spec{
		Type:         "post",
		Collection:   "posts",
		Fields:       []string{"title"},
		Scope:        "author",
		Associations: []sluggable.Association{{Name: "author", ForeignKey: "author_id", Inverse: "posts"}},
	})
	sql, err := slugIndexSQL(spec)
	require.NoError(t, err)
	assert.Equal(t, `CREATE UNIQUE INDEX IF NOT EXISTS "posts_slug_unique" ON "posts" ("author_id", "slug")`, sql)

	embedded := sluggable.MustCompile(sluggable.Spec{
		Type:     "chapter",
		Fields:   []string{"title"},
		Embedded: &sluggable.Embedding{Collection: "books", Path: "chapters"},
	})
	_, err = slugIndexSQL(embedded)
	assert.ErrorIs(t, err, sluggable.ErrUnsupportedScope)
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	assert.Equal(t, id.String(), keyString([16]byte(id)))
	assert.Equal(t, "42", keyString(int64(42)))
	assert.Equal(t, "abc", keyString("abc"))
	assert.Empty(t, keyString(nil))
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsDuplicateKeyError(errors.New("boom")))
	assert.False(t, IsDuplicateKeyError(nil))

	assert.True(t, IsUndefinedTableError(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFoundError(nil))
}
