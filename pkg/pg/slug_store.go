package pg

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

// DefaultIDColumn is the primary key column used when none is configured.
const DefaultIDColumn = "id"

// querier is the subset of pgxpool.Pool used by SlugStore.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SlugStore implements sluggable.Store, Finder, Saver and Scanner on top of
// PostgreSQL tables. Identities are compared in their text form so that
// uuid, integer and text keys all work. Embedded scopes are not supported.
type SlugStore struct {
	db       querier
	idColumn string
}

// StoreOption configures a SlugStore.
type StoreOption func(*SlugStore)

// WithIDColumn sets the primary key column name.
func WithIDColumn(name string) StoreOption {
	return func(s *SlugStore) {
		if name != "" {
			s.idColumn = name
		}
	}
}

// NewSlugStore creates a store over pool.
func NewSlugStore(pool *pgxpool.Pool, opts ...StoreOption) *SlugStore {
	s := &SlugStore{db: pool, idColumn: DefaultIDColumn}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MatchSlugs implements sluggable.Store using the ~ operator.
func (s *SlugStore) MatchSlugs(ctx context.Context, q sluggable.Query) ([]string, error) {
	sql, args, err := s.matchQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// LookupSlug implements sluggable.Finder.
func (s *SlugStore) LookupSlug(ctx context.Context, l sluggable.Lookup) (string, error) {
	sql, args, err := s.lookupQuery(l)
	if err != nil {
		return "", err
	}
	var id string
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if IsNotFoundError(err) {
			return "", sluggable.ErrNotFound
		}
		return "", err
	}
	return id, nil
}

// Save implements sluggable.Saver for *sluggable.Document values. New
// documents are inserted and receive the generated key; existing ones get
// their changed columns updated.
func (s *SlugStore) Save(ctx context.Context, rec sluggable.Record) error {
	doc, ok := rec.(*sluggable.Document)
	if !ok || doc.Collection == "" {
		return errors.Join(sluggable.ErrUnsupportedRecord, fmt.Errorf("%T", rec))
	}

	if doc.IsNew() {
		sql, args := s.insertQuery(doc)
		var id string
		if err := s.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return err
		}
		doc.MarkPersisted(id)
		return nil
	}

	sql, args := s.updateQuery(doc)
	if sql == "" {
		return nil
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return err
	}
	doc.MarkPersisted("")
	return nil
}

// Scan implements sluggable.Scanner. Rows are read in primary key order.
func (s *SlugStore) Scan(ctx context.Context, spec *sluggable.Spec, fn func(*sluggable.Document) error) error {
	id := quoteIdent(s.idColumn)
	rows, err := s.db.Query(ctx, "SELECT * FROM "+quoteTable(spec.Collection)+" ORDER BY "+id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		row, err := pgx.RowToMap(rows)
		if err != nil {
			return err
		}
		key, fields := scanRow(row, s.idColumn)

		doc := sluggable.LoadDocument(key, fields)
		doc.Collection = spec.Collection
		doc.SlugField = spec.SlugField
		if err := fn(doc); err != nil {
			return err
		}
	}
	return rows.Err()
}

// EnsureSlugIndex creates a unique index on the slug column, prefixed by the
// foreign key column for association-scoped specs.
func EnsureSlugIndex(ctx context.Context, pool *pgxpool.Pool, spec *sluggable.Spec) error {
	sql, err := slugIndexSQL(spec)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, sql)
	return err
}

func (s *SlugStore) matchQuery(q sluggable.Query) (string, []any, error) {
	if q.Scope.Strategy == sluggable.StrategyEmbedded {
		return "", nil, sluggable.ErrUnsupportedScope
	}

	var b strings.Builder
	args := []any{q.Pattern.Expr()}
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s ~ $1",
		quoteIdent(q.SlugField), quoteTable(q.Scope.Collection), quoteIdent(q.SlugField))

	if q.Scope.Strategy == sluggable.StrategyAssociation {
		args = append(args, q.Scope.ParentID)
		fmt.Fprintf(&b, " AND %s::text = $%d", quoteIdent(q.Scope.ParentField), len(args))
	}
	if q.ExcludeID != "" {
		args = append(args, q.ExcludeID)
		fmt.Fprintf(&b, " AND %s::text <> $%d", quoteIdent(s.idColumn), len(args))
	}
	return b.String(), args, nil
}

func (s *SlugStore) lookupQuery(l sluggable.Lookup) (string, []any, error) {
	if l.Scope.Strategy == sluggable.StrategyEmbedded {
		return "", nil, sluggable.ErrUnsupportedScope
	}

	var b strings.Builder
	args := []any{l.Slug}
	fmt.Fprintf(&b, "SELECT %s::text FROM %s WHERE %s = $1",
		quoteIdent(s.idColumn), quoteTable(l.Scope.Collection), quoteIdent(l.SlugField))

	if l.Scope.Strategy == sluggable.StrategyAssociation {
		args = append(args, l.Scope.ParentID)
		fmt.Fprintf(&b, " AND %s::text = $%d", quoteIdent(l.Scope.ParentField), len(args))
	}
	b.WriteString(" LIMIT 1")
	return b.String(), args, nil
}

func (s *SlugStore) insertQuery(doc *sluggable.Document) (string, []any) {
	fields := doc.Fields()
	names := slices.Sorted(maps.Keys(fields))

	cols := make([]string, len(names))
	params := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		cols[i] = quoteIdent(name)
		params[i] = "$" + strconv.Itoa(i+1)
		args[i] = fields[name]
	}

	sql := "INSERT INTO " + quoteTable(doc.Collection)
	if len(cols) == 0 {
		sql += " DEFAULT VALUES"
	} else {
		sql += " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
	}
	return sql + " RETURNING " + quoteIdent(s.idColumn) + "::text", args
}

func (s *SlugStore) updateQuery(doc *sluggable.Document) (string, []any) {
	changes := doc.Changes()
	if len(changes) == 0 {
		return "", nil
	}

	sets := make([]string, len(changes))
	args := make([]any, 0, len(changes)+1)
	for i, name := range changes {
		args = append(args, doc.ReadField(name))
		sets[i] = quoteIdent(name) + " = $" + strconv.Itoa(len(args))
	}
	args = append(args, doc.SlugID())

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s::text = $%d",
		quoteTable(doc.Collection), strings.Join(sets, ", "), quoteIdent(s.idColumn), len(args)), args
}

func slugIndexSQL(spec *sluggable.Spec) (string, error) {
	cols := []string{}
	switch spec.Strategy() {
	case sluggable.StrategyEmbedded:
		return "", sluggable.ErrUnsupportedScope
	case sluggable.StrategyAssociation:
		for _, a := range spec.Associations {
			if a.Name == spec.Scope {
				cols = append(cols, quoteIdent(a.ForeignKey))
			}
		}
	}
	cols = append(cols, quoteIdent(spec.SlugField))

	table := strings.ReplaceAll(spec.Collection, ".", "_")
	name := pgx.Identifier{table + "_" + spec.SlugField + "_unique"}.Sanitize()
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
		name, quoteTable(spec.Collection), strings.Join(cols, ", ")), nil
}

// keyString formats a primary key value as read by pgx.RowToMap.
func keyString(v any) string {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return k
	case [16]byte:
		return uuid.UUID(k).String()
	default:
		return fmt.Sprint(k)
	}
}

// scanRow splits a scanned row into its key and fields. uuid columns arrive
// as [16]byte and are converted to their text form so they compare equal to
// the ::text casts used by queries.
func scanRow(row map[string]any, idColumn string) (string, map[string]any) {
	key := keyString(row[idColumn])
	fields := make(map[string]any, len(row))
	for name, v := range row {
		if name == idColumn {
			continue
		}
		if u, ok := v.([16]byte); ok {
			v = uuid.UUID(u).String()
		}
		fields[name] = v
	}
	return key, fields
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
