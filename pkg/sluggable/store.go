package sluggable

import (
	"context"
	"fmt"
)

// Scope identifies the records a slug must be unique among.
type Scope struct {
	Strategy Strategy
	// Collection holds the sibling records. For embedded scopes it is the
	// collection of the parent documents.
	Collection string
	// RootType is the top of the inheritance chain sharing Collection.
	RootType string
	// ParentField is the foreign key field filtering association siblings.
	ParentField string
	// ParentID is the identity of the parent for association and embedded
	// scopes.
	ParentID string
	// Path is the parent field holding embedded siblings.
	Path string
}

func (s Scope) String() string {
	switch s.Strategy {
	case StrategyAssociation:
		return fmt.Sprintf("association:%s[%s=%s]", s.Collection, s.ParentField, s.ParentID)
	case StrategyEmbedded:
		return fmt.Sprintf("embedded:%s[%s].%s", s.Collection, s.ParentID, s.Path)
	default:
		return "global:" + s.Collection
	}
}

// Query asks a store for the slug values of records in Scope that match
// Pattern, leaving out the record identified by ExcludeID.
type Query struct {
	Scope     Scope
	SlugField string
	Pattern   *Pattern
	ExcludeID string
}

// Lookup asks a store for the identity of the record holding Slug in Scope.
type Lookup struct {
	Scope     Scope
	SlugField string
	Slug      string
}

// Store is the query capability the uniqueness engine needs from a backend.
// MatchSlugs may return values in any order; stores that cannot filter by
// regular expression may return a superset, values not matching the pattern
// are ignored.
type Store interface {
	MatchSlugs(ctx context.Context, q Query) ([]string, error)
}

// Finder resolves a slug to a record identity. It returns ErrNotFound when no
// record holds the slug.
type Finder interface {
	LookupSlug(ctx context.Context, l Lookup) (string, error)
}

// Saver persists a record after its slug was written.
type Saver interface {
	Save(ctx context.Context, rec Record) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, rec Record) error

// Save implements Saver.
func (f SaverFunc) Save(ctx context.Context, rec Record) error { return f(ctx, rec) }

// Scanner iterates over every stored record of a spec's collection. It is
// used for bulk backfills.
type Scanner interface {
	Scan(ctx context.Context, spec *Spec, fn func(*Document) error) error
}
