package sluggable

import (
	"context"
	"errors"
)

// LookupOption narrows a lookup by slug.
type LookupOption func(*Lookup)

// InParent restricts the lookup to the children of parentID. It is required
// for embedded types and turns an association-scoped lookup from a
// collection-wide search into a per-parent one.
func InParent(parentID string) LookupOption {
	return func(l *Lookup) {
		l.Scope.ParentID = parentID
	}
}

// FindBySlug returns the identity of the record holding value, or "" with a
// nil error when there is none.
func FindBySlug(ctx context.Context, f Finder, spec *Spec, value string, opts ...LookupOption) (string, error) {
	id, err := FindBySlugOrFail(ctx, f, spec, value, opts...)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return id, err
}

// FindBySlugOrFail is like FindBySlug but returns ErrNotFound when no record
// holds value.
func FindBySlugOrFail(ctx context.Context, f Finder, spec *Spec, value string, opts ...LookupOption) (string, error) {
	if spec == nil || !spec.compiled {
		return "", ErrSpecNotCompiled
	}

	l := Lookup{
		Scope:     lookupScope(spec),
		SlugField: spec.SlugField,
		Slug:      value,
	}
	for _, opt := range opts {
		opt(&l)
	}

	switch l.Scope.Strategy {
	case StrategyEmbedded:
		if l.Scope.ParentID == "" {
			return "", ErrNoParent
		}
	case StrategyAssociation:
		if l.Scope.ParentID == "" {
			l.Scope.Strategy = StrategyGlobal
			l.Scope.ParentField = ""
		}
	}

	return f.LookupSlug(ctx, l)
}

func lookupScope(spec *Spec) Scope {
	switch spec.strategy {
	case StrategyEmbedded:
		return Scope{
			Strategy:   StrategyEmbedded,
			Collection: spec.Embedded.Collection,
			RootType:   spec.rootType,
			Path:       spec.Embedded.Path,
		}
	case StrategyAssociation:
		if spec.fallback == StrategyEmbedded {
			return Scope{
				Strategy:   StrategyEmbedded,
				Collection: spec.Embedded.Collection,
				RootType:   spec.rootType,
				Path:       spec.Embedded.Path,
			}
		}
		return Scope{
			Strategy:    StrategyAssociation,
			Collection:  spec.Collection,
			RootType:    spec.rootType,
			ParentField: spec.association.ForeignKey,
		}
	default:
		return Scope{
			Strategy:   StrategyGlobal,
			Collection: spec.Collection,
			RootType:   spec.rootType,
		}
	}
}
