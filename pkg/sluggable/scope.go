package sluggable

import (
	"context"
	"reflect"
)

// Siblings is the sibling set computed for one generation call. It is built
// by ResolveScope and discarded afterwards.
type Siblings struct {
	// Scope is the resolved scope.
	Scope Scope
	// SelfID is the identity of the record being slugged, excluded from its
	// own uniqueness check.
	SelfID string
	// FellBack is set when an association scope could not be resolved and the
	// type's default scope was used instead.
	FellBack bool

	slugField string
	store     Store
	self      Record
	records   []Record
	inMemory  bool
}

// MatchSlugs implements SiblingSet.
func (s *Siblings) MatchSlugs(ctx context.Context, p *Pattern, excludeID string) ([]string, error) {
	if s.inMemory {
		var out []string
		for _, r := range s.records {
			if r == nil || sameRecord(r, s.self) {
				continue
			}
			if excludeID != "" && r.SlugID() == excludeID {
				continue
			}
			if v := FieldString(r.ReadField(s.slugField)); p.Match(v) {
				out = append(out, v)
			}
		}
		return out, nil
	}

	if s.store == nil {
		return nil, ErrUnsupportedScope
	}
	return s.store.MatchSlugs(ctx, Query{
		Scope:     s.Scope,
		SlugField: s.slugField,
		Pattern:   p,
		ExcludeID: excludeID,
	})
}

// ResolveScope computes the sibling set of rec. An explicit association scope
// wins; when its parent cannot be resolved (no inverse relation, no parent,
// or an unsaved parent) the type's default scope is used. Embedded types
// default to their parent's array, top-level types to the whole root
// collection.
func ResolveScope(rec Record, spec *Spec, store Store) (*Siblings, error) {
	if spec == nil || !spec.compiled {
		return nil, ErrSpecNotCompiled
	}

	sib := &Siblings{
		SelfID:    rec.SlugID(),
		slugField: spec.SlugField,
		store:     store,
		self:      rec,
	}

	strategy := spec.strategy
	if strategy == StrategyAssociation {
		if scope, ok := associationScope(rec, spec); ok {
			sib.Scope = scope
			return sib, nil
		}
		strategy = spec.fallback
		sib.FellBack = true
	}

	if strategy == StrategyEmbedded {
		if err := resolveEmbedded(sib, rec, spec); err != nil {
			return nil, err
		}
		return sib, nil
	}

	sib.Scope = Scope{
		Strategy:   StrategyGlobal,
		Collection: spec.Collection,
		RootType:   spec.rootType,
	}
	return sib, nil
}

func associationScope(rec Record, spec *Spec) (Scope, bool) {
	a := spec.association
	if a == nil || a.Inverse == "" {
		return Scope{}, false
	}

	var parentID string
	if ar, ok := rec.(AssociationResolver); ok {
		if p, ok := ar.RelatedParent(a.Name); ok && p != nil {
			if p.IsNew() {
				return Scope{}, false
			}
			parentID = p.SlugID()
		}
	}
	if parentID == "" {
		parentID = FieldString(rec.ReadField(a.ForeignKey))
	}
	if parentID == "" {
		return Scope{}, false
	}

	return Scope{
		Strategy:    StrategyAssociation,
		Collection:  spec.Collection,
		RootType:    spec.rootType,
		ParentField: a.ForeignKey,
		ParentID:    parentID,
	}, true
}

func resolveEmbedded(sib *Siblings, rec Record, spec *Spec) error {
	sib.Scope = Scope{
		Strategy:   StrategyEmbedded,
		Collection: spec.Embedded.Collection,
		RootType:   spec.rootType,
		Path:       spec.Embedded.Path,
	}

	var parent Parent
	if er, ok := rec.(EmbeddedRecord); ok {
		if p, ok := er.EmbeddingParent(); ok && p != nil {
			parent = p
			sib.Scope.ParentID = p.SlugID()
		}
	}

	if sl, ok := rec.(SiblingLister); ok {
		if records, ok := sl.EmbeddedSiblings(); ok {
			sib.records = records
			sib.inMemory = true
			return nil
		}
	}

	if parent == nil {
		return ErrNoParent
	}
	if parent.IsNew() {
		// Nothing is stored under an unsaved parent yet.
		sib.inMemory = true
	}
	return nil
}

func sameRecord(a, b Record) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return any(a) == any(b)
}
