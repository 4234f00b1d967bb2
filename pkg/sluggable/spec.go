package sluggable

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/slugkit/pkg/slug"
)

// DefaultSlugField is the attribute that stores the slug when Spec.SlugField
// is empty.
const DefaultSlugField = "slug"

// Strategy selects which records count as siblings of a record.
type Strategy int

const (
	// StrategyGlobal checks uniqueness against every record stored in the
	// root collection of the type.
	StrategyGlobal Strategy = iota + 1
	// StrategyAssociation checks uniqueness among the other children of the
	// parent referenced through Spec.Scope.
	StrategyAssociation
	// StrategyEmbedded checks uniqueness among the records embedded in the
	// same parent array.
	StrategyEmbedded
)

func (s Strategy) String() string {
	switch s {
	case StrategyGlobal:
		return "global"
	case StrategyAssociation:
		return "association"
	case StrategyEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// Association declares a reference from the record to a parent.
type Association struct {
	// Name is the association name used by Spec.Scope, e.g. "author".
	Name string
	// ForeignKey is the record field holding the parent identity, e.g. "author_id".
	ForeignKey string
	// Inverse is the parent's relation listing its children, e.g. "posts".
	// Without an inverse, siblings cannot be resolved through the parent and
	// uniqueness falls back to the type's default scope.
	Inverse string
}

// Embedding declares that records of a type live in an array of a parent
// document.
type Embedding struct {
	// Collection holds the parent documents.
	Collection string
	// Path is the parent field holding the embedded array.
	Path string
}

// Spec describes how slugs are built and kept unique for one record type.
// It is built once at startup, compiled by Compile or Registry.Register, and
// must not be modified afterwards.
type Spec struct {
	// Type is the type identifier used by the Registry.
	Type string
	// Collection is the collection or table that stores records of the type.
	// Subtypes sharing the collection of the type they inherit from may leave
	// it empty.
	Collection string
	// Inherits names the registered type this type extends.
	Inherits string
	// Fields lists the source fields in declaration order. They are joined
	// with a single space to build the base string, and they are the fields
	// watched for changes.
	Fields []string
	// SlugField is the attribute storing the slug. Defaults to "slug".
	SlugField string
	// Base builds the base string from the whole record instead of joining
	// Fields. The result is normalized the same way.
	Base func(Record) string
	// Scope names an association from Associations; siblings are then the
	// other children of the same parent.
	Scope string
	// Permanent freezes the slug after it is first generated.
	Permanent bool
	// Associations declares the reference associations of the type.
	Associations []Association
	// Embedded is set for types stored inside a parent document.
	Embedded *Embedding
	// Normalize holds options passed to slug.Make.
	Normalize []slug.Option

	compiled    bool
	strategy    Strategy
	fallback    Strategy
	rootType    string
	association *Association
}

// Compile validates a standalone spec and resolves its scope strategy.
// Specs that inherit from another type must go through Registry.Register.
func Compile(spec Spec) (*Spec, error) {
	if spec.Inherits != "" {
		return nil, errors.Join(ErrInvalidSpec, fmt.Errorf("type %q inherits %q: register it with a Registry", spec.Type, spec.Inherits))
	}
	s := spec
	if err := s.compile(nil); err != nil {
		return nil, err
	}
	return &s, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(spec Spec) *Spec {
	s, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Strategy returns the configured scope strategy.
func (s *Spec) Strategy() Strategy { return s.strategy }

// RootType returns the top of the inheritance chain sharing the collection.
func (s *Spec) RootType() string { return s.rootType }

// BaseString returns the raw, not yet normalized, base string for rec.
func (s *Spec) BaseString(rec Record) string {
	if s.Base != nil {
		return s.Base(rec)
	}
	values := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		values = append(values, FieldString(rec.ReadField(f)))
	}
	return slug.Join(values...)
}

// BaseToken returns the normalized base token for rec.
func (s *Spec) BaseToken(rec Record) string {
	return slug.Make(s.BaseString(rec), s.Normalize...)
}

// SourceChanged reports whether any source field of rec changed.
func (s *Spec) SourceChanged(rec Record) bool {
	for _, f := range s.Fields {
		if rec.FieldChanged(f) {
			return true
		}
	}
	return false
}

// compile fills defaults and resolves the strategy. parent is the compiled
// spec of the inherited type, or nil.
func (s *Spec) compile(parent *Spec) error {
	if s.Type == "" {
		return errors.Join(ErrInvalidSpec, errors.New("type is required"))
	}

	s.Fields = append([]string(nil), s.Fields...)
	s.Associations = append([]Association(nil), s.Associations...)

	if parent != nil {
		if s.Collection == "" {
			s.Collection = parent.Collection
		}
		if len(s.Fields) == 0 && s.Base == nil {
			s.Fields = parent.Fields
			s.Base = parent.Base
		}
		if s.SlugField == "" {
			s.SlugField = parent.SlugField
		}
		if s.Scope == "" {
			s.Scope = parent.Scope
		}
		if s.Embedded == nil {
			s.Embedded = parent.Embedded
		}
		if len(s.Normalize) == 0 {
			s.Normalize = parent.Normalize
		}
		s.Associations = append(append([]Association(nil), parent.Associations...), s.Associations...)
	}

	if s.SlugField == "" {
		s.SlugField = DefaultSlugField
	}
	if len(s.Fields) == 0 && s.Base == nil {
		return errors.Join(ErrInvalidSpec, fmt.Errorf("type %q: source fields or a base function are required", s.Type))
	}
	if s.Embedded != nil {
		if s.Embedded.Collection == "" || s.Embedded.Path == "" {
			return errors.Join(ErrInvalidSpec, fmt.Errorf("type %q: embedding needs a parent collection and path", s.Type))
		}
	} else if s.Collection == "" {
		return errors.Join(ErrInvalidSpec, fmt.Errorf("type %q: collection is required", s.Type))
	}

	for i := range s.Associations {
		if s.Associations[i].Name == "" || s.Associations[i].ForeignKey == "" {
			return errors.Join(ErrInvalidSpec, fmt.Errorf("type %q: association needs a name and a foreign key", s.Type))
		}
	}

	s.fallback = StrategyGlobal
	if s.Embedded != nil {
		s.fallback = StrategyEmbedded
	}

	s.strategy = s.fallback
	s.association = nil
	if s.Scope != "" {
		for i := range s.Associations {
			if s.Associations[i].Name == s.Scope {
				s.association = &s.Associations[i]
				break
			}
		}
		if s.association == nil {
			return errors.Join(ErrUnknownAssociation, fmt.Errorf("type %q: scope %q", s.Type, s.Scope))
		}
		s.strategy = StrategyAssociation
	}

	s.rootType = s.Type
	if parent != nil && parent.Collection == s.Collection {
		s.rootType = parent.rootType
	}

	s.compiled = true
	return nil
}
