package sluggable

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a persisted entity whose slug is managed by a Generator.
// The generator only reads fields and writes the slug attribute; persisting
// the record stays with the caller.
type Record interface {
	// SlugID returns the stable identity of the record, or "" when the record
	// has never been persisted.
	SlugID() string
	// IsNew reports whether the record has not been persisted yet.
	IsNew() bool
	// ReadField returns the current value of a field.
	ReadField(name string) any
	// FieldChanged reports whether a field changed since the last persist.
	FieldChanged(name string) bool
	// WriteSlugField stores the generated slug into the slug attribute.
	WriteSlugField(value string)
}

// Parent is the owning side of an association or embedding.
type Parent interface {
	SlugID() string
	IsNew() bool
}

// AssociationResolver is implemented by records that can resolve the parent
// on the other side of a named reference association. Records that do not
// implement it are resolved through the association foreign key field.
type AssociationResolver interface {
	RelatedParent(association string) (Parent, bool)
}

// EmbeddedRecord is implemented by records stored inside a parent document.
type EmbeddedRecord interface {
	EmbeddingParent() (Parent, bool)
}

// SiblingLister is implemented by embedded records that can list the other
// children held by their parent in memory. When it reports ok, those records
// form the sibling set instead of a store query, so unsaved siblings count.
type SiblingLister interface {
	EmbeddedSiblings() (siblings []Record, ok bool)
}

// Typed is implemented by records that know their registered type name.
type Typed interface {
	SlugType() string
}

// Ref is a minimal Parent built from an identity.
type Ref struct {
	ID  string
	New bool
}

// SlugID implements Parent.
func (r Ref) SlugID() string { return r.ID }

// IsNew implements Parent.
func (r Ref) IsNew() bool { return r.New || r.ID == "" }

// FieldString converts a field value into the string used to build a base
// token. Nil values produce "".
func FieldString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case []string:
		return strings.Join(val, " ")
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}
