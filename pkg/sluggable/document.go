package sluggable

import (
	"maps"
	"reflect"
	"slices"
)

// Document is a map-backed Record with change tracking. Stores use it for
// backfill scans; applications may use it directly or implement Record on
// their own types.
type Document struct {
	// Type is the registered type name, reported through Typed.
	Type string
	// Collection is where a store saves the document.
	Collection string
	// SlugField names the slug attribute. Defaults to "slug".
	SlugField string

	id          string
	fields      map[string]any
	changed     map[string]struct{}
	parents     map[string]Parent
	embeddedIn  Parent
	siblings    []Record
	hasSiblings bool
}

// NewDocument creates an unsaved document.
func NewDocument(fields map[string]any) *Document {
	d := &Document{
		fields:  make(map[string]any, len(fields)),
		changed: make(map[string]struct{}),
	}
	maps.Copy(d.fields, fields)
	return d
}

// LoadDocument creates a document read from storage: it has an identity and
// no pending changes.
func LoadDocument(id string, fields map[string]any) *Document {
	d := NewDocument(fields)
	d.id = id
	return d
}

// SlugID implements Record.
func (d *Document) SlugID() string { return d.id }

// IsNew implements Record.
func (d *Document) IsNew() bool { return d.id == "" }

// SlugType implements Typed.
func (d *Document) SlugType() string { return d.Type }

// ReadField implements Record.
func (d *Document) ReadField(name string) any { return d.fields[name] }

// FieldChanged implements Record.
func (d *Document) FieldChanged(name string) bool {
	_, ok := d.changed[name]
	return ok
}

// WriteSlugField implements Record.
func (d *Document) WriteSlugField(value string) {
	d.Set(d.slugField(), value)
}

// Slug returns the current slug value.
func (d *Document) Slug() string {
	return FieldString(d.fields[d.slugField()])
}

// Set assigns a field and marks it changed when the value differs.
func (d *Document) Set(name string, value any) {
	if old, ok := d.fields[name]; ok && reflect.DeepEqual(old, value) {
		return
	}
	d.fields[name] = value
	d.changed[name] = struct{}{}
}

// Fields returns a copy of the document fields.
func (d *Document) Fields() map[string]any {
	return maps.Clone(d.fields)
}

// Changes returns the names of changed fields in sorted order.
func (d *Document) Changes() []string {
	return slices.Sorted(maps.Keys(d.changed))
}

// MarkPersisted records a successful save. An empty id keeps the current one.
func (d *Document) MarkPersisted(id string) {
	if id != "" {
		d.id = id
	}
	clear(d.changed)
}

// Relate sets the parent of a reference association.
func (d *Document) Relate(association string, parent Parent) *Document {
	if d.parents == nil {
		d.parents = make(map[string]Parent)
	}
	d.parents[association] = parent
	return d
}

// RelatedParent implements AssociationResolver.
func (d *Document) RelatedParent(association string) (Parent, bool) {
	p, ok := d.parents[association]
	return p, ok
}

// EmbedIn sets the parent document holding d.
func (d *Document) EmbedIn(parent Parent) *Document {
	d.embeddedIn = parent
	return d
}

// EmbeddingParent implements EmbeddedRecord.
func (d *Document) EmbeddingParent() (Parent, bool) {
	return d.embeddedIn, d.embeddedIn != nil
}

// WithSiblings sets the in-memory siblings held by the same parent. The list
// may include d itself.
func (d *Document) WithSiblings(siblings ...Record) *Document {
	d.siblings = siblings
	d.hasSiblings = true
	return d
}

// EmbeddedSiblings implements SiblingLister.
func (d *Document) EmbeddedSiblings() ([]Record, bool) {
	return d.siblings, d.hasSiblings
}

func (d *Document) slugField() string {
	if d.SlugField == "" {
		return DefaultSlugField
	}
	return d.SlugField
}
