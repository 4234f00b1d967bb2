package sluggable

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// EmbeddedIDField is the identity key of embedded documents.
const EmbeddedIDField = "_id"

type uniqueIndex struct {
	slugField  string
	scopeField string
}

type memCollection struct {
	order []string
	docs  map[string]map[string]any
}

// MemoryStore is an in-process Store, Finder, Saver and Scanner. It supports
// all scope strategies and is meant for tests, tools and small datasets.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	unique      map[string]uniqueIndex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memCollection),
		unique:      make(map[string]uniqueIndex),
	}
}

// EnforceUnique makes Save reject a document whose slugField value is already
// held by another document of the collection with the same scopeField value.
// An empty scopeField makes the constraint collection-wide.
func (s *MemoryStore) EnforceUnique(collection, slugField, scopeField string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unique[collection] = uniqueIndex{slugField: slugField, scopeField: scopeField}
}

// Insert stores fields as a new document and returns its identity.
func (s *MemoryStore) Insert(collection string, fields map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := s.collection(collection)
	c.order = append(c.order, id)
	c.docs[id] = maps.Clone(fields)
	return id
}

// InsertEmbedded appends fields to the path array of a parent document and
// returns the identity of the embedded document.
func (s *MemoryStore) InsertEmbedded(collection, parentID, path string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return "", ErrNotFound
	}
	parent, ok := c.docs[parentID]
	if !ok {
		return "", ErrNotFound
	}

	id := uuid.NewString()
	child := maps.Clone(fields)
	if child == nil {
		child = make(map[string]any)
	}
	child[EmbeddedIDField] = id

	children, _ := parent[path].([]map[string]any)
	parent[path] = append(children, child)
	return id, nil
}

// Get returns a copy of a stored document.
func (s *MemoryStore) Get(collection, id string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, false
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, false
	}
	return maps.Clone(doc), true
}

// MatchSlugs implements Store.
func (s *MemoryStore) MatchSlugs(_ context.Context, q Query) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	s.each(q.Scope, func(id string, doc map[string]any) bool {
		if q.ExcludeID != "" && id == q.ExcludeID {
			return true
		}
		if v := FieldString(doc[q.SlugField]); q.Pattern.Match(v) {
			out = append(out, v)
		}
		return true
	})
	return out, nil
}

// LookupSlug implements Finder.
func (s *MemoryStore) LookupSlug(_ context.Context, l Lookup) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found string
	s.each(l.Scope, func(id string, doc map[string]any) bool {
		if FieldString(doc[l.SlugField]) == l.Slug {
			found = id
			return false
		}
		return true
	})
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}

// Save implements Saver for *Document values with a Collection. New documents
// receive an identity.
func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	doc, ok := rec.(*Document)
	if !ok || doc.Collection == "" {
		return errors.Join(ErrUnsupportedRecord, fmt.Errorf("%T", rec))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(doc.Collection)
	fields := doc.Fields()

	if idx, ok := s.unique[doc.Collection]; ok {
		value := FieldString(fields[idx.slugField])
		scope := FieldString(fields[idx.scopeField])
		for id, other := range c.docs {
			if id == doc.SlugID() {
				continue
			}
			if FieldString(other[idx.slugField]) == value && FieldString(other[idx.scopeField]) == scope {
				return errors.Join(ErrDuplicateSlug, fmt.Errorf("%s.%s=%q", doc.Collection, idx.slugField, value))
			}
		}
	}

	id := doc.SlugID()
	if id == "" {
		id = uuid.NewString()
		c.order = append(c.order, id)
	} else if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = fields
	doc.MarkPersisted(id)
	return nil
}

// Scan implements Scanner. Documents are yielded in insertion order.
func (s *MemoryStore) Scan(ctx context.Context, spec *Spec, fn func(*Document) error) error {
	s.mu.RLock()
	c, ok := s.collections[spec.Collection]
	var snapshot []*Document
	if ok {
		snapshot = make([]*Document, 0, len(c.order))
		for _, id := range c.order {
			doc := LoadDocument(id, c.docs[id])
			doc.Collection = spec.Collection
			snapshot = append(snapshot, doc)
		}
	}
	s.mu.RUnlock()

	for _, doc := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// each walks the documents of a scope until fn returns false. Callers hold
// the read lock.
func (s *MemoryStore) each(scope Scope, fn func(id string, doc map[string]any) bool) {
	c, ok := s.collections[scope.Collection]
	if !ok {
		return
	}

	if scope.Strategy == StrategyEmbedded {
		parent, ok := c.docs[scope.ParentID]
		if !ok {
			return
		}
		children, _ := parent[scope.Path].([]map[string]any)
		for _, child := range children {
			if !fn(FieldString(child[EmbeddedIDField]), child) {
				return
			}
		}
		return
	}

	for _, id := range c.order {
		doc := c.docs[id]
		if scope.Strategy == StrategyAssociation && FieldString(doc[scope.ParentField]) != scope.ParentID {
			continue
		}
		if !fn(id, doc) {
			return
		}
	}
}

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	return c
}
