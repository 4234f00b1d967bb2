package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

// DefaultPageSize is the number of hits requested per search page.
const DefaultPageSize = 1000

// SlugStore implements sluggable.Store, Finder, Saver and Scanner over
// OpenSearch indices named IndexPrefix + collection. The slug attribute must be mapped
// as a keyword field for regexp and term queries to match whole values.
// Embedded scopes are not supported.
type SlugStore struct {
	transport opensearchapi.Transport
	prefix    string
	pageSize  int
	refresh   string
}

// NewSlugStore creates a store. client is usually an *opensearch.Client.
func NewSlugStore(client opensearchapi.Transport, cfg Config) *SlugStore {
	s := &SlugStore{
		transport: client,
		prefix:    cfg.IndexPrefix,
		pageSize:  cfg.PageSize,
		refresh:   cfg.Refresh,
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	return s
}

// MatchSlugs implements sluggable.Store with a regexp query. All matching
// hits are read, page by page.
func (s *SlugStore) MatchSlugs(ctx context.Context, q sluggable.Query) ([]string, error) {
	body, err := siblingQuery(q)
	if err != nil {
		return nil, err
	}

	var out []string
	err = s.each(ctx, q.Scope.Collection, body, func(hits []hit) error {
		for _, h := range hits {
			if v, ok := h.Source[q.SlugField].(string); ok {
				out = append(out, v)
			}
		}
		return nil
	})
	return out, err
}

// Scan implements sluggable.Scanner. Documents are read in _id order.
func (s *SlugStore) Scan(ctx context.Context, spec *sluggable.Spec, fn func(*sluggable.Document) error) error {
	body := map[string]any{"query": map[string]any{"match_all": map[string]any{}}}
	return s.each(ctx, spec.Collection, body, func(hits []hit) error {
		for _, h := range hits {
			doc := sluggable.LoadDocument(h.ID, h.Source)
			doc.Collection = spec.Collection
			doc.SlugField = spec.SlugField
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// LookupSlug implements sluggable.Finder with a term query.
func (s *SlugStore) LookupSlug(ctx context.Context, l sluggable.Lookup) (string, error) {
	if l.Scope.Strategy == sluggable.StrategyEmbedded {
		return "", sluggable.ErrUnsupportedScope
	}
	hits, err := s.search(ctx, l.Scope.Collection, lookupQuery(l))
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", sluggable.ErrNotFound
	}
	return hits[0].ID, nil
}

// Save implements sluggable.Saver for *sluggable.Document values by indexing
// the whole document. New documents get a random UUID.
func (s *SlugStore) Save(ctx context.Context, rec sluggable.Record) error {
	doc, ok := rec.(*sluggable.Document)
	if !ok || doc.Collection == "" {
		return errors.Join(sluggable.ErrUnsupportedRecord, fmt.Errorf("%T", rec))
	}

	id := doc.SlugID()
	if id == "" {
		id = uuid.NewString()
	}
	body, err := json.Marshal(doc.Fields())
	if err != nil {
		return err
	}

	res, err := opensearchapi.IndexRequest{
		Index:      s.index(doc.Collection),
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    s.refresh,
	}.Do(ctx, s.transport)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}

	doc.MarkPersisted(id)
	return nil
}

type hit struct {
	ID     string         `json:"_id"`
	Source map[string]any `json:"_source"`
	Sort   []any          `json:"sort"`
}

type searchResponse struct {
	Hits struct {
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

func (s *SlugStore) search(ctx context.Context, collection string, body map[string]any) ([]hit, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := opensearchapi.SearchRequest{
		Index: []string{s.index(collection)},
		Body:  bytes.NewReader(payload),
	}.Do(ctx, s.transport)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, responseError(res)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	return sr.Hits.Hits, nil
}

// each runs body sorted by _id and hands every page of hits to fn, following
// search_after until a short page is returned.
func (s *SlugStore) each(ctx context.Context, collection string, body map[string]any, fn func([]hit) error) error {
	body["size"] = s.pageSize
	body["sort"] = []any{map[string]any{"_id": "asc"}}

	for {
		hits, err := s.search(ctx, collection, body)
		if err != nil {
			return err
		}
		if len(hits) > 0 {
			if err := fn(hits); err != nil {
				return err
			}
		}
		if len(hits) < s.pageSize {
			return nil
		}

		last := hits[len(hits)-1]
		if len(last.Sort) == 0 {
			return errors.Join(ErrInvalidResponse, errors.New("hit without sort values"))
		}
		body["search_after"] = last.Sort
	}
}

func (s *SlugStore) index(collection string) string {
	return s.prefix + collection
}

func siblingQuery(q sluggable.Query) (map[string]any, error) {
	if q.Scope.Strategy == sluggable.StrategyEmbedded {
		return nil, sluggable.ErrUnsupportedScope
	}

	filter := []any{
		map[string]any{"regexp": map[string]any{
			q.SlugField: map[string]any{"value": q.Pattern.Lucene()},
		}},
	}
	if q.Scope.Strategy == sluggable.StrategyAssociation {
		filter = append(filter, map[string]any{"term": map[string]any{q.Scope.ParentField: q.Scope.ParentID}})
	}

	boolQuery := map[string]any{"filter": filter}
	if q.ExcludeID != "" {
		boolQuery["must_not"] = []any{
			map[string]any{"ids": map[string]any{"values": []string{q.ExcludeID}}},
		}
	}

	return map[string]any{
		"_source": []string{q.SlugField},
		"query":   map[string]any{"bool": boolQuery},
	}, nil
}

func lookupQuery(l sluggable.Lookup) map[string]any {
	filter := []any{
		map[string]any{"term": map[string]any{l.SlugField: l.Slug}},
	}
	if l.Scope.Strategy == sluggable.StrategyAssociation {
		filter = append(filter, map[string]any{"term": map[string]any{l.Scope.ParentField: l.Scope.ParentID}})
	}
	return map[string]any{
		"size":    1,
		"_source": false,
		"query":   map[string]any{"bool": map[string]any{"filter": filter}},
	}
}

func responseError(res *opensearchapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return errors.Join(ErrRequestFailed, fmt.Errorf("status %d: %s", res.StatusCode, bytes.TrimSpace(msg)))
}
