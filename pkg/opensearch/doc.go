// Package opensearch wraps the opensearch-go client with environment-driven
// configuration, a health check and a slug store over search indices.
//
// SlugStore keeps slugs unique in a search-backed catalogue. Sibling slugs
// are found with a Lucene regexp query on the slug keyword field, filtered by
// the parent foreign key for association scopes and excluding the record's
// own document id:
//
//	{"query": {"bool": {
//	    "filter":   [{"regexp": {"slug": {"value": "hello-world(-[0-9]+)?"}}},
//	                 {"term": {"author_id": "42"}}],
//	    "must_not": [{"ids": {"values": ["p1"]}}]}}}
//
// Results are sorted on _id and read page by page with search_after, so every
// sibling is seen however many there are. Index mappings must declare the
// slug attribute and foreign keys as keyword fields.
//
// # Usage
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := opensearch.NewSlugStore(client, cfg)
//	gen := sluggable.NewGenerator(store)
//
// # Error Handling
//
// Error responses wrap ErrRequestFailed and transport failures are returned
// unchanged. Lookups with no hit return sluggable.ErrNotFound; a missing index
// yields no siblings.
package opensearch
