// Package sluggable keeps human-readable slugs unique within a sibling scope
// as records are created and updated.
//
// A Spec, compiled once per record type (usually through a Registry),
// declares the source fields, the slug attribute, the scope and whether the
// slug is permanent. A Generator then composes three steps each time a slug
// must be (re)computed:
//
//  1. Normalization: source field values are joined with a space (or a
//     custom Base function is called) and passed through slug.Make.
//  2. Scope resolution: ResolveScope picks the sibling set. An association
//     scope selects the other children of the same parent, falling back to
//     the type's default scope while the parent is unknown or unsaved.
//     Embedded types use their parent's array; top-level types use the whole
//     root collection, shared by every type of an inheritance chain.
//  3. Disambiguation: siblings whose slug is the base token or the base token
//     followed by "-<n>" are collected (excluding the record itself), and the
//     result is the base token when none exist, or base-(max+1) otherwise.
//
// # Usage
//
//	registry := sluggable.NewRegistry()
//	posts := registry.MustRegister(sluggable.Spec{
//		Type:       "post",
//		Collection: "posts",
//		Fields:     []string{"title"},
//		Scope:      "author",
//		Associations: []sluggable.Association{
//			{Name: "author", ForeignKey: "author_id", Inverse: "posts"},
//		},
//	})
//
//	gen := sluggable.NewGenerator(store, sluggable.WithRegistry(registry))
//
//	// in a before-save hook
//	if _, err := gen.MaybeGenerateSlug(ctx, post, posts); err != nil {
//		return err
//	}
//
// # Stores
//
// The engine only needs Store.MatchSlugs. MemoryStore implements every
// interface of the package; pkg/mongo, pkg/pg, pkg/redis and pkg/opensearch
// provide backends for real databases.
//
// # Concurrency
//
// Generation is check-then-write: siblings are read, the next counter is
// computed and the record is written by the caller. Two records created
// concurrently from the same base token can receive the same slug. Close the
// gap with a unique index on the slug attribute scoped like the sibling set,
// and enable WithConflictRetry so SaveWithRetry regenerates on conflicts.
package sluggable
