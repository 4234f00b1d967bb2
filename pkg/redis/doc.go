// Package redis connects to Redis with go-redis and provides SlugIndex, a
// per-scope slug reservation index.
//
// Each uniqueness scope maps to one hash whose fields are slugs and whose
// values are record identities:
//
//	slugs:posts                         global scope
//	slugs:posts:author_id:42            association scope
//	slugs:books:7:chapters              embedded scope
//
// SlugIndex implements sluggable.Store and sluggable.Finder, so it can back
// a Generator on its own. Its Saver wraps the primary store's saver and
// reserves the slug with HSETNX before the record is written, turning the
// check-then-write gap into a sluggable.ErrDuplicateSlug that the conflict
// retry handles:
//
//	idx := redis.NewSlugIndex(client, cfg)
//	gen := sluggable.NewGenerator(idx,
//		sluggable.WithConflictRetry(3, func(err error) bool {
//			return errors.Is(err, sluggable.ErrDuplicateSlug)
//		}),
//	)
//	err := gen.SaveWithRetry(ctx, doc, spec, idx.Saver(spec, primary))
//
// Config is populated from REDIS_* environment variables.
package redis
