// Package pg provides PostgreSQL connectivity on pgx/v5, goose migrations and
// a slug store backed by PostgreSQL tables.
//
// SlugStore implements the sluggable Store, Finder, Saver and Scanner
// interfaces. Sibling slugs are selected with the ~ operator, so the
// uniqueness check runs in a single query:
//
//	SELECT "slug" FROM "posts" WHERE "slug" ~ $1 AND "author_id"::text = $2 AND "id"::text <> $3
//
// Embedded scopes have no relational counterpart and return
// sluggable.ErrUnsupportedScope.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if cfg.MigrationsPath != "" {
//		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//			return err
//		}
//	}
//
//	store := pg.NewSlugStore(pool, pg.WithIDColumn(cfg.IDColumn))
//	gen := sluggable.NewGenerator(store,
//		sluggable.WithConflictRetry(3, pg.IsDuplicateKeyError),
//	)
//
// # Configuration
//
// Config is populated from PG_* environment variables; see the field tags for
// names and defaults.
//
// # Error Handling
//
// IsDuplicateKeyError and IsNotFoundError classify pgx errors. Lookups that
// return no row are reported as sluggable.ErrNotFound.
package pg
