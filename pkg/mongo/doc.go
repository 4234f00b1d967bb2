// Package mongo provides MongoDB connection management and a slug store
// backed by MongoDB collections.
//
// SlugStore implements the sluggable Store, Finder, Saver and Scanner
// interfaces. Sibling queries run server-side with a $regex filter on the
// slug attribute; embedded siblings are matched with an aggregation that
// unwinds the parent's array.
//
// # Usage
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	store := mongo.NewSlugStore(db)
//	gen := sluggable.NewGenerator(store,
//		sluggable.WithConflictRetry(3, mongo.IsDuplicateKeyError),
//	)
//
//	// Optional hardening against concurrent generations.
//	if _, err := mongo.EnsureSlugIndex(ctx, db, postsSpec); err != nil {
//		return err
//	}
//
// # Configuration
//
// Config is environment-driven (MONGODB_URL, MONGODB_DATABASE, pool and retry
// settings) and can be loaded with pkg/config.
//
// # Error Handling
//
// Connection failures wrap ErrFailedToConnectToMongo; lookups that find no
// document return sluggable.ErrNotFound. Query errors from the driver are
// returned unchanged.
package mongo
