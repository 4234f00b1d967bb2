package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/slugkit/pkg/config"
	"github.com/dmitrymomot/slugkit/pkg/logger"
	"github.com/dmitrymomot/slugkit/pkg/mongo"
	"github.com/dmitrymomot/slugkit/pkg/opensearch"
	"github.com/dmitrymomot/slugkit/pkg/pg"
	"github.com/dmitrymomot/slugkit/pkg/redis"
	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

type store interface {
	sluggable.Store
	sluggable.Scanner
	sluggable.Saver
}

type backend struct {
	store       store
	isConflict  func(error) bool
	ensureIndex func(context.Context, *sluggable.Spec) error
	close       func(context.Context)
}

func openBackend(ctx context.Context, name string, log *slog.Logger) (*backend, error) {
	switch name {
	case "mongo":
		return openMongo(ctx, log)
	case "pg", "postgres":
		return openPostgres(ctx, log)
	case "opensearch":
		return openOpenSearch(ctx)
	default:
		return nil, fmt.Errorf("unknown SLUG_STORE %q, want mongo, pg or opensearch", name)
	}
}

func openMongo(ctx context.Context, log *slog.Logger) (*backend, error) {
	var cfg mongo.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	db, err := mongo.NewWithDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := mongo.Healthcheck(db)(ctx); err != nil {
		return nil, err
	}

	return &backend{
		store:      mongo.NewSlugStore(db),
		isConflict: mongo.IsDuplicateKeyError,
		ensureIndex: func(ctx context.Context, spec *sluggable.Spec) error {
			name, err := mongo.EnsureSlugIndex(ctx, db, spec)
			if err == nil {
				log.InfoContext(ctx, "slug index ready", slog.String("index", name))
			}
			return err
		},
		close: func(ctx context.Context) {
			if err := db.Client().Disconnect(ctx); err != nil {
				log.ErrorContext(ctx, "mongo disconnect", logger.Error(err))
			}
		},
	}, nil
}

func openPostgres(ctx context.Context, log *slog.Logger) (*backend, error) {
	var cfg pg.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pg.Healthcheck(pool)(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if cfg.MigrationsPath != "" {
		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &backend{
		store:      pg.NewSlugStore(pool, pg.WithIDColumn(cfg.IDColumn)),
		isConflict: pg.IsDuplicateKeyError,
		ensureIndex: func(ctx context.Context, spec *sluggable.Spec) error {
			return pg.EnsureSlugIndex(ctx, pool, spec)
		},
		close: func(context.Context) { pool.Close() },
	}, nil
}

func openOpenSearch(ctx context.Context) (*backend, error) {
	var cfg opensearch.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	client, err := opensearch.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &backend{
		store: opensearch.NewSlugStore(client, cfg),
		ensureIndex: func(context.Context, *sluggable.Spec) error {
			return errors.New("opensearch: declare the slug field in the index mapping instead")
		},
		close: func(context.Context) {},
	}, nil
}

// reservation wraps the backend's saver with a Redis slug index configured
// through REDIS_*. A slug reserved by another writer is reported as a
// conflict so the generator picks a new one.
type reservation struct {
	index *redis.SlugIndex
	close func()
}

func openReservation(ctx context.Context) (*reservation, error) {
	var cfg redis.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := redis.Healthcheck(client)(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &reservation{
		index: redis.NewSlugIndex(client, cfg),
		close: func() { _ = client.Close() },
	}, nil
}

// guard returns the saver and conflict check to use when reservations are on.
func (r *reservation) guard(spec *sluggable.Spec, b *backend) (sluggable.Saver, func(error) bool) {
	isConflict := func(err error) bool {
		return sluggable.IsDuplicateSlug(err) || (b.isConflict != nil && b.isConflict(err))
	}
	return r.index.Saver(spec, b.store), isConflict
}
