// Command reslug regenerates the slugs of every record in one collection.
//
//	reslug -collection posts -fields title [-scope-field author_id] [-dry-run] [-reserve]
//
// The backend is selected with SLUG_STORE (mongo, pg or opensearch) and
// configured through the MONGODB_*, PG_* or OPENSEARCH_* environment
// variables. With -reserve, every write first claims its slug in a Redis
// index configured through REDIS_*.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/slugkit/pkg/config"
	"github.com/dmitrymomot/slugkit/pkg/logger"
	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

// Config holds process-level settings.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
	Store    string `env:"SLUG_STORE" envDefault:"mongo"`
}

type runIDKey struct{}

func main() {
	var cfg Config
	config.MustLoad(&cfg)

	opts := []logger.Option{
		logger.WithEnvironment(cfg.AppEnv, "reslug"),
		logger.WithOutput(os.Stderr),
		logger.WithContextValue("run_id", runIDKey{}),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	log := logger.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, runIDKey{}, uuid.NewString())

	if err := run(ctx, cfg, os.Args[1:], log); err != nil {
		log.ErrorContext(ctx, "reslug failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string, log *slog.Logger) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	spec, err := f.spec()
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer b.close(context.WithoutCancel(ctx))

	if f.ensureIndex {
		if err := b.ensureIndex(ctx, spec); err != nil {
			return fmt.Errorf("ensure slug index: %w", err)
		}
	}

	var saver sluggable.Saver = b.store
	isConflict := b.isConflict
	if f.reserve && !f.dryRun {
		r, err := openReservation(ctx)
		if err != nil {
			return fmt.Errorf("open slug reservations: %w", err)
		}
		defer r.close()
		saver, isConflict = r.guard(spec, b)
	}
	if f.dryRun {
		saver = nil
	}

	gen := sluggable.NewGenerator(b.store,
		sluggable.WithLogger(log),
		sluggable.WithPatternCache(1024),
		sluggable.WithConflictRetry(f.retries, isConflict),
	)

	start := time.Now()
	res, err := gen.Backfill(ctx, b.store, spec, saver)
	log.InfoContext(ctx, "backfill finished",
		logger.Collection(spec.Collection),
		logger.Count("scanned", res.Scanned),
		logger.Count("updated", res.Updated),
		slog.Bool("dry_run", f.dryRun),
		logger.Duration(time.Since(start)),
	)
	return err
}

type flags struct {
	collection  string
	fields      string
	slugField   string
	scopeField  string
	dryRun      bool
	ensureIndex bool
	reserve     bool
	retries     int
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("reslug", flag.ContinueOnError)
	fs.StringVar(&f.collection, "collection", "", "collection or table to re-slug")
	fs.StringVar(&f.fields, "fields", "", "comma-separated source fields, in order")
	fs.StringVar(&f.slugField, "slug-field", sluggable.DefaultSlugField, "attribute storing the slug")
	fs.StringVar(&f.scopeField, "scope-field", "", "foreign key scoping uniqueness to a parent")
	fs.BoolVar(&f.dryRun, "dry-run", false, "report changes without saving")
	fs.BoolVar(&f.ensureIndex, "ensure-index", false, "create a unique slug index before running")
	fs.BoolVar(&f.reserve, "reserve", false, "claim slugs in the Redis index before saving")
	fs.IntVar(&f.retries, "retries", 3, "regenerations after a unique index conflict")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.collection == "" || f.fields == "" {
		return f, errors.New("-collection and -fields are required")
	}
	return f, nil
}

func (f flags) spec() (*sluggable.Spec, error) {
	var fields []string
	for field := range strings.SplitSeq(f.fields, ",") {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, field)
		}
	}

	s := sluggable.Spec{
		Type:       f.collection,
		Collection: f.collection,
		Fields:     fields,
		SlugField:  f.slugField,
	}
	if f.scopeField != "" {
		s.Scope = "parent"
		s.Associations = []sluggable.Association{{
			Name:       "parent",
			ForeignKey: f.scopeField,
			Inverse:    f.collection,
		}}
	}
	return sluggable.Compile(s)
}
