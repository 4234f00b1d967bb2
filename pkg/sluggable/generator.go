package sluggable

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/slugkit/pkg/cache"
	"github.com/dmitrymomot/slugkit/pkg/logger"
)

// Generator composes normalization, scope resolution and disambiguation and
// writes the result into the record's slug attribute. It holds no per-call
// state and is safe for concurrent use; it does not serialize concurrent
// generations racing for the same sibling set.
type Generator struct {
	store         Store
	registry      *Registry
	logger        *slog.Logger
	patterns      *cache.LRUCache[string, *Pattern]
	retryAttempts int
	isConflict    func(error) bool
}

// NewGenerator creates a generator querying siblings through store.
func NewGenerator(store Store, opts ...Option) *Generator {
	if store == nil {
		panic("sluggable: store cannot be nil")
	}

	g := &Generator{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSlug computes a slug for rec that is unique among its siblings and
// writes it through rec.WriteSlugField. Store errors are returned unchanged.
func (g *Generator) GenerateSlug(ctx context.Context, rec Record, spec *Spec) (string, error) {
	siblings, err := ResolveScope(rec, spec, g.store)
	if err != nil {
		return "", err
	}
	if siblings.FellBack {
		g.logger.WarnContext(ctx, "association scope unresolved, using default scope",
			logger.Component("sluggable"),
			logger.Collection(spec.Collection),
			logger.Scope(siblings.Scope.String()),
			logger.RecordID(siblings.SelfID),
		)
	}

	value, err := disambiguate(ctx, g.pattern(spec.BaseToken(rec)), siblings, siblings.SelfID)
	if err != nil {
		return "", err
	}

	rec.WriteSlugField(value)

	g.logger.DebugContext(ctx, "slug generated",
		logger.Component("sluggable"),
		logger.Scope(siblings.Scope.String()),
		logger.RecordID(siblings.SelfID),
		logger.Slug(value),
	)
	return value, nil
}

// MaybeGenerateSlug generates a slug when rec is new, has no slug yet, or one
// of its source fields changed. Permanent specs only generate for new records
// or records without a slug. It reports whether a slug was written.
func (g *Generator) MaybeGenerateSlug(ctx context.Context, rec Record, spec *Spec) (bool, error) {
	if spec == nil || !spec.compiled {
		return false, ErrSpecNotCompiled
	}
	if !ShouldGenerate(rec, spec) {
		return false, nil
	}
	if _, err := g.GenerateSlug(ctx, rec, spec); err != nil {
		return false, err
	}
	return true, nil
}

// ShouldGenerate reports whether MaybeGenerateSlug would regenerate the slug.
// It is false for a nil or uncompiled spec.
func ShouldGenerate(rec Record, spec *Spec) bool {
	if spec == nil || !spec.compiled {
		return false
	}
	if rec.IsNew() || FieldString(rec.ReadField(spec.SlugField)) == "" {
		return true
	}
	if spec.Permanent {
		return false
	}
	return spec.SourceChanged(rec)
}

// Reslug regenerates the slug regardless of permanence and change tracking,
// then persists rec through saver. Used for backfills.
func (g *Generator) Reslug(ctx context.Context, rec Record, spec *Spec, saver Saver) (string, error) {
	if _, err := g.GenerateSlug(ctx, rec, spec); err != nil {
		return "", err
	}
	if err := g.SaveWithRetry(ctx, rec, spec, saver); err != nil {
		return "", err
	}
	return FieldString(rec.ReadField(spec.SlugField)), nil
}

// SaveWithRetry persists rec through saver. When conflict retries are
// enabled and the save fails with a conflict, the slug is regenerated and
// the save retried.
func (g *Generator) SaveWithRetry(ctx context.Context, rec Record, spec *Spec, saver Saver) error {
	err := saver.Save(ctx, rec)
	for attempt := 1; err != nil; attempt++ {
		if g.isConflict == nil || !g.isConflict(err) {
			return err
		}
		if attempt > g.retryAttempts {
			return errors.Join(ErrRetriesExhausted, err)
		}

		g.logger.WarnContext(ctx, "slug conflict on save, regenerating",
			logger.Component("sluggable"),
			logger.RetryCount(attempt),
			logger.Slug(FieldString(rec.ReadField(spec.SlugField))),
			logger.Error(err),
		)

		if _, genErr := g.GenerateSlug(ctx, rec, spec); genErr != nil {
			return genErr
		}
		err = saver.Save(ctx, rec)
	}
	return nil
}

// SpecFor returns the registered spec for a record implementing Typed.
func (g *Generator) SpecFor(rec Record) (*Spec, error) {
	if g.registry == nil {
		return nil, ErrTypeNotRegistered
	}
	t, ok := rec.(Typed)
	if !ok {
		return nil, ErrTypeNotRegistered
	}
	return g.registry.Lookup(t.SlugType())
}

// Generate is GenerateSlug with the Spec taken from the registry.
func (g *Generator) Generate(ctx context.Context, rec Record) (string, error) {
	spec, err := g.SpecFor(rec)
	if err != nil {
		return "", err
	}
	return g.GenerateSlug(ctx, rec, spec)
}

// MaybeGenerate is MaybeGenerateSlug with the Spec taken from the registry.
func (g *Generator) MaybeGenerate(ctx context.Context, rec Record) (bool, error) {
	spec, err := g.SpecFor(rec)
	if err != nil {
		return false, err
	}
	return g.MaybeGenerateSlug(ctx, rec, spec)
}

func (g *Generator) pattern(base string) *Pattern {
	if g.patterns == nil {
		return NewPattern(base)
	}
	if p, ok := g.patterns.Get(base); ok {
		return p
	}
	p := NewPattern(base)
	g.patterns.Put(base, p)
	return p
}
