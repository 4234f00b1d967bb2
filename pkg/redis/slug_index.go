package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/slugkit/pkg/sluggable"
)

// SlugIndex keeps a slug-to-identity hash per uniqueness scope. It implements
// sluggable.Store and sluggable.Finder, and its Saver reserves slugs with
// HSETNX so that concurrent generations in the same scope cannot both win.
type SlugIndex struct {
	db            redis.UniversalClient
	prefix        string
	scanBatchSize int64
}

// NewSlugIndex creates an index using cfg.SlugKeyPrefix and cfg.ScanBatchSize.
func NewSlugIndex(client redis.UniversalClient, cfg Config) *SlugIndex {
	idx := &SlugIndex{
		db:            client,
		prefix:        cfg.SlugKeyPrefix,
		scanBatchSize: int64(cfg.ScanBatchSize),
	}
	if idx.prefix == "" {
		idx.prefix = "slugs"
	}
	if idx.scanBatchSize <= 0 {
		idx.scanBatchSize = 1000
	}
	return idx
}

// MatchSlugs implements sluggable.Store. It scans the scope hash for fields
// starting with the base token; the engine filters the exact pattern.
func (s *SlugIndex) MatchSlugs(ctx context.Context, q sluggable.Query) ([]string, error) {
	key := s.scopeKey(q.Scope)
	match := globEscape(q.Pattern.Base()) + "*"

	var (
		out    []string
		cursor uint64
	)
	for {
		pairs, next, err := s.db.HScan(ctx, key, cursor, match, s.scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			if q.ExcludeID != "" && pairs[i+1] == q.ExcludeID {
				continue
			}
			out = append(out, pairs[i])
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// LookupSlug implements sluggable.Finder.
func (s *SlugIndex) LookupSlug(ctx context.Context, l sluggable.Lookup) (string, error) {
	id, err := s.db.HGet(ctx, s.scopeKey(l.Scope), l.Slug).Result()
	if errors.Is(err, redis.Nil) {
		return "", sluggable.ErrNotFound
	}
	return id, err
}

// Reserve claims slug in scope for holder. It succeeds when the slug is free
// or already held by holder.
func (s *SlugIndex) Reserve(ctx context.Context, scope sluggable.Scope, slug, holder string) (bool, error) {
	_, ok, err := s.reserve(ctx, s.scopeKey(scope), slug, holder)
	return ok, err
}

// reserve reports whether this call created the entry (claimed) and whether
// holder owns the slug afterwards (ok).
func (s *SlugIndex) reserve(ctx context.Context, key, slug, holder string) (claimed, ok bool, err error) {
	claimed, err = s.db.HSetNX(ctx, key, slug, holder).Result()
	if err != nil || claimed {
		return claimed, claimed, err
	}
	current, err := s.db.HGet(ctx, key, slug).Result()
	if errors.Is(err, redis.Nil) {
		claimed, err = s.db.HSetNX(ctx, key, slug, holder).Result()
		return claimed, claimed, err
	}
	if err != nil {
		return false, false, err
	}
	return false, current == holder, nil
}

// Set records that id holds slug in scope.
func (s *SlugIndex) Set(ctx context.Context, scope sluggable.Scope, slug, id string) error {
	return s.db.HSet(ctx, s.scopeKey(scope), slug, id).Err()
}

// Release frees slug in scope.
func (s *SlugIndex) Release(ctx context.Context, scope sluggable.Scope, slug string) error {
	return s.db.HDel(ctx, s.scopeKey(scope), slug).Err()
}

// Saver wraps next so that the record's slug is reserved before it is saved
// and indexed under the record identity afterwards. A slug held by another
// record yields sluggable.ErrDuplicateSlug, which the generator's conflict
// retry treats as a reason to regenerate. The previous slug of an existing
// record is released once the save succeeds. A failed save only releases a
// reservation made by this call.
func (s *SlugIndex) Saver(spec *sluggable.Spec, next sluggable.Saver) sluggable.Saver {
	return sluggable.SaverFunc(func(ctx context.Context, rec sluggable.Record) error {
		sib, err := sluggable.ResolveScope(rec, spec, s)
		if err != nil {
			return err
		}
		scope := sib.Scope
		value := sluggable.FieldString(rec.ReadField(spec.SlugField))

		holder := rec.SlugID()
		if holder == "" {
			holder = "pending:" + uuid.NewString()
		}
		claimed, ok, err := s.reserve(ctx, s.scopeKey(scope), value, holder)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Join(sluggable.ErrDuplicateSlug, errors.New(value))
		}

		previous := ""
		if !rec.IsNew() {
			previous, err = s.slugOf(ctx, scope, rec.SlugID(), value)
			if err != nil {
				return err
			}
		}

		if err := next.Save(ctx, rec); err != nil {
			if claimed {
				return errors.Join(err, s.Release(ctx, scope, value))
			}
			return err
		}
		if err := s.Set(ctx, scope, value, rec.SlugID()); err != nil {
			return err
		}
		if previous != "" {
			return s.Release(ctx, scope, previous)
		}
		return nil
	})
}

// slugOf finds another slug held by id in scope, skipping current.
func (s *SlugIndex) slugOf(ctx context.Context, scope sluggable.Scope, id, current string) (string, error) {
	all, err := s.db.HGetAll(ctx, s.scopeKey(scope)).Result()
	if err != nil {
		return "", err
	}
	for slug, holder := range all {
		if holder == id && slug != current {
			return slug, nil
		}
	}
	return "", nil
}

func (s *SlugIndex) scopeKey(scope sluggable.Scope) string {
	parts := []string{s.prefix, scope.Collection}
	switch scope.Strategy {
	case sluggable.StrategyAssociation:
		parts = append(parts, scope.ParentField, scope.ParentID)
	case sluggable.StrategyEmbedded:
		parts = append(parts, scope.ParentID, scope.Path)
	}
	return strings.Join(parts, ":")
}

// globEscape escapes the characters special to Redis MATCH patterns.
func globEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
