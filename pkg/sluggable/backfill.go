package sluggable

import (
	"context"
	"errors"

	"github.com/dmitrymomot/slugkit/pkg/logger"
)

// BackfillResult summarizes a Backfill run.
type BackfillResult struct {
	Scanned int
	Updated int
}

// Backfill regenerates the slug of every record the scanner yields, bypassing
// permanence and change tracking, and saves the records whose slug changed.
// A nil saver performs a dry run. Embedded types cannot be backfilled through
// a scanner.
func (g *Generator) Backfill(ctx context.Context, scanner Scanner, spec *Spec, saver Saver) (BackfillResult, error) {
	var res BackfillResult
	if spec == nil || !spec.compiled {
		return res, ErrSpecNotCompiled
	}
	if spec.Embedded != nil {
		return res, errors.Join(ErrUnsupportedScope, errors.New("backfill of embedded records"))
	}

	err := scanner.Scan(ctx, spec, func(doc *Document) error {
		res.Scanned++
		if doc.Type == "" {
			doc.Type = spec.Type
		}
		if doc.SlugField == "" {
			doc.SlugField = spec.SlugField
		}

		before := doc.Slug()
		after, err := g.GenerateSlug(ctx, doc, spec)
		if err != nil {
			return err
		}
		if after == before {
			return nil
		}

		g.logger.InfoContext(ctx, "slug changed",
			logger.Component("sluggable"),
			logger.RecordID(doc.SlugID()),
			logger.Slug(after),
		)

		if saver == nil {
			res.Updated++
			return nil
		}
		if err := g.SaveWithRetry(ctx, doc, spec, saver); err != nil {
			return err
		}
		res.Updated++
		return nil
	})
	return res, err
}
