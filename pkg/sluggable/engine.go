package sluggable

import "context"

// SiblingSet is a queryable view over the records a slug must not collide
// with.
type SiblingSet interface {
	// MatchSlugs returns the slug values matching p, leaving out the record
	// identified by excludeID.
	MatchSlugs(ctx context.Context, p *Pattern, excludeID string) ([]string, error)
}

// Disambiguate returns base when no sibling holds base or a numbered variant
// of it; otherwise it returns base followed by "-" and one more than the
// highest counter found. Gaps in the counter sequence are not filled.
// Errors from the sibling query are returned unchanged.
func Disambiguate(ctx context.Context, base string, siblings SiblingSet, selfID string) (string, error) {
	return disambiguate(ctx, NewPattern(base), siblings, selfID)
}

func disambiguate(ctx context.Context, p *Pattern, siblings SiblingSet, selfID string) (string, error) {
	values, err := siblings.MatchSlugs(ctx, p, selfID)
	if err != nil {
		return "", err
	}

	var (
		highest uint64
		taken   bool
	)
	for _, v := range values {
		n, ok := p.Counter(v)
		if !ok {
			continue
		}
		if !taken || n > highest {
			highest = n
		}
		taken = true
	}

	if !taken {
		return p.Base(), nil
	}
	return p.Next(highest + 1), nil
}
