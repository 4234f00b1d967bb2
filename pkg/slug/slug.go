package slug

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Option configures the slug generation behavior.
type Option func(*config)

type config struct {
	maxLength     int
	separator     string
	lowercase     bool
	stripChars    string
	customReplace map[string]string
}

func defaultConfig() *config {
	return &config{
		separator: "-",
		lowercase: true,
	}
}

// MaxLength sets the maximum length of the generated slug in runes.
// Trailing separators left by the cut are removed.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator sets the separator placed between words. Default is "-".
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// Lowercase controls whether the slug is lowercased. Default is true.
func Lowercase(enabled bool) Option {
	return func(c *config) {
		c.lowercase = enabled
	}
}

// StripChars removes the given characters before slugification, so they
// do not act as word separators.
func StripChars(chars string) Option {
	return func(c *config) {
		c.stripChars = chars
	}
}

// CustomReplace sets string replacements applied before slugification,
// for example {"&": "and", "@": "at"}. Longer keys are replaced first.
func CustomReplace(replacements map[string]string) Option {
	return func(c *config) {
		c.customReplace = replacements
	}
}

// Make turns s into a URL-safe token: non-ASCII letters are transliterated,
// the result is lowercased, and every run of characters outside [a-zA-Z0-9]
// collapses into a single separator. Leading and trailing separators are
// never produced. Make is deterministic and returns "" for input without
// any letters or digits.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.customReplace) > 0 {
		s = replaceAll(s, cfg.customReplace)
	}

	if cfg.stripChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(cfg.stripChars, r) {
				return -1
			}
			return r
		}, s)
	}

	s = transliterate(s)

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	for _, r := range s {
		if !isASCIIAlnum(r) {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteString(cfg.separator)
		}
		pendingSep = false
		if cfg.lowercase && r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	result := b.String()
	if cfg.maxLength > 0 && utf8.RuneCountInString(result) > cfg.maxLength {
		result = string([]rune(result)[:cfg.maxLength])
		if cfg.separator != "" {
			for strings.HasSuffix(result, cfg.separator) {
				result = strings.TrimSuffix(result, cfg.separator)
			}
		}
	}

	return result
}

// Join concatenates source field values in order with a single space,
// skipping blank values. The result is meant to be passed to Make.
func Join(values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

var validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Valid reports whether s is a canonical slug: lowercase ASCII letters and
// digits separated by single hyphens.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// replaceAll applies replacements longest key first so the outcome does not
// depend on map iteration order.
func replaceAll(s string, replacements map[string]string) string {
	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, " "+replacements[k]+" ")
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
