package sluggable

import (
	"regexp"
	"strconv"
	"strings"
)

// CounterSeparator joins a base token and its disambiguation counter.
const CounterSeparator = "-"

// Pattern recognizes a base token alone or followed by "-<digits>", anchored
// to the whole slug value.
type Pattern struct {
	base string
	expr string
	re   *regexp.Regexp
}

// NewPattern builds the match pattern for base.
func NewPattern(base string) *Pattern {
	expr := "^" + regexp.QuoteMeta(base) + "(?:" + regexp.QuoteMeta(CounterSeparator) + "([0-9]+))?$"
	return &Pattern{
		base: base,
		expr: expr,
		re:   regexp.MustCompile(expr),
	}
}

// Base returns the base token.
func (p *Pattern) Base() string { return p.base }

// Expr returns the anchored regular expression. It only uses syntax shared by
// Go, PCRE (MongoDB) and POSIX ARE (PostgreSQL).
func (p *Pattern) Expr() string { return p.expr }

// Lucene returns the pattern in Lucene regexp syntax, which is implicitly
// anchored.
func (p *Pattern) Lucene() string {
	return escapeLucene(p.base) + "(" + escapeLucene(CounterSeparator) + "[0-9]+)?"
}

// Match reports whether value is the base token or a numbered variant of it.
func (p *Pattern) Match(value string) bool {
	return p.re.MatchString(value)
}

// Counter extracts the disambiguation counter from value. The bare base token
// counts as 0. ok is false when value does not match or the counter exceeds
// 63 bits, so that the next counter always fits.
func (p *Pattern) Counter(value string) (n uint64, ok bool) {
	m := p.re.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(m[1], 10, 63)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Next returns the slug for the given counter: the base alone for 0.
func (p *Pattern) Next(counter uint64) string {
	if counter == 0 {
		return p.base
	}
	return p.base + CounterSeparator + strconv.FormatUint(counter, 10)
}

const luceneReserved = `.?+*|{}[]()"\#@&<>~`

func escapeLucene(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(luceneReserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
