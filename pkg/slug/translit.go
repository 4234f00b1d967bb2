package slug

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// specialLetters covers letters that canonical decomposition leaves alone:
// ligatures, stroked letters and a few language-specific forms.
var specialLetters = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "TH",
	'ħ': "h", 'Ħ': "H",
	'ı': "i",
	'ŀ': "l", 'Ŀ': "L",
	'ŧ': "t", 'Ŧ': "T",
	'ĸ': "k",
	'ŉ': "n",
}

// transliterate maps non-ASCII letters to ASCII approximations. Special
// letters are looked up first, then the string is decomposed (NFD) and
// combining marks are dropped. Runes with no approximation are kept and
// later treated as separators by Make.
func transliterate(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := specialLetters[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, b.String())
	if err != nil {
		return b.String()
	}
	return out
}
