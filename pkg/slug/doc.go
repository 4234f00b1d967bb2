// Package slug turns arbitrary strings into URL-safe base tokens.
//
// Make transliterates non-ASCII letters to ASCII approximations, lowercases
// the result and collapses every run of whitespace or punctuation into a
// single separator. It is total and deterministic: the same input always
// yields the same token, and input without letters or digits yields "".
//
// # Usage
//
//	import "github.com/dmitrymomot/slugkit/pkg/slug"
//
//	slug.Make("Héllo, World!")
//	// "hello-world"
//
//	slug.Make("Straße in München")
//	// "strasse-in-munchen"
//
//	slug.Make(slug.Join("Jane", "", "Doe"))
//	// "jane-doe"
//
// # Options
//
//   - MaxLength: limit the token length (rune-based, trailing separator trimmed)
//   - Separator: change the separator (default "-")
//   - Lowercase: disable lowercasing
//   - StripChars: drop characters instead of treating them as separators
//   - CustomReplace: domain replacements such as {"&": "and"}
//
// # Transliteration
//
// Ligatures and stroked letters (ß, æ, œ, ø, ł, đ, þ) use an explicit table.
// Everything else is decomposed with Unicode NFD and stripped of combining
// marks. Scripts without a Latin approximation (Cyrillic, CJK) act as
// separators.
//
// Make never assigns uniqueness; disambiguation against existing records is
// done by package sluggable.
package slug
