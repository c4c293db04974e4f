// Package str contains string case conversions.
package str

import (
	"strings"
	"unicode"
)

// ToScreamingSnakeCase turns "FooBar", "fooBar" or "foo-bar" into "FOO_BAR".
//
// A separator is inserted before every upper case letter and every digit,
// dashes and underscores become separators.
func ToScreamingSnakeCase(in string) string {
	return toSnake(in, unicode.ToUpper)
}

// ToSnakeCase is the lower case variant of ToScreamingSnakeCase.
func ToSnakeCase(in string) string {
	return toSnake(in, unicode.ToLower)
}

func toSnake(in string, mapper func(rune) rune) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return in
	}

	var sb strings.Builder
	sb.Grow(len(in) + len(in)/3)

	for i, r := range in {
		switch {
		case r == '_' || r == '-':
			if i > 0 {
				sb.WriteByte('_')
			}
			continue
		case unicode.IsUpper(r) || unicode.IsDigit(r):
			if i > 0 {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(mapper(r))
	}

	return sb.String()
}
