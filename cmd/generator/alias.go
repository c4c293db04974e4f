package main

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/sportlog/di/set"
)

// importSet assigns a unique alias to every package imported by the
// generated file.
type importSet struct {
	aliases map[string]string
	used    set.Set[string]
}

func newImportSet(reserved ...string) *importSet {
	return &importSet{
		aliases: make(map[string]string),
		used:    set.New(reserved...),
	}
}

func (s *importSet) add(path string) string {
	if alias, found := s.aliases[path]; found {
		return alias
	}
	alias := findSuitableAlias(path, s.used)
	s.aliases[path] = alias
	s.used.Add(alias)
	return alias
}

// findSuitableAlias derives an alias from the last token of path, prefixing
// it with the initials of the previous tokens on collision, then numbering
// it once the tokens are exhausted.
func findSuitableAlias(path string, used set.Set[string]) string {
	tokens := strings.Split(path, "/")
	alias := sanitize(tokens[len(tokens)-1])
	if !used.Contains(alias) {
		return alias
	}

	for i := len(tokens) - 2; i >= 0; i-- {
		token := sanitize(tokens[i])
		if token == "" {
			continue
		}
		alias = token[:1] + alias
		if !used.Contains(alias) {
			return alias
		}
	}

	for n := 2; ; n++ {
		candidate := alias + strconv.Itoa(n)
		if !used.Contains(candidate) {
			return candidate
		}
	}
}

func sanitize(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || unicode.IsDigit(rune(s[0])) {
		s = "pkg" + s
	}
	return s
}

func lastToken(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
