package nodetree

import (
	"go/token"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// pathSep separates path segments in the remote store.
const pathSep = "/"

// escapeSuffix disambiguates segments that collide with a reserved word.
// It is appended on the way in and stripped on the way out, so escaped
// and unescaped spellings address the same node.
const escapeSuffix = "_"

// normalize lowercases a path or segment. Listing keys are matched
// case-insensitively, so every path entering the registry goes through
// here. cases.Lower handles the odd non-ASCII segment correctly where a
// plain byte-wise lowering would not.
func normalize(s string) string {
	return cases.Lower(language.Und).String(s)
}

// escapeSegment appends the escape suffix to reserved words.
func escapeSegment(seg string) string {
	if token.IsKeyword(seg) {
		return seg + escapeSuffix
	}
	return seg
}

// unescapeSegment strips one trailing escape suffix, if any. Applied when
// emitting raw paths and when comparing nodes for equality.
func unescapeSegment(seg string) string {
	return strings.TrimSuffix(seg, escapeSuffix)
}

// containsWildcard reports whether any segment carries a shell-style
// wildcard (*, ?, or a [...] class).
func containsWildcard(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// matchKeys returns the registry keys matching pattern, in registry
// order. Matching follows fnmatch semantics: '*' and '?' also cross the
// path separator. A pattern without wildcards matches only its literal
// key. Unparsable patterns match nothing.
func matchKeys(keys []string, pattern string) []string {
	if !containsWildcard(pattern) {
		for _, k := range keys {
			if k == pattern {
				return []string{k}
			}
		}
		return nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil
	}
	var out []string
	for _, k := range keys {
		if g.Match(k) {
			out = append(out, k)
		}
	}
	return out
}

// splitRaw splits an absolute raw path into its segments, dropping the
// empty element before the leading slash.
func splitRaw(raw string) []string {
	parts := strings.Split(raw, pathSep)
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	return parts
}
