// Package pattern compiles the restricted glob syntax used to select
// ignored files for mirroring.
//
// A pattern is made of literal characters plus the `*` wildcard, which
// matches any run of characters including path separators. There are no
// directory-boundary semantics: existing user configurations depend on a
// lone `*` crossing separators, so this must not be tightened to
// filepath.Match or gitignore rules.
package pattern

import (
	"path"
	"regexp"
	"strings"
)

// Matcher is a compiled pattern that can be tested against candidate strings.
type Matcher struct {
	raw string
	re  *regexp.Regexp
}

// Compile turns a restricted glob into a Matcher.
// The pattern is split on `*`, each literal segment is regexp-escaped, the
// segments are rejoined with `.*`, and the result is anchored at both ends.
// Compilation cannot fail: every metacharacter in the input is escaped.
func Compile(glob string) *Matcher {
	segments := strings.Split(glob, "*")
	for i, seg := range segments {
		segments[i] = regexp.QuoteMeta(seg)
	}
	re := regexp.MustCompile("^" + strings.Join(segments, ".*") + "$")
	return &Matcher{raw: glob, re: re}
}

// CompileAll compiles each pattern in globs.
func CompileAll(globs []string) []*Matcher {
	matchers := make([]*Matcher, 0, len(globs))
	for _, g := range globs {
		matchers = append(matchers, Compile(g))
	}
	return matchers
}

// String returns the original pattern text.
func (m *Matcher) String() string {
	return m.raw
}

// Match reports whether the candidate string satisfies the pattern exactly.
func (m *Matcher) Match(candidate string) bool {
	return m.re.MatchString(candidate)
}

// MatchPath reports whether a file identified by its root-relative path
// matches the pattern. A path matches if either its basename or the full
// POSIX-normalized relative path satisfies the compiled predicate.
func (m *Matcher) MatchPath(relPath string) bool {
	normalized := normalize(relPath)
	if m.re.MatchString(path.Base(normalized)) {
		return true
	}
	return m.re.MatchString(normalized)
}

// MatchAnyPath reports whether relPath matches at least one of the matchers.
func MatchAnyPath(matchers []*Matcher, relPath string) bool {
	for _, m := range matchers {
		if m.MatchPath(relPath) {
			return true
		}
	}
	return false
}

// normalize converts a relative path to forward slashes and strips a
// leading "./" so patterns see the same shape on every platform.
func normalize(relPath string) string {
	p := strings.ReplaceAll(relPath, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}
