// Package virtualenv classifies paths as language-specific virtual
// environment or dependency artifacts (Python venvs, node_modules, vendored
// package trees) so they can be excluded from worktree mirroring and
// reported to the user for manual re-setup.
package virtualenv

import (
	"strings"
)

// Group describes one ecosystem's artifact directory conventions.
type Group struct {
	// Ecosystem is the language or tool the patterns belong to (e.g. "python").
	Ecosystem string
	// Patterns are directory names or relative paths that denote an artifact
	// tree. A pattern containing "/" matches a relative path prefix; a bare
	// pattern matches any single path segment exactly.
	Patterns []string
	// SetupHints are commands suggested to recreate the environment in a new
	// worktree.
	SetupHints []string
}

// BuiltinGroups returns the fixed built-in ecosystem groups, in evaluation
// order. Note that ".env" and "env" are deliberately absent from the Python
// group: classifying them would swallow dotenv files, which are exactly the
// files this tool exists to mirror.
func BuiltinGroups() []Group {
	return []Group{
		{
			Ecosystem:  "python",
			Patterns:   []string{"venv", ".venv", ".tox", "__pycache__"},
			SetupHints: []string{"python -m venv .venv && .venv/bin/pip install -r requirements.txt"},
		},
		{
			Ecosystem:  "node",
			Patterns:   []string{"node_modules"},
			SetupHints: []string{"npm install (or yarn / pnpm install)"},
		},
		{
			Ecosystem:  "php",
			Patterns:   []string{"vendor"},
			SetupHints: []string{"composer install"},
		},
		{
			Ecosystem:  "go",
			Patterns:   []string{"vendor"},
			SetupHints: []string{"go mod vendor"},
		},
		{
			Ecosystem:  "ruby",
			Patterns:   []string{".bundle", "vendor/bundle"},
			SetupHints: []string{"bundle install"},
		},
		{
			Ecosystem:  "rust",
			Patterns:   []string{"target"},
			SetupHints: []string{"cargo build"},
		},
	}
}

// Classifier answers whether a relative path denotes a virtual environment
// artifact. It holds the built-in groups followed by any user-supplied
// custom groups; evaluation order is group order, first match wins.
type Classifier struct {
	groups []Group
}

// NewClassifier builds a Classifier from the built-in groups with the custom
// groups appended after them.
func NewClassifier(custom []Group) *Classifier {
	groups := BuiltinGroups()
	groups = append(groups, custom...)
	return &Classifier{groups: groups}
}

// Groups returns the classifier's ordered group list.
func (c *Classifier) Groups() []Group {
	return c.groups
}

// IsVirtualEnv reports whether relPath denotes a virtual environment
// artifact or a path inside one. The path is normalized to POSIX form and
// lower-cased before matching. Patterns containing a separator match the
// whole path by equality or "pattern/" prefix; bare patterns match when any
// path segment equals them exactly (no substring matching).
func (c *Classifier) IsVirtualEnv(relPath string) bool {
	normalized := normalizePath(relPath)
	if normalized == "" || normalized == "." {
		return false
	}
	segments := strings.Split(normalized, "/")

	for _, group := range c.groups {
		for _, p := range group.Patterns {
			if matchPattern(normalized, segments, strings.ToLower(p)) {
				return true
			}
		}
	}
	return false
}

// matchPattern applies one normalized pattern to a normalized path.
func matchPattern(normalized string, segments []string, p string) bool {
	if strings.Contains(p, "/") {
		return normalized == p || strings.HasPrefix(normalized, p+"/")
	}
	for _, seg := range segments {
		if seg == p {
			return true
		}
	}
	return false
}

// normalizePath converts a path to lower-cased POSIX form without a leading
// "./".
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	return strings.ToLower(p)
}
