// Package scanner walks a source worktree and selects the untracked files
// that should be mirrored into a new worktree.
package scanner

import (
	"os"
	"path/filepath"

	"github.com/harrison/gwm/internal/pattern"
	"github.com/harrison/gwm/internal/virtualenv"
)

// Policy is the immutable filter configuration for one scan.
type Policy struct {
	// IncludePatterns selects files to mirror. An empty list means every
	// file matches — unless ExcludePatterns is also empty, which is an
	// explicit opt-out that mirrors nothing.
	IncludePatterns []string
	// ExcludePatterns removes entries (files or whole directories) from
	// consideration and takes precedence over includes.
	ExcludePatterns []string
	// IsolationEnabled skips virtual environment artifacts.
	IsolationEnabled bool
}

// TrackedFunc reports whether a root-relative path is already under version
// control. Tracked files appear in a new worktree via checkout and must not
// be clobbered.
type TrackedFunc func(relPath string) bool

// Scan walks rootDir and returns the relative paths (POSIX separators) of
// every non-directory entry that passes the policy filters and is not
// tracked. Unreadable subtrees are skipped without aborting the scan.
// Symlinked directories are never followed. The returned order follows the
// directory listing order and is only stable within one invocation.
func Scan(rootDir string, policy Policy, classifier *virtualenv.Classifier, isTracked TrackedFunc) []string {
	// Explicit opt-out: no includes and no excludes means mirror nothing
	// rather than accidentally mirroring an entire tree.
	if len(policy.IncludePatterns) == 0 && len(policy.ExcludePatterns) == 0 {
		return nil
	}

	s := &scan{
		includes:  pattern.CompileAll(policy.IncludePatterns),
		excludes:  pattern.CompileAll(policy.ExcludePatterns),
		isolate:   policy.IsolationEnabled,
		classify:  classifier,
		isTracked: isTracked,
	}
	s.walk(rootDir, "")
	return s.found
}

type scan struct {
	includes  []*pattern.Matcher
	excludes  []*pattern.Matcher
	isolate   bool
	classify  *virtualenv.Classifier
	isTracked TrackedFunc
	found     []string
}

func (s *scan) walk(dir, rel string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Permission error or a directory removed mid-scan: skip the
		// subtree and keep scanning.
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" {
			continue
		}

		entryRel := name
		if rel != "" {
			entryRel = rel + "/" + name
		}

		if pattern.MatchAnyPath(s.excludes, entryRel) {
			continue
		}
		if s.isolate && s.classify != nil && s.classify.IsVirtualEnv(entryRel) {
			continue
		}

		// entry.IsDir is based on the lstat-like dirent type, so a symlink
		// to a directory lands in the file branch and is mirrored as a
		// link rather than walked into (guards against symlink cycles).
		if entry.IsDir() {
			s.walk(filepath.Join(dir, name), entryRel)
			continue
		}

		if len(s.includes) > 0 && !pattern.MatchAnyPath(s.includes, entryRel) {
			continue
		}
		if s.isTracked != nil && s.isTracked(entryRel) {
			continue
		}
		s.found = append(s.found, entryRel)
	}
}
