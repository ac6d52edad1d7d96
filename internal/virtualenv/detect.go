package virtualenv

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Detection reports one virtual environment artifact found during a
// directory walk.
type Detection struct {
	// Ecosystem is the group that matched.
	Ecosystem string
	// RelPath is the matched directory, relative to the walk root, in POSIX
	// form.
	RelPath string
	// Pattern is the group pattern that matched.
	Pattern string
}

// Directories that are never worth descending into during detection:
// version-control metadata, editor caches, and generic build caches.
var skipDirs = map[string]bool{
	".git":    true,
	".hg":     true,
	".svn":    true,
	".idea":   true,
	".vscode": true,
	".cache":  true,
}

// DetectAll walks rootDir depth-first and reports every directory matching
// any group pattern. Every group and pattern is evaluated at each entry, so
// the same directory can be reported once per (ecosystem, pattern) pair
// (a "vendor" directory matches both the PHP and Go conventions). A matched
// directory is not recursed into: its contents belong to the artifact.
//
// maxDepth bounds recursion; a negative value means unlimited. maxDepth 0
// examines only the root's immediate entries.
func (c *Classifier) DetectAll(rootDir string, maxDepth int) []Detection {
	var detections []Detection
	seen := make(map[Detection]bool)
	c.detect(rootDir, ".", maxDepth, maxDepth < 0, seen, &detections)
	return detections
}

func (c *Classifier) detect(dir, rel string, depth int, unlimited bool, seen map[Detection]bool, out *[]Detection) {
	if !unlimited && depth < 0 {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directory: skip the subtree, never abort the walk.
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if skipDirs[name] {
			continue
		}

		entryRel := name
		if rel != "." {
			entryRel = rel + "/" + name
		}

		matched := false
		normalized := strings.ToLower(entryRel)
		segments := strings.Split(normalized, "/")
		for _, group := range c.groups {
			for _, p := range group.Patterns {
				if !matchPattern(normalized, segments, strings.ToLower(p)) {
					continue
				}
				matched = true
				d := Detection{Ecosystem: group.Ecosystem, RelPath: entryRel, Pattern: p}
				if !seen[d] {
					seen[d] = true
					*out = append(*out, d)
				}
			}
		}
		if matched {
			// Contents belong entirely to the matched artifact.
			continue
		}

		c.detect(filepath.Join(dir, name), entryRel, depth-1, unlimited, seen, out)
	}
}

// SetupHintsFor returns the setup hints of every group whose ecosystem
// appears in the detections, preserving group order and deduplicating.
func (c *Classifier) SetupHintsFor(detections []Detection) []string {
	detected := make(map[string]bool, len(detections))
	for _, d := range detections {
		detected[d.Ecosystem] = true
	}

	var hints []string
	seen := make(map[string]bool)
	for _, group := range c.groups {
		if !detected[group.Ecosystem] {
			continue
		}
		for _, h := range group.SetupHints {
			if !seen[h] {
				seen[h] = true
				hints = append(hints, h)
			}
		}
	}
	return hints
}

// Base returns the final segment of a detection's relative path.
func (d Detection) Base() string {
	return path.Base(d.RelPath)
}
