// Package copier materializes a list of candidate files from a source
// worktree into a target worktree, enforcing per-file and cumulative
// per-directory byte quotas and rewriting symlinks that would otherwise
// re-enter the source tree. Per-file failures are tolerated: a file that
// cannot be transferred is silently omitted from the result, and the batch
// always runs to completion.
package copier

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/gwm/internal/virtualenv"
)

// Limits holds the byte quotas applied during a copy batch. A negative
// value disables the corresponding limit; zero is an enabled limit that
// rejects anything with a positive size.
type Limits struct {
	MaxFileBytes int64
	MaxDirBytes  int64
}

// Options configures one copy batch.
type Options struct {
	Limits Limits
	// Isolation enables the defensive virtual-env re-check and the symlink
	// rewrite of targets inside the source tree.
	Isolation bool
	// Parallelism bounds concurrent transfers; 0 means all logical CPUs.
	Parallelism int
	// Classifier is consulted for the isolation re-check. May be nil.
	Classifier *virtualenv.Classifier
}

// Outcome reports what happened to each candidate. A path appears in at
// most one bucket; paths that failed for any other reason (I/O error,
// vanished source) appear in none. Bucket order follows the input order.
type Outcome struct {
	Copied             []string
	SkippedVirtualEnvs []string
	SkippedOversize    []string
}

// IsEmpty reports whether the batch produced nothing at all.
func (o Outcome) IsEmpty() bool {
	return len(o.Copied) == 0 && len(o.SkippedVirtualEnvs) == 0 && len(o.SkippedOversize) == 0
}

type fileStatus uint8

const (
	statusFailed fileStatus = iota
	statusCopied
	statusVirtualEnv
	statusOversize
)

// Copy transfers each of relPaths (POSIX-relative to sourceRoot) into the
// corresponding location under targetRoot.
//
// Classification, size checks and quota admission run in the dispatch loop,
// so the quota map is only ever touched by a single goroutine and files
// earlier in the list have priority over the shared directory budget. The
// actual byte transfers and symlink creations are then driven with at most
// Parallelism in flight, and the buckets are assembled in input order
// regardless of completion order.
func Copy(sourceRoot, targetRoot string, relPaths []string, opts Options) Outcome {
	resolvedSource := filepath.Clean(sourceRoot)
	if r, err := filepath.EvalSymlinks(sourceRoot); err == nil {
		resolvedSource = r
	}

	quota := newDirQuota(opts.Limits.MaxDirBytes)
	status := make([]fileStatus, len(relPaths))

	type unit struct {
		index int
		run   func() error
	}
	var units []unit

	for i, rel := range relPaths {
		src := filepath.Join(sourceRoot, filepath.FromSlash(rel))
		dst := filepath.Join(targetRoot, filepath.FromSlash(rel))

		// Defensive re-check: the scanner filters virtual envs already, but
		// the candidate list may come from elsewhere.
		if opts.Isolation && opts.Classifier != nil && opts.Classifier.IsVirtualEnv(rel) {
			status[i] = statusVirtualEnv
			continue
		}

		info, err := os.Lstat(src)
		if err != nil {
			// Source vanished between scan and copy: silent skip.
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			// Symlinks are always attempted; size checks do not apply.
			status[i] = statusCopied
			units = append(units, unit{i, func() error {
				return copySymlink(src, dst, resolvedSource, sourceRoot, targetRoot, opts.Isolation)
			}})
			continue
		}
		if info.IsDir() {
			// Candidate lists name files, not directories.
			continue
		}

		size := info.Size()
		if opts.Limits.MaxFileBytes >= 0 && size > opts.Limits.MaxFileBytes {
			status[i] = statusOversize
			continue
		}
		if !quota.admit(rel, size) {
			status[i] = statusOversize
			continue
		}

		status[i] = statusCopied
		units = append(units, unit{i, func() error {
			return copyFile(src, dst, info.Mode().Perm())
		}})
	}

	// Each unit writes only its own index, so the slice needs no lock.
	failed := make([]bool, len(relPaths))
	runBounded(len(units), opts.Parallelism, func(u int) {
		if err := units[u].run(); err != nil {
			failed[units[u].index] = true
		}
	})

	var out Outcome
	seenVenv := make(map[string]bool)
	for i, rel := range relPaths {
		if failed[i] {
			continue
		}
		switch status[i] {
		case statusCopied:
			out.Copied = append(out.Copied, rel)
		case statusVirtualEnv:
			if !seenVenv[rel] {
				seenVenv[rel] = true
				out.SkippedVirtualEnvs = append(out.SkippedVirtualEnvs, rel)
			}
		case statusOversize:
			out.SkippedOversize = append(out.SkippedOversize, rel)
		}
	}
	return out
}

// copyFile copies bytes verbatim, creating missing parent directories and
// preserving the source permission bits.
func copyFile(src, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// copySymlink recreates a symlink in the target tree. When isolation is on
// and the resolved link target lies inside the source root, the new link is
// rewritten to the corresponding location under targetRoot so the
// materialized tree cannot silently re-enter the original one. Every other
// target (absolute system paths, links leaving both trees) is recreated
// verbatim.
func copySymlink(src, dst, resolvedSource, sourceRoot, targetRoot string, isolate bool) error {
	linkTarget, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	if isolate {
		resolved := linkTarget
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(src), linkTarget)
		}
		resolved = filepath.Clean(resolved)

		// The source root may itself be reached through symlinked path
		// components, so compare against both spellings.
		for _, root := range []string{resolvedSource, filepath.Clean(sourceRoot)} {
			if rel, ok := within(root, resolved); ok {
				return os.Symlink(filepath.Join(targetRoot, rel), dst)
			}
		}
	}
	return os.Symlink(linkTarget, dst)
}

// within reports whether p lies inside root and returns p's path relative
// to it.
func within(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
