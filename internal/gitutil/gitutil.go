// Package gitutil provides the read-only git queries gwm needs.
//
// All operations shell out to the git CLI via os/exec rather than using a
// Go git library: it is simpler, always agrees with the user's git
// configuration, and this package only ever reads repository state.
package gitutil

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// git runs a git subcommand in dir and returns its stdout.
func git(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return nil, fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.Bytes(), nil
}

// TrackedFiles returns the set of repository-relative paths tracked by git
// in the worktree at dir. Paths use POSIX separators, as git reports them.
func TrackedFiles(dir string) (map[string]bool, error) {
	out, err := git(dir, "ls-files", "-z")
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked files: %w", err)
	}

	tracked := make(map[string]bool)
	for _, p := range bytes.Split(out, []byte{0}) {
		if len(p) > 0 {
			tracked[string(p)] = true
		}
	}
	return tracked, nil
}

// RepoRoot returns the absolute path of the worktree containing dir.
func RepoRoot(dir string) (string, error) {
	out, err := git(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to locate repository root: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// PrimaryWorktree returns the path of the repository's primary worktree
// (the first entry of `git worktree list`), as seen from dir.
func PrimaryWorktree(dir string) (string, error) {
	out, err := git(dir, "worktree", "list", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("failed to list worktrees: %w", err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if path, ok := strings.CutPrefix(line, "worktree "); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("no worktrees reported for %s", dir)
}

// Available reports whether a git binary can be found.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}
