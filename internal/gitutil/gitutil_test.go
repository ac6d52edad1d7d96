package gitutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initRepo creates a git repository with one committed file and one
// untracked file, returning its path.
func initRepo(t *testing.T) string {
	t.Helper()
	if !Available() {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "--quiet")
	if err := os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("hi"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET=1"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	run("add", "tracked.txt")
	run("commit", "--quiet", "-m", "initial")

	return dir
}

func TestTrackedFiles(t *testing.T) {
	dir := initRepo(t)

	tracked, err := TrackedFiles(dir)
	if err != nil {
		t.Fatalf("TrackedFiles: %v", err)
	}

	if !tracked["tracked.txt"] {
		t.Error("tracked.txt should be tracked")
	}
	if tracked[".env"] {
		t.Error(".env should not be tracked")
	}
}

func TestTrackedFilesOutsideRepo(t *testing.T) {
	if !Available() {
		t.Skip("git binary not available")
	}
	if _, err := TrackedFiles(t.TempDir()); err == nil {
		t.Error("expected an error outside a repository")
	}
}

func TestRepoRoot(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	root, err := RepoRoot(sub)
	if err != nil {
		t.Fatalf("RepoRoot: %v", err)
	}

	// Resolve both sides: repositories under /tmp may be reported through a
	// symlinked prefix.
	wantResolved, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(root)
	if gotResolved != wantResolved {
		t.Errorf("RepoRoot = %q, want %q", root, dir)
	}
}

func TestPrimaryWorktree(t *testing.T) {
	dir := initRepo(t)

	primary, err := PrimaryWorktree(dir)
	if err != nil {
		t.Fatalf("PrimaryWorktree: %v", err)
	}

	wantResolved, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(primary)
	if gotResolved != wantResolved {
		t.Errorf("PrimaryWorktree = %q, want %q", primary, dir)
	}
}
