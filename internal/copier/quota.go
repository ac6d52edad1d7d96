package copier

import "path"

// dirQuota tracks the cumulative bytes committed to each directory and all
// of its descendants combined, keyed by POSIX-relative directory path with
// "." as the synthetic root. It is touched only from the dispatch loop, so
// no locking is needed.
type dirQuota struct {
	limit int64 // negative disables the budget
	used  map[string]int64
}

func newDirQuota(limit int64) *dirQuota {
	return &dirQuota{limit: limit, used: make(map[string]int64)}
}

// admit walks from the file's immediate parent up to the root and checks
// whether committing size would exceed any ancestor's budget. On success
// every ancestor's running total is charged; on rejection no total changes.
// Admission is order-dependent: earlier files have priority over the shared
// budget.
func (q *dirQuota) admit(relPath string, size int64) bool {
	if q.limit < 0 {
		return true
	}
	for d := path.Dir(relPath); ; d = path.Dir(d) {
		if q.used[d]+size > q.limit {
			return false
		}
		if d == "." {
			break
		}
	}
	for d := path.Dir(relPath); ; d = path.Dir(d) {
		q.used[d] += size
		if d == "." {
			break
		}
	}
	return true
}

// total returns the bytes committed to dir and its descendants so far.
func (q *dirQuota) total(dir string) int64 {
	return q.used[dir]
}
