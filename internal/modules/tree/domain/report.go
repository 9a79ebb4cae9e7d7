package domain

type Entry struct {
	Name  string
	IsDir bool
}

type Failure struct {
	Path string
	Err  error
}

// Report lists what a reconcile or delete changed. Failures are filesystem
// errors that were logged and skipped.
type Report struct {
	Pruned      []string
	Added       []string
	RemovedDirs []string
	Deleted     []string
	Failures    []Failure
}

func (r *Report) Merge(other Report) {
	r.Pruned = append(r.Pruned, other.Pruned...)
	r.Added = append(r.Added, other.Added...)
	r.RemovedDirs = append(r.RemovedDirs, other.RemovedDirs...)
	r.Deleted = append(r.Deleted, other.Deleted...)
	r.Failures = append(r.Failures, other.Failures...)
}

func (r Report) Changed() bool {
	return len(r.Pruned)+len(r.Added)+len(r.RemovedDirs)+len(r.Deleted) > 0
}
