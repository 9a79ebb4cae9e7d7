package out

import "peaklab/internal/modules/tree/domain"

// FileSystem is the slice of the OS the trees are reconciled against.
// Missing paths must surface as errors matching fs.ErrNotExist.
type FileSystem interface {
	Stat(path string) (isDir bool, err error)
	ReadDir(path string) ([]domain.Entry, error)
	Remove(path string) error
}
