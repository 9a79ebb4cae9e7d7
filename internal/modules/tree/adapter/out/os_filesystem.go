package out

import (
	"os"
	"path/filepath"

	"peaklab/internal/modules/tree/domain"
	treeout "peaklab/internal/modules/tree/port/out"
)

type OSFileSystem struct{}

func NewOSFileSystem() treeout.FileSystem {
	return OSFileSystem{}
}

func (OSFileSystem) Stat(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ReadDir lists entries sorted by file name.
func (OSFileSystem) ReadDir(path string) ([]domain.Entry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(path, e.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		out = append(out, domain.Entry{Name: e.Name(), IsDir: isDir})
	}
	return out, nil
}

func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}
