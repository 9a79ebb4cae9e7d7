package domain

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

const MultiScanSuffix = "_CVs"

// Layout maps raw files under DataRoot to session files under SavedRoot.
type Layout struct {
	DataRoot  string
	SavedRoot string
}

// SavePath keeps the path of raw relative to the data root and re-roots it
// under the saved root. Multi-scan sessions get _CVs before the extension.
func (l Layout) SavePath(raw string, k kind.Kind, multiScan bool) (string, error) {
	rel, err := relInside(l.DataRoot, raw)
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	if first != k.String() {
		return "", fmt.Errorf("%w: %s is not under the %s data directory", apperrors.ErrOutsideRoot, raw, k)
	}
	dest := filepath.Join(l.SavedRoot, rel)
	if multiScan {
		ext := filepath.Ext(dest)
		dest = strings.TrimSuffix(dest, ext) + MultiScanSuffix + ext
	}
	return dest, nil
}

// DomainRoot is the saved directory of a kind. Pruning stops there.
func (l Layout) DomainRoot(k kind.Kind) string {
	return filepath.Join(l.SavedRoot, k.String())
}

// Saved reports whether path lies below the saved root.
func (l Layout) Saved(path string) bool {
	_, err := relInside(l.SavedRoot, path)
	return err == nil
}

// KindOf returns the domain of a file below either root.
func (l Layout) KindOf(path string) (kind.Kind, error) {
	for _, root := range []string{l.SavedRoot, l.DataRoot} {
		rel, err := relInside(root, path)
		if err != nil {
			continue
		}
		first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		if k, err := kind.Parse(first); err == nil {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", apperrors.ErrOutsideRoot, path)
}

func relInside(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrOutsideRoot, path)
	}
	return rel, nil
}
