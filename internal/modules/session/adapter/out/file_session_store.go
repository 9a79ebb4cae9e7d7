package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"peaklab/internal/modules/session/domain"
	sessionout "peaklab/internal/modules/session/port/out"
	apperrors "peaklab/internal/platform/errors"
)

type FileSessionStore struct {
	extensions []string
	logger     *zap.Logger
}

func NewFileSessionStore(extensions []string, logger *zap.Logger) sessionout.SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSessionStore{extensions: extensions, logger: logger}
}

func (s *FileSessionStore) Save(_ context.Context, path string, session domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(domain.Encode(session)), 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Load(_ context.Context, path string) (domain.Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Session{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
		}
		return domain.Session{}, fmt.Errorf("read session file: %w", err)
	}
	session, err := domain.Decode(string(raw))
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return session, nil
}

func (s *FileSessionStore) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat session file: %w", err)
	}
	return !info.IsDir(), nil
}

func (s *FileSessionStore) Remove(_ context.Context, path, stopAt string) ([]string, bool) {
	var removed []string
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("remove stale session failed", zap.String("path", path), zap.Error(err))
			return nil, false
		}
	} else {
		removed = append(removed, path)
	}
	stop := filepath.Clean(stopAt)
	for dir := filepath.Dir(path); dir != stop && strings.HasPrefix(dir, stop+string(filepath.Separator)); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn("read session dir failed", zap.String("path", dir), zap.Error(err))
			break
		}
		if len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			s.logger.Warn("remove empty session dir failed", zap.String("path", dir), zap.Error(err))
			break
		}
		removed = append(removed, dir)
	}
	return removed, true
}

// List returns every session file below root in lexical order.
func (s *FileSessionStore) List(_ context.Context, root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if slices.Contains(s.extensions, strings.ToLower(filepath.Ext(path))) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk sessions: %w", err)
	}
	slices.Sort(out)
	return out, nil
}
