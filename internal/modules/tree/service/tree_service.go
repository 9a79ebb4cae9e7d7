package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"peaklab/internal/modules/tree/domain"
	treeout "peaklab/internal/modules/tree/port/out"
	apperrors "peaklab/internal/platform/errors"
)

type TreeService struct {
	fs     treeout.FileSystem
	logger *zap.Logger
}

func NewTreeService(fsys treeout.FileSystem, logger *zap.Logger) *TreeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeService{fs: fsys, logger: logger}
}

// Reconcile brings t in line with the disk in two passes. The first drops
// nodes whose path is gone and removes ancestor directories left empty by
// that, never the tree root. The second walks the disk top-down and inserts
// what the tree lacks. Directory entries are visited in name order.
func (s *TreeService) Reconcile(ctx context.Context, t *domain.Tree) (domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}
	var report domain.Report
	s.prune(t, &report)
	s.discover(t, &report)
	if report.Changed() {
		s.logger.Debug("tree reconciled",
			zap.String("tree", t.ID.String()),
			zap.Int("pruned", len(report.Pruned)),
			zap.Int("added", len(report.Added)),
			zap.Int("removed_dirs", len(report.RemovedDirs)),
		)
	}
	return report, nil
}

func (s *TreeService) prune(t *domain.Tree, report *domain.Report) {
	for _, n := range t.Walk() {
		if n.State == domain.StateRemoved {
			continue
		}
		isDir, err := s.fs.Stat(n.Path)
		if err == nil && isDir == (n.Kind == domain.DirectoryNode) {
			continue
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.fail(report, n.Path, "stat tree node", err)
			continue
		}
		parent := n.Parent
		t.Detach(n)
		report.Pruned = append(report.Pruned, n.Path)
		s.logger.Debug("tree node gone", zap.String("path", n.Path))
		if err == nil {
			// Same path, other kind: discovery re-inserts it.
			continue
		}
		s.pruneEmptyAncestors(t, parent, report)
	}
}

func (s *TreeService) pruneEmptyAncestors(t *domain.Tree, start *domain.Node, report *domain.Report) {
	for cur := start; cur != nil && cur != t.Root && cur.State != domain.StateRemoved; {
		next := cur.Parent
		entries, err := s.fs.ReadDir(cur.Path)
		if errors.Is(err, fs.ErrNotExist) {
			t.Detach(cur)
			report.Pruned = append(report.Pruned, cur.Path)
			cur = next
			continue
		}
		if err != nil {
			s.fail(report, cur.Path, "read directory", err)
			return
		}
		if len(entries) > 0 {
			return
		}
		if err := s.fs.Remove(cur.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.fail(report, cur.Path, "remove empty directory", err)
			return
		}
		t.Detach(cur)
		report.RemovedDirs = append(report.RemovedDirs, cur.Path)
		cur = next
	}
}

func (s *TreeService) discover(t *domain.Tree, report *domain.Report) {
	stack := []*domain.Node{t.Root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		entries, err := s.fs.ReadDir(dir.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if dir == t.Root {
					t.Root.State = domain.StateUnknown
				} else {
					t.Detach(dir)
					report.Pruned = append(report.Pruned, dir.Path)
				}
				continue
			}
			s.fail(report, dir.Path, "read directory", err)
			continue
		}
		dir.State = domain.StatePresent
		slices.SortFunc(entries, func(a, b domain.Entry) int { return strings.Compare(a.Name, b.Name) })
		var subdirs []*domain.Node
		for _, e := range entries {
			path := filepath.Join(dir.Path, e.Name)
			n, ok := t.Find(path)
			if ok && (n.Kind == domain.DirectoryNode) != e.IsDir {
				t.Detach(n)
				ok = false
			}
			if e.IsDir {
				if !ok {
					n = t.Insert(dir, e.Name, domain.DirectoryNode)
					report.Added = append(report.Added, path)
				}
				subdirs = append(subdirs, n)
				continue
			}
			if !t.Accepts(e.Name) {
				continue
			}
			if !ok {
				n = t.Insert(dir, e.Name, domain.FileNode)
				report.Added = append(report.Added, path)
			}
			n.State = domain.StatePresent
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}

type deleteFrame struct {
	path     string
	isDir    bool
	expanded bool
}

// DeleteNode detaches the node at path. With cascade it also deletes the
// backing file, or a directory and everything below it children first.
// A path that is already gone is not an error.
func (s *TreeService) DeleteNode(ctx context.Context, t *domain.Tree, path string, cascade bool) (domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}
	path = filepath.Clean(path)
	if path == t.Root.Path || !t.Contains(path) {
		return domain.Report{}, fmt.Errorf("%w: %s is not below %s", apperrors.ErrInvalidInput, path, t.Root.Path)
	}
	var report domain.Report
	if n, ok := t.Find(path); ok {
		t.Detach(n)
		report.Pruned = append(report.Pruned, path)
	}
	if !cascade {
		return report, nil
	}
	isDir, err := s.fs.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.fail(&report, path, "stat", err)
		}
		return report, nil
	}
	stack := []*deleteFrame{{path: path, isDir: isDir}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.isDir && !top.expanded {
			top.expanded = true
			entries, err := s.fs.ReadDir(top.path)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.fail(&report, top.path, "read directory", err)
			}
			for _, e := range entries {
				stack = append(stack, &deleteFrame{path: filepath.Join(top.path, e.Name), isDir: e.IsDir})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		if err := s.fs.Remove(top.path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.fail(&report, top.path, "delete", err)
			}
			continue
		}
		report.Deleted = append(report.Deleted, top.path)
	}
	s.logger.Info("tree node deleted", zap.String("path", path), zap.Int("deleted", len(report.Deleted)), zap.Int("failures", len(report.Failures)))
	return report, nil
}

func (s *TreeService) fail(report *domain.Report, path, op string, err error) {
	s.logger.Warn(op+" failed", zap.String("path", path), zap.Error(err))
	report.Failures = append(report.Failures, domain.Failure{Path: path, Err: err})
}
