package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"peaklab/internal/modules/tree/domain"
	"peaklab/internal/modules/tree/dto"
	treein "peaklab/internal/modules/tree/port/in"
	"peaklab/internal/modules/tree/service"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

// RootResolver maps a tree to the directory it mirrors.
type RootResolver func(k kind.Kind, saved bool) string

type Interactor struct {
	svc        *service.TreeService
	extensions []string
	trees      map[domain.ID]*domain.Tree
	order      []domain.ID
}

func NewInteractor(svc *service.TreeService, roots RootResolver, extensions []string) treein.Usecase {
	i := &Interactor{svc: svc, extensions: extensions, trees: map[domain.ID]*domain.Tree{}}
	for _, saved := range []bool{false, true} {
		for _, k := range kind.All() {
			id := domain.ID{Kind: k, Saved: saved}
			i.trees[id] = domain.NewTree(id, roots(k, saved), extensions)
			i.order = append(i.order, id)
		}
	}
	return i
}

func (i *Interactor) List(ctx context.Context, input dto.TreeInput) (dto.TreeOutput, error) {
	t, err := i.tree(input)
	if err != nil {
		return dto.TreeOutput{}, err
	}
	if _, err := i.svc.Reconcile(ctx, t); err != nil {
		return dto.TreeOutput{}, err
	}
	out := dto.TreeOutput{Tree: t.ID.String(), Root: t.Root.Path}
	for _, n := range t.Walk() {
		out.Nodes = append(out.Nodes, dto.NodeOutput{
			Name:  n.Name,
			Path:  n.Path,
			Kind:  n.Kind.String(),
			State: n.State.String(),
			Depth: t.Depth(n),
		})
	}
	return out, nil
}

func (i *Interactor) Reconcile(ctx context.Context, input dto.TreeInput) (dto.ReportOutput, error) {
	t, err := i.tree(input)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	report, err := i.svc.Reconcile(ctx, t)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	return toReport(t, report), nil
}

func (i *Interactor) ReconcileAll(ctx context.Context) ([]dto.ReportOutput, error) {
	out := make([]dto.ReportOutput, 0, len(i.order))
	for _, id := range i.order {
		t := i.trees[id]
		report, err := i.svc.Reconcile(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, toReport(t, report))
	}
	return out, nil
}

func (i *Interactor) Refresh(ctx context.Context, path string) (dto.ReportOutput, error) {
	t, _, err := i.owner(path)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	report, err := i.svc.Reconcile(ctx, t)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	return toReport(t, report), nil
}

// Delete removes the node and, when cascading, its files. A cascade is
// followed by a reconcile of the owning tree.
func (i *Interactor) Delete(ctx context.Context, input dto.DeleteInput) (dto.ReportOutput, error) {
	t, path, err := i.owner(input.Path)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	if t.Len() == 0 {
		if _, err := i.svc.Reconcile(ctx, t); err != nil {
			return dto.ReportOutput{}, err
		}
	}
	report, err := i.svc.DeleteNode(ctx, t, path, input.Cascade)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	if input.Cascade {
		follow, err := i.svc.Reconcile(ctx, t)
		if err != nil {
			return dto.ReportOutput{}, err
		}
		report.Merge(follow)
	}
	return toReport(t, report), nil
}

func (i *Interactor) tree(input dto.TreeInput) (*domain.Tree, error) {
	k, err := kind.Parse(input.Kind)
	if err != nil {
		return nil, err
	}
	return i.trees[domain.ID{Kind: k, Saved: input.Saved}], nil
}

// owner finds the tree holding path and returns path in the form the tree
// root uses.
func (i *Interactor) owner(path string) (*domain.Tree, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}
	for _, id := range i.order {
		t := i.trees[id]
		if filepath.IsAbs(t.Root.Path) && t.Contains(abs) {
			return t, abs, nil
		}
		if t.Contains(path) {
			return t, filepath.Clean(path), nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s is not inside any tree", apperrors.ErrNotFound, path)
}

func toReport(t *domain.Tree, r domain.Report) dto.ReportOutput {
	out := dto.ReportOutput{
		Tree:        t.ID.String(),
		Pruned:      r.Pruned,
		Added:       r.Added,
		RemovedDirs: r.RemovedDirs,
		Deleted:     r.Deleted,
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, dto.FailureOutput{Path: f.Path, Error: f.Err.Error()})
	}
	return out
}
