package in

import (
	"context"

	treedto "peaklab/internal/modules/tree/dto"
	treein "peaklab/internal/modules/tree/port/in"
)

type CLIHandler struct {
	usecase treein.Usecase
}

func NewCLIHandler(usecase treein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, kind string, saved bool) (treedto.TreeOutput, error) {
	return h.usecase.List(ctx, treedto.TreeInput{Kind: kind, Saved: saved})
}

func (h CLIHandler) Reconcile(ctx context.Context, kind string, saved bool) (treedto.ReportOutput, error) {
	return h.usecase.Reconcile(ctx, treedto.TreeInput{Kind: kind, Saved: saved})
}

func (h CLIHandler) ReconcileAll(ctx context.Context) ([]treedto.ReportOutput, error) {
	return h.usecase.ReconcileAll(ctx)
}

func (h CLIHandler) Delete(ctx context.Context, path string, cascade bool) (treedto.ReportOutput, error) {
	return h.usecase.Delete(ctx, treedto.DeleteInput{Path: path, Cascade: cascade})
}
