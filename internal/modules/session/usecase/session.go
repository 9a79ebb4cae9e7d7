package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	scandomain "peaklab/internal/modules/scan/domain"
	"peaklab/internal/modules/session/domain"
	sessiondto "peaklab/internal/modules/session/dto"
	sessionin "peaklab/internal/modules/session/port/in"
	sessionout "peaklab/internal/modules/session/port/out"
	"peaklab/internal/modules/session/service"
	treein "peaklab/internal/modules/tree/port/in"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

type Interactor struct {
	svc      *service.SessionService
	tree     treein.Usecase
	exporter sessionout.PeakExporter
	logger   *zap.Logger
}

func NewInteractor(svc *service.SessionService, tree treein.Usecase, exporter sessionout.PeakExporter, logger *zap.Logger) sessionin.Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{svc: svc, tree: tree, exporter: exporter, logger: logger}
}

func (i *Interactor) Save(ctx context.Context, input sessiondto.SaveInput) (sessiondto.SaveOutput, error) {
	k, err := kind.Parse(input.Kind)
	if err != nil {
		return sessiondto.SaveOutput{}, err
	}
	session := domain.Session{SourcePath: input.SourcePath, Kind: k}
	if k.MultiScan() {
		session.Scans = append([]int(nil), input.Scans...)
	}
	for _, p := range input.Peaks {
		session.Peaks = append(session.Peaks, domain.Peak{Bound1: p.Bound1, Bound2: p.Bound2, Value: p.Value, Available: p.Available})
	}

	result, err := i.svc.Save(ctx, session)
	if err != nil {
		return sessiondto.SaveOutput{}, err
	}
	out := sessiondto.SaveOutput{
		Outcome:      sessiondto.OutcomeSaved,
		Path:         result.Path,
		StaleRemoved: result.StaleRemoved,
		Removed:      result.Removed,
	}
	if result.Outcome == service.NothingToSave {
		out.Outcome = sessiondto.OutcomeNothingToSave
	}
	if result.Outcome == service.Saved || result.StaleRemoved {
		i.refresh(ctx, result.Path)
	}
	return out, nil
}

func (i *Interactor) Load(ctx context.Context, path string) (sessiondto.SessionOutput, error) {
	if strings.TrimSpace(path) == "" {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: session path is required", apperrors.ErrInvalidInput)
	}
	session, err := i.svc.Load(ctx, path)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	out := sessiondto.SessionOutput{
		Path:       path,
		SourcePath: session.SourcePath,
		Kind:       session.Kind.String(),
		Scans:      session.Scans,
		ScanText:   scandomain.Encode(session.Scans),
	}
	for _, p := range session.Peaks {
		out.Peaks = append(out.Peaks, sessiondto.PeakOutput{Bound1: p.Bound1, Bound2: p.Bound2, Value: p.Value, Available: p.Available})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	result, err := i.svc.Reindex(ctx)
	if err != nil {
		return sessiondto.ReindexOutput{}, err
	}
	return sessiondto.ReindexOutput{Sessions: result.Sessions, Peaks: result.Peaks, Skipped: result.Skipped}, nil
}

func (i *Interactor) ListPeaks(ctx context.Context, k string) ([]sessiondto.PeakRow, error) {
	rows, err := i.svc.Peaks(ctx, k)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.PeakRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, sessiondto.PeakRow{
			SessionPath: r.SessionPath,
			SourcePath:  r.SourcePath,
			Kind:        r.Kind,
			Scans:       r.Scans,
			Ordinal:     r.Ordinal,
			Bound1:      r.Bound1,
			Bound2:      r.Bound2,
			Value:       r.Value,
			Available:   r.Available,
		})
	}
	return out, nil
}

func (i *Interactor) Export(ctx context.Context, dest string) (sessiondto.ExportOutput, error) {
	if strings.TrimSpace(dest) == "" {
		return sessiondto.ExportOutput{}, fmt.Errorf("%w: export path is required", apperrors.ErrInvalidInput)
	}
	if i.exporter == nil {
		return sessiondto.ExportOutput{}, fmt.Errorf("peak exporter is not configured")
	}
	rows, err := i.svc.Peaks(ctx, "")
	if err != nil {
		return sessiondto.ExportOutput{}, err
	}
	if err := i.exporter.Export(ctx, dest, rows); err != nil {
		return sessiondto.ExportOutput{}, err
	}
	return sessiondto.ExportOutput{Path: dest, Rows: len(rows)}, nil
}

func (i *Interactor) refresh(ctx context.Context, path string) {
	if i.tree == nil {
		return
	}
	if _, err := i.tree.Refresh(ctx, path); err != nil {
		i.logger.Warn("refresh saved tree failed", zap.String("path", path), zap.Error(err))
	}
}
