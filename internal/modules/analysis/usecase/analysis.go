package usecase

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"peaklab/internal/modules/analysis/domain"
	"peaklab/internal/modules/analysis/dto"
	analysisin "peaklab/internal/modules/analysis/port/in"
	analysisout "peaklab/internal/modules/analysis/port/out"
	fitdomain "peaklab/internal/modules/fit/domain"
	fitdto "peaklab/internal/modules/fit/dto"
	fitin "peaklab/internal/modules/fit/port/in"
	measurementdto "peaklab/internal/modules/measurement/dto"
	measurementin "peaklab/internal/modules/measurement/port/in"
	scandomain "peaklab/internal/modules/scan/domain"
	scanin "peaklab/internal/modules/scan/port/in"
	sessiondomain "peaklab/internal/modules/session/domain"
	sessiondto "peaklab/internal/modules/session/dto"
	sessionin "peaklab/internal/modules/session/port/in"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

type Dependencies struct {
	Measurement measurementin.Usecase
	Fit         fitin.Usecase
	Scans       scanin.Usecase
	Sessions    sessionin.Usecase
	Layout      sessiondomain.Layout
	Renderer    analysisout.PlotRenderer
	Logger      *zap.Logger
}

type active struct {
	state    domain.State
	data     measurementdto.DatasetOutput
	lastSave *dto.SaveOutput
}

type Interactor struct {
	deps   Dependencies
	logger *zap.Logger

	mu      sync.Mutex
	current *active
}

func NewInteractor(deps Dependencies) analysisin.Usecase {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{deps: deps, logger: logger}
}

func (i *Interactor) Open(ctx context.Context, path string) (dto.StateOutput, error) {
	var (
		a   *active
		err error
	)
	if i.deps.Layout.Saved(path) {
		a, err = i.openSaved(ctx, path)
	} else {
		a, err = i.openRaw(ctx, path)
	}
	if err != nil {
		return dto.StateOutput{}, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.current = a
	i.logger.Debug("analysis opened", zap.String("path", path), zap.String("source", a.state.SourcePath))
	return output(a), nil
}

func (i *Interactor) openRaw(ctx context.Context, path string) (*active, error) {
	k, err := i.deps.Layout.KindOf(path)
	if err != nil {
		return nil, err
	}
	data, err := i.deps.Measurement.Open(ctx, measurementdto.OpenInput{Path: path, Kind: k.String()})
	if err != nil {
		return nil, err
	}
	defaults := i.deps.Scans.Default(ctx, data.Scans)
	return &active{state: domain.NewState(k, path, data.Scans, defaults.Scans), data: data}, nil
}

// openSaved reopens the raw file a session points at and restores its
// scans and peaks. Stored peak values are kept, not refitted.
func (i *Interactor) openSaved(ctx context.Context, path string) (*active, error) {
	session, err := i.deps.Sessions.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	k, err := kind.Parse(session.Kind)
	if err != nil {
		return nil, err
	}
	data, err := i.deps.Measurement.Open(ctx, measurementdto.OpenInput{Path: session.SourcePath, Kind: k.String()})
	if err != nil {
		return nil, fmt.Errorf("open source of %s: %w", path, err)
	}
	defaults := i.deps.Scans.Default(ctx, data.Scans)
	state := domain.NewState(k, session.SourcePath, data.Scans, defaults.Scans)
	if k.MultiScan() && len(session.Scans) > 0 {
		state.Scans = scandomain.Selection(session.Scans).Restrict(data.Scans)
		state.ScanText = scandomain.Encode(state.Scans)
	}
	if len(session.Peaks) > 0 && !state.SlotsOffered() {
		i.logger.Warn("session peaks dropped, selection has no single scan", zap.String("path", path), zap.Int("peaks", len(session.Peaks)))
		session.Peaks = nil
	}
	samples := len(data.Curves[state.OwnerScan()].X)
	for _, p := range session.Peaks {
		if p.Bound1 >= samples || p.Bound2 >= samples {
			return nil, fmt.Errorf("%w: %s references sample beyond %d", apperrors.ErrInvalidInput, path, samples-1)
		}
		state.Peaks = append(state.Peaks, domain.Peak{
			OwnerScan: state.OwnerScan(),
			Boundary:  domain.Boundary{Bound1: p.Bound1, Bound2: p.Bound2},
			Value:     p.Value,
			Available: p.Available,
		})
	}
	return &active{state: state, data: data}, nil
}

func (i *Interactor) Current(context.Context) (dto.StateOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		return dto.StateOutput{}, errNothingOpen()
	}
	return output(i.current), nil
}

func (i *Interactor) SelectScans(ctx context.Context, text string) (dto.StateOutput, error) {
	return i.dispatch(ctx, domain.SelectScans{Text: text})
}

func (i *Interactor) AddPeak(ctx context.Context) (dto.StateOutput, error) {
	return i.dispatch(ctx, domain.AddPeak{})
}

func (i *Interactor) ArmBound(ctx context.Context, peak, which int) (dto.StateOutput, error) {
	return i.dispatch(ctx, domain.ArmBound{Peak: peak, Which: domain.Which(which)})
}

func (i *Interactor) PickPoint(ctx context.Context, index int) (dto.StateOutput, error) {
	return i.dispatch(ctx, domain.PickPoint{Index: index})
}

func (i *Interactor) DeletePeak(ctx context.Context, peak int) (dto.StateOutput, error) {
	return i.dispatch(ctx, domain.DeletePeak{Peak: peak})
}

func (i *Interactor) Save(ctx context.Context) (dto.StateOutput, error) {
	return i.dispatch(ctx, domain.RequestSave{})
}

func (i *Interactor) dispatch(ctx context.Context, e domain.Event) (dto.StateOutput, error) {
	if err := ctx.Err(); err != nil {
		return dto.StateOutput{}, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	a := i.current
	if a == nil {
		return dto.StateOutput{}, errNothingOpen()
	}
	curves := curveSet{ctx: ctx, fits: i.deps.Fit, data: a.data, model: string(fitdomain.ModelFor(a.state.Kind)), logger: i.logger}
	next, effects, err := domain.Reduce(a.state, e, curves)
	if err != nil {
		return dto.StateOutput{}, err
	}
	a.state = next
	a.lastSave = nil
	for _, effect := range effects {
		if err := i.run(ctx, a, effect); err != nil {
			return dto.StateOutput{}, err
		}
	}
	return output(a), nil
}

func (i *Interactor) run(ctx context.Context, a *active, effect domain.Effect) error {
	switch ef := effect.(type) {
	case domain.SaveSession:
		snap := ef.Snapshot
		input := sessiondto.SaveInput{SourcePath: snap.SourcePath, Kind: snap.Kind.String(), Scans: snap.Scans}
		for _, p := range snap.Peaks {
			input.Peaks = append(input.Peaks, sessiondto.PeakInput{Bound1: p.Bound1, Bound2: p.Bound2, Value: p.Value, Available: p.Available})
		}
		out, err := i.deps.Sessions.Save(ctx, input)
		if err != nil {
			return err
		}
		a.lastSave = &dto.SaveOutput{Outcome: string(out.Outcome), Path: out.Path, StaleRemoved: out.StaleRemoved}
		return nil
	default:
		return fmt.Errorf("unhandled effect %T", effect)
	}
}

func (i *Interactor) Render(ctx context.Context, w io.Writer) error {
	if i.deps.Renderer == nil {
		return fmt.Errorf("plot renderer is not configured")
	}
	i.mu.Lock()
	a := i.current
	var plot domain.Plot
	if a != nil {
		plot = buildPlot(a)
	}
	i.mu.Unlock()
	if a == nil {
		return errNothingOpen()
	}
	return i.deps.Renderer.Render(ctx, plot, w)
}

func buildPlot(a *active) domain.Plot {
	s := a.state
	plot := domain.NewPlot(s.Kind, s.SourcePath)
	scans := []int(s.Scans)
	if !s.Kind.MultiScan() {
		scans = []int{s.OwnerScan()}
	}
	for _, scan := range scans {
		c, ok := a.data.Curves[scan]
		if !ok {
			continue
		}
		plot.Series = append(plot.Series, domain.Series{Name: domain.SeriesName(s.Kind, scan), X: c.X, Y: c.Y})
	}
	for n, p := range s.Peaks {
		if p.Available && p.Complete() {
			plot.Markers = append(plot.Markers, domain.Marker{X: p.Value, Label: domain.MarkerLabel(n, p.Value)})
		}
	}
	return plot
}

func output(a *active) dto.StateOutput {
	s := a.state
	out := dto.StateOutput{
		Kind:         s.Kind.String(),
		SourcePath:   s.SourcePath,
		Available:    s.Available,
		Scans:        s.Scans,
		ScanText:     s.ScanText,
		ScanError:    s.ScanError,
		SlotsOffered: s.SlotsOffered(),
		LastSave:     a.lastSave,
	}
	if out.SlotsOffered {
		owner := a.data.Curves[s.OwnerScan()]
		out.Samples = len(owner.X)
		out.OwnerX, out.OwnerY = owner.X, owner.Y
	}
	for _, p := range s.Peaks {
		curve := a.data.Curves[p.OwnerScan]
		po := dto.PeakOutput{
			OwnerScan: p.OwnerScan,
			Bound1:    p.Bound1,
			Bound2:    p.Bound2,
			X1:        boundX(curve, p.Bound1),
			X2:        boundX(curve, p.Bound2),
			Value:     p.Value,
			ValueText: sessiondomain.Unavailable,
			Available: p.Available,
		}
		if p.Available {
			po.ValueText = strconv.FormatFloat(p.Value, 'f', 2, 64)
		}
		out.Peaks = append(out.Peaks, po)
	}
	if s.Armed != nil {
		out.Armed = &dto.ArmOutput{Peak: s.Armed.Peak, Which: s.Armed.Which.String()}
	}
	return out
}

func boundX(c measurementdto.CurveOutput, index int) string {
	if index < 0 || index >= len(c.X) {
		return ""
	}
	return strconv.FormatFloat(c.X[index], 'f', 2, 64)
}

func errNothingOpen() error {
	return fmt.Errorf("%w: no file is open", apperrors.ErrInvalidInput)
}

type curveSet struct {
	ctx    context.Context
	fits   fitin.Usecase
	data   measurementdto.DatasetOutput
	model  string
	logger *zap.Logger
}

func (c curveSet) Len(scan int) int {
	return len(c.data.Curves[scan].X)
}

func (c curveSet) PeakX(scan, lo, hi int) (float64, error) {
	curve := c.data.Curves[scan]
	out, err := c.fits.Fit(c.ctx, fitdto.FitInput{X: curve.X, Y: curve.Y, From: lo, To: hi, Model: c.model})
	if err != nil {
		c.logger.Debug("peak fit failed", zap.Int("scan", scan), zap.Int("from", lo), zap.Int("to", hi), zap.Error(err))
		return 0, err
	}
	return out.Peak, nil
}
