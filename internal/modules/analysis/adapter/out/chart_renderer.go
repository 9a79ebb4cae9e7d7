package out

import (
	"context"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"peaklab/internal/modules/analysis/domain"
	analysisout "peaklab/internal/modules/analysis/port/out"
	apperrors "peaklab/internal/platform/errors"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 640
)

type ChartRenderer struct {
	width  int
	height int
	logger *zap.Logger
}

func NewChartRenderer(width, height int, logger *zap.Logger) analysisout.PlotRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartRenderer{width: width, height: height, logger: logger}
}

func curveStyle(i int) chart.Style {
	return chart.Style{
		StrokeColor: chart.GetDefaultColor(i),
		StrokeWidth: 1.5,
	}
}

func markerStyle() chart.Style {
	return chart.Style{
		StrokeColor:     chart.ColorRed,
		StrokeWidth:     1,
		StrokeDashArray: []float64{4, 4},
	}
}

// Render draws every series as a line and each marker as a dashed
// vertical line labelled at the top of the plot.
func (r *ChartRenderer) Render(ctx context.Context, plot domain.Plot, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	scale := plot.YScale
	if scale == 0 {
		scale = 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	var series []chart.Series
	for i, s := range plot.Series {
		if len(s.X) < 2 || len(s.X) != len(s.Y) {
			r.logger.Debug("series skipped", zap.String("series", s.Name), zap.Int("samples", len(s.X)))
			continue
		}
		ys := make([]float64, len(s.Y))
		for j, y := range s.Y {
			ys[j] = y * scale
			lo, hi = math.Min(lo, ys[j]), math.Max(hi, ys[j])
		}
		series = append(series, chart.ContinuousSeries{Name: s.Name, XValues: s.X, YValues: ys, Style: curveStyle(i)})
	}
	if len(series) == 0 {
		return fmt.Errorf("%w: nothing to plot", apperrors.ErrInvalidInput)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	var labels []chart.Value2
	for _, m := range plot.Markers {
		series = append(series, chart.ContinuousSeries{
			Name:    m.Label,
			XValues: []float64{m.X, m.X},
			YValues: []float64{lo, hi},
			Style:   markerStyle(),
		})
		labels = append(labels, chart.Value2{XValue: m.X, YValue: hi, Label: m.Label})
	}
	if len(labels) > 0 {
		series = append(series, chart.AnnotationSeries{Annotations: labels})
	}

	ch := chart.Chart{
		Title:      plot.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: plot.XLabel},
		YAxis:      chart.YAxis{Name: plot.YLabel},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
