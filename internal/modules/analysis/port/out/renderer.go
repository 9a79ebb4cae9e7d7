package out

import (
	"context"
	"io"

	"peaklab/internal/modules/analysis/domain"
)

type PlotRenderer interface {
	Render(ctx context.Context, plot domain.Plot, w io.Writer) error
}
