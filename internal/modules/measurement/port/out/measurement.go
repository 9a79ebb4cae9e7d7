package out

import (
	"context"

	"peaklab/internal/modules/measurement/domain"
	"peaklab/internal/platform/kind"
)

type DatasetReader interface {
	Read(ctx context.Context, path string, k kind.Kind) (domain.Dataset, error)
}
