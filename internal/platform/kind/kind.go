package kind

import (
	"fmt"
	"strings"

	apperrors "peaklab/internal/platform/errors"
)

// Kind names a raw-data domain. The value doubles as the directory name
// under both the data and saved roots.
type Kind string

const (
	Raman Kind = "raman"
	Nova  Kind = "nova"
)

func All() []Kind {
	return []Kind{Raman, Nova}
}

func Parse(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case Raman:
		return Raman, nil
	case Nova:
		return Nova, nil
	default:
		return "", fmt.Errorf("%w: unknown domain %q", apperrors.ErrInvalidInput, value)
	}
}

// MultiScan reports whether datasets of this kind carry numbered scans.
func (k Kind) MultiScan() bool {
	return k == Nova
}

func (k Kind) String() string {
	return string(k)
}
