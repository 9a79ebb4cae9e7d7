package out

import (
	"context"
	"time"

	"peaklab/internal/modules/session/domain"
)

type SessionStore interface {
	Save(ctx context.Context, path string, session domain.Session) error
	Load(ctx context.Context, path string) (domain.Session, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Remove deletes path and then every ancestor left empty, stopping
	// below stopAt. gone reports whether path is no longer on disk; when it
	// is still there nothing else is touched. Filesystem errors are logged,
	// not returned.
	Remove(ctx context.Context, path, stopAt string) (removed []string, gone bool)
	List(ctx context.Context, root string) ([]string, error)
}

type SessionIndex interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, path string, session domain.Session, updatedAt time.Time) error
	Delete(ctx context.Context, path string) error
	Peaks(ctx context.Context, kind string) ([]domain.IndexedPeak, error)
}

type PeakExporter interface {
	Export(ctx context.Context, dest string, rows []domain.IndexedPeak) error
}
