package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"peaklab/internal/modules/session/domain"
	"peaklab/internal/modules/session/service"
	"peaklab/internal/platform/clock"
	"peaklab/internal/platform/kind"
)

type stuckStore struct {
	removeCalls int
}

func (s *stuckStore) Save(context.Context, string, domain.Session) error { return nil }

func (s *stuckStore) Load(context.Context, string) (domain.Session, error) {
	return domain.Session{}, nil
}

func (s *stuckStore) Exists(context.Context, string) (bool, error) { return true, nil }

func (s *stuckStore) Remove(context.Context, string, string) ([]string, bool) {
	s.removeCalls++
	return nil, false
}

func (s *stuckStore) List(context.Context, string) ([]string, error) { return nil, nil }

type recordingIndex struct {
	deleted []string
}

func (r *recordingIndex) Reset(context.Context) error { return nil }

func (r *recordingIndex) Upsert(context.Context, string, domain.Session, time.Time) error {
	return nil
}

func (r *recordingIndex) Delete(_ context.Context, path string) error {
	r.deleted = append(r.deleted, path)
	return nil
}

func (r *recordingIndex) Peaks(context.Context, string) ([]domain.IndexedPeak, error) {
	return nil, nil
}

func TestSaveKeepsIndexWhenStaleFileCannotBeRemoved(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	layout := domain.Layout{DataRoot: filepath.Join(ws, "data"), SavedRoot: filepath.Join(ws, "saved_data")}
	store := &stuckStore{}
	index := &recordingIndex{}
	svc := service.NewSessionService(clock.Fixed(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)), layout, store, index, nil)

	res, err := svc.Save(context.Background(), domain.Session{
		SourcePath: filepath.Join(layout.DataRoot, "raman", "s1.txt"),
		Kind:       kind.Raman,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.removeCalls != 1 {
		t.Fatalf("expected one removal attempt, got %d", store.removeCalls)
	}
	if res.Outcome != service.NothingToSave || res.StaleRemoved || len(res.Removed) != 0 {
		t.Fatalf("file still on disk must not be reported removed, got %+v", res)
	}
	if len(index.deleted) != 0 {
		t.Fatalf("index row must stay while the file stays, got %v", index.deleted)
	}
}
