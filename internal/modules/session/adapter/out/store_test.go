package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	sessionout "peaklab/internal/modules/session/adapter/out"
	"peaklab/internal/modules/session/domain"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

func sampleSession() domain.Session {
	return domain.Session{
		SourcePath: "/ws/data/raman/a.txt",
		Kind:       kind.Raman,
		Peaks: []domain.Peak{
			{Bound1: 10, Bound2: 40, Value: 520.25, Available: true},
			{Bound1: 50, Bound2: 90},
			{Bound1: 5, Bound2: domain.Unset},
		},
	}
}

func TestFileSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := sessionout.NewFileSessionStore([]string{".txt"}, nil)
	path := filepath.Join(t.TempDir(), "saved_data", "raman", "day", "a.txt")
	if err := store.Save(context.Background(), path, sampleSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	ok, err := store.Exists(context.Background(), path)
	if err != nil || !ok {
		t.Fatalf("expected file to exist, got %v %v", ok, err)
	}
	loaded, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Peaks) != 2 || loaded.Peaks[0].Value != 520.25 || loaded.Peaks[1].Available {
		t.Fatalf("unexpected peaks %+v", loaded.Peaks)
	}
	if _, err := store.Load(context.Background(), path+".missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFileSessionStoreRemovePrunesUpToRoot(t *testing.T) {
	t.Parallel()
	store := sessionout.NewFileSessionStore([]string{".txt"}, nil)
	root := filepath.Join(t.TempDir(), "saved_data", "raman")
	path := filepath.Join(root, "2024", "june", "a.txt")
	if err := store.Save(context.Background(), path, sampleSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	removed, gone := store.Remove(context.Background(), path, root)
	if !gone || len(removed) != 3 {
		t.Fatalf("expected file and two directories removed, got %v", removed)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("domain root must stay: %v", err)
	}
	if again, gone := store.Remove(context.Background(), path, root); !gone || len(again) != 0 {
		t.Fatalf("removing twice must be a no-op, got %v %v", again, gone)
	}
}

func TestFileSessionStoreRemoveReportsFileThatStays(t *testing.T) {
	t.Parallel()
	store := sessionout.NewFileSessionStore([]string{".txt"}, nil)
	root := filepath.Join(t.TempDir(), "saved_data", "raman")
	path := filepath.Join(root, "2024", "a.txt")
	if err := os.MkdirAll(filepath.Join(path, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	removed, gone := store.Remove(context.Background(), path, root)
	if gone || len(removed) != 0 {
		t.Fatalf("expected nothing removed, got %v %v", removed, gone)
	}
	if _, err := os.Stat(filepath.Join(root, "2024")); err != nil {
		t.Fatalf("parent must stay: %v", err)
	}
}

func TestFileSessionStoreListFiltersExtensions(t *testing.T) {
	t.Parallel()
	store := sessionout.NewFileSessionStore([]string{".txt"}, nil)
	root := t.TempDir()
	for _, name := range []string{"b/x.txt", "a.txt", "c.md"} {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("filepath;x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, err := store.List(context.Background(), root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0] != filepath.Join(root, "a.txt") {
		t.Fatalf("unexpected listing %v", got)
	}
	missing, err := store.List(context.Background(), filepath.Join(root, "nope"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing root must list nothing, got %v %v", missing, err)
	}
}

func TestSQLiteSessionIndexLifecycle(t *testing.T) {
	t.Parallel()
	index, err := sessionout.NewSQLiteSessionIndex(filepath.Join(t.TempDir(), ".peaklab", "peaklab.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer index.Close()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	nova := domain.Session{SourcePath: "/ws/data/nova/cv.txt", Kind: kind.Nova, Scans: []int{1, 2, 3}}
	if err := index.Upsert(ctx, "/ws/saved_data/raman/a.txt", sampleSession(), now); err != nil {
		t.Fatalf("upsert raman: %v", err)
	}
	if err := index.Upsert(ctx, "/ws/saved_data/nova/cv_CVs.txt", nova, now); err != nil {
		t.Fatalf("upsert nova: %v", err)
	}
	rows, err := index.Peaks(ctx, "")
	if err != nil {
		t.Fatalf("peaks: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected the two complete raman peaks, got %+v", rows)
	}
	if !rows[0].Available || rows[0].Value != 520.25 || rows[1].Available || rows[1].Ordinal != 2 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if !rows[0].UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timestamp %v", rows[0].UpdatedAt)
	}

	if err := index.Upsert(ctx, "/ws/saved_data/raman/a.txt", domain.Session{Kind: kind.Raman, Peaks: []domain.Peak{{Bound1: 1, Bound2: 2, Value: 3, Available: true}}}, now); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	rows, err = index.Peaks(ctx, "raman")
	if err != nil {
		t.Fatalf("peaks: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != 3 {
		t.Fatalf("upsert must replace peaks, got %+v", rows)
	}
	if err := index.Delete(ctx, "/ws/saved_data/raman/a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows, _ := index.Peaks(ctx, "raman"); len(rows) != 0 {
		t.Fatalf("expected no rows after delete, got %+v", rows)
	}
	if err := index.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
}

func TestXLSXPeakExporterWritesSheet(t *testing.T) {
	t.Parallel()
	dest := filepath.Join(t.TempDir(), "out", "peaks.xlsx")
	rows := []domain.IndexedPeak{
		{SessionPath: "s1.txt", SourcePath: "a.txt", Kind: "raman", Ordinal: 1, Bound1: 1, Bound2: 9, Value: 520.5, Available: true},
		{SessionPath: "s1.txt", SourcePath: "a.txt", Kind: "raman", Ordinal: 2, Bound1: 10, Bound2: 19},
	}
	if err := sessionout.NewXLSXPeakExporter().Export(context.Background(), dest, rows); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenFile(dest)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	got, err := f.GetRows(sessionout.PeakSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(got) != 3 || got[0][0] != "Session" || got[1][7] != "520.5" || got[2][7] != "N/A" {
		t.Fatalf("unexpected sheet %v", got)
	}
}
