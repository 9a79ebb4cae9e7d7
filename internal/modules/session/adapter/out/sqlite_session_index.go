package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	scandomain "peaklab/internal/modules/scan/domain"
	"peaklab/internal/modules/session/domain"
	sessionout "peaklab/internal/modules/session/port/out"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type SQLiteSessionIndex struct {
	db *sql.DB
}

func NewSQLiteSessionIndex(dbPath string) (*SQLiteSessionIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLiteSessionIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

var _ sessionout.SessionIndex = (*SQLiteSessionIndex)(nil)

func (s *SQLiteSessionIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  path TEXT PRIMARY KEY,
  source_path TEXT NOT NULL,
  domain TEXT NOT NULL,
  scans TEXT NOT NULL,
  peak_count INTEGER NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS peaks (
  session_path TEXT NOT NULL,
  ordinal INTEGER NOT NULL,
  bound_1 INTEGER NOT NULL,
  bound_2 INTEGER NOT NULL,
  value REAL,
  available INTEGER NOT NULL,
  PRIMARY KEY (session_path, ordinal)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session tables: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM peaks`); err != nil {
		return fmt.Errorf("reset peaks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Upsert(ctx context.Context, path string, session domain.Session, updatedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	const upsertSession = `
INSERT INTO sessions (path, source_path, domain, scans, peak_count, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  source_path=excluded.source_path,
  domain=excluded.domain,
  scans=excluded.scans,
  peak_count=excluded.peak_count,
  updated_at=excluded.updated_at;
`
	if _, err := tx.ExecContext(ctx, upsertSession,
		path,
		session.SourcePath,
		session.Kind.String(),
		scandomain.Encode(session.Scans),
		session.Resolved(),
		updatedAt.Format(timeLayout),
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM peaks WHERE session_path = ?`, path); err != nil {
		return fmt.Errorf("clear peaks: %w", err)
	}
	ordinal := 0
	for _, p := range session.Peaks {
		if !p.Complete() {
			continue
		}
		ordinal++
		var value any
		if p.Available {
			value = p.Value
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO peaks (session_path, ordinal, bound_1, bound_2, value, available) VALUES (?, ?, ?, ?, ?, ?)`,
			path, ordinal, p.Bound1, p.Bound2, value, p.Available,
		); err != nil {
			return fmt.Errorf("insert peak: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *SQLiteSessionIndex) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM peaks WHERE session_path = ?`, path); err != nil {
		return fmt.Errorf("delete peaks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Peaks lists every indexed peak, optionally for one domain, ordered by
// session path and position.
func (s *SQLiteSessionIndex) Peaks(ctx context.Context, kind string) ([]domain.IndexedPeak, error) {
	const query = `
SELECT s.path, s.source_path, s.domain, s.scans, s.updated_at,
       p.ordinal, p.bound_1, p.bound_2, p.value, p.available
FROM peaks p
JOIN sessions s ON s.path = p.session_path
WHERE ? = '' OR s.domain = ?
ORDER BY s.path, p.ordinal;
`
	rows, err := s.db.QueryContext(ctx, query, kind, kind)
	if err != nil {
		return nil, fmt.Errorf("query peaks: %w", err)
	}
	defer rows.Close()

	var out []domain.IndexedPeak
	for rows.Next() {
		var (
			row       domain.IndexedPeak
			updatedAt string
			value     sql.NullFloat64
		)
		if err := rows.Scan(&row.SessionPath, &row.SourcePath, &row.Kind, &row.Scans, &updatedAt,
			&row.Ordinal, &row.Bound1, &row.Bound2, &value, &row.Available); err != nil {
			return nil, fmt.Errorf("scan peak row: %w", err)
		}
		row.Value = value.Float64
		if ts, err := time.Parse(timeLayout, updatedAt); err == nil {
			row.UpdatedAt = ts
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate peaks: %w", err)
	}
	return out, nil
}
