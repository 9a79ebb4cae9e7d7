package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"peaklab/internal/modules/session/domain"
	sessionout "peaklab/internal/modules/session/port/out"
	"peaklab/internal/platform/clock"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

type Outcome int

const (
	Saved Outcome = iota
	NothingToSave
)

type SaveResult struct {
	Outcome      Outcome
	Path         string
	StaleRemoved bool
	Removed      []string
}

type SessionService struct {
	clock  clock.Clock
	layout domain.Layout
	store  sessionout.SessionStore
	index  sessionout.SessionIndex
	logger *zap.Logger
}

func NewSessionService(clock clock.Clock, layout domain.Layout, store sessionout.SessionStore, index sessionout.SessionIndex, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{clock: clock, layout: layout, store: store, index: index, logger: logger}
}

// Save writes the session when it is worth keeping. Otherwise nothing is
// written; a previous file for a session without peaks is removed together
// with the directories that removal empties.
func (s *SessionService) Save(ctx context.Context, session domain.Session) (SaveResult, error) {
	if session.SourcePath == "" {
		return SaveResult{}, fmt.Errorf("%w: source path is required", apperrors.ErrInvalidInput)
	}
	dest, err := s.layout.SavePath(session.SourcePath, session.Kind, session.Kind.MultiScan() && len(session.Scans) > 1)
	if err != nil {
		return SaveResult{}, err
	}
	if session.Worth() {
		if err := s.store.Save(ctx, dest, session); err != nil {
			return SaveResult{}, err
		}
		s.project(ctx, dest, session)
		s.logger.Info("session saved", zap.String("path", dest), zap.Int("peaks", session.Resolved()))
		return SaveResult{Outcome: Saved, Path: dest}, nil
	}

	result := SaveResult{Outcome: NothingToSave, Path: dest}
	exists, err := s.store.Exists(ctx, dest)
	if err != nil {
		return SaveResult{}, err
	}
	if !exists || len(session.Peaks) > 0 {
		return result, nil
	}
	removed, gone := s.store.Remove(ctx, dest, s.layout.DomainRoot(session.Kind))
	if !gone {
		return result, nil
	}
	result.Removed = removed
	result.StaleRemoved = true
	if s.index != nil {
		if err := s.index.Delete(ctx, dest); err != nil {
			s.logger.Warn("drop session from index failed", zap.String("path", dest), zap.Error(err))
		}
	}
	s.logger.Info("stale session removed", zap.String("path", dest), zap.Int("removed", len(result.Removed)))
	return result, nil
}

// Load reads a saved session. Its kind comes from where it is stored.
func (s *SessionService) Load(ctx context.Context, path string) (domain.Session, error) {
	k, err := s.layout.KindOf(path)
	if err != nil {
		return domain.Session{}, err
	}
	session, err := s.store.Load(ctx, path)
	if err != nil {
		return domain.Session{}, err
	}
	session.Kind = k
	return session, nil
}

type ReindexResult struct {
	Sessions int
	Peaks    int
	Skipped  []string
}

// Reindex rebuilds the index from the saved trees. Unreadable session
// files are logged and skipped.
func (s *SessionService) Reindex(ctx context.Context) (ReindexResult, error) {
	if s.index == nil {
		return ReindexResult{}, errors.New("session index is not configured")
	}
	if err := s.index.Reset(ctx); err != nil {
		return ReindexResult{}, err
	}
	var result ReindexResult
	for _, k := range kind.All() {
		paths, err := s.store.List(ctx, s.layout.DomainRoot(k))
		if err != nil {
			return ReindexResult{}, err
		}
		for _, path := range paths {
			session, err := s.store.Load(ctx, path)
			if err != nil {
				s.logger.Warn("skip unreadable session", zap.String("path", path), zap.Error(err))
				result.Skipped = append(result.Skipped, path)
				continue
			}
			session.Kind = k
			if err := s.index.Upsert(ctx, path, session, s.clock.Now()); err != nil {
				return ReindexResult{}, err
			}
			result.Sessions++
			result.Peaks += session.Resolved()
		}
	}
	return result, nil
}

func (s *SessionService) Peaks(ctx context.Context, k string) ([]domain.IndexedPeak, error) {
	if s.index == nil {
		return nil, errors.New("session index is not configured")
	}
	if k != "" {
		parsed, err := kind.Parse(k)
		if err != nil {
			return nil, err
		}
		k = parsed.String()
	}
	return s.index.Peaks(ctx, k)
}

func (s *SessionService) project(ctx context.Context, path string, session domain.Session) {
	if s.index == nil {
		return
	}
	if err := s.index.Upsert(ctx, path, session, s.clock.Now()); err != nil {
		s.logger.Warn("index session failed", zap.String("path", path), zap.Error(err))
	}
}
