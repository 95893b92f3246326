// Package puzzles serves the daily puzzle for each game mode, creating the
// record lazily on first request.
package puzzles

import (
	"context"
	"errors"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

// Service manages daily puzzle records.
type Service struct {
	store storage.PuzzleStore
	log   *logger.Logger
}

// New constructs a puzzle service.
func New(store storage.PuzzleStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("puzzles")
	}
	return &Service{store: store, log: log}
}

// GetOrCreateDaily returns the puzzle for the mode and calendar date,
// creating it on first request. Concurrent first requests converge on one
// stored record.
func (s *Service) GetOrCreateDaily(ctx context.Context, mode puzzle.GameMode, date time.Time) (puzzle.Puzzle, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	id := puzzle.DailyID(mode, day)

	p, err := s.store.GetPuzzle(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return puzzle.Puzzle{}, apperrors.Internal("failed to load puzzle", err)
	}

	created, err := s.store.CreatePuzzle(ctx, seedDaily(mode, day))
	if err != nil {
		// Lost a creation race; the stored record wins.
		if p, getErr := s.store.GetPuzzle(ctx, id); getErr == nil {
			return p, nil
		}
		return puzzle.Puzzle{}, apperrors.Internal("failed to create puzzle", err)
	}

	s.log.WithField("puzzle_id", created.ID).Info("daily puzzle created")
	return created, nil
}

// Get returns a puzzle by id. Unknown ids map to an invalid puzzle error.
func (s *Service) Get(ctx context.Context, id string) (puzzle.Puzzle, error) {
	p, err := s.store.GetPuzzle(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return puzzle.Puzzle{}, apperrors.InvalidPuzzle("puzzle not found")
	}
	if err != nil {
		return puzzle.Puzzle{}, apperrors.Internal("failed to load puzzle", err)
	}
	return p, nil
}

// Public strips the solution from a puzzle before it crosses the HTTP
// boundary.
func Public(p puzzle.Puzzle) puzzle.Puzzle {
	p.Solution = nil
	return p
}
