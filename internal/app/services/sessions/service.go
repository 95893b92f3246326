// Package sessions stores resumable progress snapshots, one per
// (wallet, game mode, puzzle).
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/domain/user"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

// sessionTTL is the rolling expiry window applied on every save.
const sessionTTL = 7 * 24 * time.Hour

// Service saves and loads in-progress games.
type Service struct {
	store storage.SessionStore
	log   *logger.Logger

	now func() time.Time
}

// New constructs a session service.
func New(store storage.SessionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("sessions")
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Save upserts the wallet's snapshot for a mode and puzzle. Saving again
// replaces the snapshot, keeps the session id, and pushes the expiry out by
// another week.
func (s *Service) Save(ctx context.Context, wallet string, mode puzzle.GameMode, puzzleID string, gridState interface{}, elapsedTime, hintsUsed int) (game.Session, error) {
	if _, ok := puzzle.ParseMode(string(mode)); !ok {
		return game.Session{}, apperrors.Validation("invalid gameMode")
	}
	if puzzleID == "" {
		return game.Session{}, apperrors.Validation("puzzleId is required")
	}
	if elapsedTime < 0 || hintsUsed < 0 {
		return game.Session{}, apperrors.Validation("elapsedTime and hintsUsed must not be negative")
	}

	sess, err := s.store.UpsertSession(ctx, game.Session{
		Wallet:      user.NormalizeWallet(wallet),
		GameMode:    mode,
		PuzzleID:    puzzleID,
		GridState:   gridState,
		ElapsedTime: elapsedTime,
		HintsUsed:   hintsUsed,
		ExpiresAt:   s.now().Add(sessionTTL),
	})
	if err != nil {
		return game.Session{}, apperrors.Internal("failed to save session", err)
	}
	return sess, nil
}

// Load returns a session by id. A missing record and a foreign wallet's
// record are indistinguishable to the caller.
func (s *Service) Load(ctx context.Context, wallet, sessionID string) (game.Session, error) {
	if sessionID == "" {
		return game.Session{}, apperrors.Validation("sessionId is required")
	}

	sess, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return game.Session{}, apperrors.NotFound("session not found")
	}
	if err != nil {
		return game.Session{}, apperrors.Internal("failed to load session", err)
	}
	if sess.Wallet != user.NormalizeWallet(wallet) {
		return game.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}
