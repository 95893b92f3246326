// Package games handles free-play score submissions and the global
// leaderboard.
package games

import (
	"context"
	"errors"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/services/users"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

const defaultLeaderboardLimit = 10

// Service records games and serves the leaderboard.
type Service struct {
	store storage.GameStore
	users *users.Service
	// profiles backs the username join on leaderboard entries.
	profiles storage.UserStore
	log      *logger.Logger

	now func() time.Time
}

// New constructs a game service.
func New(store storage.GameStore, userSvc *users.Service, profiles storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("games")
	}
	return &Service{
		store:    store,
		users:    userSvc,
		profiles: profiles,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitResult is the outcome of one recorded game.
type SubmitResult struct {
	Rank      int
	Streak    int
	NFTEarned string
}

// Submit records a free-play game, folds it into the wallet's profile, and
// ranks it against every completed game in the mode.
func (s *Service) Submit(ctx context.Context, g game.Game) (SubmitResult, error) {
	if _, ok := puzzle.ParseMode(string(g.GameMode)); !ok {
		return SubmitResult{}, apperrors.Validation("invalid gameMode")
	}
	switch g.Difficulty {
	case puzzle.DifficultyEasy, puzzle.DifficultyMedium, puzzle.DifficultyHard:
	default:
		return SubmitResult{}, apperrors.Validation("invalid difficulty")
	}
	if g.TimeTaken <= 0 || g.Score < 0 || g.HintsUsed < 0 {
		return SubmitResult{}, apperrors.Validation("invalid game data")
	}

	now := s.now()
	g.PlayedAt = now
	recorded, err := s.store.CreateGame(ctx, g)
	if err != nil {
		return SubmitResult{}, apperrors.Internal("failed to record game", err)
	}

	outcome, err := s.users.ApplyGameResult(ctx, recorded, now)
	if err != nil {
		return SubmitResult{}, err
	}

	better, err := s.store.CountBetterGames(ctx, recorded.GameMode, recorded.Score, recorded.TimeTaken)
	if err != nil {
		return SubmitResult{}, apperrors.Internal("failed to compute rank", err)
	}
	// The freshly recorded game beats itself on neither clause, but earlier
	// identical scores with lower times do count, matching the ordering the
	// leaderboard shows.
	rank := better + 1

	s.log.WithFields(map[string]interface{}{
		"wallet": recorded.Wallet,
		"mode":   recorded.GameMode,
		"rank":   rank,
	}).Info("game recorded")

	return SubmitResult{Rank: rank, Streak: outcome.Streak, NFTEarned: outcome.NFTEarned}, nil
}

// Entry is one leaderboard row.
type Entry struct {
	Rank        int
	Wallet      string
	Username    string
	Score       int
	TimeTaken   int
	GameMode    puzzle.GameMode
	Difficulty  puzzle.Difficulty
	CompletedAt time.Time
}

// Leaderboard returns the ranked completed games for a mode plus the total
// number of completed games behind the page.
func (s *Service) Leaderboard(ctx context.Context, mode puzzle.GameMode, limit, offset int) ([]Entry, int, error) {
	if _, ok := puzzle.ParseMode(string(mode)); !ok {
		return nil, 0, apperrors.Validation("invalid gameMode")
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if offset < 0 {
		offset = 0
	}

	listed, err := s.store.ListCompletedGames(ctx, mode, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to list games", err)
	}
	total, err := s.store.CountCompletedGames(ctx, mode)
	if err != nil {
		return nil, 0, apperrors.Internal("failed to count games", err)
	}

	entries := make([]Entry, 0, len(listed))
	for i, g := range listed {
		entry := Entry{
			Rank:        offset + i + 1,
			Wallet:      g.Wallet,
			Score:       g.Score,
			TimeTaken:   g.TimeTaken,
			GameMode:    g.GameMode,
			Difficulty:  g.Difficulty,
			CompletedAt: g.PlayedAt,
		}
		profile, err := s.profiles.GetUser(ctx, g.Wallet)
		if err == nil {
			entry.Username = profile.Username
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, 0, apperrors.Internal("failed to load user", err)
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}
