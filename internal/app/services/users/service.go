// Package users maintains per-wallet profiles: lifetime stats, both streak
// policies, and achievement labels.
package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/domain/user"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

// Service manages wallet profiles. Stat updates for a wallet are serialized
// through a per-wallet lock so concurrent submissions cannot lose increments
// on the read-modify-write cycle.
type Service struct {
	store storage.UserStore
	log   *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{
		store: store,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) walletLock(wallet string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[wallet]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[wallet] = lock
	}
	return lock
}

func (s *Service) getOrCreate(ctx context.Context, wallet string, now time.Time) (user.Profile, error) {
	wallet = user.NormalizeWallet(wallet)
	p, err := s.store.GetUser(ctx, wallet)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return user.Profile{}, apperrors.Internal("failed to load user", err)
	}
	return user.Profile{Wallet: wallet, JoinedAt: now}, nil
}

// DailyResult is the profile outcome of a correct daily submission.
type DailyResult struct {
	Streak  int
	Rewards []string
}

// ApplyDailyCompletion advances the daily streak, counts the completion, and
// awards any achievement labels the profile now qualifies for.
func (s *Service) ApplyDailyCompletion(ctx context.Context, wallet string, now time.Time) (DailyResult, error) {
	wallet = user.NormalizeWallet(wallet)
	lock := s.walletLock(wallet)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.getOrCreate(ctx, wallet, now)
	if err != nil {
		return DailyResult{}, err
	}

	p.CurrentStreak = advanceDailyStreak(p.CurrentStreak, p.LastCompleted, now)
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastCompleted = now
	p.TotalCompletions++

	rewards := qualifyingAchievements(p)
	p.Achievements = mergeAchievements(p.Achievements, rewards)

	if _, err := s.store.UpsertUser(ctx, p); err != nil {
		return DailyResult{}, apperrors.Internal("failed to update user", err)
	}

	s.log.WithFields(map[string]interface{}{
		"wallet": wallet,
		"streak": p.CurrentStreak,
	}).Info("daily completion recorded")

	return DailyResult{Streak: p.CurrentStreak, Rewards: rewards}, nil
}

// GameOutcome is the profile outcome of a free-play game submission.
type GameOutcome struct {
	Streak    int
	NFTEarned string
}

// ApplyGameResult folds one free-play game into the profile.
func (s *Service) ApplyGameResult(ctx context.Context, g game.Game, now time.Time) (GameOutcome, error) {
	wallet := user.NormalizeWallet(g.Wallet)
	lock := s.walletLock(wallet)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.getOrCreate(ctx, wallet, now)
	if err != nil {
		return GameOutcome{}, err
	}

	p.TotalGames++
	if g.Completed {
		p.GamesWon++
		if p.BestTimes == nil {
			p.BestTimes = make(map[puzzle.GameMode]int)
		}
		if best, ok := p.BestTimes[g.GameMode]; !ok || g.TimeTaken < best {
			p.BestTimes[g.GameMode] = g.TimeTaken
		}
	}

	p.CurrentStreak = advanceFreePlayStreak(p.CurrentStreak, p.LastPlayed, now, g.Completed)
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.AverageScore = (p.AverageScore*float64(p.TotalGames-1) + float64(g.Score)) / float64(p.TotalGames)
	p.TotalPlayTime += g.TimeTaken
	p.LastPlayed = now

	if _, err := s.store.UpsertUser(ctx, p); err != nil {
		return GameOutcome{}, apperrors.Internal("failed to update user", err)
	}

	outcome := GameOutcome{Streak: p.CurrentStreak}
	if p.CurrentStreak >= streakMasterFloor {
		outcome.NFTEarned = StreakMasterNFT
	}
	return outcome, nil
}

// Stats returns the profile for a wallet. Unknown wallets get a zeroed
// profile without persisting anything.
func (s *Service) Stats(ctx context.Context, wallet string) (user.Profile, error) {
	wallet = user.NormalizeWallet(wallet)
	p, err := s.store.GetUser(ctx, wallet)
	if errors.Is(err, storage.ErrNotFound) {
		return user.Profile{Wallet: wallet}, nil
	}
	if err != nil {
		return user.Profile{}, apperrors.Internal("failed to load user", err)
	}
	return p, nil
}

// UpdateProfile sets the display fields a wallet owner may edit. Nil means
// leave the field alone.
func (s *Service) UpdateProfile(ctx context.Context, wallet string, username, avatarURL *string) (user.Profile, error) {
	if username != nil {
		if n := len(*username); n < 2 || n > 30 {
			return user.Profile{}, apperrors.Validation("username must be between 2 and 30 characters")
		}
	}
	if avatarURL != nil && *avatarURL != "" {
		if !strings.HasPrefix(*avatarURL, "ipfs://") && !strings.HasPrefix(*avatarURL, "http") {
			return user.Profile{}, apperrors.Validation("avatar must be an ipfs:// or http URL")
		}
	}

	wallet = user.NormalizeWallet(wallet)
	lock := s.walletLock(wallet)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.getOrCreate(ctx, wallet, time.Now().UTC())
	if err != nil {
		return user.Profile{}, err
	}
	if username != nil {
		p.Username = *username
	}
	if avatarURL != nil {
		p.AvatarURL = *avatarURL
	}

	updated, err := s.store.UpsertUser(ctx, p)
	if err != nil {
		return user.Profile{}, apperrors.Internal("failed to update profile", err)
	}
	return updated, nil
}
