// Package submissions runs the daily challenge verification flow: gate,
// verify, record, then fold the outcome into the player's profile.
package submissions

import (
	"context"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/submission"
	"github.com/gridchain/puzzle_layer/internal/app/domain/user"
	"github.com/gridchain/puzzle_layer/internal/app/services/puzzles"
	"github.com/gridchain/puzzle_layer/internal/app/services/users"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

// maxDailyAttempts caps verification attempts per wallet per UTC day,
// counted across all puzzles.
const maxDailyAttempts = 5

// Service verifies daily puzzle submissions.
type Service struct {
	puzzles *puzzles.Service
	store   storage.SubmissionStore
	users   *users.Service
	log     *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New constructs a submission service.
func New(puzzleSvc *puzzles.Service, store storage.SubmissionStore, userSvc *users.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("submissions")
	}
	return &Service{
		puzzles: puzzleSvc,
		store:   store,
		users:   userSvc,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Result is the outcome of a correct submission.
type Result struct {
	Rank      int
	Streak    int
	Rewards   []string
	NFTMinted bool
}

// Attempt runs the full verification flow for one submission. Gates are
// checked in a fixed order before anything is recorded; once past the gates
// the attempt is recorded exactly once, correct or not.
func (s *Service) Attempt(ctx context.Context, wallet, puzzleID string, solution interface{}, timeTaken int, clientTimestamp time.Time) (Result, error) {
	if puzzleID == "" || solution == nil || timeTaken <= 0 {
		return Result{}, apperrors.Validation("puzzleId, solution and a positive timeTaken are required")
	}
	wallet = user.NormalizeWallet(wallet)
	now := s.now()

	p, err := s.puzzles.Get(ctx, puzzleID)
	if err != nil {
		return Result{}, err
	}
	if now.After(p.ExpiresAt) {
		return Result{}, apperrors.PuzzleExpired("puzzle has expired")
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	attempts, err := s.store.CountSubmissionsSince(ctx, wallet, dayStart)
	if err != nil {
		return Result{}, apperrors.Internal("failed to count attempts", err)
	}
	if attempts >= maxDailyAttempts {
		return Result{}, apperrors.RateLimited("daily submission limit reached")
	}

	solved, err := s.store.HasCorrectSubmission(ctx, puzzleID, wallet)
	if err != nil {
		return Result{}, apperrors.Internal("failed to check prior submissions", err)
	}
	if solved {
		return Result{}, apperrors.AlreadyCompleted("puzzle already completed")
	}

	correct := puzzles.Verify(p.Solution, solution)

	recorded, err := s.store.CreateSubmission(ctx, submission.Submission{
		PuzzleID:        puzzleID,
		Wallet:          wallet,
		Solution:        solution,
		TimeTaken:       timeTaken,
		IsCorrect:       correct,
		ClientTimestamp: clientTimestamp,
		SubmittedAt:     now,
	})
	if err != nil {
		return Result{}, apperrors.Internal("failed to record submission", err)
	}

	if !correct {
		s.log.WithFields(map[string]interface{}{
			"wallet":    wallet,
			"puzzle_id": puzzleID,
		}).Info("incorrect submission")
		return Result{}, apperrors.Incorrect("incorrect solution")
	}

	daily, err := s.users.ApplyDailyCompletion(ctx, wallet, now)
	if err != nil {
		return Result{}, err
	}

	better, err := s.store.CountBetterAttempts(ctx, puzzleID, timeTaken, recorded.SubmittedAt)
	if err != nil {
		return Result{}, apperrors.Internal("failed to compute rank", err)
	}

	s.log.WithFields(map[string]interface{}{
		"wallet":    wallet,
		"puzzle_id": puzzleID,
		"rank":      better + 1,
	}).Info("correct submission")

	return Result{
		Rank:    better + 1,
		Streak:  daily.Streak,
		Rewards: daily.Rewards,
	}, nil
}
