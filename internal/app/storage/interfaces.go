package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/nft"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/domain/submission"
	"github.com/gridchain/puzzle_layer/internal/app/domain/user"
)

// ErrNotFound is wrapped by stores when a record does not exist. Callers
// check it with errors.Is to distinguish a miss from a store fault.
var ErrNotFound = errors.New("not found")

// PuzzleStore persists daily puzzle records.
type PuzzleStore interface {
	CreatePuzzle(ctx context.Context, p puzzle.Puzzle) (puzzle.Puzzle, error)
	GetPuzzle(ctx context.Context, id string) (puzzle.Puzzle, error)
}

// SubmissionStore persists verification attempts and answers the quota and
// rank queries the verification flow needs. Submissions are append-only.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error)
	ListSubmissions(ctx context.Context, puzzleID, wallet string) ([]submission.Submission, error)

	// CountSubmissionsSince counts a wallet's attempts, correct or not,
	// received at or after the given instant.
	CountSubmissionsSince(ctx context.Context, wallet string, since time.Time) (int, error)

	// HasCorrectSubmission reports whether the wallet already solved the
	// puzzle.
	HasCorrectSubmission(ctx context.Context, puzzleID, wallet string) (bool, error)

	// CountBetterAttempts counts correct submissions for the puzzle that
	// beat the given one: lower time taken, or equal time received earlier.
	CountBetterAttempts(ctx context.Context, puzzleID string, timeTaken int, submittedAt time.Time) (int, error)
}

// GameStore persists free-play score events.
type GameStore interface {
	CreateGame(ctx context.Context, g game.Game) (game.Game, error)

	// CountBetterGames counts completed games in the mode with a higher
	// score, or an equal score and a lower time taken.
	CountBetterGames(ctx context.Context, mode puzzle.GameMode, score, timeTaken int) (int, error)

	// ListCompletedGames returns completed games in the mode ordered by
	// score descending then time taken ascending.
	ListCompletedGames(ctx context.Context, mode puzzle.GameMode, limit, offset int) ([]game.Game, error)
	CountCompletedGames(ctx context.Context, mode puzzle.GameMode) (int, error)
}

// SessionStore persists resumable progress snapshots.
type SessionStore interface {
	// UpsertSession replaces any snapshot for (wallet, game mode, puzzle
	// id), keeping the original session id and creation time.
	UpsertSession(ctx context.Context, s game.Session) (game.Session, error)
	GetSession(ctx context.Context, id string) (game.Session, error)
}

// UserStore persists per-wallet profiles.
type UserStore interface {
	GetUser(ctx context.Context, wallet string) (user.Profile, error)
	UpsertUser(ctx context.Context, p user.Profile) (user.Profile, error)
}

// BadgeStore persists simulated NFT badge mints.
type BadgeStore interface {
	CreateBadge(ctx context.Context, b nft.Badge) (nft.Badge, error)
	ListBadges(ctx context.Context, wallet string) ([]nft.Badge, error)
}
