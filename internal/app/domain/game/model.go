// Package game defines free-play score events and resumable sessions.
package game

import (
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
)

// Game is one free-play score event. Append-only.
type Game struct {
	ID         string
	Wallet     string
	GameMode   puzzle.GameMode
	Difficulty puzzle.Difficulty
	TimeTaken  int
	Score      int
	Completed  bool
	HintsUsed  int
	PlayedAt   time.Time
}

// Session is a resumable in-progress snapshot, upserted by
// (wallet, game mode, puzzle id). The id stays stable across re-saves.
type Session struct {
	ID          string
	Wallet      string
	GameMode    puzzle.GameMode
	PuzzleID    string
	GridState   interface{}
	ElapsedTime int
	HintsUsed   int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}
