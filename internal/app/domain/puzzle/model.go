// Package puzzle defines the canonical daily puzzle model. One record exists
// per (game mode, calendar date); the solution field never leaves the
// application boundary.
package puzzle

import (
	"fmt"
	"time"
)

// GameMode identifies a supported puzzle variant.
type GameMode string

const (
	ModeSudoku    GameMode = "sudoku"
	ModeCrossword GameMode = "crossword"
)

// ParseMode validates a raw game mode string.
func ParseMode(raw string) (GameMode, bool) {
	switch GameMode(raw) {
	case ModeSudoku, ModeCrossword:
		return GameMode(raw), true
	}
	return "", false
}

// Difficulty grades a puzzle.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Clue is a single crossword clue with its grid placement.
type Clue struct {
	Number   int
	Text     string
	StartRow int
	StartCol int
	Length   int
}

// ClueSet groups crossword clues by direction.
type ClueSet struct {
	Across []Clue
	Down   []Clue
}

// Puzzle is the authoritative daily puzzle record. Grid and Solution are
// mode-specific JSON values: a [][]int grid for sudoku, a layout object for
// crossword. Clues and Theme are only set for the word mode.
type Puzzle struct {
	ID         string
	GameMode   GameMode
	Difficulty Difficulty
	Date       time.Time
	Grid       interface{}
	Solution   interface{}
	Clues      *ClueSet
	Theme      string
	ExpiresAt  time.Time
}

// DailyID derives the deterministic record id for a mode and date. Repeated
// requests for the same day always address the same record.
func DailyID(mode GameMode, date time.Time) string {
	return fmt.Sprintf("daily-%s-%s", mode, date.UTC().Format("2006-01-02"))
}
