package puzzles

import (
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
)

// Placeholder daily content until a generator service is plugged in. The
// sudoku pair is a known-valid board; the crossword ships clue placements
// without cell content.
var sudokuGrid = [][]int{
	{5, 3, 0, 0, 7, 0, 0, 0, 0},
	{6, 0, 0, 1, 9, 5, 0, 0, 0},
	{0, 9, 8, 0, 0, 0, 0, 6, 0},
	{8, 0, 0, 0, 6, 0, 0, 0, 3},
	{4, 0, 0, 8, 0, 3, 0, 0, 1},
	{7, 0, 0, 0, 2, 0, 0, 0, 6},
	{0, 6, 0, 0, 0, 0, 2, 8, 0},
	{0, 0, 0, 4, 1, 9, 0, 0, 5},
	{0, 0, 0, 0, 8, 0, 0, 7, 9},
}

var sudokuSolution = [][]int{
	{5, 3, 4, 6, 7, 8, 9, 1, 2},
	{6, 7, 2, 1, 9, 5, 3, 4, 8},
	{1, 9, 8, 3, 4, 2, 5, 6, 7},
	{8, 5, 9, 7, 6, 1, 4, 2, 3},
	{4, 2, 6, 8, 5, 3, 7, 9, 1},
	{7, 1, 3, 9, 2, 4, 8, 5, 6},
	{9, 6, 1, 5, 3, 7, 2, 8, 4},
	{2, 8, 7, 4, 1, 9, 6, 3, 5},
	{3, 4, 5, 2, 8, 6, 1, 7, 9},
}

var crosswordClues = puzzle.ClueSet{
	Across: []puzzle.Clue{
		{Number: 1, Text: "Sample clue 1", StartRow: 0, StartCol: 0, Length: 5},
		{Number: 2, Text: "Sample clue 2", StartRow: 1, StartCol: 0, Length: 4},
	},
	Down: []puzzle.Clue{
		{Number: 1, Text: "Sample down clue", StartRow: 0, StartCol: 0, Length: 3},
	},
}

// seedDaily builds the puzzle record for a mode and UTC day. The record
// expires exactly one day after its date.
func seedDaily(mode puzzle.GameMode, day time.Time) puzzle.Puzzle {
	p := puzzle.Puzzle{
		ID:         puzzle.DailyID(mode, day),
		GameMode:   mode,
		Difficulty: puzzle.DifficultyMedium,
		Date:       day,
		ExpiresAt:  day.AddDate(0, 0, 1),
	}
	switch mode {
	case puzzle.ModeSudoku:
		p.Grid = cloneGrid(sudokuGrid)
		p.Solution = cloneGrid(sudokuSolution)
	case puzzle.ModeCrossword:
		p.Grid = map[string]interface{}{}
		p.Solution = map[string]interface{}{}
		clues := crosswordClues
		p.Clues = &clues
		p.Theme = "Sample Theme"
	}
	return p
}

func cloneGrid(grid [][]int) [][]int {
	out := make([][]int, len(grid))
	for i, row := range grid {
		out[i] = append([]int(nil), row...)
	}
	return out
}
