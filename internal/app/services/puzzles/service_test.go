package puzzles

import (
	"context"
	"testing"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/storage/memory"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
)

func TestGetOrCreateDailyIsIdempotent(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	date := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	first, err := svc.GetOrCreateDaily(ctx, puzzle.ModeSudoku, date)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if first.ID != "daily-sudoku-2025-03-14" {
		t.Fatalf("unexpected id %s", first.ID)
	}
	if !first.ExpiresAt.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected expiry %v", first.ExpiresAt)
	}

	// A later request on the same day returns the same record.
	second, err := svc.GetOrCreateDaily(ctx, puzzle.ModeSudoku, date.Add(5*time.Hour))
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same record, got %s and %s", first.ID, second.ID)
	}
}

func TestGetOrCreateDailyCrosswordShape(t *testing.T) {
	svc := New(memory.New(), nil)

	p, err := svc.GetOrCreateDaily(context.Background(), puzzle.ModeCrossword, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if p.Clues == nil || len(p.Clues.Across) != 2 || len(p.Clues.Down) != 1 {
		t.Fatalf("unexpected clue set: %+v", p.Clues)
	}
	if p.Theme != "Sample Theme" {
		t.Fatalf("unexpected theme %q", p.Theme)
	}
}

func TestGetUnknownPuzzle(t *testing.T) {
	svc := New(memory.New(), nil)

	_, err := svc.Get(context.Background(), "daily-sudoku-1999-01-01")
	if !apperrors.IsCode(err, apperrors.CodeInvalidPuzzle) {
		t.Fatalf("expected INVALID_PUZZLE, got %v", err)
	}
}

func TestPublicStripsSolution(t *testing.T) {
	p := seedDaily(puzzle.ModeSudoku, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	if p.Solution == nil {
		t.Fatalf("seed should carry a solution")
	}
	if Public(p).Solution != nil {
		t.Fatalf("public view leaked the solution")
	}
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name      string
		expected  interface{}
		submitted interface{}
		want      bool
	}{
		{
			name:      "matching grids",
			expected:  [][]int{{1, 2}, {3, 4}},
			submitted: [][]int{{1, 2}, {3, 4}},
			want:      true,
		},
		{
			name:      "json decoded floats match stored ints",
			expected:  [][]int{{1, 2}, {3, 4}},
			submitted: []interface{}{[]interface{}{1.0, 2.0}, []interface{}{3.0, 4.0}},
			want:      true,
		},
		{
			name:      "single wrong cell",
			expected:  [][]int{{1, 2}, {3, 4}},
			submitted: []interface{}{[]interface{}{1.0, 2.0}, []interface{}{3.0, 5.0}},
			want:      false,
		},
		{
			name:      "row count mismatch",
			expected:  [][]int{{1, 2}, {3, 4}},
			submitted: [][]int{{1, 2}},
			want:      false,
		},
		{
			name:      "row length mismatch",
			expected:  [][]int{{1, 2}},
			submitted: [][]int{{1, 2, 3}},
			want:      false,
		},
		{
			name:      "non sequence solution fails closed",
			expected:  map[string]interface{}{},
			submitted: map[string]interface{}{},
			want:      false,
		},
		{
			name:      "nil submission",
			expected:  [][]int{{1}},
			submitted: nil,
			want:      false,
		},
		{
			name:      "scalar against row",
			expected:  []interface{}{[]interface{}{1.0}, 2.0},
			submitted: []interface{}{1.0, 2.0},
			want:      false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Verify(tc.expected, tc.submitted); got != tc.want {
				t.Fatalf("Verify = %v, want %v", got, tc.want)
			}
		})
	}
}
