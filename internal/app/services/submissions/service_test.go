package submissions

import (
	"context"
	"testing"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/services/puzzles"
	"github.com/gridchain/puzzle_layer/internal/app/services/users"
	"github.com/gridchain/puzzle_layer/internal/app/storage/memory"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	puzzleSvc := puzzles.New(store, nil)
	userSvc := users.New(store, nil)
	svc := New(puzzleSvc, store, userSvc, nil)

	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := puzzleSvc.GetOrCreateDaily(context.Background(), puzzle.ModeSudoku, now); err != nil {
		t.Fatalf("seed daily puzzle: %v", err)
	}
	return &fixture{svc: svc, store: store, now: now}
}

func (f *fixture) solution(t *testing.T) interface{} {
	t.Helper()
	p, err := f.store.GetPuzzle(context.Background(), "daily-sudoku-2025-03-14")
	if err != nil {
		t.Fatalf("load puzzle: %v", err)
	}
	return p.Solution
}

func TestAttemptCorrectSolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", f.solution(t), 120, f.now)
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if res.Rank != 1 {
		t.Fatalf("expected rank 1, got %d", res.Rank)
	}
	if res.Streak != 1 {
		t.Fatalf("expected streak 1, got %d", res.Streak)
	}
	if res.NFTMinted {
		t.Fatalf("nft minting is not wired into daily completions")
	}

	subs, err := f.store.ListSubmissions(ctx, "daily-sudoku-2025-03-14", "0xaaa")
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(subs) != 1 || !subs[0].IsCorrect {
		t.Fatalf("expected one correct recorded submission, got %+v", subs)
	}
}

func TestAttemptIncorrectSolutionIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wrong := [][]int{{1, 2}, {3, 4}}
	_, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", wrong, 120, f.now)
	if !apperrors.IsCode(err, apperrors.CodeIncorrect) {
		t.Fatalf("expected INCORRECT_SOLUTION, got %v", err)
	}

	subs, err := f.store.ListSubmissions(ctx, "daily-sudoku-2025-03-14", "0xaaa")
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(subs) != 1 || subs[0].IsCorrect {
		t.Fatalf("expected one incorrect recorded submission, got %+v", subs)
	}
}

func TestAttemptGateOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Attempt(ctx, "0xAAA", "", f.solution(t), 120, f.now); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if _, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", f.solution(t), 0, f.now); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for zero time, got %v", err)
	}
	if _, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-1999-01-01", f.solution(t), 120, f.now); !apperrors.IsCode(err, apperrors.CodeInvalidPuzzle) {
		t.Fatalf("expected INVALID_PUZZLE, got %v", err)
	}

	// Nothing was recorded while gates were failing.
	count, err := f.store.CountSubmissionsSince(ctx, "0xaaa", time.Time{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("gated attempts must not be recorded, got %d", count)
	}
}

func TestAttemptExpiredPuzzle(t *testing.T) {
	f := newFixture(t)

	// Jump past the puzzle's expiry.
	f.svc.now = func() time.Time { return f.now.AddDate(0, 0, 2) }

	_, err := f.svc.Attempt(context.Background(), "0xAAA", "daily-sudoku-2025-03-14", f.solution(t), 120, f.now)
	if !apperrors.IsCode(err, apperrors.CodePuzzleExpired) {
		t.Fatalf("expected PUZZLE_EXPIRED, got %v", err)
	}
}

func TestAttemptDailyQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wrong := [][]int{{9}}
	for i := 0; i < 5; i++ {
		if _, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", wrong, 100+i, f.now); !apperrors.IsCode(err, apperrors.CodeIncorrect) {
			t.Fatalf("attempt %d: expected INCORRECT_SOLUTION, got %v", i, err)
		}
	}

	// The sixth attempt of the day is rejected even with the right answer.
	_, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", f.solution(t), 90, f.now)
	if !apperrors.IsCode(err, apperrors.CodeRateLimited) {
		t.Fatalf("expected RATE_LIMITED, got %v", err)
	}

	// Another wallet is unaffected.
	if _, err := f.svc.Attempt(ctx, "0xBBB", "daily-sudoku-2025-03-14", f.solution(t), 90, f.now); err != nil {
		t.Fatalf("other wallet attempt: %v", err)
	}
}

func TestAttemptAlreadyCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", f.solution(t), 120, f.now); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	_, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", f.solution(t), 60, f.now)
	if !apperrors.IsCode(err, apperrors.CodeAlreadyCompleted) {
		t.Fatalf("expected ALREADY_COMPLETED, got %v", err)
	}
}

func TestAttemptRankOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sol := f.solution(t)

	resA, err := f.svc.Attempt(ctx, "0xAAA", "daily-sudoku-2025-03-14", sol, 120, f.now)
	if err != nil {
		t.Fatalf("wallet A: %v", err)
	}
	if resA.Rank != 1 {
		t.Fatalf("first solver should rank 1, got %d", resA.Rank)
	}

	f.svc.now = func() time.Time { return f.now.Add(time.Minute) }
	resB, err := f.svc.Attempt(ctx, "0xBBB", "daily-sudoku-2025-03-14", sol, 90, f.now)
	if err != nil {
		t.Fatalf("wallet B: %v", err)
	}
	if resB.Rank != 1 {
		t.Fatalf("faster solver should rank 1, got %d", resB.Rank)
	}

	// Same time as A but later receipt ranks behind both.
	f.svc.now = func() time.Time { return f.now.Add(2 * time.Minute) }
	resC, err := f.svc.Attempt(ctx, "0xCCC", "daily-sudoku-2025-03-14", sol, 120, f.now)
	if err != nil {
		t.Fatalf("wallet C: %v", err)
	}
	if resC.Rank != 3 {
		t.Fatalf("expected rank 3, got %d", resC.Rank)
	}
}
