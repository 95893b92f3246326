package games

import (
	"context"
	"testing"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/services/users"
	"github.com/gridchain/puzzle_layer/internal/app/storage/memory"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
)

func newService() (*Service, *memory.Store) {
	store := memory.New()
	svc := New(store, users.New(store, nil), store, nil)
	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	return svc, store
}

func sudokuGame(wallet string, score, timeTaken int, completed bool) game.Game {
	return game.Game{
		Wallet:     wallet,
		GameMode:   puzzle.ModeSudoku,
		Difficulty: puzzle.DifficultyMedium,
		TimeTaken:  timeTaken,
		Score:      score,
		Completed:  completed,
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	cases := []game.Game{
		{Wallet: "0xAAA", GameMode: "checkers", Difficulty: puzzle.DifficultyEasy, TimeTaken: 10},
		{Wallet: "0xAAA", GameMode: puzzle.ModeSudoku, Difficulty: "impossible", TimeTaken: 10},
		sudokuGame("0xAAA", 50, 0, true),
		sudokuGame("0xAAA", -1, 10, true),
	}
	for i, g := range cases {
		if _, err := svc.Submit(ctx, g); !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Fatalf("case %d: expected VALIDATION_ERROR, got %v", i, err)
		}
	}
}

func TestSubmitRankOrdering(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	resA, err := svc.Submit(ctx, sudokuGame("0xAAA", 100, 50, true))
	if err != nil {
		t.Fatalf("wallet A: %v", err)
	}
	if resA.Rank != 1 {
		t.Fatalf("first game should rank 1, got %d", resA.Rank)
	}

	resB, err := svc.Submit(ctx, sudokuGame("0xBBB", 100, 40, true))
	if err != nil {
		t.Fatalf("wallet B: %v", err)
	}
	if resB.Rank != 1 {
		t.Fatalf("equal score with faster time should rank 1, got %d", resB.Rank)
	}

	resC, err := svc.Submit(ctx, sudokuGame("0xCCC", 90, 10, true))
	if err != nil {
		t.Fatalf("wallet C: %v", err)
	}
	if resC.Rank != 3 {
		t.Fatalf("lower score should rank 3, got %d", resC.Rank)
	}
}

func TestSubmitIncompleteGameCountsTowardTotals(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, sudokuGame("0xAAA", 10, 30, false)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Abandoned games never appear in leaderboard queries.
	total, err := store.CountCompletedGames(ctx, puzzle.ModeSudoku)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no completed games, got %d", total)
	}

	p, err := store.GetUser(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if p.TotalGames != 1 || p.GamesWon != 0 {
		t.Fatalf("unexpected profile totals: %+v", p)
	}
}

func TestLeaderboardPaginationAndUsernames(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	userSvc := users.New(store, nil)
	name := "speedrunner"
	if _, err := userSvc.UpdateProfile(ctx, "0xBBB", &name, nil); err != nil {
		t.Fatalf("set username: %v", err)
	}

	for _, g := range []game.Game{
		sudokuGame("0xAAA", 100, 50, true),
		sudokuGame("0xBBB", 100, 40, true),
		sudokuGame("0xCCC", 90, 10, true),
	} {
		if _, err := svc.Submit(ctx, g); err != nil {
			t.Fatalf("submit %s: %v", g.Wallet, err)
		}
	}

	entries, total, err := svc.Leaderboard(ctx, puzzle.ModeSudoku, 2, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Wallet != "0xbbb" || entries[0].Rank != 1 || entries[0].Username != "speedrunner" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Wallet != "0xaaa" || entries[1].Rank != 2 || entries[1].Username != "" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}

	page, _, err := svc.Leaderboard(ctx, puzzle.ModeSudoku, 2, 2)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page) != 1 || page[0].Rank != 3 || page[0].Wallet != "0xccc" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}

func TestLeaderboardValidatesMode(t *testing.T) {
	svc, _ := newService()
	if _, _, err := svc.Leaderboard(context.Background(), "checkers", 10, 0); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
