package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/storage/memory"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
)

func TestSaveTwiceKeepsOneSession(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	first, err := svc.Save(ctx, "0xAAA", puzzle.ModeSudoku, "daily-sudoku-2025-03-14", []int{1, 2}, 30, 0)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if !first.ExpiresAt.Equal(base.Add(7 * 24 * time.Hour)) {
		t.Fatalf("unexpected expiry %v", first.ExpiresAt)
	}

	svc.now = func() time.Time { return base.Add(time.Hour) }
	second, err := svc.Save(ctx, "0xaaa", puzzle.ModeSudoku, "daily-sudoku-2025-03-14", []int{1, 2, 3}, 90, 1)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("session id changed: %s vs %s", first.ID, second.ID)
	}
	if !second.ExpiresAt.After(first.ExpiresAt) {
		t.Fatalf("expiry did not roll forward")
	}

	loaded, err := svc.Load(ctx, "0xAAA", first.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ElapsedTime != 90 || loaded.HintsUsed != 1 {
		t.Fatalf("expected latest snapshot, got %+v", loaded)
	}
}

func TestSaveValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "0xAAA", "checkers", "p1", nil, 0, 0); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for mode, got %v", err)
	}
	if _, err := svc.Save(ctx, "0xAAA", puzzle.ModeSudoku, "", nil, 0, 0); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for puzzle id, got %v", err)
	}
	if _, err := svc.Save(ctx, "0xAAA", puzzle.ModeSudoku, "p1", nil, -1, 0); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for elapsed time, got %v", err)
	}
}

func TestLoadOwnershipIsOpaque(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	sess, err := svc.Save(ctx, "0xAAA", puzzle.ModeSudoku, "daily-sudoku-2025-03-14", nil, 10, 0)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// A foreign wallet sees the same NOT_FOUND as a missing id.
	_, errForeign := svc.Load(ctx, "0xBBB", sess.ID)
	_, errMissing := svc.Load(ctx, "0xAAA", "no-such-session")
	if !apperrors.IsCode(errForeign, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for foreign wallet, got %v", errForeign)
	}
	if !apperrors.IsCode(errMissing, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for missing id, got %v", errMissing)
	}
	if apperrors.GetServiceError(errForeign).Message != apperrors.GetServiceError(errMissing).Message {
		t.Fatalf("ownership mismatch must be indistinguishable from a miss")
	}
}
