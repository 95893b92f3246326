package badges

import (
	"context"
	"testing"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/storage/memory"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
)

func TestMintAndList(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	res, err := svc.Mint(ctx, "0xAAA", "7-Day Streak", map[string]interface{}{"name": "Week One"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if res.TxHash != FakeTxHash || res.Contract != FakeContractAddress {
		t.Fatalf("unexpected receipt: %+v", res)
	}
	if res.TokenID != at.UnixMilli() {
		t.Fatalf("unexpected token id %d", res.TokenID)
	}

	listed, err := svc.List(ctx, "0xaaa")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 badge, got %d", len(listed))
	}
	if listed[0].AchievementType != "7-Day Streak" {
		t.Fatalf("unexpected achievement %q", listed[0].AchievementType)
	}
	if listed[0].Metadata["name"] != "Week One" {
		t.Fatalf("metadata not persisted: %+v", listed[0].Metadata)
	}
}

func TestMintRequiresAchievement(t *testing.T) {
	svc := New(memory.New(), nil)
	if _, err := svc.Mint(context.Background(), "0xAAA", "", nil); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
