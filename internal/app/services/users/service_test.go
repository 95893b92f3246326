package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/storage/memory"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
)

const wallet = "0x1111111111111111111111111111111111111111"

func TestAdvanceDailyStreak(t *testing.T) {
	day := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	// First ever completion starts at one.
	assert.Equal(t, 1, advanceDailyStreak(0, time.Time{}, day))

	// Second completion on the same day leaves the streak alone.
	assert.Equal(t, 3, advanceDailyStreak(3, day, day.Add(4*time.Hour)))

	// Next-day completion extends it.
	assert.Equal(t, 4, advanceDailyStreak(3, day, day.Add(25*time.Hour)))

	// A two-day gap resets to one.
	assert.Equal(t, 1, advanceDailyStreak(3, day, day.Add(72*time.Hour)))
}

func TestAdvanceFreePlayStreak(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	// Played within the previous 24 hours extends, completed or not.
	assert.Equal(t, 3, advanceFreePlayStreak(2, now.Add(-2*time.Hour), now, false))
	assert.Equal(t, 3, advanceFreePlayStreak(2, now.Add(-23*time.Hour), now, true))

	// After a gap, a completed game restarts at one, an abandoned one at zero.
	assert.Equal(t, 1, advanceFreePlayStreak(5, now.Add(-48*time.Hour), now, true))
	assert.Equal(t, 0, advanceFreePlayStreak(5, now.Add(-48*time.Hour), now, false))

	// Never played before.
	assert.Equal(t, 1, advanceFreePlayStreak(0, time.Time{}, now, true))
	assert.Equal(t, 0, advanceFreePlayStreak(0, time.Time{}, now, false))
}

func TestApplyDailyCompletionAwardsAchievements(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var last DailyResult
	for day := 0; day < 7; day++ {
		res, err := svc.ApplyDailyCompletion(ctx, wallet, start.Add(time.Duration(day)*25*time.Hour))
		require.NoError(t, err)
		last = res
	}

	assert.Equal(t, 7, last.Streak)
	assert.Contains(t, last.Rewards, AchievementWeekStreak)

	p, err := svc.Stats(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, 7, p.TotalCompletions)
	assert.Equal(t, 7, p.LongestStreak)
	assert.Contains(t, p.Achievements, AchievementWeekStreak)
	assert.NotContains(t, p.Achievements, AchievementMonthStreak)

	// The label is not duplicated on the next completion.
	_, err = svc.ApplyDailyCompletion(ctx, wallet, start.Add(7*25*time.Hour))
	require.NoError(t, err)
	p, err = svc.Stats(ctx, wallet)
	require.NoError(t, err)
	count := 0
	for _, a := range p.Achievements {
		if a == AchievementWeekStreak {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestApplyDailyCompletionSameDayKeepsStreak(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	morning := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	first, err := svc.ApplyDailyCompletion(ctx, wallet, morning)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Streak)

	evening, err := svc.ApplyDailyCompletion(ctx, wallet, morning.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, evening.Streak)

	p, err := svc.Stats(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalCompletions)
}

func TestApplyGameResultUpdatesStats(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	outcome, err := svc.ApplyGameResult(ctx, game.Game{
		Wallet:    wallet,
		GameMode:  puzzle.ModeSudoku,
		TimeTaken: 300,
		Score:     80,
		Completed: true,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Streak)
	assert.Empty(t, outcome.NFTEarned)

	_, err = svc.ApplyGameResult(ctx, game.Game{
		Wallet:    wallet,
		GameMode:  puzzle.ModeSudoku,
		TimeTaken: 200,
		Score:     120,
		Completed: true,
	}, now.Add(time.Hour))
	require.NoError(t, err)

	p, err := svc.Stats(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalGames)
	assert.Equal(t, 2, p.GamesWon)
	assert.Equal(t, 200, p.BestTimes[puzzle.ModeSudoku])
	assert.InDelta(t, 100.0, p.AverageScore, 0.001)
	assert.Equal(t, 500, p.TotalPlayTime)
}

func TestApplyGameResultStreakMaster(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	var outcome GameOutcome
	var err error
	for i := 0; i < 10; i++ {
		outcome, err = svc.ApplyGameResult(ctx, game.Game{
			Wallet:    wallet,
			GameMode:  puzzle.ModeSudoku,
			TimeTaken: 100,
			Score:     50,
			Completed: true,
		}, now.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	assert.Equal(t, 10, outcome.Streak)
	assert.Equal(t, StreakMasterNFT, outcome.NFTEarned)
}

func TestStatsForUnknownWallet(t *testing.T) {
	svc := New(memory.New(), nil)

	p, err := svc.Stats(context.Background(), "0xABCDEF1234567890abcdef1234567890ABCDEF12")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef1234567890abcdef1234567890abcdef12", p.Wallet)
	assert.Zero(t, p.TotalGames)
	assert.Zero(t, p.CurrentStreak)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	short := "a"
	_, err := svc.UpdateProfile(ctx, wallet, &short, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	badAvatar := "ftp://example.com/a.png"
	_, err = svc.UpdateProfile(ctx, wallet, nil, &badAvatar)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	name := "puzzler"
	avatar := "ipfs://QmHash"
	p, err := svc.UpdateProfile(ctx, wallet, &name, &avatar)
	require.NoError(t, err)
	assert.Equal(t, "puzzler", p.Username)
	assert.Equal(t, "ipfs://QmHash", p.AvatarURL)

	// Nil fields leave existing values alone.
	p, err = svc.UpdateProfile(ctx, wallet, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "puzzler", p.Username)
	assert.Equal(t, "ipfs://QmHash", p.AvatarURL)
}
