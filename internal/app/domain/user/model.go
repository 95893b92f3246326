// Package user defines per-wallet lifetime stats.
package user

import (
	"strings"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
)

// Profile carries everything the system knows about a wallet. Created on
// first interaction, mutated on every scoring or verification event, never
// deleted.
type Profile struct {
	Wallet           string
	Username         string
	AvatarURL        string
	JoinedAt         time.Time
	TotalGames       int
	GamesWon         int
	BestTimes        map[puzzle.GameMode]int // fastest completed time per mode
	CurrentStreak    int
	LongestStreak    int
	AverageScore     float64
	TotalPlayTime    int
	LastPlayed       time.Time
	LastCompleted    time.Time
	TotalCompletions int
	Achievements     []string
}

// NormalizeWallet lowercases and trims a wallet address. Every store lookup
// and write goes through this.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// HasAchievement reports whether the profile already holds a label.
func (p Profile) HasAchievement(label string) bool {
	for _, a := range p.Achievements {
		if a == label {
			return true
		}
	}
	return false
}
