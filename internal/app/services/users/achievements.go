package users

import "github.com/gridchain/puzzle_layer/internal/app/domain/user"

// Achievement labels, in award order.
const (
	AchievementWeekStreak  = "7-Day Streak"
	AchievementMonthStreak = "30-Day Streak"
	AchievementCenturyClub = "Century Club"

	// StreakMasterNFT is reported on free-play results once the streak
	// reaches ten.
	StreakMasterNFT = "StreakMaster"
)

const (
	weekStreakFloor   = 7
	monthStreakFloor  = 30
	centuryClubFloor  = 100
	streakMasterFloor = 10
)

var achievementRules = []struct {
	label     string
	qualifies func(user.Profile) bool
}{
	{AchievementWeekStreak, func(p user.Profile) bool { return p.CurrentStreak >= weekStreakFloor }},
	{AchievementMonthStreak, func(p user.Profile) bool { return p.CurrentStreak >= monthStreakFloor }},
	{AchievementCenturyClub, func(p user.Profile) bool { return p.TotalCompletions >= centuryClubFloor }},
}

// qualifyingAchievements returns every label the profile currently satisfies.
func qualifyingAchievements(p user.Profile) []string {
	var labels []string
	for _, rule := range achievementRules {
		if rule.qualifies(p) {
			labels = append(labels, rule.label)
		}
	}
	return labels
}

// mergeAchievements unions new labels into the existing list, preserving
// order and dropping duplicates.
func mergeAchievements(existing, earned []string) []string {
	merged := append([]string(nil), existing...)
	seen := make(map[string]bool, len(merged))
	for _, label := range merged {
		seen[label] = true
	}
	for _, label := range earned {
		if !seen[label] {
			merged = append(merged, label)
			seen[label] = true
		}
	}
	return merged
}
