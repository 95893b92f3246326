package users

import "time"

// advanceDailyStreak applies the daily challenge streak policy. A second
// completion on the same UTC day leaves the streak alone; a completion on
// the following day extends it; anything later starts over at one.
func advanceDailyStreak(current int, lastCompleted, now time.Time) int {
	if !lastCompleted.IsZero() && sameUTCDay(lastCompleted, now) {
		return current
	}
	if !lastCompleted.IsZero() && isConsecutiveDay(lastCompleted, now) {
		return current + 1
	}
	return 1
}

// advanceFreePlayStreak applies the looser free-play policy: any game played
// within 24 hours of the previous one extends the streak, completed or not.
// After a gap the streak restarts at one only when the game was completed.
func advanceFreePlayStreak(current int, lastPlayed, now time.Time, completed bool) int {
	dayAgo := now.Add(-24 * time.Hour)
	if !lastPlayed.IsZero() && !lastPlayed.Before(dayAgo) && lastPlayed.Before(now) {
		return current + 1
	}
	if lastPlayed.IsZero() || lastPlayed.Before(dayAgo) {
		if completed {
			return 1
		}
		return 0
	}
	return current
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func isConsecutiveDay(last, now time.Time) bool {
	diff := now.Sub(last)
	return diff >= 24*time.Hour && diff < 48*time.Hour
}
