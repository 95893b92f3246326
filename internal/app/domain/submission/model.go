// Package submission defines the append-only verification attempt record.
package submission

import "time"

// Submission records one verification attempt, correct or not. Records are
// never mutated or deleted; quota and rank queries read them as written.
type Submission struct {
	ID              string
	PuzzleID        string
	Wallet          string
	Solution        interface{}
	TimeTaken       int // seconds, client reported
	IsCorrect       bool
	ClientTimestamp time.Time
	SubmittedAt     time.Time // server receipt time, set by the store
}
