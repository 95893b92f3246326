package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/nft"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/domain/submission"
	"github.com/gridchain/puzzle_layer/internal/app/domain/user"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu            sync.RWMutex
	nextID        int64
	puzzles       map[string]puzzle.Puzzle
	submissions   map[string]submission.Submission
	games         map[string]game.Game
	sessions      map[string]game.Session
	sessionsByKey map[string]string // (wallet|mode|puzzle) -> session id
	users         map[string]user.Profile
	badges        map[string]nft.Badge
}

var _ storage.PuzzleStore = (*Store)(nil)
var _ storage.SubmissionStore = (*Store)(nil)
var _ storage.GameStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.BadgeStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:        1,
		puzzles:       make(map[string]puzzle.Puzzle),
		submissions:   make(map[string]submission.Submission),
		games:         make(map[string]game.Game),
		sessions:      make(map[string]game.Session),
		sessionsByKey: make(map[string]string),
		users:         make(map[string]user.Profile),
		badges:        make(map[string]nft.Badge),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func sessionKey(wallet string, mode puzzle.GameMode, puzzleID string) string {
	return user.NormalizeWallet(wallet) + "|" + string(mode) + "|" + puzzleID
}

// PuzzleStore implementation --------------------------------------------------

func (s *Store) CreatePuzzle(_ context.Context, p puzzle.Puzzle) (puzzle.Puzzle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle id is required")
	}
	if _, exists := s.puzzles[p.ID]; exists {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle %s already exists", p.ID)
	}

	s.puzzles[p.ID] = p
	return clonePuzzle(p), nil
}

func (s *Store) GetPuzzle(_ context.Context, id string) (puzzle.Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.puzzles[id]
	if !ok {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle %s: %w", id, storage.ErrNotFound)
	}
	return clonePuzzle(p), nil
}

// SubmissionStore implementation ----------------------------------------------

func (s *Store) CreateSubmission(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = s.nextIDLocked()
	} else if _, exists := s.submissions[sub.ID]; exists {
		return submission.Submission{}, fmt.Errorf("submission %s already exists", sub.ID)
	}

	sub.Wallet = user.NormalizeWallet(sub.Wallet)
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}

	s.submissions[sub.ID] = sub
	return sub, nil
}

func (s *Store) ListSubmissions(_ context.Context, puzzleID, wallet string) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallet = user.NormalizeWallet(wallet)
	result := make([]submission.Submission, 0)
	for _, sub := range s.submissions {
		if sub.PuzzleID == puzzleID && sub.Wallet == wallet {
			result = append(result, sub)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})
	return result, nil
}

func (s *Store) CountSubmissionsSince(_ context.Context, wallet string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallet = user.NormalizeWallet(wallet)
	count := 0
	for _, sub := range s.submissions {
		if sub.Wallet == wallet && !sub.SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) HasCorrectSubmission(_ context.Context, puzzleID, wallet string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallet = user.NormalizeWallet(wallet)
	for _, sub := range s.submissions {
		if sub.PuzzleID == puzzleID && sub.Wallet == wallet && sub.IsCorrect {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountBetterAttempts(_ context.Context, puzzleID string, timeTaken int, submittedAt time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sub := range s.submissions {
		if sub.PuzzleID != puzzleID || !sub.IsCorrect {
			continue
		}
		if sub.TimeTaken < timeTaken || (sub.TimeTaken == timeTaken && sub.SubmittedAt.Before(submittedAt)) {
			count++
		}
	}
	return count, nil
}

// GameStore implementation ----------------------------------------------------

func (s *Store) CreateGame(_ context.Context, g game.Game) (game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = s.nextIDLocked()
	} else if _, exists := s.games[g.ID]; exists {
		return game.Game{}, fmt.Errorf("game %s already exists", g.ID)
	}

	g.Wallet = user.NormalizeWallet(g.Wallet)
	if g.PlayedAt.IsZero() {
		g.PlayedAt = time.Now().UTC()
	}

	s.games[g.ID] = g
	return g, nil
}

func (s *Store) CountBetterGames(_ context.Context, mode puzzle.GameMode, score, timeTaken int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, g := range s.games {
		if g.GameMode != mode || !g.Completed {
			continue
		}
		if g.Score > score || (g.Score == score && g.TimeTaken < timeTaken) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListCompletedGames(_ context.Context, mode puzzle.GameMode, limit, offset int) ([]game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]game.Game, 0)
	for _, g := range s.games {
		if g.GameMode == mode && g.Completed {
			all = append(all, g)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].TimeTaken != all[j].TimeTaken {
			return all[i].TimeTaken < all[j].TimeTaken
		}
		return all[i].PlayedAt.Before(all[j].PlayedAt)
	})

	if offset >= len(all) {
		return []game.Game{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) CountCompletedGames(_ context.Context, mode puzzle.GameMode) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, g := range s.games {
		if g.GameMode == mode && g.Completed {
			count++
		}
	}
	return count, nil
}

// SessionStore implementation -------------------------------------------------

func (s *Store) UpsertSession(_ context.Context, sess game.Session) (game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.Wallet = user.NormalizeWallet(sess.Wallet)
	key := sessionKey(sess.Wallet, sess.GameMode, sess.PuzzleID)

	if existingID, ok := s.sessionsByKey[key]; ok {
		existing := s.sessions[existingID]
		sess.ID = existing.ID
		sess.CreatedAt = existing.CreatedAt
	} else {
		if sess.ID == "" {
			sess.ID = s.nextIDLocked()
		}
		if sess.CreatedAt.IsZero() {
			sess.CreatedAt = time.Now().UTC()
		}
		s.sessionsByKey[key] = sess.ID
	}

	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) GetSession(_ context.Context, id string) (game.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return game.Session{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return sess, nil
}

// UserStore implementation ----------------------------------------------------

func (s *Store) GetUser(_ context.Context, wallet string) (user.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallet = user.NormalizeWallet(wallet)
	p, ok := s.users[wallet]
	if !ok {
		return user.Profile{}, fmt.Errorf("user %s: %w", wallet, storage.ErrNotFound)
	}
	return cloneProfile(p), nil
}

func (s *Store) UpsertUser(_ context.Context, p user.Profile) (user.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Wallet = user.NormalizeWallet(p.Wallet)
	if p.Wallet == "" {
		return user.Profile{}, fmt.Errorf("user wallet is required")
	}
	if existing, ok := s.users[p.Wallet]; ok {
		p.JoinedAt = existing.JoinedAt
	} else if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}

	stored := cloneProfile(p)
	s.users[p.Wallet] = stored
	return cloneProfile(stored), nil
}

// BadgeStore implementation ---------------------------------------------------

func (s *Store) CreateBadge(_ context.Context, b nft.Badge) (nft.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = s.nextIDLocked()
	} else if _, exists := s.badges[b.ID]; exists {
		return nft.Badge{}, fmt.Errorf("badge %s already exists", b.ID)
	}

	b.Wallet = user.NormalizeWallet(b.Wallet)
	if b.MintedAt.IsZero() {
		b.MintedAt = time.Now().UTC()
	}
	b.Metadata = cloneMetadata(b.Metadata)

	s.badges[b.ID] = b
	return cloneBadge(b), nil
}

func (s *Store) ListBadges(_ context.Context, wallet string) ([]nft.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallet = user.NormalizeWallet(wallet)
	result := make([]nft.Badge, 0)
	for _, b := range s.badges {
		if b.Wallet == wallet {
			result = append(result, cloneBadge(b))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MintedAt.Before(result[j].MintedAt)
	})
	return result, nil
}

// Clone helpers ---------------------------------------------------------------

func clonePuzzle(p puzzle.Puzzle) puzzle.Puzzle {
	if p.Clues != nil {
		clues := puzzle.ClueSet{
			Across: append([]puzzle.Clue(nil), p.Clues.Across...),
			Down:   append([]puzzle.Clue(nil), p.Clues.Down...),
		}
		p.Clues = &clues
	}
	return p
}

func cloneProfile(p user.Profile) user.Profile {
	if p.BestTimes != nil {
		times := make(map[puzzle.GameMode]int, len(p.BestTimes))
		for k, v := range p.BestTimes {
			times[k] = v
		}
		p.BestTimes = times
	}
	p.Achievements = append([]string(nil), p.Achievements...)
	return p
}

func cloneBadge(b nft.Badge) nft.Badge {
	b.Metadata = cloneMetadata(b.Metadata)
	return b
}

func cloneMetadata(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
