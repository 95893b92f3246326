package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/nft"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/domain/submission"
	"github.com/gridchain/puzzle_layer/internal/app/domain/user"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.PuzzleStore = (*Store)(nil)
var _ storage.SubmissionStore = (*Store)(nil)
var _ storage.GameStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.BadgeStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables the store needs if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pzl_puzzles (
			id TEXT PRIMARY KEY,
			game_mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			puzzle_date TIMESTAMPTZ NOT NULL,
			grid JSONB,
			solution JSONB,
			clues JSONB,
			theme TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pzl_submissions (
			id TEXT PRIMARY KEY,
			puzzle_id TEXT NOT NULL,
			wallet TEXT NOT NULL,
			solution JSONB,
			time_taken INTEGER NOT NULL,
			is_correct BOOLEAN NOT NULL,
			client_timestamp TIMESTAMPTZ,
			submitted_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pzl_submissions_wallet_time ON pzl_submissions (wallet, submitted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_pzl_submissions_puzzle ON pzl_submissions (puzzle_id)`,
		`CREATE TABLE IF NOT EXISTS pzl_games (
			id TEXT PRIMARY KEY,
			wallet TEXT NOT NULL,
			game_mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			time_taken INTEGER NOT NULL,
			score INTEGER NOT NULL,
			completed BOOLEAN NOT NULL,
			hints_used INTEGER NOT NULL DEFAULT 0,
			played_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pzl_games_mode_score ON pzl_games (game_mode, score DESC, time_taken ASC)`,
		`CREATE TABLE IF NOT EXISTS pzl_sessions (
			id TEXT PRIMARY KEY,
			wallet TEXT NOT NULL,
			game_mode TEXT NOT NULL,
			puzzle_id TEXT NOT NULL,
			grid_state JSONB,
			elapsed_time INTEGER NOT NULL DEFAULT 0,
			hints_used INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			UNIQUE (wallet, game_mode, puzzle_id)
		)`,
		`CREATE TABLE IF NOT EXISTS pzl_users (
			wallet TEXT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			joined_at TIMESTAMPTZ NOT NULL,
			total_games INTEGER NOT NULL DEFAULT 0,
			games_won INTEGER NOT NULL DEFAULT 0,
			best_times JSONB,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			average_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_play_time INTEGER NOT NULL DEFAULT 0,
			last_played TIMESTAMPTZ,
			last_completed TIMESTAMPTZ,
			total_completions INTEGER NOT NULL DEFAULT 0,
			achievements JSONB
		)`,
		`CREATE TABLE IF NOT EXISTS pzl_badges (
			id TEXT PRIMARY KEY,
			wallet TEXT NOT NULL,
			token_id BIGINT NOT NULL,
			contract_address TEXT NOT NULL,
			achievement_type TEXT NOT NULL,
			metadata JSONB,
			minted_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pzl_badges_wallet ON pzl_badges (wallet)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// --- PuzzleStore ------------------------------------------------------------

func (s *Store) CreatePuzzle(ctx context.Context, p puzzle.Puzzle) (puzzle.Puzzle, error) {
	gridJSON, err := json.Marshal(p.Grid)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	solutionJSON, err := json.Marshal(p.Solution)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	var cluesJSON []byte
	if p.Clues != nil {
		if cluesJSON, err = json.Marshal(p.Clues); err != nil {
			return puzzle.Puzzle{}, err
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pzl_puzzles (id, game_mode, difficulty, puzzle_date, grid, solution, clues, theme, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.GameMode, p.Difficulty, p.Date, gridJSON, solutionJSON, cluesJSON, p.Theme, p.ExpiresAt)
	if err != nil {
		return puzzle.Puzzle{}, err
	}
	return p, nil
}

func (s *Store) GetPuzzle(ctx context.Context, id string) (puzzle.Puzzle, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, game_mode, difficulty, puzzle_date, grid, solution, clues, theme, expires_at
		FROM pzl_puzzles
		WHERE id = $1
	`, id)

	var (
		p           puzzle.Puzzle
		gridRaw     []byte
		solutionRaw []byte
		cluesRaw    []byte
	)
	err := row.Scan(&p.ID, &p.GameMode, &p.Difficulty, &p.Date, &gridRaw, &solutionRaw, &cluesRaw, &p.Theme, &p.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return puzzle.Puzzle{}, fmt.Errorf("puzzle %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return puzzle.Puzzle{}, err
	}

	if len(gridRaw) > 0 {
		_ = json.Unmarshal(gridRaw, &p.Grid)
	}
	if len(solutionRaw) > 0 {
		_ = json.Unmarshal(solutionRaw, &p.Solution)
	}
	if len(cluesRaw) > 0 {
		var clues puzzle.ClueSet
		if err := json.Unmarshal(cluesRaw, &clues); err == nil {
			p.Clues = &clues
		}
	}
	return p, nil
}

// --- SubmissionStore --------------------------------------------------------

func (s *Store) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.Wallet = user.NormalizeWallet(sub.Wallet)
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}

	solutionJSON, err := json.Marshal(sub.Solution)
	if err != nil {
		return submission.Submission{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pzl_submissions (id, puzzle_id, wallet, solution, time_taken, is_correct, client_timestamp, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sub.ID, sub.PuzzleID, sub.Wallet, solutionJSON, sub.TimeTaken, sub.IsCorrect, toNullTime(sub.ClientTimestamp), sub.SubmittedAt)
	if err != nil {
		return submission.Submission{}, err
	}
	return sub, nil
}

func (s *Store) ListSubmissions(ctx context.Context, puzzleID, wallet string) ([]submission.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, puzzle_id, wallet, solution, time_taken, is_correct, client_timestamp, submitted_at
		FROM pzl_submissions
		WHERE puzzle_id = $1 AND wallet = $2
		ORDER BY submitted_at
	`, puzzleID, user.NormalizeWallet(wallet))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]submission.Submission, 0)
	for rows.Next() {
		var (
			sub         submission.Submission
			solutionRaw []byte
			clientTS    sql.NullTime
		)
		if err := rows.Scan(&sub.ID, &sub.PuzzleID, &sub.Wallet, &solutionRaw, &sub.TimeTaken, &sub.IsCorrect, &clientTS, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		if len(solutionRaw) > 0 {
			_ = json.Unmarshal(solutionRaw, &sub.Solution)
		}
		if clientTS.Valid {
			sub.ClientTimestamp = clientTS.Time.UTC()
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func (s *Store) CountSubmissionsSince(ctx context.Context, wallet string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pzl_submissions
		WHERE wallet = $1 AND submitted_at >= $2
	`, user.NormalizeWallet(wallet), since).Scan(&count)
	return count, err
}

func (s *Store) HasCorrectSubmission(ctx context.Context, puzzleID, wallet string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pzl_submissions
		WHERE puzzle_id = $1 AND wallet = $2 AND is_correct
	`, puzzleID, user.NormalizeWallet(wallet)).Scan(&count)
	return count > 0, err
}

func (s *Store) CountBetterAttempts(ctx context.Context, puzzleID string, timeTaken int, submittedAt time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pzl_submissions
		WHERE puzzle_id = $1 AND is_correct
		  AND (time_taken < $2 OR (time_taken = $2 AND submitted_at < $3))
	`, puzzleID, timeTaken, submittedAt).Scan(&count)
	return count, err
}

// --- GameStore --------------------------------------------------------------

func (s *Store) CreateGame(ctx context.Context, g game.Game) (game.Game, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.Wallet = user.NormalizeWallet(g.Wallet)
	if g.PlayedAt.IsZero() {
		g.PlayedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pzl_games (id, wallet, game_mode, difficulty, time_taken, score, completed, hints_used, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, g.ID, g.Wallet, g.GameMode, g.Difficulty, g.TimeTaken, g.Score, g.Completed, g.HintsUsed, g.PlayedAt)
	if err != nil {
		return game.Game{}, err
	}
	return g, nil
}

func (s *Store) CountBetterGames(ctx context.Context, mode puzzle.GameMode, score, timeTaken int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pzl_games
		WHERE game_mode = $1 AND completed
		  AND (score > $2 OR (score = $2 AND time_taken < $3))
	`, mode, score, timeTaken).Scan(&count)
	return count, err
}

func (s *Store) ListCompletedGames(ctx context.Context, mode puzzle.GameMode, limit, offset int) ([]game.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wallet, game_mode, difficulty, time_taken, score, completed, hints_used, played_at
		FROM pzl_games
		WHERE game_mode = $1 AND completed
		ORDER BY score DESC, time_taken ASC, played_at ASC
		LIMIT $2 OFFSET $3
	`, mode, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]game.Game, 0)
	for rows.Next() {
		var g game.Game
		if err := rows.Scan(&g.ID, &g.Wallet, &g.GameMode, &g.Difficulty, &g.TimeTaken, &g.Score, &g.Completed, &g.HintsUsed, &g.PlayedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func (s *Store) CountCompletedGames(ctx context.Context, mode puzzle.GameMode) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pzl_games
		WHERE game_mode = $1 AND completed
	`, mode).Scan(&count)
	return count, err
}

// --- SessionStore -----------------------------------------------------------

func (s *Store) UpsertSession(ctx context.Context, sess game.Session) (game.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.Wallet = user.NormalizeWallet(sess.Wallet)
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	stateJSON, err := json.Marshal(sess.GridState)
	if err != nil {
		return game.Session{}, err
	}

	// On conflict the row keeps its original id and creation time, so the
	// session id stays stable across re-saves.
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO pzl_sessions (id, wallet, game_mode, puzzle_id, grid_state, elapsed_time, hints_used, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (wallet, game_mode, puzzle_id) DO UPDATE
		SET grid_state = EXCLUDED.grid_state,
		    elapsed_time = EXCLUDED.elapsed_time,
		    hints_used = EXCLUDED.hints_used,
		    expires_at = EXCLUDED.expires_at
		RETURNING id, created_at
	`, sess.ID, sess.Wallet, sess.GameMode, sess.PuzzleID, stateJSON, sess.ElapsedTime, sess.HintsUsed, sess.CreatedAt, sess.ExpiresAt)
	if err := row.Scan(&sess.ID, &sess.CreatedAt); err != nil {
		return game.Session{}, err
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (game.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, wallet, game_mode, puzzle_id, grid_state, elapsed_time, hints_used, created_at, expires_at
		FROM pzl_sessions
		WHERE id = $1
	`, id)

	var (
		sess     game.Session
		stateRaw []byte
	)
	err := row.Scan(&sess.ID, &sess.Wallet, &sess.GameMode, &sess.PuzzleID, &stateRaw, &sess.ElapsedTime, &sess.HintsUsed, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Session{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return game.Session{}, err
	}
	if len(stateRaw) > 0 {
		_ = json.Unmarshal(stateRaw, &sess.GridState)
	}
	return sess, nil
}

// --- UserStore --------------------------------------------------------------

func (s *Store) GetUser(ctx context.Context, wallet string) (user.Profile, error) {
	wallet = user.NormalizeWallet(wallet)
	row := s.db.QueryRowContext(ctx, `
		SELECT wallet, username, avatar_url, joined_at, total_games, games_won, best_times,
		       current_streak, longest_streak, average_score, total_play_time,
		       last_played, last_completed, total_completions, achievements
		FROM pzl_users
		WHERE wallet = $1
	`, wallet)
	return scanProfile(row, wallet)
}

func (s *Store) UpsertUser(ctx context.Context, p user.Profile) (user.Profile, error) {
	p.Wallet = user.NormalizeWallet(p.Wallet)
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}

	bestTimesJSON, err := json.Marshal(p.BestTimes)
	if err != nil {
		return user.Profile{}, err
	}
	achievementsJSON, err := json.Marshal(p.Achievements)
	if err != nil {
		return user.Profile{}, err
	}

	// joined_at is insert-only; every other column reflects the latest write.
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO pzl_users (wallet, username, avatar_url, joined_at, total_games, games_won, best_times,
		                       current_streak, longest_streak, average_score, total_play_time,
		                       last_played, last_completed, total_completions, achievements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (wallet) DO UPDATE
		SET username = EXCLUDED.username,
		    avatar_url = EXCLUDED.avatar_url,
		    total_games = EXCLUDED.total_games,
		    games_won = EXCLUDED.games_won,
		    best_times = EXCLUDED.best_times,
		    current_streak = EXCLUDED.current_streak,
		    longest_streak = EXCLUDED.longest_streak,
		    average_score = EXCLUDED.average_score,
		    total_play_time = EXCLUDED.total_play_time,
		    last_played = EXCLUDED.last_played,
		    last_completed = EXCLUDED.last_completed,
		    total_completions = EXCLUDED.total_completions,
		    achievements = EXCLUDED.achievements
		RETURNING joined_at
	`, p.Wallet, p.Username, p.AvatarURL, p.JoinedAt, p.TotalGames, p.GamesWon, bestTimesJSON,
		p.CurrentStreak, p.LongestStreak, p.AverageScore, p.TotalPlayTime,
		toNullTime(p.LastPlayed), toNullTime(p.LastCompleted), p.TotalCompletions, achievementsJSON)
	if err := row.Scan(&p.JoinedAt); err != nil {
		return user.Profile{}, err
	}
	return p, nil
}

func scanProfile(row *sql.Row, wallet string) (user.Profile, error) {
	var (
		p               user.Profile
		bestTimesRaw    []byte
		achievementsRaw []byte
		lastPlayed      sql.NullTime
		lastCompleted   sql.NullTime
	)
	err := row.Scan(&p.Wallet, &p.Username, &p.AvatarURL, &p.JoinedAt, &p.TotalGames, &p.GamesWon, &bestTimesRaw,
		&p.CurrentStreak, &p.LongestStreak, &p.AverageScore, &p.TotalPlayTime,
		&lastPlayed, &lastCompleted, &p.TotalCompletions, &achievementsRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Profile{}, fmt.Errorf("user %s: %w", wallet, storage.ErrNotFound)
	}
	if err != nil {
		return user.Profile{}, err
	}
	if len(bestTimesRaw) > 0 {
		_ = json.Unmarshal(bestTimesRaw, &p.BestTimes)
	}
	if len(achievementsRaw) > 0 {
		_ = json.Unmarshal(achievementsRaw, &p.Achievements)
	}
	if lastPlayed.Valid {
		p.LastPlayed = lastPlayed.Time.UTC()
	}
	if lastCompleted.Valid {
		p.LastCompleted = lastCompleted.Time.UTC()
	}
	return p, nil
}

// --- BadgeStore -------------------------------------------------------------

func (s *Store) CreateBadge(ctx context.Context, b nft.Badge) (nft.Badge, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Wallet = user.NormalizeWallet(b.Wallet)
	if b.MintedAt.IsZero() {
		b.MintedAt = time.Now().UTC()
	}

	metadataJSON, err := json.Marshal(b.Metadata)
	if err != nil {
		return nft.Badge{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pzl_badges (id, wallet, token_id, contract_address, achievement_type, metadata, minted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, b.ID, b.Wallet, b.TokenID, b.ContractAddress, b.AchievementType, metadataJSON, b.MintedAt)
	if err != nil {
		return nft.Badge{}, err
	}
	return b, nil
}

func (s *Store) ListBadges(ctx context.Context, wallet string) ([]nft.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wallet, token_id, contract_address, achievement_type, metadata, minted_at
		FROM pzl_badges
		WHERE wallet = $1
		ORDER BY minted_at
	`, user.NormalizeWallet(wallet))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]nft.Badge, 0)
	for rows.Next() {
		var (
			b           nft.Badge
			metadataRaw []byte
		)
		if err := rows.Scan(&b.ID, &b.Wallet, &b.TokenID, &b.ContractAddress, &b.AchievementType, &metadataRaw, &b.MintedAt); err != nil {
			return nil, err
		}
		if len(metadataRaw) > 0 {
			_ = json.Unmarshal(metadataRaw, &b.Metadata)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
