// Package httpapi exposes the REST surface: daily puzzles, verification,
// free-play games, sessions, leaderboard, user profiles, and badge minting.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	app "github.com/gridchain/puzzle_layer/internal/app"
	"github.com/gridchain/puzzle_layer/internal/app/domain/game"
	"github.com/gridchain/puzzle_layer/internal/app/domain/puzzle"
	"github.com/gridchain/puzzle_layer/internal/app/metrics"
	"github.com/gridchain/puzzle_layer/internal/app/services/puzzles"
	apperrors "github.com/gridchain/puzzle_layer/internal/errors"
	"github.com/gridchain/puzzle_layer/internal/middleware"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

const dateLayout = "2006-01-02"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app   *app.Application
	log   *logger.Logger
	audit *auditLog
}

// Options tunes handler construction.
type Options struct {
	// AuditPath is an optional JSONL file receiving mutating-request audit
	// entries.
	AuditPath string
}

// NewHandler returns a router exposing the REST API.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	return NewHandlerWithOptions(application, log, Options{})
}

// NewHandlerWithOptions is NewHandler with explicit options.
func NewHandlerWithOptions(application *app.Application, log *logger.Logger, opts Options) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}

	sink, err := newFileAuditSink(opts.AuditPath)
	if err != nil {
		log.WithError(err).Warn("audit sink unavailable; keeping in-memory audit only")
	}

	h := &handler{
		app:   application,
		log:   log,
		audit: newAuditLog(0, sink),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.auditMutations)

	api.HandleFunc("/puzzles/daily/{gameMode}", h.dailyPuzzle).Methods(http.MethodGet)
	api.Handle("/puzzles/verify", requireWallet(h.verifySolution)).Methods(http.MethodPost)

	api.Handle("/games/submit", requireWallet(h.submitGame)).Methods(http.MethodPost)
	api.Handle("/games/session", requireWallet(h.saveSession)).Methods(http.MethodPost)
	api.Handle("/games/session/{sessionId}", requireWallet(h.loadSession)).Methods(http.MethodGet)

	api.HandleFunc("/leaderboard", h.leaderboard).Methods(http.MethodGet)

	api.Handle("/user/stats", requireWallet(h.userStats)).Methods(http.MethodGet)
	api.Handle("/user/profile", requireWallet(h.userProfile)).Methods(http.MethodGet)
	api.Handle("/user/profile", requireWallet(h.updateProfile)).Methods(http.MethodPut)

	api.Handle("/nfts/mint", requireWallet(h.mintNFT)).Methods(http.MethodPost)

	return r
}

func requireWallet(fn http.HandlerFunc) http.Handler {
	return middleware.RequireWallet(fn)
}

// auditMutations records every state-changing request.
func (h *handler) auditMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.audit.add(auditEntry{
			Time:       time.Now().UTC(),
			Wallet:     middleware.WalletFromContext(r.Context()),
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Puzzles ----------------------------------------------------------------

type clueDTO struct {
	Number   int    `json:"number"`
	Clue     string `json:"clue"`
	StartRow int    `json:"startRow"`
	StartCol int    `json:"startCol"`
	Length   int    `json:"length"`
}

type clueSetDTO struct {
	Across []clueDTO `json:"across"`
	Down   []clueDTO `json:"down"`
}

type dailyPuzzleDTO struct {
	ID         string      `json:"id"`
	GameMode   string      `json:"gameMode"`
	Difficulty string      `json:"difficulty"`
	Date       string      `json:"date"`
	Grid       interface{} `json:"grid"`
	Width      int         `json:"width,omitempty"`
	Height     int         `json:"height,omitempty"`
	Clues      *clueSetDTO `json:"clues,omitempty"`
	Theme      string      `json:"theme,omitempty"`
	ExpiresAt  string      `json:"expiresAt"`
}

func toClueDTOs(clues []puzzle.Clue) []clueDTO {
	out := make([]clueDTO, 0, len(clues))
	for _, c := range clues {
		out = append(out, clueDTO{Number: c.Number, Clue: c.Text, StartRow: c.StartRow, StartCol: c.StartCol, Length: c.Length})
	}
	return out
}

func (h *handler) dailyPuzzle(w http.ResponseWriter, r *http.Request) {
	mode, ok := puzzle.ParseMode(mux.Vars(r)["gameMode"])
	if !ok {
		writeServiceError(w, h.log, apperrors.Validation("invalid gameMode"))
		return
	}

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeServiceError(w, h.log, apperrors.Validation("date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	p, err := h.app.Puzzles.GetOrCreateDaily(r.Context(), mode, date)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	p = puzzles.Public(p)

	dto := dailyPuzzleDTO{
		ID:         p.ID,
		GameMode:   string(p.GameMode),
		Difficulty: string(p.Difficulty),
		Date:       p.Date.UTC().Format(dateLayout),
		Grid:       p.Grid,
		Theme:      p.Theme,
		ExpiresAt:  p.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if p.GameMode == puzzle.ModeCrossword && p.Clues != nil {
		dto.Width = 7
		dto.Height = 7
		dto.Clues = &clueSetDTO{
			Across: toClueDTOs(p.Clues.Across),
			Down:   toClueDTOs(p.Clues.Down),
		}
	}
	writeData(w, http.StatusOK, dto)
}

type verifyRequest struct {
	PuzzleID        string      `json:"puzzleId"`
	Solution        interface{} `json:"solution"`
	TimeTaken       int         `json:"timeTaken"`
	ClientTimestamp string      `json:"clientTimestamp,omitempty"`
}

type verifyResponse struct {
	Success   bool     `json:"success"`
	Rank      int      `json:"rank"`
	NewStreak int      `json:"newStreak"`
	Rewards   []string `json:"rewards,omitempty"`
	NFTMinted bool     `json:"nftMinted"`
}

func (h *handler) verifySolution(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeServiceError(w, h.log, apperrors.Validation("malformed request body"))
		return
	}

	var clientTS time.Time
	if req.ClientTimestamp != "" {
		clientTS, _ = time.Parse(time.RFC3339, req.ClientTimestamp)
	}

	wallet := middleware.WalletFromContext(r.Context())
	res, err := h.app.Submissions.Attempt(r.Context(), wallet, req.PuzzleID, req.Solution, req.TimeTaken, clientTS)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeIncorrect) {
			metrics.RecordVerification("incorrect")
		}
		writeServiceError(w, h.log, err)
		return
	}
	metrics.RecordVerification("correct")

	writeData(w, http.StatusOK, verifyResponse{
		Success:   true,
		Rank:      res.Rank,
		NewStreak: res.Streak,
		Rewards:   res.Rewards,
		NFTMinted: res.NFTMinted,
	})
}

// --- Games ------------------------------------------------------------------

type submitGameRequest struct {
	GameMode   string `json:"gameMode"`
	Difficulty string `json:"difficulty"`
	TimeTaken  int    `json:"timeTaken"`
	Score      int    `json:"score"`
	Completed  bool   `json:"completed"`
	HintsUsed  int    `json:"hintsUsed"`
}

type submitGameResponse struct {
	NewRank   int    `json:"newRank"`
	NewStreak int    `json:"newStreak"`
	NFTEarned string `json:"nftEarned,omitempty"`
}

func (h *handler) submitGame(w http.ResponseWriter, r *http.Request) {
	var req submitGameRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeServiceError(w, h.log, apperrors.Validation("malformed request body"))
		return
	}

	res, err := h.app.Games.Submit(r.Context(), game.Game{
		Wallet:     middleware.WalletFromContext(r.Context()),
		GameMode:   puzzle.GameMode(req.GameMode),
		Difficulty: puzzle.Difficulty(req.Difficulty),
		TimeTaken:  req.TimeTaken,
		Score:      req.Score,
		Completed:  req.Completed,
		HintsUsed:  req.HintsUsed,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	metrics.RecordGameSubmission(req.GameMode, req.Completed)

	writeData(w, http.StatusOK, submitGameResponse{
		NewRank:   res.Rank,
		NewStreak: res.Streak,
		NFTEarned: res.NFTEarned,
	})
}

type saveSessionRequest struct {
	GameMode    string      `json:"gameMode"`
	PuzzleID    string      `json:"puzzleId"`
	CurrentGrid interface{} `json:"currentGrid"`
	ElapsedTime int         `json:"elapsedTime"`
	HintsUsed   int         `json:"hintsUsed"`
}

func (h *handler) saveSession(w http.ResponseWriter, r *http.Request) {
	var req saveSessionRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeServiceError(w, h.log, apperrors.Validation("malformed request body"))
		return
	}

	wallet := middleware.WalletFromContext(r.Context())
	sess, err := h.app.Sessions.Save(r.Context(), wallet, puzzle.GameMode(req.GameMode), req.PuzzleID, req.CurrentGrid, req.ElapsedTime, req.HintsUsed)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"sessionId": sess.ID,
		"expiresAt": sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *handler) loadSession(w http.ResponseWriter, r *http.Request) {
	wallet := middleware.WalletFromContext(r.Context())
	sess, err := h.app.Sessions.Load(r.Context(), wallet, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"gameMode":    string(sess.GameMode),
		"puzzleId":    sess.PuzzleID,
		"currentGrid": sess.GridState,
		"elapsedTime": sess.ElapsedTime,
		"hintsUsed":   sess.HintsUsed,
	})
}

// --- Leaderboard ------------------------------------------------------------

type leaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	Wallet      string `json:"walletAddress"`
	Username    string `json:"username,omitempty"`
	BestTime    int    `json:"bestTime"`
	Score       int    `json:"score"`
	GameMode    string `json:"gameMode"`
	Difficulty  string `json:"difficulty"`
	CompletedAt string `json:"completedAt"`
}

func (h *handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	entries, total, err := h.app.Games.Leaderboard(r.Context(), puzzle.GameMode(q.Get("gameMode")), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	dtos := make([]leaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, leaderboardEntryDTO{
			Rank:        e.Rank,
			Wallet:      e.Wallet,
			Username:    e.Username,
			BestTime:    e.TimeTaken,
			Score:       e.Score,
			GameMode:    string(e.GameMode),
			Difficulty:  string(e.Difficulty),
			CompletedAt: e.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	writeListData(w, http.StatusOK, dtos, total)
}

// --- Users ------------------------------------------------------------------

type userStatsDTO struct {
	Wallet            string   `json:"walletAddress"`
	TotalGames        int      `json:"totalGames"`
	GamesWon          int      `json:"gamesWon"`
	BestSudokuTime    *int     `json:"bestSudokuTime,omitempty"`
	BestCrosswordTime *int     `json:"bestCrosswordTime,omitempty"`
	CurrentStreak     int      `json:"currentStreak"`
	LongestStreak     int      `json:"longestStreak"`
	AverageScore      float64  `json:"averageScore"`
	TotalPlayTime     int      `json:"totalPlayTime"`
	LastPlayed        string   `json:"lastPlayed,omitempty"`
	Achievements      []string `json:"achievements"`
}

func (h *handler) userStats(w http.ResponseWriter, r *http.Request) {
	wallet := middleware.WalletFromContext(r.Context())
	p, err := h.app.Users.Stats(r.Context(), wallet)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	dto := userStatsDTO{
		Wallet:        p.Wallet,
		TotalGames:    p.TotalGames,
		GamesWon:      p.GamesWon,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		AverageScore:  p.AverageScore,
		TotalPlayTime: p.TotalPlayTime,
		Achievements:  p.Achievements,
	}
	if dto.Achievements == nil {
		dto.Achievements = []string{}
	}
	if t, ok := p.BestTimes[puzzle.ModeSudoku]; ok {
		dto.BestSudokuTime = &t
	}
	if t, ok := p.BestTimes[puzzle.ModeCrossword]; ok {
		dto.BestCrosswordTime = &t
	}
	if !p.LastPlayed.IsZero() {
		dto.LastPlayed = p.LastPlayed.UTC().Format(time.RFC3339)
	}
	writeData(w, http.StatusOK, dto)
}

type nftBadgeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	EarnedAt string `json:"earnedAt"`
}

func (h *handler) userProfile(w http.ResponseWriter, r *http.Request) {
	wallet := middleware.WalletFromContext(r.Context())
	p, err := h.app.Users.Stats(r.Context(), wallet)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	listed, err := h.app.Badges.List(r.Context(), wallet)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	dtos := make([]nftBadgeDTO, 0, len(listed))
	for _, b := range listed {
		dto := nftBadgeDTO{
			ID:       b.AchievementType,
			Name:     b.AchievementType,
			EarnedAt: b.MintedAt.UTC().Format(time.RFC3339),
		}
		if name, ok := b.Metadata["name"].(string); ok && name != "" {
			dto.Name = name
		}
		if image, ok := b.Metadata["image"].(string); ok {
			dto.Image = image
		}
		dtos = append(dtos, dto)
	}

	joined := ""
	if !p.JoinedAt.IsZero() {
		joined = p.JoinedAt.UTC().Format(time.RFC3339)
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"walletAddress": p.Wallet,
		"username":      p.Username,
		"avatar":        p.AvatarURL,
		"joinedAt":      joined,
		"nftBadges":     dtos,
		"totalRewards":  len(dtos),
	})
}

type updateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeServiceError(w, h.log, apperrors.Validation("malformed request body"))
		return
	}

	wallet := middleware.WalletFromContext(r.Context())
	p, err := h.app.Users.UpdateProfile(r.Context(), wallet, req.Username, req.AvatarURL)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"walletAddress": p.Wallet,
		"username":      p.Username,
		"avatar":        p.AvatarURL,
		"joinedAt":      p.JoinedAt.UTC().Format(time.RFC3339),
	})
}

// --- NFTs -------------------------------------------------------------------

type mintRequest struct {
	Achievement string                 `json:"achievement"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func (h *handler) mintNFT(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeServiceError(w, h.log, apperrors.Validation("malformed request body"))
		return
	}

	wallet := middleware.WalletFromContext(r.Context())
	res, err := h.app.Badges.Mint(r.Context(), wallet, req.Achievement, req.Metadata)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"txHash":      res.TxHash,
		"tokenId":     res.TokenID,
		"nftContract": res.Contract,
	})
}
