package app

import (
	"context"
	"fmt"

	"github.com/gridchain/puzzle_layer/internal/app/services/badges"
	"github.com/gridchain/puzzle_layer/internal/app/services/games"
	"github.com/gridchain/puzzle_layer/internal/app/services/puzzles"
	"github.com/gridchain/puzzle_layer/internal/app/services/sessions"
	"github.com/gridchain/puzzle_layer/internal/app/services/submissions"
	"github.com/gridchain/puzzle_layer/internal/app/services/users"
	"github.com/gridchain/puzzle_layer/internal/app/storage"
	"github.com/gridchain/puzzle_layer/internal/app/storage/memory"
	"github.com/gridchain/puzzle_layer/internal/app/system"
	"github.com/gridchain/puzzle_layer/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Puzzles     storage.PuzzleStore
	Submissions storage.SubmissionStore
	Games       storage.GameStore
	Sessions    storage.SessionStore
	Users       storage.UserStore
	Badges      storage.BadgeStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Puzzles     *puzzles.Service
	Submissions *submissions.Service
	Games       *games.Service
	Sessions    *sessions.Service
	Users       *users.Service
	Badges      *badges.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Puzzles == nil {
		stores.Puzzles = mem
	}
	if stores.Submissions == nil {
		stores.Submissions = mem
	}
	if stores.Games == nil {
		stores.Games = mem
	}
	if stores.Sessions == nil {
		stores.Sessions = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Badges == nil {
		stores.Badges = mem
	}

	manager := system.NewManager()

	puzzleService := puzzles.New(stores.Puzzles, log)
	userService := users.New(stores.Users, log)
	submissionService := submissions.New(puzzleService, stores.Submissions, userService, log)
	gameService := games.New(stores.Games, userService, stores.Users, log)
	sessionService := sessions.New(stores.Sessions, log)
	badgeService := badges.New(stores.Badges, log)

	for _, name := range []string{"puzzles", "submissions", "games", "sessions", "users", "badges"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:     manager,
		log:         log,
		Puzzles:     puzzleService,
		Submissions: submissionService,
		Games:       gameService,
		Sessions:    sessionService,
		Users:       userService,
		Badges:      badgeService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
