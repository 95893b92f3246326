// Package app composes the puzzle layer into a running application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── puzzle/         # Daily puzzle records and game modes
//	│   ├── submission/     # Verification attempts
//	│   ├── game/           # Free-play results and sessions
//	│   ├── user/           # Wallet profiles
//	│   └── nft/            # Achievement badges
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces (PuzzleStore, GameStore, ...)
//	│   ├── memory/         # In-memory implementation, default for tests
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── services/           # Business logic, one package per domain
//	├── httpapi/            # HTTP API handlers and routing
//	├── system/             # Service lifecycle management
//	└── metrics/            # Prometheus collectors
//
// Domain models carry no business logic; services own the rules and depend
// only on the storage interfaces. The HTTP layer translates between wire
// DTOs and service calls and never touches a store directly.
package app
