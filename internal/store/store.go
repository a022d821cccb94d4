// Package store persists trained learners by name.
//
// Implementations:
//   - MemoryStore: process-local map, used by tests and as the server fallback.
//   - FileStore:   one JSON document per name under a directory.
//   - SQLiteStore: agents and their value tables in SQLite.
package store

import (
    "context"
    "errors"
    "fmt"
    "math/rand"

    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
)

// Errors exposed by stores.
var (
    ErrNotFound  = errors.New("agent not found")
    ErrEmptyName = errors.New("agent name required")
)

// Store saves and loads learner snapshots.
type Store interface {
    // Save persists or replaces the snapshot stored under name.
    Save(ctx context.Context, name string, snap agent.Snapshot) error

    // Load returns the snapshot stored under name or ErrNotFound.
    Load(ctx context.Context, name string) (agent.Snapshot, error)

    // List returns the stored names in sorted order.
    List(ctx context.Context) ([]string, error)

    Close() error
}

// Open picks an implementation by driver: "memory", "file" or "sqlite".
func Open(driver, dsn string, logger zerolog.Logger) (Store, error) {
    switch driver {
    case "", "memory":
        return NewMemoryStore(), nil
    case "file":
        return NewFileStore(dsn, logger)
    case "sqlite":
        return OpenSQLite(dsn, logger)
    default:
        return nil, fmt.Errorf("unknown store driver %q", driver)
    }
}

// LoadLearner restores the learner stored under name, drawing randomness from rng.
func LoadLearner(ctx context.Context, st Store, name string, rng *rand.Rand) (*agent.Learner, error) {
    snap, err := st.Load(ctx, name)
    if err != nil {
        return nil, err
    }
    l, err := agent.Restore(snap, rng)
    if err != nil {
        return nil, fmt.Errorf("restore %q: %w", name, err)
    }
    return l, nil
}

func checkName(name string) error {
    if name == "" {
        return ErrEmptyName
    }
    return nil
}
