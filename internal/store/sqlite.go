package store

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    _ "github.com/mattn/go-sqlite3"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
)

// migrations are applied in order and recorded in _migrations.
var migrations = []struct {
    name string
    sql  string
}{
    {"001_agents", `
        CREATE TABLE IF NOT EXISTS agents (
            name       TEXT PRIMARY KEY,
            symbol     TEXT NOT NULL DEFAULT '',
            epsilon    REAL NOT NULL,
            alpha      REAL NOT NULL,
            learning   INTEGER NOT NULL,
            updated_at TIMESTAMP NOT NULL
        );`},
    {"002_agent_values", `
        CREATE TABLE IF NOT EXISTS agent_values (
            name  TEXT NOT NULL REFERENCES agents(name) ON DELETE CASCADE,
            state TEXT NOT NULL,
            value REAL NOT NULL,
            PRIMARY KEY (name, state)
        );`},
}

// SQLiteStore keeps one agents row per learner and its value table in agent_values.
type SQLiteStore struct {
    db  *sql.DB
    log zerolog.Logger
}

// OpenSQLite opens (and creates if missing) the database at dsn and migrates it.
func OpenSQLite(dsn string, logger zerolog.Logger) (*SQLiteStore, error) {
    if dsn == "" {
        return nil, errors.New("sqlite dsn required")
    }
    path, _, _ := strings.Cut(dsn, "?")
    dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
    if dir != "." && dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return nil, fmt.Errorf("mkdir %s: %w", dir, err)
        }
    }
    db, err := sql.Open("sqlite3", sqliteDSN(dsn))
    if err != nil {
        return nil, err
    }
    s := &SQLiteStore{db: db, log: logger.With().Str("store", "sqlite").Logger()}
    if err := s.migrate(); err != nil {
        _ = db.Close()
        return nil, err
    }
    return s, nil
}

// sqliteDSN appends the connection options, keeping any query dsn already has.
func sqliteDSN(dsn string) string {
    const opts = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
    if strings.Contains(dsn, "?") {
        return dsn + "&" + opts
    }
    return dsn + "?" + opts
}

func (s *SQLiteStore) migrate() error {
    if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
        return fmt.Errorf("create _migrations: %w", err)
    }
    for _, m := range migrations {
        var done int
        err := s.db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.name).Scan(&done)
        if err == nil {
            continue
        }
        if !errors.Is(err, sql.ErrNoRows) {
            return fmt.Errorf("query _migrations: %w", err)
        }
        tx, err := s.db.Begin()
        if err != nil {
            return err
        }
        if _, err := tx.Exec(m.sql); err != nil {
            _ = tx.Rollback()
            return fmt.Errorf("apply %s: %w", m.name, err)
        }
        if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, m.name); err != nil {
            _ = tx.Rollback()
            return fmt.Errorf("record %s: %w", m.name, err)
        }
        if err := tx.Commit(); err != nil {
            return fmt.Errorf("commit %s: %w", m.name, err)
        }
        s.log.Info().Str("migration", m.name).Msg("applied")
    }
    return nil
}

// Save replaces the agent row and its whole value table in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, name string, snap agent.Snapshot) error {
    if err := checkName(name); err != nil {
        return err
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    if _, err := tx.ExecContext(ctx, `
        INSERT INTO agents (name, symbol, epsilon, alpha, learning, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            symbol=excluded.symbol, epsilon=excluded.epsilon, alpha=excluded.alpha,
            learning=excluded.learning, updated_at=excluded.updated_at`,
        name, snap.Symbol, snap.Epsilon, snap.Alpha, snap.Learning, time.Now().UTC(),
    ); err != nil {
        return fmt.Errorf("upsert agent %s: %w", name, err)
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM agent_values WHERE name=?`, name); err != nil {
        return fmt.Errorf("clear values %s: %w", name, err)
    }
    stmt, err := tx.PrepareContext(ctx, `INSERT INTO agent_values (name, state, value) VALUES (?, ?, ?)`)
    if err != nil {
        return err
    }
    defer stmt.Close()
    for _, key := range snap.Keys() {
        if _, err := stmt.ExecContext(ctx, name, key, snap.Values[key]); err != nil {
            return fmt.Errorf("insert value %s/%s: %w", name, key, err)
        }
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit %s: %w", name, err)
    }
    s.log.Info().Str("agent", name).Int("states", len(snap.Values)).Msg("saved")
    return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (agent.Snapshot, error) {
    var snap agent.Snapshot
    err := s.db.QueryRowContext(ctx,
        `SELECT symbol, epsilon, alpha, learning FROM agents WHERE name=?`, name,
    ).Scan(&snap.Symbol, &snap.Epsilon, &snap.Alpha, &snap.Learning)
    if errors.Is(err, sql.ErrNoRows) {
        return agent.Snapshot{}, ErrNotFound
    }
    if err != nil {
        return agent.Snapshot{}, fmt.Errorf("load agent %s: %w", name, err)
    }

    rows, err := s.db.QueryContext(ctx, `SELECT state, value FROM agent_values WHERE name=?`, name)
    if err != nil {
        return agent.Snapshot{}, fmt.Errorf("load values %s: %w", name, err)
    }
    defer rows.Close()
    snap.Values = make(map[string]float64)
    for rows.Next() {
        var key string
        var v float64
        if err := rows.Scan(&key, &v); err != nil {
            return agent.Snapshot{}, err
        }
        snap.Values[key] = v
    }
    return snap, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
    rows, err := s.db.QueryContext(ctx, `SELECT name FROM agents ORDER BY name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var names []string
    for rows.Next() {
        var n string
        if err := rows.Scan(&n); err != nil {
            return nil, err
        }
        names = append(names, n)
    }
    return names, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
