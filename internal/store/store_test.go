package store

import (
    "context"
    "errors"
    "math/rand"
    "path/filepath"
    "reflect"
    "testing"

    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

func openAll(t *testing.T) map[string]Store {
    t.Helper()
    dir := t.TempDir()
    fs, err := Open("file", filepath.Join(dir, "agents"), zerolog.Nop())
    if err != nil {
        t.Fatalf("open file store: %v", err)
    }
    sq, err := Open("sqlite", filepath.Join(dir, "db", "agents.db"), zerolog.Nop())
    if err != nil {
        t.Fatalf("open sqlite store: %v", err)
    }
    t.Cleanup(func() { _ = sq.Close() })
    return map[string]Store{"memory": NewMemoryStore(), "file": fs, "sqlite": sq}
}

// trained returns a learner that has played a few games as X.
func trained(t *testing.T) *agent.Learner {
    t.Helper()
    l, err := agent.NewLearner(rand.New(rand.NewSource(1)), 0.1, 0.9)
    if err != nil {
        t.Fatalf("NewLearner: %v", err)
    }
    opp := agent.NewRandom(rand.New(rand.NewSource(2)))
    for i := 0; i < 50; i++ {
        g := domain.New()
        for !g.Over {
            var m int
            if g.Turn == domain.X {
                m, err = l.Move(g.Board, domain.X)
            } else {
                m, err = opp.Move(g.Board, domain.O)
            }
            if err != nil {
                t.Fatalf("move: %v", err)
            }
            if err := g.Play(m); err != nil {
                t.Fatalf("play: %v", err)
            }
        }
    }
    return l
}

func TestStoreRoundTrip(t *testing.T) {
    ctx := context.Background()
    snap := trained(t).Snapshot()
    for name, s := range openAll(t) {
        t.Run(name, func(t *testing.T) {
            if err := s.Save(ctx, "champ", snap); err != nil {
                t.Fatalf("Save: %v", err)
            }
            got, err := s.Load(ctx, "champ")
            if err != nil {
                t.Fatalf("Load: %v", err)
            }
            if !reflect.DeepEqual(got, snap) {
                t.Fatalf("round trip mismatch: symbol %q/%q states %d/%d",
                    got.Symbol, snap.Symbol, len(got.Values), len(snap.Values))
            }
        })
    }
}

func TestStoreRoundTripReplaysMoves(t *testing.T) {
    ctx := context.Background()
    snap := trained(t).Snapshot()
    for name, s := range openAll(t) {
        t.Run(name, func(t *testing.T) {
            if err := s.Save(ctx, "replay", snap); err != nil {
                t.Fatalf("Save: %v", err)
            }
            loaded, err := s.Load(ctx, "replay")
            if err != nil {
                t.Fatalf("Load: %v", err)
            }
            a, err := agent.Restore(snap, rand.New(rand.NewSource(9)))
            if err != nil {
                t.Fatalf("Restore: %v", err)
            }
            b, err := agent.Restore(loaded, rand.New(rand.NewSource(9)))
            if err != nil {
                t.Fatalf("Restore loaded: %v", err)
            }
            board := domain.Board{}
            for i := 0; i < 100; i++ {
                ma, err1 := a.Move(board, domain.X)
                mb, err2 := b.Move(board, domain.X)
                if err1 != nil || err2 != nil || ma != mb {
                    t.Fatalf("move %d diverged: %d/%d (%v, %v)", i, ma, mb, err1, err2)
                }
            }
        })
    }
}

func TestStoreOverwriteAndList(t *testing.T) {
    ctx := context.Background()
    for name, s := range openAll(t) {
        t.Run(name, func(t *testing.T) {
            first := agent.Snapshot{Symbol: "X", Epsilon: 0.1, Alpha: 1, Learning: true,
                Values: map[string]float64{"X........": 0.5, "XO.......": -0.25}}
            second := agent.Snapshot{Symbol: "O", Epsilon: 0, Alpha: 0.5,
                Values: map[string]float64{"....O....": 1}}
            if err := s.Save(ctx, "b", first); err != nil {
                t.Fatalf("Save: %v", err)
            }
            if err := s.Save(ctx, "a", first); err != nil {
                t.Fatalf("Save: %v", err)
            }
            if err := s.Save(ctx, "b", second); err != nil {
                t.Fatalf("overwrite: %v", err)
            }
            got, err := s.Load(ctx, "b")
            if err != nil {
                t.Fatalf("Load: %v", err)
            }
            if !reflect.DeepEqual(got, second) {
                t.Fatalf("expected overwritten snapshot, got %+v", got)
            }
            names, err := s.List(ctx)
            if err != nil {
                t.Fatalf("List: %v", err)
            }
            if !reflect.DeepEqual(names, []string{"a", "b"}) {
                t.Fatalf("unexpected names %v", names)
            }
        })
    }
}

func TestStoreNotFoundAndEmptyName(t *testing.T) {
    ctx := context.Background()
    for name, s := range openAll(t) {
        t.Run(name, func(t *testing.T) {
            if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
                t.Fatalf("expected ErrNotFound, got %v", err)
            }
            if err := s.Save(ctx, "", agent.Snapshot{}); !errors.Is(err, ErrEmptyName) {
                t.Fatalf("expected ErrEmptyName, got %v", err)
            }
        })
    }
}

func TestMemoryStoreDoesNotAlias(t *testing.T) {
    ctx := context.Background()
    s := NewMemoryStore()
    snap := agent.Snapshot{Values: map[string]float64{"X........": 1}}
    if err := s.Save(ctx, "n", snap); err != nil {
        t.Fatalf("Save: %v", err)
    }
    snap.Values["X........"] = 2
    got, _ := s.Load(ctx, "n")
    if got.Values["X........"] != 1 {
        t.Fatalf("stored snapshot aliased caller map")
    }
}

func TestOpenUnknownDriver(t *testing.T) {
    if _, err := Open("redis", "", zerolog.Nop()); err == nil {
        t.Fatalf("expected error for unknown driver")
    }
}

func TestLoadLearner(t *testing.T) {
    ctx := context.Background()
    s := NewMemoryStore()
    l := trained(t)
    if err := s.Save(ctx, "champ", l.Snapshot()); err != nil {
        t.Fatalf("Save: %v", err)
    }
    got, err := LoadLearner(ctx, s, "champ", rand.New(rand.NewSource(3)))
    if err != nil {
        t.Fatalf("LoadLearner: %v", err)
    }
    if got.Symbol() != domain.X || got.States() != l.States() {
        t.Fatalf("restored learner differs: symbol=%v states=%d want %d", got.Symbol(), got.States(), l.States())
    }
    if _, err := LoadLearner(ctx, s, "missing", rand.New(rand.NewSource(3))); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestSQLiteDSNKeepsQuery(t *testing.T) {
    const opts = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
    if got := sqliteDSN("agents.db"); got != "agents.db?"+opts {
        t.Fatalf("plain path: got %q", got)
    }
    if got := sqliteDSN("agents.db?_txlock=immediate"); got != "agents.db?_txlock=immediate&"+opts {
        t.Fatalf("path with query: got %q", got)
    }

    dsn := filepath.Join(t.TempDir(), "db", "agents.db") + "?_txlock=immediate"
    s, err := OpenSQLite(dsn, zerolog.Nop())
    if err != nil {
        t.Fatalf("OpenSQLite with query: %v", err)
    }
    defer s.Close()
    ctx := context.Background()
    if err := s.Save(ctx, "q", agent.Snapshot{Symbol: "X", Values: map[string]float64{"X........": 0.5}}); err != nil {
        t.Fatalf("Save: %v", err)
    }
    got, err := s.Load(ctx, "q")
    if err != nil || got.Values["X........"] != 0.5 {
        t.Fatalf("Load: %v %+v", err, got)
    }
}
