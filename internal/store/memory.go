package store

import (
    "context"
    "sort"
    "sync"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
)

// MemoryStore keeps snapshots in a map. State is lost on restart.
type MemoryStore struct {
    mu    sync.RWMutex
    snaps map[string]agent.Snapshot
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{snaps: make(map[string]agent.Snapshot)}
}

func (m *MemoryStore) Save(_ context.Context, name string, snap agent.Snapshot) error {
    if err := checkName(name); err != nil {
        return err
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    m.snaps[name] = copySnapshot(snap)
    return nil
}

func (m *MemoryStore) Load(_ context.Context, name string) (agent.Snapshot, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    snap, ok := m.snaps[name]
    if !ok {
        return agent.Snapshot{}, ErrNotFound
    }
    return copySnapshot(snap), nil
}

func (m *MemoryStore) List(_ context.Context) ([]string, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    names := make([]string, 0, len(m.snaps))
    for n := range m.snaps {
        names = append(names, n)
    }
    sort.Strings(names)
    return names, nil
}

func (m *MemoryStore) Close() error { return nil }

// copySnapshot detaches the value map so callers cannot alias stored state.
func copySnapshot(s agent.Snapshot) agent.Snapshot {
    values := make(map[string]float64, len(s.Values))
    for k, v := range s.Values {
        values[k] = v
    }
    s.Values = values
    return s
}
