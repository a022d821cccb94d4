package agent

import (
    "fmt"
    "math"
    "math/rand"
    "sort"

    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// Snapshot is the persisted form of a Learner. Values are keyed by domain.Key.
type Snapshot struct {
    Symbol   string             `json:"symbol"`
    Epsilon  float64            `json:"epsilon"`
    Alpha    float64            `json:"alpha"`
    Learning bool               `json:"learning"`
    Values   map[string]float64 `json:"values"`
}

// Snapshot copies the learner's state out.
func (l *Learner) Snapshot() Snapshot {
    snap := Snapshot{
        Epsilon:  l.epsilon,
        Alpha:    l.alpha,
        Learning: l.learning,
        Values:   make(map[string]float64, len(l.values)),
    }
    if l.symbol != domain.Empty {
        snap.Symbol = l.symbol.String()
    }
    for b, v := range l.values {
        snap.Values[domain.Key(b)] = v
    }
    return snap
}

// Restore rebuilds a learner from snap, drawing randomness from rng.
func Restore(snap Snapshot, rng *rand.Rand) (*Learner, error) {
    l, err := NewLearner(rng, snap.Epsilon, snap.Alpha)
    if err != nil {
        return nil, err
    }
    l.learning = snap.Learning
    if snap.Symbol != "" {
        if err := l.Bind(domain.ParseCell(snap.Symbol)); err != nil {
            return nil, fmt.Errorf("restore symbol %q: %w", snap.Symbol, err)
        }
    }
    for key, v := range snap.Values {
        b, err := domain.ParseKey(key)
        if err != nil {
            return nil, fmt.Errorf("restore: %w", err)
        }
        if math.IsNaN(v) || math.IsInf(v, 0) {
            return nil, fmt.Errorf("restore %s: value %v", key, v)
        }
        l.values[b] = v
    }
    return l, nil
}

// Keys returns the snapshot's state keys in sorted order.
func (s Snapshot) Keys() []string {
    keys := make([]string, 0, len(s.Values))
    for k := range s.Values {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    return keys
}
