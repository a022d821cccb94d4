package agent

import (
    "errors"
    "math"
    "math/rand"
    "reflect"
    "testing"

    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

func newTestLearner(t *testing.T, seed int64, epsilon, alpha float64) *Learner {
    t.Helper()
    l, err := NewLearner(rand.New(rand.NewSource(seed)), epsilon, alpha)
    if err != nil {
        t.Fatalf("NewLearner: %v", err)
    }
    return l
}

// playOut runs one game of l as X against a random O.
func playOut(t *testing.T, l *Learner, opp Agent) {
    t.Helper()
    g := domain.New()
    for !g.Over {
        var m int
        var err error
        if g.Turn == domain.X {
            m, err = l.Move(g.Board, domain.X)
        } else {
            m, err = opp.Move(g.Board, domain.O)
        }
        if err != nil {
            t.Fatalf("move: %v", err)
        }
        if err := g.Play(m); err != nil {
            t.Fatalf("play %d: %v", m, err)
        }
    }
}

func TestNewLearnerValidatesRates(t *testing.T) {
    rng := rand.New(rand.NewSource(1))
    bad := [][2]float64{{-0.1, 0.5}, {1.1, 0.5}, {0.5, -0.01}, {0.5, 2}, {math.NaN(), 0.5}, {0.1, math.NaN()}}
    for _, ea := range bad {
        l, err := NewLearner(rng, ea[0], ea[1])
        if !errors.Is(err, ErrInvalidRate) || l != nil {
            t.Fatalf("epsilon=%v alpha=%v: expected ErrInvalidRate and no agent, got %v, %v", ea[0], ea[1], l, err)
        }
    }
    for _, ea := range [][2]float64{{0, 0}, {1, 1}, {DefaultEpsilon, DefaultAlpha}} {
        if _, err := NewLearner(rng, ea[0], ea[1]); err != nil {
            t.Fatalf("epsilon=%v alpha=%v should be accepted: %v", ea[0], ea[1], err)
        }
    }
}

func TestLearnerBindsSymbolOnce(t *testing.T) {
    l := newTestLearner(t, 1, 0, 1)
    if l.Symbol() != domain.Empty {
        t.Fatalf("expected unbound learner")
    }
    if _, err := l.Move(domain.Board{}, domain.O); err != nil {
        t.Fatalf("first move: %v", err)
    }
    if l.Symbol() != domain.O {
        t.Fatalf("expected O, got %v", l.Symbol())
    }
    if _, err := l.Move(domain.Board{}.Apply(0, domain.X), domain.O); err != nil {
        t.Fatalf("same symbol again: %v", err)
    }
    if _, err := l.Move(domain.Board{}, domain.X); !errors.Is(err, ErrSymbolMismatch) {
        t.Fatalf("expected ErrSymbolMismatch, got %v", err)
    }
    if l.Symbol() != domain.O {
        t.Fatalf("symbol changed after mismatch: %v", l.Symbol())
    }
}

func TestLearnerExhaustedBoard(t *testing.T) {
    l := newTestLearner(t, 1, 0.5, 1)
    _, err := l.Move(mustBoard(t, "XOXOXOOXO"), domain.O)
    if !errors.Is(err, domain.ErrExhausted) {
        t.Fatalf("expected ErrExhausted, got %v", err)
    }
    if l.Symbol() != domain.Empty || l.States() != 0 {
        t.Fatalf("failed move left state behind: symbol=%v states=%d", l.Symbol(), l.States())
    }
    if _, err := l.Move(domain.Board{}, domain.X); err != nil {
        t.Fatalf("learner should still take X: %v", err)
    }
}

func TestLearnerTerminalUpdate(t *testing.T) {
    l := newTestLearner(t, 3, 0, 0.5)
    b := mustBoard(t, "XX.OO....")
    next := b.Apply(2, domain.X)
    l.Store(next, 0.25)

    got, err := l.Move(b, domain.X)
    if err != nil {
        t.Fatalf("Move: %v", err)
    }
    if got != 2 {
        t.Fatalf("expected greedy move 2, got %d", got)
    }
    // 0.25 + 0.5*(1 + 0)
    if v := l.Value(next); v != 0.75 {
        t.Fatalf("expected 0.75, got %v", v)
    }
}

func TestLearnerTwoPlyUpdate(t *testing.T) {
    l := newTestLearner(t, 3, 0, 0.5)
    b := mustBoard(t, "X...O....")
    next := b.Apply(8, domain.X)
    reply := next.Apply(2, domain.O)
    l.Store(next, 0.25)
    l.Store(reply, -0.5)

    got, err := l.Move(b, domain.X)
    if err != nil {
        t.Fatalf("Move: %v", err)
    }
    if got != 8 {
        t.Fatalf("expected greedy move 8, got %d", got)
    }
    // opponent minimises and picks the -0.5 reply: 0.25 + 0.5*(0 + -0.5)
    if v := l.Value(next); v != 0 {
        t.Fatalf("expected 0, got %v", v)
    }
    if v := l.Value(reply); v != -0.5 {
        t.Fatalf("simulated reply must not be updated, got %v", v)
    }
}

func TestLearnerLossReward(t *testing.T) {
    l := newTestLearner(t, 3, 0, 1)
    if err := l.Bind(domain.X); err != nil {
        t.Fatalf("Bind: %v", err)
    }
    b := mustBoard(t, "OOOXX....")
    if r := l.reward(b); r != -1 {
        t.Fatalf("expected -1, got %v", r)
    }
    if r := l.reward(mustBoard(t, "XXXOO....")); r != 1 {
        t.Fatalf("expected 1, got %v", r)
    }
    if r := l.reward(mustBoard(t, "XO.......")); r != 0 {
        t.Fatalf("expected 0, got %v", r)
    }
}

func TestLearnerNoUpdateWhenNotLearning(t *testing.T) {
    l := newTestLearner(t, 3, 0, 0.5)
    l.SetLearning(false)
    b := mustBoard(t, "XX.OO....")
    next := b.Apply(2, domain.X)
    l.Store(next, 0.25)
    if _, err := l.Move(b, domain.X); err != nil {
        t.Fatalf("Move: %v", err)
    }
    if v := l.Value(next); v != 0.25 {
        t.Fatalf("value changed while not learning: %v", v)
    }
    if l.States() != 1 {
        t.Fatalf("table grew while not learning: %d", l.States())
    }
}

func TestLearnerGreedyIsDeterministic(t *testing.T) {
    b := mustBoard(t, "X...O....")
    for seed := int64(0); seed < 20; seed++ {
        l := newTestLearner(t, seed, 0, 1)
        l.SetLearning(false)
        for i, m := range domain.LegalMoves(b) {
            l.Store(b.Apply(m, domain.X), float64(i)/10)
        }
        got, err := l.Move(b, domain.X)
        if err != nil {
            t.Fatalf("Move: %v", err)
        }
        if got != 8 {
            t.Fatalf("seed %d: expected best-valued move 8, got %d", seed, got)
        }
    }
}

func TestLearnerBreaksTiesAtRandom(t *testing.T) {
    l := newTestLearner(t, 11, 0, 1)
    l.SetLearning(false)
    b := mustBoard(t, "X...O....")
    // 1 and 5 share the top value, everything else is unseen (0)
    l.Store(b.Apply(1, domain.X), 0.5)
    l.Store(b.Apply(5, domain.X), 0.5)
    seen := map[int]int{}
    for i := 0; i < 200; i++ {
        m, err := l.Move(b, domain.X)
        if err != nil {
            t.Fatalf("Move: %v", err)
        }
        seen[m]++
    }
    if len(seen) != 2 || seen[1] == 0 || seen[5] == 0 {
        t.Fatalf("expected ties split between 1 and 5, got %v", seen)
    }
}

func TestLearnerExploresWithEpsilonOne(t *testing.T) {
    l := newTestLearner(t, 5, 1, 1)
    b := mustBoard(t, "X...O....")
    l.Store(b.Apply(8, domain.X), 100)
    seen := map[int]bool{}
    for i := 0; i < 300; i++ {
        m, err := l.Move(b, domain.X)
        if err != nil {
            t.Fatalf("Move: %v", err)
        }
        if !domain.IsFree(b, m) {
            t.Fatalf("explored into occupied cell %d", m)
        }
        seen[m] = true
    }
    if len(seen) != 7 {
        t.Fatalf("expected all 7 legal moves explored, saw %v", seen)
    }
}

func TestLearnerKeyIsCanonical(t *testing.T) {
    l := newTestLearner(t, 1, 0, 1)
    a := domain.Board{}.Apply(0, domain.X).Apply(4, domain.O).Apply(8, domain.X)
    var b domain.Board
    b[8] = domain.X
    b[4] = domain.O
    b[0] = domain.X
    l.Store(a, 0.5)
    if v := l.Value(b); v != 0.5 {
        t.Fatalf("independently built board reads %v, want 0.5", v)
    }
    l.Store(b, -1)
    if v := l.Value(a); v != -1 || l.States() != 1 {
        t.Fatalf("expected single shared entry, got value %v, states %d", v, l.States())
    }
}

func TestLearnerSnapshotRoundTrip(t *testing.T) {
    l := newTestLearner(t, 1, 0.2, 0.9)
    opp := NewRandom(rand.New(rand.NewSource(2)))
    for i := 0; i < 200; i++ {
        playOut(t, l, opp)
    }
    if l.States() == 0 {
        t.Fatalf("expected training to populate the table")
    }

    snap := l.Snapshot()
    restored, err := Restore(snap, rand.New(rand.NewSource(42)))
    if err != nil {
        t.Fatalf("Restore: %v", err)
    }
    if !reflect.DeepEqual(restored.Snapshot(), snap) {
        t.Fatalf("restored snapshot differs")
    }
    l.rng = rand.New(rand.NewSource(42))

    g := domain.New()
    boards := []domain.Board{g.Board}
    for _, m := range []int{4, 0, 8} {
        g.Board = g.Board.Apply(m, g.Turn)
        g.Turn = domain.Opponent(g.Turn)
        boards = append(boards, g.Board)
    }
    for round := 0; round < 50; round++ {
        for _, b := range boards {
            want, err1 := l.Move(b, domain.X)
            got, err2 := restored.Move(b, domain.X)
            if err1 != nil || err2 != nil {
                t.Fatalf("Move errors: %v, %v", err1, err2)
            }
            if got != want {
                t.Fatalf("round %d board %s: restored played %d, original %d", round, domain.Key(b), got, want)
            }
        }
    }
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
    rng := rand.New(rand.NewSource(1))
    if _, err := Restore(Snapshot{Epsilon: 2}, rng); !errors.Is(err, ErrInvalidRate) {
        t.Fatalf("expected ErrInvalidRate, got %v", err)
    }
    if _, err := Restore(Snapshot{Epsilon: 0.1, Alpha: math.NaN()}, rng); !errors.Is(err, ErrInvalidRate) {
        t.Fatalf("expected ErrInvalidRate for NaN alpha, got %v", err)
    }
    if _, err := Restore(Snapshot{Values: map[string]float64{"X........": math.NaN()}}, rng); err == nil {
        t.Fatalf("expected error for NaN value")
    }
    if _, err := Restore(Snapshot{Symbol: "Q"}, rng); !errors.Is(err, ErrNoSymbol) {
        t.Fatalf("expected ErrNoSymbol, got %v", err)
    }
    if _, err := Restore(Snapshot{Values: map[string]float64{"bad": 1}}, rng); err == nil {
        t.Fatalf("expected key parse error")
    }
}
