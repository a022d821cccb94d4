package agent

import (
    "fmt"
    "math/rand"

    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// Defaults for NewLearner callers without an opinion.
const (
    DefaultEpsilon = 0.1
    DefaultAlpha   = 1.0
)

// Learner keeps a value per board state and plays epsilon-greedy over it.
// While learning, each Move backs the value of the chosen board up from a
// simulated opponent reply.
type Learner struct {
    rng      *rand.Rand
    symbol   domain.Cell
    learning bool
    epsilon  float64
    alpha    float64
    values   map[domain.Board]float64
}

// NewLearner returns a learner with an empty table and learning switched on.
// epsilon is the exploration rate and alpha the learning rate; both must lie in [0, 1].
func NewLearner(rng *rand.Rand, epsilon, alpha float64) (*Learner, error) {
    if !(epsilon >= 0 && epsilon <= 1) {
        return nil, fmt.Errorf("epsilon %v: %w", epsilon, ErrInvalidRate)
    }
    if !(alpha >= 0 && alpha <= 1) {
        return nil, fmt.Errorf("alpha %v: %w", alpha, ErrInvalidRate)
    }
    return &Learner{
        rng:      rng,
        learning: true,
        epsilon:  epsilon,
        alpha:    alpha,
        values:   make(map[domain.Board]float64),
    }, nil
}

// Symbol returns the bound symbol, or domain.Empty before the first move.
func (l *Learner) Symbol() domain.Cell { return l.symbol }

func (l *Learner) Epsilon() float64 { return l.epsilon }
func (l *Learner) Alpha() float64   { return l.alpha }

// Learning reports whether Move updates the table.
func (l *Learner) Learning() bool { return l.learning }

// SetLearning toggles the update step. Move selection is unaffected apart from
// exploration, which only happens while learning.
func (l *Learner) SetLearning(on bool) { l.learning = on }

// Bind fixes the learner's symbol. Binding again to the same symbol is a no-op.
func (l *Learner) Bind(side domain.Cell) error {
    if err := checkSide(side); err != nil {
        return err
    }
    if l.symbol == domain.Empty {
        l.symbol = side
        return nil
    }
    if l.symbol != side {
        return fmt.Errorf("bound to %v, asked to play %v: %w", l.symbol, side, ErrSymbolMismatch)
    }
    return nil
}

// Value returns the learned value of b, 0 if unseen.
func (l *Learner) Value(b domain.Board) float64 {
    return l.values[b]
}

// Store sets the value of b.
func (l *Learner) Store(b domain.Board, v float64) {
    l.values[b] = v
}

// States returns the number of boards in the table.
func (l *Learner) States() int { return len(l.values) }

// Move binds the symbol on first use, selects a move and, while learning,
// updates the value of the resulting board. A full board leaves the learner unbound.
func (l *Learner) Move(b domain.Board, side domain.Cell) (int, error) {
    if err := checkSide(side); err != nil {
        return 0, err
    }
    if domain.IsBoardFull(b) {
        return 0, domain.ErrExhausted
    }
    if err := l.Bind(side); err != nil {
        return 0, err
    }
    move, err := l.selectMove(b, side)
    if err != nil {
        return 0, err
    }
    if l.learning {
        if err := l.learn(b.Apply(move, side), side); err != nil {
            return 0, err
        }
    }
    return move, nil
}

// learn backs up next from the simulated opponent reply.
func (l *Learner) learn(next domain.Board, side domain.Cell) error {
    var continuation float64
    if !domain.IsTerminal(next) {
        other := domain.Opponent(side)
        reply, err := l.selectMove(next, other)
        if err != nil {
            return err
        }
        continuation = l.Value(next.Apply(reply, other))
    }
    v := l.Value(next) + l.alpha*(l.reward(next)+continuation)
    l.Store(next, v)
    return nil
}

func (l *Learner) reward(b domain.Board) float64 {
    switch {
    case domain.IsWinner(b, l.symbol):
        return 1
    case domain.IsWinner(b, domain.Opponent(l.symbol)):
        return -1
    default:
        return 0
    }
}

// selectMove is epsilon-greedy. It maximises the table value for the bound
// symbol and minimises it when simulating the opponent. Ties are broken at random.
func (l *Learner) selectMove(b domain.Board, side domain.Cell) (int, error) {
    scenarios, err := Explore(b, side)
    if err != nil {
        return 0, err
    }
    if l.learning && l.rng.Float64() < l.epsilon {
        return scenarios[l.rng.Intn(len(scenarios))].Move, nil
    }

    maximise := side == l.symbol
    best := l.Value(scenarios[0].Board)
    options := []int{scenarios[0].Move}
    for _, s := range scenarios[1:] {
        v := l.Value(s.Board)
        switch {
        case v == best:
            options = append(options, s.Move)
        case (maximise && v > best) || (!maximise && v < best):
            best = v
            options = append(options[:0], s.Move)
        }
    }
    return options[l.rng.Intn(len(options))], nil
}
