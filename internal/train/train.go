// Package train runs agent-vs-agent games to fill a learner's value table and
// to measure how well it plays.
package train

import (
    "fmt"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// Result counts finished games by outcome.
type Result struct {
    XWins int `json:"x_wins"`
    OWins int `json:"o_wins"`
    Draws int `json:"draws"`
}

// Games is the number of games counted.
func (r Result) Games() int { return r.XWins + r.OWins + r.Draws }

// Rate returns the share of games won by side, or drawn when side is Empty.
func (r Result) Rate(side domain.Cell) float64 {
    n := r.Games()
    if n == 0 {
        return 0
    }
    switch side {
    case domain.X:
        return float64(r.XWins) / float64(n)
    case domain.O:
        return float64(r.OWins) / float64(n)
    default:
        return float64(r.Draws) / float64(n)
    }
}

func (r *Result) add(g domain.Game) {
    switch g.Winner {
    case domain.X:
        r.XWins++
    case domain.O:
        r.OWins++
    default:
        r.Draws++
    }
}

// PlayGame alternates x and o from an empty board until the game ends.
func PlayGame(x, o agent.Agent) (domain.Game, error) {
    g := domain.New()
    for !g.Over {
        a := x
        if g.Turn == domain.O {
            a = o
        }
        m, err := a.Move(g.Board, g.Turn)
        if err != nil {
            return g, fmt.Errorf("%v to move after %d moves: %w", g.Turn, g.Moves, err)
        }
        if err := g.Play(m); err != nil {
            return g, fmt.Errorf("%v played %d: %w", g.Turn, m, err)
        }
    }
    return g, nil
}

// Train plays games with learning switched on. The learner keeps its bound
// side, or plays X when still unbound.
func Train(l *agent.Learner, opponent agent.Agent, games int) (Result, error) {
    prev := l.Learning()
    l.SetLearning(true)
    defer l.SetLearning(prev)

    x, o := seat(l, opponent)
    var res Result
    for i := 0; i < games; i++ {
        g, err := PlayGame(x, o)
        if err != nil {
            return res, fmt.Errorf("training game %d: %w", i, err)
        }
        res.add(g)
    }
    return res, nil
}

// Validate plays games without learning. Any learner taking part has its
// learning flag switched off for the duration.
func Validate(x, o agent.Agent, games int) (Result, error) {
    for _, a := range []agent.Agent{x, o} {
        if l, ok := a.(*agent.Learner); ok {
            prev := l.Learning()
            l.SetLearning(false)
            defer l.SetLearning(prev)
        }
    }
    var res Result
    for i := 0; i < games; i++ {
        g, err := PlayGame(x, o)
        if err != nil {
            return res, fmt.Errorf("validation game %d: %w", i, err)
        }
        res.add(g)
    }
    return res, nil
}

// seat returns (x, o) with the learner on its own side.
func seat(l *agent.Learner, opponent agent.Agent) (agent.Agent, agent.Agent) {
    if l.Symbol() == domain.O {
        return opponent, l
    }
    return l, opponent
}
