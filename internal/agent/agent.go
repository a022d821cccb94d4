// Package agent holds the tic-tac-toe players: a heuristic evaluator, a tabular
// value learner and a uniform random baseline. All of them choose a free cell
// for the symbol they are asked to play.
package agent

import (
    "errors"

    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// Errors returned by agents.
var (
    ErrInvalidRate    = errors.New("rate must be between 0 and 1")
    ErrSymbolMismatch = errors.New("agent already bound to another symbol")
    ErrNoSymbol       = errors.New("symbol must be X or O")
)

// Agent picks a cell for side to play on b.
type Agent interface {
    Move(b domain.Board, side domain.Cell) (int, error)
}

// Scenario pairs a legal move with the board it produces.
type Scenario struct {
    Move  int
    Board domain.Board
}

// Explore lists every legal move for side together with its resulting board.
// It fails with domain.ErrExhausted when no cell is free.
func Explore(b domain.Board, side domain.Cell) ([]Scenario, error) {
    moves := domain.LegalMoves(b)
    if len(moves) == 0 {
        return nil, domain.ErrExhausted
    }
    out := make([]Scenario, 0, len(moves))
    for _, m := range moves {
        out = append(out, Scenario{Move: m, Board: b.Apply(m, side)})
    }
    return out, nil
}

func checkSide(side domain.Cell) error {
    if side != domain.X && side != domain.O {
        return ErrNoSymbol
    }
    return nil
}
