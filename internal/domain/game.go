package domain

import "errors"

// Cell represents a board cell state. X and O double as the players' symbols.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

// String returns "X", "O" or "." for an empty cell.
func (c Cell) String() string {
    switch c {
    case X:
        return "X"
    case O:
        return "O"
    default:
        return "."
    }
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
    Board  Board
    Turn   Cell
    Winner Cell
    Over   bool
    Moves  int
}

// Errors returned by domain operations.
var (
    ErrOutOfBounds = errors.New("out of bounds")
    ErrOccupied    = errors.New("cell occupied")
    ErrGameOver    = errors.New("game over")
    ErrExhausted   = errors.New("board exhausted: no legal moves")
)

// New returns a new game with X to move.
func New() Game {
    return Game{Turn: X}
}

// Play attempts to play the current turn at cell i (0..8).
func (g *Game) Play(i int) error {
    if g.Over {
        return ErrGameOver
    }
    if i < 0 || i >= len(g.Board) {
        return ErrOutOfBounds
    }
    if !IsFree(g.Board, i) {
        return ErrOccupied
    }

    g.Board = g.Board.Apply(i, g.Turn)
    g.Moves++

    if IsWinner(g.Board, g.Turn) {
        g.Winner = g.Turn
        g.Over = true
        return nil
    }

    if IsBoardFull(g.Board) {
        g.Winner = Empty
        g.Over = true
        return nil
    }

    g.Turn = Opponent(g.Turn)
    return nil
}

// Result reports the winner, or Empty for a draw. ok is false while the game is running.
func (g Game) Result() (winner Cell, ok bool) {
    return g.Winner, g.Over
}
