package domain

import (
    "fmt"
    "strings"
)

// Lines are the eight winning index triples.
var Lines = [8][3]int{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// Opponent maps X to O and O to X. Empty maps to itself.
func Opponent(c Cell) Cell {
    switch c {
    case X:
        return O
    case O:
        return X
    default:
        return Empty
    }
}

// IsFree reports whether cell i holds no mark.
func IsFree(b Board, i int) bool {
    return b[i] == Empty
}

// IsWinner reports whether side occupies a full line.
func IsWinner(b Board, side Cell) bool {
    if side == Empty {
        return false
    }
    for _, ln := range Lines {
        if b[ln[0]] == side && b[ln[1]] == side && b[ln[2]] == side {
            return true
        }
    }
    return false
}

// IsBoardFull reports whether no cell is empty.
func IsBoardFull(b Board) bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    return true
}

// CanWin reports whether side wins by playing some free cell now.
func CanWin(b Board, side Cell) bool {
    for _, i := range LegalMoves(b) {
        if IsWinner(b.Apply(i, side), side) {
            return true
        }
    }
    return false
}

// IsTerminal reports whether either side has won or the board is full.
func IsTerminal(b Board) bool {
    return IsWinner(b, X) || IsWinner(b, O) || IsBoardFull(b)
}

// LegalMoves returns the free cells in ascending order.
func LegalMoves(b Board) []int {
    moves := make([]int, 0, len(b))
    for i := range b {
        if IsFree(b, i) {
            moves = append(moves, i)
        }
    }
    return moves
}

// Apply returns a copy of b with side placed at i. b itself is left untouched.
func (b Board) Apply(i int, side Cell) Board {
    b[i] = side
    return b
}

// Key renders the board as nine characters, one per cell.
func Key(b Board) string {
    var sb strings.Builder
    sb.Grow(len(b))
    for _, c := range b {
        sb.WriteString(c.String())
    }
    return sb.String()
}

// ParseKey is the inverse of Key.
func ParseKey(s string) (Board, error) {
    var b Board
    if len(s) != len(b) {
        return b, fmt.Errorf("parse board key %q: want %d cells, got %d", s, len(b), len(s))
    }
    for i := 0; i < len(s); i++ {
        switch s[i] {
        case 'X':
            b[i] = X
        case 'O':
            b[i] = O
        case '.':
            b[i] = Empty
        default:
            return b, fmt.Errorf("parse board key %q: bad cell %q at %d", s, s[i], i)
        }
    }
    return b, nil
}

// ParseCell parses "X" or "O". Anything else is Empty.
func ParseCell(s string) Cell {
    switch strings.ToUpper(strings.TrimSpace(s)) {
    case "X":
        return X
    case "O":
        return O
    default:
        return Empty
    }
}

// String draws the board as three rows.
func (b Board) String() string {
    var sb strings.Builder
    for r := 0; r < 3; r++ {
        for c := 0; c < 3; c++ {
            if c > 0 {
                sb.WriteByte(' ')
            }
            sb.WriteString(b[r*3+c].String())
        }
        sb.WriteByte('\n')
    }
    return sb.String()
}
