package agent

import (
    "math/rand"

    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// Random plays a uniformly chosen legal move.
type Random struct {
    rng *rand.Rand
}

// NewRandom returns a random agent drawing from rng.
func NewRandom(rng *rand.Rand) *Random {
    return &Random{rng: rng}
}

func (r *Random) Move(b domain.Board, side domain.Cell) (int, error) {
    moves := domain.LegalMoves(b)
    if len(moves) == 0 {
        return 0, domain.ErrExhausted
    }
    return moves[r.rng.Intn(len(moves))], nil
}
