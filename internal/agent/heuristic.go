package agent

import (
    "sort"

    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// Scores used by the heuristic evaluation.
const (
    WinScore    = 1000
    ThreatScore = 500
    LosingScore = 0
)

// cellWeights: center 4, corners 2, edges 1.
var cellWeights = [9]int{
    2, 1, 2,
    1, 4, 1,
    2, 1, 2,
}

// Heuristic scores each move one ply ahead with a fixed formula and plays the best.
// It is deterministic and stateless.
type Heuristic struct{}

// NewHeuristic returns a heuristic agent.
func NewHeuristic() *Heuristic { return &Heuristic{} }

type scored struct {
    score int
    move  int
}

// Move ranks the candidates by (score, move) descending, so equal scores go to
// the larger index.
func (h *Heuristic) Move(b domain.Board, side domain.Cell) (int, error) {
    if err := checkSide(side); err != nil {
        return 0, err
    }
    scenarios, err := Explore(b, side)
    if err != nil {
        return 0, err
    }
    ranked := make([]scored, 0, len(scenarios))
    for _, s := range scenarios {
        ranked = append(ranked, scored{score: h.Evaluate(s.Board, side), move: s.Move})
    }
    sort.Slice(ranked, func(i, j int) bool {
        if ranked[i].score != ranked[j].score {
            return ranked[i].score > ranked[j].score
        }
        return ranked[i].move > ranked[j].move
    })
    return ranked[0].move, nil
}

// Evaluate scores a board reached after side has moved.
//
// An opponent threat scores LosingScore even when the move could not have
// prevented it; the agent does not look any further to tell the two apart.
func (h *Heuristic) Evaluate(b domain.Board, side domain.Cell) int {
    if domain.IsWinner(b, side) {
        return WinScore
    }
    if domain.CanWin(b, domain.Opponent(side)) {
        return LosingScore
    }
    if domain.CanWin(b, side) {
        return ThreatScore
    }
    score := 0
    for i, c := range b {
        if c == side {
            score += cellWeights[i]
        }
    }
    return score
}
