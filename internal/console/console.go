// Package console drives a human-versus-agent game over a text stream.
package console

import (
    "bufio"
    "errors"
    "fmt"
    "io"
    "strconv"
    "strings"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// ErrQuit is returned when the human types "q" or input ends mid-game.
var ErrQuit = errors.New("game abandoned")

// Session is one console game. Human picks the human's side; the bot plays the other.
type Session struct {
    In    io.Reader
    Out   io.Writer
    Bot   agent.Agent
    Human domain.Cell
}

// Run plays a single game to completion and returns the final state.
func (s Session) Run() (domain.Game, error) {
    human := s.Human
    if human != domain.O {
        human = domain.X
    }
    sc := bufio.NewScanner(s.In)
    g := domain.New()

    for !g.Over {
        if g.Turn != human {
            m, err := s.Bot.Move(g.Board, g.Turn)
            if err != nil {
                return g, fmt.Errorf("bot move: %w", err)
            }
            if err := g.Play(m); err != nil {
                return g, fmt.Errorf("bot played %d: %w", m, err)
            }
            fmt.Fprintf(s.Out, "%v plays %d\n", g.Board[m], m)
            continue
        }

        fmt.Fprint(s.Out, render(g.Board))
        fmt.Fprintf(s.Out, "your move (%v), 0-8 or q: ", human)
        if !sc.Scan() {
            if err := sc.Err(); err != nil {
                return g, err
            }
            return g, ErrQuit
        }
        text := strings.TrimSpace(sc.Text())
        if text == "q" {
            return g, ErrQuit
        }
        m, err := strconv.Atoi(text)
        if err != nil {
            fmt.Fprintf(s.Out, "not a cell: %q\n", text)
            continue
        }
        if err := g.Play(m); err != nil {
            fmt.Fprintf(s.Out, "cannot play %d: %v\n", m, err)
            continue
        }
    }

    fmt.Fprint(s.Out, render(g.Board))
    switch g.Winner {
    case domain.Empty:
        fmt.Fprintln(s.Out, "draw")
    case human:
        fmt.Fprintln(s.Out, "you win")
    default:
        fmt.Fprintf(s.Out, "%v wins\n", g.Winner)
    }
    return g, nil
}

// render shows marks, and the index of every free cell.
func render(b domain.Board) string {
    var sb strings.Builder
    for r := 0; r < 3; r++ {
        for c := 0; c < 3; c++ {
            i := r*3 + c
            if c > 0 {
                sb.WriteString(" | ")
            }
            if b[i] == domain.Empty {
                sb.WriteString(strconv.Itoa(i))
            } else {
                sb.WriteString(b[i].String())
            }
        }
        sb.WriteByte('\n')
        if r < 2 {
            sb.WriteString("--+---+--\n")
        }
    }
    return sb.String()
}
