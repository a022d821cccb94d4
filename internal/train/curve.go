package train

import (
    "encoding/csv"
    "errors"
    "fmt"
    "io"
    "strconv"
    "time"

    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
)

// CurveConfig drives Curve. Each iteration trains for Trainings games and then
// validates for Validations games.
type CurveConfig struct {
    Iterations     int
    Trainings      int
    Validations    int
    ReportInterval int // log every N iterations; 0 disables progress logs
    Logger         zerolog.Logger
}

// Point is one validation measurement on the curve.
type Point struct {
    Iteration int    `json:"iteration"`
    Trained   int    `json:"trained"`
    States    int    `json:"states"`
    Result    Result `json:"result"`
}

// Curve alternates training and validation and returns one Point per
// iteration. The first point is taken before any training.
func Curve(l *agent.Learner, opponent agent.Agent, cfg CurveConfig) ([]Point, error) {
    if cfg.Iterations <= 0 || cfg.Validations <= 0 || cfg.Trainings < 0 {
        return nil, errors.New("iterations and validations must be positive")
    }
    log := cfg.Logger.With().Str("component", "curve").Logger()
    start := time.Now()
    points := make([]Point, 0, cfg.Iterations+1)
    trained := 0

    measure := func(iter int) error {
        x, o := seat(l, opponent)
        res, err := Validate(x, o, cfg.Validations)
        if err != nil {
            return err
        }
        points = append(points, Point{Iteration: iter, Trained: trained, States: l.States(), Result: res})
        return nil
    }

    if err := measure(0); err != nil {
        return points, err
    }
    for iter := 1; iter <= cfg.Iterations; iter++ {
        if _, err := Train(l, opponent, cfg.Trainings); err != nil {
            return points, err
        }
        trained += cfg.Trainings
        if err := measure(iter); err != nil {
            return points, err
        }
        if cfg.ReportInterval > 0 && (iter%cfg.ReportInterval == 0 || iter == cfg.Iterations) {
            p := points[len(points)-1]
            log.Info().
                Int("iteration", iter).
                Int("trained", trained).
                Int("states", p.States).
                Float64("win_rate", p.Result.Rate(l.Symbol())).
                Dur("elapsed", time.Since(start)).
                Msg("validation")
        }
    }
    return points, nil
}

// WriteCSV writes one row per point with outcome counts and rates.
func WriteCSV(w io.Writer, points []Point) error {
    cw := csv.NewWriter(w)
    if err := cw.Write([]string{"iteration", "trained", "states", "x_wins", "o_wins", "draws", "x_rate", "o_rate", "draw_rate"}); err != nil {
        return err
    }
    for _, p := range points {
        r := p.Result
        row := []string{
            strconv.Itoa(p.Iteration),
            strconv.Itoa(p.Trained),
            strconv.Itoa(p.States),
            strconv.Itoa(r.XWins),
            strconv.Itoa(r.OWins),
            strconv.Itoa(r.Draws),
            fmtRate(r.XWins, r.Games()),
            fmtRate(r.OWins, r.Games()),
            fmtRate(r.Draws, r.Games()),
        }
        if err := cw.Write(row); err != nil {
            return fmt.Errorf("write row %d: %w", p.Iteration, err)
        }
    }
    cw.Flush()
    return cw.Error()
}

func fmtRate(n, total int) string {
    if total == 0 {
        return "0"
    }
    return strconv.FormatFloat(float64(n)/float64(total), 'f', 4, 64)
}
