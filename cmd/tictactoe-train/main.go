package main

import (
    "context"
    "errors"
    "flag"
    "math/rand"
    "os"
    "time"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
    "github.com/jaminalder/tictactoe-agents/internal/config"
    "github.com/jaminalder/tictactoe-agents/internal/domain"
    "github.com/jaminalder/tictactoe-agents/internal/store"
    "github.com/jaminalder/tictactoe-agents/internal/train"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        log.Fatal().Err(err).Msg("bad config")
    }

    games := flag.Int("games", 10000, "Training games when no curve is requested")
    iterations := flag.Int("iterations", 0, "Curve iterations (0 trains without a curve)")
    trainings := flag.Int("trainings", 1000, "Training games per curve iteration")
    validations := flag.Int("validations", 100, "Validation games per curve iteration")
    epsilon := flag.Float64("epsilon", cfg.Epsilon, "Exploration rate for a new learner")
    alpha := flag.Float64("alpha", cfg.Alpha, "Learning rate for a new learner")
    seed := flag.Int64("seed", cfg.Seed, "Random seed (0 uses the clock)")
    name := flag.String("name", cfg.AgentName, "Name the learner is saved under")
    opponent := flag.String("opponent", "heuristic", "Training opponent: random or heuristic")
    curvePath := flag.String("curve", "", "Write the validation curve as CSV to this path")
    load := flag.Bool("load", false, "Continue training the stored learner with -name")
    report := flag.Int("report", 10, "Log progress every N curve iterations")
    flag.Parse()

    zerolog.SetGlobalLevel(cfg.LogLevel)
    logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

    if *seed == 0 {
        *seed = time.Now().UnixNano()
    }
    rng := rand.New(rand.NewSource(*seed))

    var opp agent.Agent
    switch *opponent {
    case "random":
        opp = agent.NewRandom(rng)
    case "heuristic":
        opp = agent.NewHeuristic()
    default:
        logger.Fatal().Str("opponent", *opponent).Msg("unknown opponent")
    }

    st, err := store.Open(cfg.StoreDriver, cfg.StoreDSN, logger)
    if err != nil {
        logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
    }
    defer st.Close()
    ctx := context.Background()

    var l *agent.Learner
    if *load {
        l, err = store.LoadLearner(ctx, st, *name, rng)
        if err != nil && !errors.Is(err, store.ErrNotFound) {
            logger.Fatal().Err(err).Str("agent", *name).Msg("failed to load learner")
        }
    }
    if l == nil {
        l, err = agent.NewLearner(rng, *epsilon, *alpha)
        if err != nil {
            logger.Fatal().Err(err).Msg("failed to create learner")
        }
        if err := l.Bind(domain.X); err != nil {
            logger.Fatal().Err(err).Msg("failed to bind learner")
        }
    }

    start := time.Now()
    if *iterations > 0 {
        points, err := train.Curve(l, opp, train.CurveConfig{
            Iterations:     *iterations,
            Trainings:      *trainings,
            Validations:    *validations,
            ReportInterval: *report,
            Logger:         logger,
        })
        if err != nil {
            logger.Fatal().Err(err).Msg("curve failed")
        }
        if *curvePath != "" {
            if err := writeCurve(*curvePath, points); err != nil {
                logger.Fatal().Err(err).Str("path", *curvePath).Msg("failed to write curve")
            }
            logger.Info().Str("path", *curvePath).Int("points", len(points)).Msg("curve written")
        }
    } else {
        res, err := train.Train(l, opp, *games)
        if err != nil {
            logger.Fatal().Err(err).Msg("training failed")
        }
        logger.Info().Int("x_wins", res.XWins).Int("o_wins", res.OWins).Int("draws", res.Draws).Msg("training results")
    }

    l.SetLearning(false)
    if err := st.Save(ctx, *name, l.Snapshot()); err != nil {
        logger.Fatal().Err(err).Str("agent", *name).Msg("failed to save learner")
    }
    logger.Info().
        Str("agent", *name).
        Str("opponent", *opponent).
        Int("states", l.States()).
        Dur("took", time.Since(start)).
        Msg("training complete")
}

func writeCurve(path string, points []train.Point) error {
    f, err := os.Create(path)
    if err != nil {
        return err
    }
    if err := train.WriteCSV(f, points); err != nil {
        f.Close()
        return err
    }
    return f.Close()
}
