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
    "github.com/jaminalder/tictactoe-agents/internal/console"
    "github.com/jaminalder/tictactoe-agents/internal/domain"
    "github.com/jaminalder/tictactoe-agents/internal/store"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        log.Fatal().Err(err).Msg("bad config")
    }

    bot := flag.String("bot", "learner", "Opponent: learner, heuristic or random")
    name := flag.String("name", cfg.AgentName, "Stored learner to play against")
    side := flag.String("side", "O", "Your side: X or O")
    flag.Parse()

    zerolog.SetGlobalLevel(cfg.LogLevel)
    logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

    seed := cfg.Seed
    if seed == 0 {
        seed = time.Now().UnixNano()
    }
    rng := rand.New(rand.NewSource(seed))

    human := domain.ParseCell(*side)
    if human == domain.Empty {
        logger.Fatal().Str("side", *side).Msg("side must be X or O")
    }

    var a agent.Agent
    switch *bot {
    case "heuristic":
        a = agent.NewHeuristic()
    case "random":
        a = agent.NewRandom(rng)
    case "learner":
        l, err := loadLearner(cfg, *name, rng, logger)
        if err != nil {
            logger.Fatal().Err(err).Str("agent", *name).Msg("failed to load learner")
        }
        if s := l.Symbol(); s != domain.Empty && s == human {
            logger.Fatal().Stringer("side", human).Msg("the learner was trained on that side, pick the other")
        }
        a = l
    default:
        logger.Fatal().Str("bot", *bot).Msg("unknown bot")
    }

    _, err = console.Session{In: os.Stdin, Out: os.Stdout, Bot: a, Human: human}.Run()
    if errors.Is(err, console.ErrQuit) {
        return
    }
    if err != nil {
        logger.Fatal().Err(err).Msg("game failed")
    }
}

// loadLearner returns the stored learner with learning off, or a fresh one
// when nothing is stored under name.
func loadLearner(cfg config.Config, name string, rng *rand.Rand, logger zerolog.Logger) (*agent.Learner, error) {
    st, err := store.Open(cfg.StoreDriver, cfg.StoreDSN, logger)
    if err != nil {
        return nil, err
    }
    defer st.Close()
    l, err := store.LoadLearner(context.Background(), st, name, rng)
    if errors.Is(err, store.ErrNotFound) {
        logger.Warn().Str("agent", name).Msg("no trained learner stored, playing an untrained one")
        l, err = agent.NewLearner(rng, cfg.Epsilon, cfg.Alpha)
    }
    if err != nil {
        return nil, err
    }
    l.SetLearning(false)
    return l, nil
}
