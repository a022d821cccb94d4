package main

import (
    "context"
    "errors"
    "math/rand"
    "net/http"
    "os"
    "time"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
    "github.com/jaminalder/tictactoe-agents/internal/app"
    "github.com/jaminalder/tictactoe-agents/internal/config"
    "github.com/jaminalder/tictactoe-agents/internal/store"
    "github.com/jaminalder/tictactoe-agents/internal/web"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        log.Fatal().Err(err).Msg("bad config")
    }
    zerolog.SetGlobalLevel(cfg.LogLevel)
    logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

    seed := cfg.Seed
    if seed == 0 {
        seed = time.Now().UnixNano()
    }
    rng := rand.New(rand.NewSource(seed))

    st, err := store.Open(cfg.StoreDriver, cfg.StoreDSN, logger)
    if err != nil {
        logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
    }
    defer st.Close()

    learner, err := store.LoadLearner(context.Background(), st, cfg.AgentName, rng)
    switch {
    case errors.Is(err, store.ErrNotFound):
        logger.Warn().Str("agent", cfg.AgentName).Msg("no trained learner stored, serving an untrained one")
        learner, err = agent.NewLearner(rng, cfg.Epsilon, cfg.Alpha)
        if err != nil {
            logger.Fatal().Err(err).Msg("failed to create learner")
        }
    case err != nil:
        logger.Fatal().Err(err).Str("agent", cfg.AgentName).Msg("failed to load learner")
    default:
        logger.Info().Str("agent", cfg.AgentName).Int("states", learner.States()).Stringer("symbol", learner.Symbol()).Msg("learner loaded")
    }
    learner.SetLearning(false)

    svc := app.NewService(app.Bots{
        "heuristic": agent.NewHeuristic(),
        "random":    agent.NewRandom(rng),
        "learner":   learner,
    }, logger)

    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           web.NewServer(svc, logger),
        ReadHeaderTimeout: 10 * time.Second,
    }
    logger.Info().Str("addr", cfg.Addr).Msg("starting tictactoe-server")
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        logger.Fatal().Err(err).Msg("server exited")
    }
}
