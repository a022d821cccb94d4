// Package config reads runtime settings from the environment, with an optional
// .env file loaded first.
package config

import (
    "fmt"
    "os"
    "strconv"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
)

// Config holds settings shared by the commands.
type Config struct {
    Addr        string
    LogLevel    zerolog.Level
    StoreDriver string
    StoreDSN    string
    AgentName   string
    Epsilon     float64
    Alpha       float64
    Seed        int64
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
    _ = godotenv.Load()

    cfg := Config{
        Addr:        getEnv("ADDR", ":8080"),
        StoreDriver: getEnv("STORE_DRIVER", "file"),
        StoreDSN:    getEnv("STORE_DSN", "data/agents"),
        AgentName:   getEnv("AGENT_NAME", "learner"),
    }

    lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
    if err != nil {
        return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
    }
    cfg.LogLevel = lvl

    if cfg.Epsilon, err = getFloat("EPSILON", agent.DefaultEpsilon); err != nil {
        return cfg, err
    }
    if cfg.Alpha, err = getFloat("ALPHA", agent.DefaultAlpha); err != nil {
        return cfg, err
    }
    if cfg.Seed, err = getInt("SEED", 0); err != nil {
        return cfg, err
    }
    return cfg, nil
}

func getEnv(k, def string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return def
}

func getFloat(k string, def float64) (float64, error) {
    v := os.Getenv(k)
    if v == "" {
        return def, nil
    }
    f, err := strconv.ParseFloat(v, 64)
    if err != nil {
        return 0, fmt.Errorf("%s: %w", k, err)
    }
    return f, nil
}

func getInt(k string, def int64) (int64, error) {
    v := os.Getenv(k)
    if v == "" {
        return def, nil
    }
    n, err := strconv.ParseInt(v, 10, 64)
    if err != nil {
        return 0, fmt.Errorf("%s: %w", k, err)
    }
    return n, nil
}
