package store

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io/fs"
    "os"
    "path/filepath"
    "sort"
    "strings"

    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
)

const fileExt = ".json"

// FileStore writes each snapshot to <dir>/<name>.json.
type FileStore struct {
    dir string
    log zerolog.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
    if dir == "" {
        dir = "."
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return nil, fmt.Errorf("mkdir %s: %w", dir, err)
    }
    return &FileStore{dir: dir, log: logger.With().Str("store", "file").Logger()}, nil
}

func (f *FileStore) path(name string) (string, error) {
    if err := checkName(name); err != nil {
        return "", err
    }
    if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
        return "", fmt.Errorf("invalid agent name %q", name)
    }
    return filepath.Join(f.dir, name+fileExt), nil
}

// Save writes to a temp file and renames it into place.
func (f *FileStore) Save(_ context.Context, name string, snap agent.Snapshot) error {
    p, err := f.path(name)
    if err != nil {
        return err
    }
    data, err := json.Marshal(snap)
    if err != nil {
        return fmt.Errorf("encode %s: %w", name, err)
    }
    tmp := p + ".tmp"
    if err := os.WriteFile(tmp, data, 0o644); err != nil {
        return fmt.Errorf("write %s: %w", tmp, err)
    }
    if err := os.Rename(tmp, p); err != nil {
        return fmt.Errorf("rename %s: %w", tmp, err)
    }
    f.log.Info().Str("agent", name).Int("states", len(snap.Values)).Msg("saved")
    return nil
}

func (f *FileStore) Load(_ context.Context, name string) (agent.Snapshot, error) {
    p, err := f.path(name)
    if err != nil {
        return agent.Snapshot{}, err
    }
    data, err := os.ReadFile(p)
    if errors.Is(err, fs.ErrNotExist) {
        return agent.Snapshot{}, ErrNotFound
    }
    if err != nil {
        return agent.Snapshot{}, fmt.Errorf("read %s: %w", p, err)
    }
    var snap agent.Snapshot
    if err := json.Unmarshal(data, &snap); err != nil {
        return agent.Snapshot{}, fmt.Errorf("decode %s: %w", p, err)
    }
    if snap.Values == nil {
        snap.Values = map[string]float64{}
    }
    return snap, nil
}

func (f *FileStore) List(_ context.Context) ([]string, error) {
    entries, err := os.ReadDir(f.dir)
    if err != nil {
        return nil, fmt.Errorf("read dir %s: %w", f.dir, err)
    }
    var names []string
    for _, e := range entries {
        if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
            continue
        }
        names = append(names, strings.TrimSuffix(e.Name(), fileExt))
    }
    sort.Strings(names)
    return names, nil
}

func (f *FileStore) Close() error { return nil }
