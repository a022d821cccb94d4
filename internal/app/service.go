package app

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/agent"
    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
    ErrNotAPlayer  = errors.New("not a player")
    ErrUnknownBot  = errors.New("unknown bot")
)

// Bots maps a bot kind ("heuristic", "random", "learner") to the agent playing it.
type Bots map[string]agent.Agent

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID      string      `json:"id"`
    Game    domain.Game `json:"game"`
    Bot     string      `json:"bot"`
    BotSide domain.Cell `json:"bot_side"`
    Human   string      `json:"-"`
    Created time.Time   `json:"created"`
    Updated time.Time   `json:"updated"`
}

// HumanSide is the side opposite the bot.
func (gs GameState) HumanSide() domain.Cell { return domain.Opponent(gs.BotSide) }

type subscriber struct {
    ch        chan []byte
    closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages human-versus-bot games and their subscribers.
// Agents are only called with mu held.
type Service struct {
    mu     sync.Mutex
    games  map[string]*GameState
    subs   map[string]map[*subscriber]struct{}
    bots   Bots
    render func(GameState) []byte
    log    zerolog.Logger
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(bots Bots, logger zerolog.Logger) *Service {
    return &Service{
        games:  make(map[string]*GameState),
        subs:   make(map[string]map[*subscriber]struct{}),
        bots:   bots,
        render: func(GameState) []byte { return nil },
        log:    logger.With().Str("component", "service").Logger(),
    }
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

// BotKinds lists the configured bot kinds in sorted order.
func (s *Service) BotKinds() []string {
    kinds := make([]string, 0, len(s.bots))
    for k := range s.bots {
        kinds = append(kinds, k)
    }
    sort.Strings(kinds)
    return kinds
}

// botSide is the side a bot plays: a bound learner keeps its symbol, everyone else plays O.
func botSide(a agent.Agent) domain.Cell {
    if l, ok := a.(*agent.Learner); ok && l.Symbol() != domain.Empty {
        return l.Symbol()
    }
    return domain.O
}

// CreateGame registers a new game against the given bot. When the bot plays X
// its opening move is already on the board.
func (s *Service) CreateGame(bot string) (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    a, ok := s.bots[bot]
    if !ok {
        return nil, fmt.Errorf("%q: %w", bot, ErrUnknownBot)
    }
    now := time.Now()
    gs := &GameState{
        ID:      uuid.NewString(),
        Game:    domain.New(),
        Bot:     bot,
        BotSide: botSide(a),
        Created: now,
        Updated: now,
    }
    if err := s.botMoveLocked(gs); err != nil {
        return nil, err
    }
    s.games[gs.ID] = gs
    s.log.Info().Str("game", gs.ID).Str("bot", bot).Stringer("bot_side", gs.BotSide).Msg("game created")
    cp := *gs
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Join seats the first player as the human; returns Empty for spectators.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return domain.Empty, nil, ErrNotFound
    }
    side := domain.Empty
    if gs.Human == "" || gs.Human == playerID {
        gs.Human = playerID
        side = gs.HumanSide()
    }
    gs.Updated = time.Now()
    cp := *gs
    return side, &cp, nil
}

// Play validates seat and turn, applies the human move, lets the bot answer and broadcasts.
func (s *Service) Play(id, playerID string, cell int) (*GameState, error) {
    var toDrop []*subscriber

    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if gs.Human == "" || gs.Human != playerID {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    if !gs.Game.Over && gs.Game.Turn != gs.HumanSide() {
        s.mu.Unlock()
        return nil, ErrNotYourTurn
    }
    // Work on a copy so a failing bot leaves the stored game untouched.
    next := *gs
    if err := next.Game.Play(cell); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    if err := s.botMoveLocked(&next); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    next.Updated = time.Now()
    *gs = next

    cp := *gs
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    // Fan-out; drop slow subscribers by closing and marking for deletion
    for sub := range subs {
        select {
        case sub.ch <- payload:
        default:
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
    }
    return &cp, nil
}

// botMoveLocked plays the bot's move if it is the bot's turn.
func (s *Service) botMoveLocked(gs *GameState) error {
    if gs.Game.Over || gs.Game.Turn != gs.BotSide {
        return nil
    }
    a := s.bots[gs.Bot]
    m, err := a.Move(gs.Game.Board, gs.BotSide)
    if err != nil {
        return fmt.Errorf("bot %s: %w", gs.Bot, err)
    }
    if err := gs.Game.Play(m); err != nil {
        return fmt.Errorf("bot %s played %d: %w", gs.Bot, m, err)
    }
    s.log.Debug().Str("game", gs.ID).Str("bot", gs.Bot).Int("cell", m).Msg("bot moved")
    if gs.Game.Over {
        s.log.Info().Str("game", gs.ID).Stringer("winner", gs.Game.Winner).Msg("game over")
    }
    return nil
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
    s.mu.Lock()
    defer s.mu.Unlock()
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
