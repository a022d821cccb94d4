package web

import (
    "context"
    "errors"
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/rs/zerolog/hlog"
    "nhooyr.io/websocket"
    "nhooyr.io/websocket/wsjson"

    "github.com/jaminalder/tictactoe-agents/internal/app"
    "github.com/jaminalder/tictactoe-agents/internal/domain"
)

// moveMsg is what a WebSocket client sends to play a cell.
type moveMsg struct {
    Cell int `json:"cell"`
}

type errorView struct {
    Error string `json:"error"`
}

// stateView is the JSON form of a game.
type stateView struct {
    ID      string    `json:"id"`
    Board   [9]string `json:"board"`
    Turn    string    `json:"turn"`
    Over    bool      `json:"over"`
    Winner  string    `json:"winner,omitempty"`
    Moves   int       `json:"moves"`
    Bot     string    `json:"bot"`
    BotSide string    `json:"bot_side"`
    You     string    `json:"you,omitempty"`
}

func newStateView(gs app.GameState, you domain.Cell) stateView {
    v := stateView{
        ID:      gs.ID,
        Turn:    cellSymbol(gs.Game.Turn),
        Over:    gs.Game.Over,
        Winner:  cellSymbol(gs.Game.Winner),
        Moves:   gs.Game.Moves,
        Bot:     gs.Bot,
        BotSide: cellSymbol(gs.BotSide),
        You:     cellSymbol(you),
    }
    for i, c := range gs.Game.Board {
        v.Board[i] = cellSymbol(c)
    }
    return v
}

// socket plays a game over a WebSocket: the client sends {"cell":n} and
// receives the state after each accepted move, or {"error":"..."}.
func (h *handlers) socket(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    side, gs, err := h.svc.Join(id, pid)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    log := hlog.FromRequest(r).With().Str("game", id).Logger()

    c, err := websocket.Accept(w, r, nil)
    if err != nil {
        log.Warn().Err(err).Msg("websocket accept")
        return
    }
    defer c.Close(websocket.StatusInternalError, "unexpected close")

    ctx := r.Context()
    if err := wsjson.Write(ctx, c, newStateView(*gs, side)); err != nil {
        return
    }
    for {
        var msg moveMsg
        if err := wsjson.Read(ctx, c, &msg); err != nil {
            if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
                c.Close(websocket.StatusNormalClosure, "")
                return
            }
            log.Debug().Err(err).Msg("websocket read")
            c.Close(websocket.StatusUnsupportedData, "expected {\"cell\":n}")
            return
        }
        st, err := h.svc.Play(id, pid, msg.Cell)
        if err != nil {
            if err := wsjson.Write(ctx, c, errorView{Error: errMessage(err)}); err != nil {
                return
            }
            continue
        }
        if err := wsjson.Write(ctx, c, newStateView(*st, side)); err != nil {
            return
        }
    }
}
