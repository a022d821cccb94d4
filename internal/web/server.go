package web

import (
    "net/http"

    "github.com/go-chi/chi/v5"
    chimw "github.com/go-chi/chi/v5/middleware"
    "github.com/rs/zerolog"

    "github.com/jaminalder/tictactoe-agents/internal/app"
)

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, logger zerolog.Logger) http.Handler {
    r := chi.NewRouter()
    r.Use(chimw.RequestID)
    r.Use(chimw.Recoverer)
    r.Use(requestLogger(logger))

    h := &handlers{svc: s, tpl: loadTemplates(), log: logger}
    s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

    r.Get("/", h.index)
    r.Get("/health", h.health)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/join", h.join)
        r.Post("/play", h.play)
        r.Get("/events", h.events)
        r.Get("/ws", h.socket)
    })
    r.Get("/api/game/{id}", h.apiGame)
    return r
}
