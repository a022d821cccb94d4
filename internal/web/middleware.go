package web

import (
    "net/http"
    "time"

    chimw "github.com/go-chi/chi/v5/middleware"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/hlog"
)

// requestLogger attaches logger to each request context and logs one line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
    access := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
        hlog.FromRequest(r).Debug().
            Str("method", r.Method).
            Str("path", r.URL.Path).
            Str("request_id", chimw.GetReqID(r.Context())).
            Int("status", status).
            Int("size", size).
            Dur("duration", d).
            Msg("request")
    })
    return func(next http.Handler) http.Handler {
        return hlog.NewHandler(logger)(access(next))
    }
}
