package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type panicResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Recovery turns a handler panic into a 500 carrying the request id.
// http.ErrAbortHandler is re-raised for net/http to handle.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			l := zerolog.Ctx(r.Context())
			if l.GetLevel() == zerolog.Disabled {
				l = &log.Logger
			}
			l.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("handler panicked")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(panicResponse{
				Error:     "internal server error",
				RequestID: chimw.GetReqID(r.Context()),
			})
		}()

		next.ServeHTTP(w, r)
	})
}
