package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/platform/logger"
	"github.com/phrazzld/opsboard/internal/redact"
)

// Recoverer turns a panic into a JSON 500. Outside production the redacted
// panic value is returned as the error message.
func Recoverer(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// ALLOW-PANIC: net/http relies on this sentinel to abort the response
					panic(rec)
				}

				logger.FromContext(r.Context()).Error("panic recovered",
					"panic", redact.String(fmt.Sprint(rec)),
					"stack", redact.String(string(debug.Stack())))

				message := "Internal server error"
				if !production {
					message = redact.String(fmt.Sprint(rec))
				}
				shared.RespondWithError(w, r, http.StatusInternalServerError, message)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ErrorDetail lets 5xx responses carry the redacted error when enabled.
// It is meant for non-production environments.
func ErrorDetail(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithErrorDetail(r.Context())))
		})
	}
}
