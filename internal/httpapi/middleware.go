package httpapi

import (
	"net/http"
	"strings"

	"github.com/signalsfoundry/space-query/internal/logging"
)

// RequestID assigns each request a correlation id, propagated through the
// context and echoed in the X-Request-ID response header. An id supplied by
// the client is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if hdr := r.Header.Get("X-Request-ID"); hdr != "" {
			ctx = logging.ContextWithRequestID(ctx, hdr)
		}
		ctx, id := logging.EnsureRequestID(ctx)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate requires a valid bearer token on every request it guards.
// Missing, malformed, expired, and forged tokens all get the same 403.
func (a *API) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			a.writeError(w, r, http.StatusForbidden, "", "invalid credentials")
			return
		}
		subject, err := a.keyring.Verify(token)
		if err != nil {
			a.writeError(w, r, http.StatusForbidden, "", "invalid credentials")
			return
		}
		ctx := logging.ContextWithLogger(r.Context(),
			a.log.With(logging.String("user", subject)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
