package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"einsatzplan/internal/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// identityFrom returns the authenticated identity placed by withSession.
func identityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// withSession resolves the bearer token and injects the identity into the
// request context.
func (s *Server) withSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := s.auth.Resolve(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// requireAdmin gates mutating handlers on the admin role.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			respondError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	}
}

// checkServiceKey compares the X-Service-Key header against the
// configured key. An empty configured key disables the endpoint.
func (s *Server) checkServiceKey(r *http.Request) bool {
	if s.cfg.ServiceKey == "" {
		return false
	}
	got := r.Header.Get("X-Service-Key")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.ServiceKey)) == 1
}
