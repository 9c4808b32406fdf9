package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/platewise/platewise/internal/domain"
)

type contextKey string

const accountKey contextKey = "platewise-account"

// accountFrom returns the authenticated account stored by requireAuth.
func accountFrom(ctx context.Context) *domain.Account {
	a, _ := ctx.Value(accountKey).(*domain.Account)
	return a
}

// sessionToken extracts the token from the Authorization header
// (Bearer scheme) or the X-Session-Token header.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	return r.Header.Get("X-Session-Token")
}

// requireAuth resolves the session token and stores the account on the
// request context. Unauthenticated requests get 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := sessionToken(r)
		if tok == "" {
			writeError(w, domain.ErrSessionExpired)
			return
		}
		account, err := s.accounts.Authenticate(r.Context(), tok)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), accountKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates a route to admin accounts. Must run inside
// requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := accountFrom(r.Context())
		if a == nil || !a.IsAdmin {
			writeJSON(w, http.StatusForbidden, envelope{Success: false, Error: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
