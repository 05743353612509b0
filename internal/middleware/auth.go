package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sightline-analytics/sightline/internal/auth"
	"github.com/sightline-analytics/sightline/internal/config"
	"github.com/sightline-analytics/sightline/internal/metrics"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookie is the cookie the auth provider sets after sign-in.
// API clients may send the same token as a bearer header instead.
const SessionCookie = "sightline_session"

// SessionMiddleware resolves the caller's identity from a session
// token. Unauthenticated API calls get a 401; unauthenticated page
// requests are redirected to the sign-in path with the original
// destination preserved.
type SessionMiddleware struct {
	cfg    config.AuthConfig
	logger *zap.Logger
	prom   *metrics.Metrics
}

func NewSessionMiddleware(cfg config.AuthConfig, logger *zap.Logger, prom *metrics.Metrics) *SessionMiddleware {
	return &SessionMiddleware{cfg: cfg, logger: logger, prom: prom}
}

func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			m.deny(w, r, "missing_token")
			return
		}

		claims, err := auth.ParseToken(token, m.cfg.JWTSecret)
		if err != nil {
			m.logger.Debug("session token rejected",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			m.deny(w, r, "invalid_token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) skip(path string) bool {
	for _, p := range m.cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	return false
}

func (m *SessionMiddleware) deny(w http.ResponseWriter, r *http.Request, reason string) {
	if m.prom != nil {
		m.prom.AuthDenials.WithLabelValues(reason).Inc()
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized"}`))
		return
	}

	// Page request: send the browser to sign-in and come back here
	// afterwards.
	dest := m.cfg.SignInPath + "?redirectedFrom=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// IdentityFrom returns the verified claims stored by the session
// middleware, or nil when the request is unauthenticated.
func IdentityFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(identityKey).(*auth.Claims)
	return claims
}
