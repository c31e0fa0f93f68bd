package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/HerbHall/themeforge/internal/theme"
)

type claimsKey struct{}

// UserFromContext returns the caller's claims, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// Identity resolves the caller for theme validation telemetry.
func Identity(ctx context.Context) (theme.Identity, bool) {
	c := UserFromContext(ctx)
	if c == nil {
		return theme.Identity{}, false
	}
	return theme.Identity{UserID: c.UserID, Role: c.Role}, true
}

// publicPaths are API routes served without a token.
var publicPaths = map[string]struct{}{
	"/api/v1/version": {},
}

// requiresToken reports whether path is an API route guarded by bearer
// tokens. WebSocket handshakes carry their token in the query string and are
// checked by the WebSocket handler.
func requiresToken(path string) bool {
	if !strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/api/v1/ws/") {
		return false
	}
	_, public := publicPaths[path]
	return !public
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// AuthMiddleware validates bearer access tokens on API routes and stores the
// claims in the request context.
func AuthMiddleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresToken(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole rejects callers whose role ranks below min. It must run after
// AuthMiddleware.
func RequireRole(min Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := UserFromContext(r.Context())
		if c == nil {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !Role(c.Role).Allows(min) {
			writeAuthError(w, http.StatusForbidden, "role "+c.Role+" may not perform this action")
			return
		}
		next(w, r)
	}
}

func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://themeforge.dev/problems/auth-error",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
