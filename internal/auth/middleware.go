package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/yatube/internal/model"
)

// CookieName is the cookie the GitHub login stores the access token in.
const CookieName = "token"

// contextKey is unexported so no other package can read or overwrite the
// principal stored under it.
type contextKey struct{}

var principalKey contextKey

// UserLookup loads the user a token refers to. repository.UserRepository
// satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Authenticate resolves the request's principal and stores it in the
// context. It never rejects a request: a missing, expired or forged token,
// or one for a deleted user, simply leaves the request anonymous. Whether
// anonymous is acceptable is decided later by the access policy.
func Authenticate(tokens *TokenService, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				logger.Debug("ignoring invalid token", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Debug("token for unknown user",
					slog.Int64("userID", userID),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), model.PrincipalOf(user))))
		})
	}
}

// RequireAuth rejects anonymous requests with 401. Mount it after
// Authenticate on routes that are never public.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !PrincipalFromContext(r.Context()).Authenticated() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"authentication credentials were not provided"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request's principal, or nil when the
// request is anonymous.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalKey).(*model.Principal)
	return p
}

// tokenFromRequest prefers "Authorization: Bearer <jwt>" and falls back to
// the token cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
