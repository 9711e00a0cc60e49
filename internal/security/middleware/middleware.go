package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/yourorg/staffdesk/internal/security"
	"github.com/yourorg/staffdesk/internal/security/auth"
	"github.com/yourorg/staffdesk/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// Authenticate validates the bearer token and stores the claims in the request
// context. It runs before any permission check.
func Authenticate(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"message":"missing or invalid Authorization header"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"message":"missing or invalid Authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequirePermission checks the authenticated role against the policy table.
// Always evaluated after Authenticate.
func RequirePermission(authz *security.AuthorizationService, perm security.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			if err := authz.ValidatePermission(security.Role(claims.Role), perm); err != nil {
				http.Error(w, `{"message":"forbidden: insufficient role"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitAuth throttles the public credential endpoints per client address
// to slow down brute-force attempts.
func RateLimitAuth(limiter *ratelimit.Limiter, maxReqs int, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !limiter.AllowStrict(host, maxReqs) {
				log.Warn("auth rate limit exceeded", slog.String("remote", host))
				http.Error(w, `{"message":"too many requests"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithClaims returns a context carrying the given claims. Exported for
// handler tests.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey{}, claims)
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
