package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
)

// CookieName is the cookie carrying the session token.
const CookieName = "access_token"

type contextKey string

const userIDKey = contextKey("userID")

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// Interceptor inspects a request before its handler runs. It either passes
// the request through, possibly enriched, or short-circuits with an error.
type Interceptor func(r *http.Request) (*http.Request, error)

// ErrorWriter renders an interceptor failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Chain runs interceptors in order as a single middleware. The first error
// is handed to onError and the wrapped handler is never invoked.
func Chain(onError ErrorWriter, interceptors ...Interceptor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var err error
			for _, intercept := range interceptors {
				if r, err = intercept(r); err != nil {
					onError(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenVerifier resolves a token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup loads the acting user for role checks.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticate verifies the request token and stores the user id in the
// request context.
func Authenticate(tokens TokenVerifier) Interceptor {
	return func(r *http.Request) (*http.Request, error) {
		token := TokenFromRequest(r)
		if token == "" {
			return r, common.ErrInvalidToken.WithMessage("Not authorized, no token")
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			return r, err
		}
		return r.WithContext(WithUserID(r.Context(), userID)), nil
	}
}

// RequireAdmin lets only admins through.
func RequireAdmin(users UserLookup) Interceptor {
	return requireRole(users, "Not authorized as an admin", func(r *http.Request, u models.User) bool {
		return u.Admin
	})
}

// RequireAdminOrEditor lets admins and editors through.
func RequireAdminOrEditor(users UserLookup) Interceptor {
	return requireRole(users, "Not authorized as an admin or editor", func(r *http.Request, u models.User) bool {
		return u.Admin || u.Editor
	})
}

// RequireSelfOrAdmin lets through admins and the user named by the URL
// parameter param.
func RequireSelfOrAdmin(users UserLookup, param string) Interceptor {
	return requireRole(users, "Forbidden resource", func(r *http.Request, u models.User) bool {
		return u.Admin || u.ID == chi.URLParam(r, param)
	})
}

func requireRole(users UserLookup, msg string, allowed func(*http.Request, models.User) bool) Interceptor {
	return func(r *http.Request) (*http.Request, error) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			return r, common.ErrInvalidToken.WithMessage("Not authorized, no token")
		}
		user, err := users.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return r, common.ErrInvalidToken
			}
			return r, err
		}
		if !allowed(r, user) {
			return r, common.ErrForbidden.WithMessage(msg)
		}
		return r, nil
	}
}
