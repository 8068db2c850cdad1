package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"entrepreneurhub/internal/logger"
	"entrepreneurhub/internal/model"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

type TokenVerifier interface {
	Verify(raw string) (string, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// SessionResolver turns the token on a request into a model.Identity. It holds
// no per-request state.
type SessionResolver struct {
	verifier TokenVerifier
	users    UserFinder
}

func NewSessionResolver(verifier TokenVerifier, users UserFinder) *SessionResolver {
	return &SessionResolver{verifier: verifier, users: users}
}

// ExtractToken prefers a non-empty token cookie and falls back to the
// Authorization header. An exact "Bearer " prefix (one space) is removed;
// any other value is used verbatim as the raw token.
func ExtractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		return "", false
	}
	return raw, true
}

// Identify resolves the caller. Missing or invalid tokens and unknown
// subjects yield model.ErrUnauthorized; store failures are returned wrapped.
func (s *SessionResolver) Identify(r *http.Request) (model.Identity, error) {
	raw, ok := ExtractToken(r)
	if !ok {
		return model.Identity{}, model.ErrUnauthorized
	}

	subject, err := s.verifier.Verify(raw)
	if err != nil {
		return model.Identity{}, model.ErrUnauthorized
	}

	user, err := s.users.GetByID(r.Context(), subject)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Identity{}, model.ErrUnauthorized
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("resolve session user: %w", err)
	}

	return user.Identity(), nil
}

func (s *SessionResolver) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.Identify(r)
		if errors.Is(err, model.ErrUnauthorized) {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if err != nil {
			logger.FromContext(r.Context()).Error("session lookup failed", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// OptionalAuth attaches the identity when the request carries a valid session
// and otherwise passes the request through untouched.
func (s *SessionResolver) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.Identify(r)
		if err != nil {
			if !errors.Is(err, model.ErrUnauthorized) {
				logger.FromContext(r.Context()).Warn("optional session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireRole must run after RequireAuth. A request without an identity is
// still answered with 401.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if identity.Role != role {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", role+" access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}
