package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/user"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService   TokenService
	users          user.Repository
	exposeInternal bool
}

func NewMiddleware(tokenService TokenService, users user.Repository, exposeInternal bool) *Middleware {
	return &Middleware{
		tokenService:   tokenService,
		users:          users,
		exposeInternal: exposeInternal,
	}
}

// RequireAuth validates the bearer token, loads the current user from the
// store and puts it in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.authenticate(r)
		if err != nil {
			httputil.RespondAppError(w, r, err, m.exposeInternal)
			return
		}

		logger := logging.GetLoggerFromContext(r.Context()).With("user_id", u.ID.String())
		ctx := logging.WithLogger(WithUser(r.Context(), u), logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*user.User, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, ErrMissingAuth
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return nil, ErrInvalidAuthHeader
	}

	claims, err := m.tokenService.VerifyToken(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}

	u, err := m.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	if claims.PasswordVersion < passwordVersion(u) {
		return nil, ErrSessionRevoked
	}

	return u, nil
}
