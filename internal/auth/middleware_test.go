package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/user"
)

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := env.register(t, "Ana", "ana@x.com", "secret1")

	var gotUserID uuid.UUID
	protected := NewMiddleware(env.tokens, env.users, false).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = MustUserID(r.Context())
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		assert.Empty(t, u.PasswordHash)
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(header string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code == http.StatusNoContent {
			return rec.Code, ""
		}
		var body httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body.Code
	}

	t.Run("valid token", func(t *testing.T) {
		status, _ := call("Bearer " + registered.Token)
		assert.Equal(t, http.StatusNoContent, status)
		assert.Equal(t, registered.User.ID, gotUserID)
	})

	t.Run("missing header", func(t *testing.T) {
		status, code := call("")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, httputil.CodeMissingAuth, code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		for _, h := range []string{"Basic abc", "Bearer", "Bearer ", "bearer " + registered.Token, registered.Token} {
			status, code := call(h)
			assert.Equal(t, http.StatusUnauthorized, status, h)
			assert.Equal(t, httputil.CodeInvalidAuthHeader, code, h)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		status, code := call("Bearer not.a.token")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, httputil.CodeInvalidToken, code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := env.tokens.CreateToken(registered.User, -time.Minute)
		require.NoError(t, err)

		status, code := call("Bearer " + expired)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, httputil.CodeTokenExpired, code)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		ghost, err := env.tokens.CreateToken(&user.User{ID: uuid.New(), Email: "ghost@x.com"}, time.Hour)
		require.NoError(t, err)

		status, code := call("Bearer " + ghost)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, httputil.CodeUserNotFound, code)
	})

	t.Run("disabled user with live token", func(t *testing.T) {
		require.NoError(t, env.users.SetActive(ctx, registered.User.ID, false))
		defer func() { require.NoError(t, env.users.SetActive(ctx, registered.User.ID, true)) }()

		status, code := call("Bearer " + registered.Token)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, httputil.CodeAccountDisabled, code)
	})
}

func TestRequireAuth_PasswordChangeRevokesOlderTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// Token and change share the same wall-clock second.
	env.useClock(time.Now().UTC().Truncate(time.Second))

	registered := env.register(t, "Ana", "ana@x.com", "secret1")

	fresh, err := env.service.ChangePassword(ctx, registered.User.ID, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "secret2"})
	require.NoError(t, err)

	protected := NewMiddleware(env.tokens, env.users, false).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec
	}

	rec := call(registered.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), httputil.CodeTokenRevoked)

	assert.Equal(t, http.StatusNoContent, call(fresh).Code)
}
