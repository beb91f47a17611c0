package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/auth"
	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/database/databasetest"
	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/profile"
	"github.com/redmonkez12/taskdesk/internal/ratelimit"
	"github.com/redmonkez12/taskdesk/internal/task"
	"github.com/redmonkez12/taskdesk/internal/user"
)

type discardMailer struct{}

func (discardMailer) SendPasswordResetEmail(context.Context, string, string, string) error {
	return nil
}

type stack struct {
	handler http.Handler
	users   user.Repository
}

func newStack(t *testing.T, rl config.RateLimitConfig, opts ...func(*config.Config)) *stack {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := databasetest.New(t)
	users := user.NewBunRepository(db)
	tasks := task.NewBunRepository(db)

	tokens, err := auth.NewJWTService([]byte("router-test-secret-at-least-32-bytes"), "taskdesk")
	require.NoError(t, err)
	hasher, err := auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32})
	require.NoError(t, err)

	limiter := ratelimit.NewLimiter(client)
	logger := logging.Discard()
	authService := auth.NewService(users, tokens, hasher, auth.NewPasswordResetRepository(client), discardMailer{}, logger, time.Hour)

	cfg := &config.Config{
		Server:    config.ServerConfig{Env: "test", MaxBodyBytes: 1 << 20},
		RateLimit: rl,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := NewRouter(cfg, Handlers{
		Auth:           auth.NewHandler(authService, limiter, false),
		AuthMiddleware: auth.NewMiddleware(tokens, users, false),
		Tasks:          task.NewHandler(task.NewService(tasks), false),
		Profile:        profile.NewHandler(profile.NewService(users, authService), false),
		Database:       users,
	}, limiter, logger)

	return &stack{handler: router, users: users}
}

func (s *stack) call(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var noRateLimit = config.RateLimitConfig{Enabled: false}

func TestRouter_AccountLifecycle(t *testing.T) {
	s := newStack(t, noRateLimit)

	rec := s.call(t, http.MethodPost, "/api/auth/register", "", `{"name":"Ana","email":"ANA@X.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[auth.SessionResponse](t, rec)
	assert.Equal(t, "account created successfully", registered.Message)
	assert.Equal(t, "ana@x.com", registered.User.Email)
	assert.True(t, registered.User.IsActive)
	assert.NotEmpty(t, registered.Token)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.call(t, http.MethodPost, "/api/auth/register", "", `{"name":"Ana Two","email":"ana@x.com","password":"secret2"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, httputil.CodeEmailAlreadyExists, decode[httputil.ErrorResponse](t, rec).Code)

	rec = s.call(t, http.MethodPost, "/api/auth/login", "", `{"email":" Ana@X.COM ","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[auth.SessionResponse](t, rec)
	assert.Equal(t, "login successful", login.Message)

	rec = s.call(t, http.MethodGet, "/api/auth/me", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[auth.UserResponse](t, rec)
	assert.Equal(t, registered.User.ID, me.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.call(t, http.MethodPost, "/api/auth/login", "", `{"email":"ana@x.com","password":"wrong12"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidCredentials, decode[httputil.ErrorResponse](t, rec).Code)

	require.NoError(t, s.users.SetActive(context.Background(), registered.User.ID, false))

	rec = s.call(t, http.MethodGet, "/api/auth/me", login.Token, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, httputil.CodeAccountDisabled, decode[httputil.ErrorResponse](t, rec).Code)

	rec = s.call(t, http.MethodPost, "/api/auth/login", "", `{"email":"ana@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_TaskOwnership(t *testing.T) {
	s := newStack(t, noRateLimit)

	ana := decode[auth.SessionResponse](t, s.call(t, http.MethodPost, "/api/auth/register", "", `{"name":"Ana","email":"ana@x.com","password":"secret1"}`))
	bob := decode[auth.SessionResponse](t, s.call(t, http.MethodPost, "/api/auth/register", "", `{"name":"Bob","email":"bob@x.com","password":"secret1"}`))

	rec := s.call(t, http.MethodPost, "/api/tasks", ana.Token, `{"title":"Ana's task","status":"in-progress"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[task.MutationResponse](t, rec)
	assert.Equal(t, ana.User.ID, created.Task.OwnerID)

	s.call(t, http.MethodPost, "/api/tasks", ana.Token, `{"title":"Second","status":"done"}`)

	foreign := s.call(t, http.MethodGet, "/api/tasks/"+created.Task.ID.String(), bob.Token, "")
	absent := s.call(t, http.MethodGet, "/api/tasks/00000000-0000-0000-0000-000000000001", bob.Token, "")
	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, absent.Code, foreign.Code)
	assert.Equal(t, absent.Body.String(), foreign.Body.String())

	rec = s.call(t, http.MethodPut, "/api/tasks/"+created.Task.ID.String(), bob.Token, `{"title":"Hijacked"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.call(t, http.MethodGet, "/api/tasks", bob.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[task.ListResponse](t, rec).Tasks)

	for range 2 {
		rec = s.call(t, http.MethodGet, "/api/tasks/stats", ana.Token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decode[task.StatsResponse](t, rec).Stats
		assert.Equal(t, task.Stats{Todo: 0, InProgress: 1, Done: 1, Total: 2}, *stats)
	}

	rec = s.call(t, http.MethodGet, "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeMissingAuth, decode[httputil.ErrorResponse](t, rec).Code)
}

func TestRouter_PasswordChangeRevokesOldToken(t *testing.T) {
	s := newStack(t, noRateLimit)

	ana := decode[auth.SessionResponse](t, s.call(t, http.MethodPost, "/api/auth/register", "", `{"name":"Ana","email":"ana@x.com","password":"secret1"}`))

	rec := s.call(t, http.MethodPut, "/api/users/password", ana.Token, `{"currentPassword":"secret1","newPassword":"secret2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	changed := decode[profile.PasswordResponse](t, rec)

	rec = s.call(t, http.MethodGet, "/api/auth/me", ana.Token, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeTokenRevoked, decode[httputil.ErrorResponse](t, rec).Code)

	rec = s.call(t, http.MethodGet, "/api/auth/me", changed.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	s := newStack(t, noRateLimit)

	rec := s.call(t, http.MethodGet, "/api/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"route not found: GET /api/nope","code":"ROUTE_NOT_FOUND"}`, rec.Body.String())

	rec = s.call(t, http.MethodDelete, "/api/health", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, httputil.CodeMethodNotAllowed, decode[httputil.ErrorResponse](t, rec).Code)

	rec = s.call(t, http.MethodGet, "/swagger/index.html", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	s := newStack(t, noRateLimit)

	rec := s.call(t, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "connected", body.Database)
	assert.Equal(t, "test", body.Env)
	_, err := time.Parse(time.RFC3339, body.Timestamp)
	assert.NoError(t, err)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouter_AuthRateLimit(t *testing.T) {
	s := newStack(t, config.RateLimitConfig{Enabled: true, APIRequests: 100, AuthRequests: 2, Window: 15 * time.Minute})

	login := `{"email":"nobody@x.com","password":"secret1"}`
	for range 2 {
		rec := s.call(t, http.MethodPost, "/api/auth/login", "", login)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := s.call(t, http.MethodPost, "/api/auth/login", "", login)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, httputil.CodeTooManyRequests, decode[httputil.ErrorResponse](t, rec).Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))

	// the wider /api budget is separate
	rec = s.call(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
}

func TestRouter_AuthRateLimitClientAddress(t *testing.T) {
	rl := config.RateLimitConfig{Enabled: true, APIRequests: 100, AuthRequests: 2, Window: 15 * time.Minute}

	login := func(t *testing.T, s *stack, forwardedFor string) int {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"nobody@x.com","password":"secret1"}`))
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("forwarded headers ignored by default", func(t *testing.T) {
		s := newStack(t, rl)
		assert.Equal(t, http.StatusUnauthorized, login(t, s, "10.0.0.1"))
		assert.Equal(t, http.StatusUnauthorized, login(t, s, "10.0.0.2"))
		assert.Equal(t, http.StatusTooManyRequests, login(t, s, "10.0.0.3"))
	})

	t.Run("trusted proxy", func(t *testing.T) {
		s := newStack(t, rl, func(cfg *config.Config) { cfg.Server.TrustProxy = true })
		for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			assert.Equal(t, http.StatusUnauthorized, login(t, s, ip), ip)
		}
		assert.Equal(t, http.StatusUnauthorized, login(t, s, "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, login(t, s, "10.0.0.1"))
	})
}

func TestRouter_OversizedBody(t *testing.T) {
	s := newStack(t, noRateLimit)

	body := `{"name":"` + strings.Repeat("a", 2<<20) + `","email":"a@x.com","password":"secret1"}`
	rec := s.call(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidRequestBody, decode[httputil.ErrorResponse](t, rec).Code)
}
