package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/auth"
	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/database/databasetest"
	httpServer "github.com/redmonkez12/taskdesk/internal/http"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/profile"
	"github.com/redmonkez12/taskdesk/internal/ratelimit"
	"github.com/redmonkez12/taskdesk/internal/task"
	"github.com/redmonkez12/taskdesk/internal/user"
)

type nopMailer struct{}

func (nopMailer) SendPasswordResetEmail(context.Context, string, string, string) error { return nil }

func startAPI(t *testing.T) string {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := databasetest.New(t)
	users := user.NewBunRepository(db)

	tokens, err := auth.NewJWTService([]byte("taskctl-test-secret-at-least-32-bytes"), "taskdesk")
	require.NoError(t, err)
	hasher, err := auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32})
	require.NoError(t, err)

	logger := logging.Discard()
	limiter := ratelimit.NewLimiter(rdb)
	authService := auth.NewService(users, tokens, hasher, auth.NewPasswordResetRepository(rdb), nopMailer{}, logger, time.Hour)

	router := httpServer.NewRouter(&config.Config{Server: config.ServerConfig{Env: "test"}}, httpServer.Handlers{
		Auth:           auth.NewHandler(authService, limiter, false),
		AuthMiddleware: auth.NewMiddleware(tokens, users, false),
		Tasks:          task.NewHandler(task.NewService(task.NewBunRepository(db)), false),
		Profile:        profile.NewHandler(profile.NewService(users, authService), false),
		Database:       users,
	}, nil, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

type cli struct {
	api     string
	session string
}

func (c cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--api", c.api, "--session", c.session}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	require.NoError(t, err, out)
	return out
}

var createdID = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func TestTaskctl_EndToEnd(t *testing.T) {
	c := cli{api: startAPI(t), session: filepath.Join(t.TempDir(), "session.json")}

	out := c.mustRun(t, "whoami")
	assert.Contains(t, out, "Not signed in.")

	_, err := c.run(t, "tasks", "list")
	assert.ErrorIs(t, err, errNotSignedIn)

	out = c.mustRun(t, "register", "--name", "Ana", "--email", "ANA@X.com", "--password", "secret1")
	assert.Contains(t, out, "ana@x.com")

	out = c.mustRun(t, "whoami")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "ana@x.com")

	out = c.mustRun(t, "tasks", "add", "Write", "report", "--priority", "high", "--tags", "work,q3", "--due", "2025-09-01")
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	c.mustRun(t, "tasks", "add", "Buy milk")

	out = c.mustRun(t, "tasks", "list", "--search", "report")
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Buy milk")

	out = c.mustRun(t, "tasks", "show", id)
	assert.Contains(t, out, "2025-09-01")
	assert.Contains(t, out, "work, q3")

	c.mustRun(t, "tasks", "done", id)
	c.mustRun(t, "tasks", "edit", id, "--clear-due", "--description", "quarterly numbers")

	out = c.mustRun(t, "tasks", "show", id)
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "quarterly numbers")
	assert.NotContains(t, out, "2025-09-01")

	out = c.mustRun(t, "tasks", "stats")
	assert.Regexp(t, `Done\s+1`, out)
	assert.Regexp(t, `Total\s+2`, out)

	c.mustRun(t, "profile", "edit", "--bio", "Gopher")
	out = c.mustRun(t, "profile", "show")
	assert.Contains(t, out, "Gopher")

	c.mustRun(t, "tasks", "rm", id, "--yes")
	_, err = c.run(t, "tasks", "show", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task not found")

	c.mustRun(t, "logout")
	out = c.mustRun(t, "whoami")
	assert.Contains(t, out, "Not signed in.")

	_, err = c.run(t, "login", "--email", "ana@x.com", "--password", "wrong12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")

	out = c.mustRun(t, "login", "--email", "ana@x.com", "--password", "secret1")
	assert.Contains(t, out, "Signed in as Ana")
}

func TestTaskctl_InvalidTaskID(t *testing.T) {
	c := cli{api: startAPI(t), session: filepath.Join(t.TempDir(), "session.json")}
	c.mustRun(t, "register", "--name", "Ana", "--email", "ana@x.com", "--password", "secret1")

	_, err := c.run(t, "tasks", "show", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid task id "not-a-uuid"`)
}
