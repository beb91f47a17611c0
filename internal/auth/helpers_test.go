package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/database/databasetest"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/ratelimit"
	"github.com/redmonkez12/taskdesk/internal/user"
)

const testSecret = "test-secret-that-is-at-least-32-bytes!!"

var fastArgon2 = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}

type sentEmail struct {
	to    string
	token string
}

type fakeMailer struct {
	sent chan sentEmail
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, toEmail, _ string, token string) error {
	m.sent <- sentEmail{to: toEmail, token: token}
	return nil
}

type testEnv struct {
	service *Service
	users   user.Repository
	tokens  *JWTService
	limiter *ratelimit.Limiter
	mailer  *fakeMailer
	redis   *miniredis.Miniredis
	clock   *testClock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := user.NewBunRepository(databasetest.New(t))

	tokens, err := NewJWTService([]byte(testSecret), "taskdesk")
	require.NoError(t, err)

	hasher, err := NewPasswordHasher(fastArgon2)
	require.NoError(t, err)

	mailer := &fakeMailer{sent: make(chan sentEmail, 4)}
	svc := NewService(users, tokens, hasher, NewPasswordResetRepository(client), mailer, logging.Discard(), time.Hour)

	return &testEnv{
		service: svc,
		users:   users,
		tokens:  tokens,
		limiter: ratelimit.NewLimiter(client),
		mailer:  mailer,
		redis:   mr,
	}
}

// useClock pins the service and token clocks to a controllable time.
func (e *testEnv) useClock(start time.Time) *testClock {
	c := &testClock{now: start}
	e.clock = c
	e.service.now = c.Now
	e.tokens.now = c.Now
	return c
}

func (e *testEnv) register(t *testing.T, name, email, password string) *AuthResult {
	t.Helper()
	res, err := e.service.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return res
}
