package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/client"
	"github.com/redmonkez12/taskdesk/internal/user"
)

type fakeAPI struct {
	token   string
	me      *user.User
	meErr   error
	meCalls int
}

func (f *fakeAPI) SetToken(token string) { f.token = token }

func (f *fakeAPI) Me(context.Context) (*user.User, error) {
	f.meCalls++
	return f.me, f.meErr
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (*client.Session, error) {
	return &client.Session{Token: "login-token", User: &user.User{ID: uuid.New(), Name: "Ana", Email: email}}, nil
}

func (f *fakeAPI) Register(_ context.Context, name, email, _ string) (*client.Session, error) {
	return &client.Session{Token: "register-token", User: &user.User{ID: uuid.New(), Name: name, Email: email}}, nil
}

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "taskdesk", "session.json"))
}

func seed(t *testing.T, s *Store, name string) *user.User {
	t.Helper()
	u := &user.User{ID: uuid.New(), Name: name, Email: "ana@x.com", IsActive: true}
	require.NoError(t, s.Save(&Snapshot{Token: "cached-token", User: u}))
	return u
}

func TestStore_RoundTripAndPermissions(t *testing.T) {
	s := newStore(t)

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	u := seed(t, s, "Ana")

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	snap, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "cached-token", snap.Token)
	assert.Equal(t, u.ID, snap.User.ID)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	snap, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestManager_BootstrapWithoutCache(t *testing.T) {
	api := &fakeAPI{}
	m := NewManager(newStore(t), api)

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.False(t, m.Authenticated())
	assert.Nil(t, m.User())
	assert.Zero(t, api.meCalls)
}

func TestManager_BootstrapRefreshesUser(t *testing.T) {
	s := newStore(t)
	cached := seed(t, s, "Ana (old)")

	fresh := *cached
	fresh.Name = "Ana"
	api := &fakeAPI{me: &fresh}
	m := NewManager(s, api)

	require.NoError(t, m.Bootstrap(context.Background()))
	assert.True(t, m.Authenticated())
	assert.False(t, m.Stale())
	assert.Equal(t, "cached-token", api.token)
	assert.Equal(t, "Ana", m.User().Name)

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "Ana", snap.User.Name)
}

func TestManager_BootstrapRejectedToken(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			s := newStore(t)
			seed(t, s, "Ana")
			api := &fakeAPI{meErr: &client.APIError{Status: status, Message: "rejected"}}
			m := NewManager(s, api)

			require.NoError(t, m.Bootstrap(context.Background()))
			assert.False(t, m.Authenticated())
			assert.Nil(t, m.User())
			assert.Empty(t, api.token)

			snap, err := s.Load()
			require.NoError(t, err)
			assert.Nil(t, snap)
		})
	}
}

func TestManager_BootstrapOffline(t *testing.T) {
	s := newStore(t)
	cached := seed(t, s, "Ana")
	api := &fakeAPI{meErr: errors.New("dial tcp: connection refused")}
	m := NewManager(s, api)

	err := m.Bootstrap(context.Background())
	require.Error(t, err)
	assert.True(t, m.Authenticated())
	assert.True(t, m.Stale())
	assert.Equal(t, cached.ID, m.User().ID)

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "cached-token", snap.Token)
}

func TestManager_BootstrapCorruptCache(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	m := NewManager(s, &fakeAPI{})
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.False(t, m.Authenticated())

	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestManager_LoginLogoutAndEdits(t *testing.T) {
	s := newStore(t)
	api := &fakeAPI{}
	m := NewManager(s, api)
	ctx := context.Background()

	u, err := m.Login(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "login-token", m.Token())
	assert.Equal(t, "login-token", api.token)

	edited := *u
	edited.Bio = "Gopher"
	require.NoError(t, m.UpdateUser(&edited))
	require.NoError(t, m.ReplaceToken("rotated-token"))

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "rotated-token", snap.Token)
	assert.Equal(t, "Gopher", snap.User.Bio)
	assert.False(t, snap.SavedAt.IsZero())

	require.NoError(t, m.Logout())
	assert.False(t, m.Authenticated())
	assert.Empty(t, api.token)
	snap, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	u, err = m.Register(ctx, "Bob", "bob@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)
	assert.Equal(t, "register-token", m.Token())
}
