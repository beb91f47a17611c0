package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redmonkez12/taskdesk/internal/client"
	"github.com/redmonkez12/taskdesk/internal/user"
)

// API is the subset of *client.Client the manager drives.
type API interface {
	SetToken(token string)
	Me(ctx context.Context) (*user.User, error)
	Login(ctx context.Context, email, password string) (*client.Session, error)
	Register(ctx context.Context, name, email, password string) (*client.Session, error)
}

// Manager mirrors the server's view of the signed-in user. It is not safe for
// concurrent use.
type Manager struct {
	store *Store
	api   API
	now   func() time.Time

	token string
	user  *user.User
	stale bool
}

func NewManager(store *Store, api API) *Manager {
	return &Manager{store: store, api: api, now: time.Now}
}

// Bootstrap restores the cached identity and revalidates it with GET /api/auth/me.
//
// A 401 or 403 clears the cache and leaves the manager signed out. Any other
// failure keeps the cached identity, marks it stale and returns the error.
func (m *Manager) Bootstrap(ctx context.Context) error {
	snap, err := m.store.Load()
	if errors.Is(err, ErrCorrupt) {
		return m.Logout()
	}
	if err != nil {
		return err
	}
	if snap == nil || snap.Token == "" {
		m.reset()
		return nil
	}

	m.token = snap.Token
	m.user = snap.User
	m.api.SetToken(snap.Token)

	u, err := m.api.Me(ctx)
	switch {
	case err == nil:
		m.user = u
		m.stale = false
		return m.persist()
	case errors.Is(err, client.ErrUnauthorized):
		return m.Logout()
	default:
		m.stale = true
		return fmt.Errorf("revalidate session: %w", err)
	}
}

func (m *Manager) Login(ctx context.Context, email, password string) (*user.User, error) {
	s, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.User, m.adopt(s)
}

func (m *Manager) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	s, err := m.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.User, m.adopt(s)
}

// Logout forgets the token locally. Tokens are stateless, so the server is not told.
func (m *Manager) Logout() error {
	m.reset()
	return m.store.Clear()
}

// UpdateUser replaces the cached user after a profile edit.
func (m *Manager) UpdateUser(u *user.User) error {
	if m.token == "" {
		return nil
	}
	m.user = u
	return m.persist()
}

// ReplaceToken stores the token handed out after a password change.
func (m *Manager) ReplaceToken(token string) error {
	m.token = token
	m.api.SetToken(token)
	return m.persist()
}

func (m *Manager) Authenticated() bool { return m.token != "" }

func (m *Manager) User() *user.User { return m.user }

func (m *Manager) Token() string { return m.token }

// Stale reports whether the cached identity could not be confirmed by the server.
func (m *Manager) Stale() bool { return m.stale }

func (m *Manager) adopt(s *client.Session) error {
	m.token = s.Token
	m.user = s.User
	m.stale = false
	m.api.SetToken(s.Token)
	return m.persist()
}

func (m *Manager) persist() error {
	return m.store.Save(&Snapshot{Token: m.token, User: m.user, SavedAt: m.now().UTC()})
}

func (m *Manager) reset() {
	m.token = ""
	m.user = nil
	m.stale = false
	m.api.SetToken("")
}
