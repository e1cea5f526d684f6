package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/digitalhat/storefront/internal/domain"
	"github.com/digitalhat/storefront/internal/events"
	"github.com/digitalhat/storefront/internal/notify"
	"github.com/digitalhat/storefront/internal/storage"
)

// Manager tracks the current user across the two session states,
// anonymous and authenticated. Persisted storage is the source of
// truth: a credential write observed from elsewhere (another tab) makes
// the manager re-derive its state from storage, last write wins.
type Manager struct {
	mu       sync.RWMutex
	store    storage.Store
	bus      *events.Bus
	notifier notify.Notifier
	log      *slog.Logger
	current  *domain.User
	unwatch  func()

	// ownWrites suppresses watcher callbacks triggered by this
	// manager's own storage writes, matching how browser storage
	// events only fire in other tabs. Watch delivery is synchronous.
	ownWrites atomic.Int32
}

func NewManager(store storage.Store, bus *events.Bus, notifier notify.Notifier, log *slog.Logger) *Manager {
	m := &Manager{
		store:    store,
		bus:      bus,
		notifier: notifier,
		log:      log,
	}
	if watcher, ok := store.(storage.Watcher); ok {
		m.unwatch = watcher.Watch(m.handleStorageChange)
	}
	return m
}

// Hydrate restores the session from persisted credentials at app start.
func (m *Manager) Hydrate() {
	m.rederive()
}

// Close stops watching the credential keys.
func (m *Manager) Close() {
	if m.unwatch != nil {
		m.unwatch()
	}
}

func (m *Manager) Current() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token reads the bearer token from storage. The read is pure: no
// in-memory copy is kept, so tokens written by another tab are seen
// immediately.
func (m *Manager) Token() string {
	data, err := m.store.Get(storage.KeyUserToken)
	if err != nil {
		return ""
	}
	return string(data)
}

// SignIn persists the credentials issued on login/signup verification
// and broadcasts the session change.
func (m *Manager) SignIn(user *domain.User, token string) error {
	m.mu.Lock()
	m.current = user
	m.mu.Unlock()

	m.ownWrites.Add(1)
	defer m.ownWrites.Add(-1)
	if err := m.store.Set(storage.KeyUserToken, []byte(token)); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.store.Set(storage.KeyUserData, data); err != nil {
		return err
	}

	m.bus.PublishSession(events.SessionChanged{User: user})
	return nil
}

// SignOut is the explicit anonymous transition.
func (m *Manager) SignOut() {
	m.clear()
	m.notifier.Info("You have been signed out")
}

// Expire handles a 401/403 on any authenticated call: credentials are
// discarded and the user is told to sign in again.
func (m *Manager) Expire() {
	m.clear()
	m.notifier.Warning("Your session has expired, please sign in again")
}

// SetCurrent updates the persisted user record in place, e.g. after a
// profile refresh; nil transitions to anonymous.
func (m *Manager) SetCurrent(user *domain.User) {
	if user == nil {
		m.clear()
		return
	}

	m.mu.Lock()
	m.current = user
	m.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		m.log.Error("marshal user record", slog.String("error", err.Error()))
		return
	}
	m.ownWrites.Add(1)
	defer m.ownWrites.Add(-1)
	if err := m.store.Set(storage.KeyUserData, data); err != nil {
		m.log.Error("persist user record", slog.String("error", err.Error()))
	}
	m.bus.PublishSession(events.SessionChanged{User: user})
}

// TokenExpired peeks at the persisted JWT's exp claim without verifying
// the signature; verification is a server concern.
func (m *Manager) TokenExpired() bool {
	token := m.Token()
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// An opaque (non-JWT) token cannot be inspected; let the
		// server decide on the next call.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func (m *Manager) clear() {
	m.mu.Lock()
	wasAuthenticated := m.current != nil
	m.current = nil
	m.mu.Unlock()

	m.ownWrites.Add(1)
	if err := m.store.Delete(storage.KeyUserToken); err != nil {
		m.log.Error("clear token", slog.String("error", err.Error()))
	}
	if err := m.store.Delete(storage.KeyUserData); err != nil {
		m.log.Error("clear user record", slog.String("error", err.Error()))
	}
	m.ownWrites.Add(-1)

	if wasAuthenticated {
		m.bus.PublishSession(events.SessionChanged{User: nil})
	}
}

func (m *Manager) handleStorageChange(change storage.Change) {
	if m.ownWrites.Load() > 0 {
		return
	}
	if change.Key != storage.KeyUserToken && change.Key != storage.KeyUserData {
		return
	}
	m.rederive()
}

// rederive trusts storage wholesale and broadcasts only when the
// derived user actually differs from the in-memory one, so the
// manager's own writes are harmless no-ops here.
func (m *Manager) rederive() {
	var derived *domain.User
	if tokenData, err := m.store.Get(storage.KeyUserToken); err == nil && len(tokenData) > 0 {
		if userData, err := m.store.Get(storage.KeyUserData); err == nil {
			var user domain.User
			if err := json.Unmarshal(userData, &user); err == nil {
				derived = &user
			} else {
				m.log.Warn("corrupt user record in storage", slog.String("error", err.Error()))
			}
		}
	}

	m.mu.Lock()
	changed := !sameUser(m.current, derived)
	m.current = derived
	m.mu.Unlock()

	if changed {
		m.bus.PublishSession(events.SessionChanged{User: derived})
	}
}

func sameUser(a, b *domain.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Role == b.Role
}
