package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalhat/storefront/internal/domain"
	"github.com/digitalhat/storefront/internal/events"
	"github.com/digitalhat/storefront/internal/storage"
)

type countingNotifier struct {
	m        sync.Mutex
	infos    int
	warnings int
}

func (n *countingNotifier) Info(string) {
	n.m.Lock()
	defer n.m.Unlock()
	n.infos++
}

func (n *countingNotifier) Success(string) {}

func (n *countingNotifier) Warning(string) {
	n.m.Lock()
	defer n.m.Unlock()
	n.warnings++
}

func (n *countingNotifier) Error(string) {}

func (n *countingNotifier) warningCount() int {
	n.m.Lock()
	defer n.m.Unlock()
	return n.warnings
}

func testUser() *domain.User {
	return &domain.User{ID: "u-1", FullName: "Test Member", Email: "member@example.com", Role: domain.RoleMember}
}

func newTestManager() (*Manager, *storage.MemoryStore, *events.Bus, *countingNotifier) {
	store := storage.NewMemoryStore()
	bus := events.NewBus()
	notifier := &countingNotifier{}
	sut := NewManager(store, bus, notifier, slog.New(slog.DiscardHandler))
	return sut, store, bus, notifier
}

func TestSignIn_PersistsAndBroadcasts(t *testing.T) {
	sut, store, bus, _ := newTestManager()

	var m sync.Mutex
	var received []*domain.User
	bus.SubscribeSession(func(ev events.SessionChanged) {
		m.Lock()
		defer m.Unlock()
		received = append(received, ev.User)
	})

	require.NoError(t, sut.SignIn(testUser(), "token-abc"))

	assert.Equal(t, "u-1", sut.Current().ID)
	assert.Equal(t, "token-abc", sut.Token())

	tokenData, err := store.Get(storage.KeyUserToken)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", string(tokenData))

	userData, err := store.Get(storage.KeyUserData)
	require.NoError(t, err)
	var persisted domain.User
	require.NoError(t, json.Unmarshal(userData, &persisted))
	assert.Equal(t, "u-1", persisted.ID)

	m.Lock()
	defer m.Unlock()
	require.Len(t, received, 1, "exactly one broadcast despite the storage watcher firing")
	assert.Equal(t, "u-1", received[0].ID)
}

func TestSignOut_ClearsEverything(t *testing.T) {
	sut, store, _, _ := newTestManager()
	require.NoError(t, sut.SignIn(testUser(), "token-abc"))

	sut.SignOut()

	assert.Nil(t, sut.Current())
	assert.Empty(t, sut.Token())
	_, err := store.Get(storage.KeyUserData)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExpire_SurfacesWarning(t *testing.T) {
	sut, _, bus, notifier := newTestManager()
	require.NoError(t, sut.SignIn(testUser(), "token-abc"))

	var m sync.Mutex
	var last *domain.User = testUser()
	bus.SubscribeSession(func(ev events.SessionChanged) {
		m.Lock()
		defer m.Unlock()
		last = ev.User
	})

	sut.Expire()

	assert.Nil(t, sut.Current())
	assert.Equal(t, 1, notifier.warningCount())
	m.Lock()
	defer m.Unlock()
	assert.Nil(t, last, "anonymous transition broadcast")
}

func TestCrossTab_CredentialWriteRederivesState(t *testing.T) {
	sut, store, bus, _ := newTestManager()

	var m sync.Mutex
	var received []*domain.User
	bus.SubscribeSession(func(ev events.SessionChanged) {
		m.Lock()
		defer m.Unlock()
		received = append(received, ev.User)
	})

	// Another tab signs in: credentials appear in storage without this
	// manager being involved.
	other := testUser()
	userData, err := json.Marshal(other)
	require.NoError(t, err)
	require.NoError(t, store.Set(storage.KeyUserToken, []byte("token-from-other-tab")))
	require.NoError(t, store.Set(storage.KeyUserData, userData))

	require.NotNil(t, sut.Current())
	assert.Equal(t, "u-1", sut.Current().ID)
	m.Lock()
	defer m.Unlock()
	assert.GreaterOrEqual(t, len(received), 1)
}

func TestCrossTab_CredentialDeleteGoesAnonymous(t *testing.T) {
	sut, store, _, _ := newTestManager()
	require.NoError(t, sut.SignIn(testUser(), "token-abc"))

	// Another tab signs out.
	require.NoError(t, store.Delete(storage.KeyUserToken))

	assert.Nil(t, sut.Current(), "storage is trusted wholesale, last write wins")
}

func TestHydrate_RestoresPersistedSession(t *testing.T) {
	store := storage.NewMemoryStore()
	userData, err := json.Marshal(testUser())
	require.NoError(t, err)
	require.NoError(t, store.Set(storage.KeyUserToken, []byte("token-abc")))
	require.NoError(t, store.Set(storage.KeyUserData, userData))

	sut := NewManager(store, events.NewBus(), &countingNotifier{}, slog.New(slog.DiscardHandler))
	sut.Hydrate()

	require.NotNil(t, sut.Current())
	assert.Equal(t, "u-1", sut.Current().ID)
}

func TestHydrate_CorruptUserRecord(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyUserToken, []byte("token-abc")))
	require.NoError(t, store.Set(storage.KeyUserData, []byte("{broken")))

	sut := NewManager(store, events.NewBus(), &countingNotifier{}, slog.New(slog.DiscardHandler))
	sut.Hydrate()

	assert.Nil(t, sut.Current())
}

func signedJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenExpired(t *testing.T) {
	sut, _, _, _ := newTestManager()

	assert.True(t, sut.TokenExpired(), "no token counts as expired")

	require.NoError(t, sut.SignIn(testUser(), signedJWT(t, time.Now().Add(time.Hour))))
	assert.False(t, sut.TokenExpired())

	require.NoError(t, sut.SignIn(testUser(), signedJWT(t, time.Now().Add(-time.Hour))))
	assert.True(t, sut.TokenExpired())

	// Opaque tokens cannot be inspected; the server decides.
	require.NoError(t, sut.SignIn(testUser(), "opaque-token"))
	assert.False(t, sut.TokenExpired())
}
