package events

import (
	"sync"

	"github.com/digitalhat/storefront/internal/domain"
)

// SessionChanged is broadcast whenever the authenticated user changes.
// User is nil for a transition to anonymous.
type SessionChanged struct {
	User *domain.User
}

// CartChanged is broadcast after every local cart state transition,
// optimistic or reconciled. Cart is nil when no cart exists.
type CartChanged struct {
	Cart *domain.Cart
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient user-facing message (toast).
type Notification struct {
	Level   Level
	Message string
}

// Bus is an in-process pub-sub hub with typed payloads. Publishing is
// synchronous: subscribers run on the publisher's goroutine, in
// subscription order.
type Bus struct {
	mu           sync.RWMutex
	nextID       int
	sessionSubs  map[int]func(SessionChanged)
	cartSubs     map[int]func(CartChanged)
	noticeSubs   map[int]func(Notification)
	sessionOrder []int
	cartOrder    []int
	noticeOrder  []int
}

func NewBus() *Bus {
	return &Bus{
		sessionSubs: make(map[int]func(SessionChanged)),
		cartSubs:    make(map[int]func(CartChanged)),
		noticeSubs:  make(map[int]func(Notification)),
	}
}

// SubscribeSession registers fn for session changes and returns an
// unsubscribe func.
func (b *Bus) SubscribeSession(fn func(SessionChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.sessionSubs[id] = fn
	b.sessionOrder = append(b.sessionOrder, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.sessionSubs, id)
	}
}

func (b *Bus) SubscribeCart(fn func(CartChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.cartSubs[id] = fn
	b.cartOrder = append(b.cartOrder, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.cartSubs, id)
	}
}

func (b *Bus) SubscribeNotification(fn func(Notification)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.noticeSubs[id] = fn
	b.noticeOrder = append(b.noticeOrder, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.noticeSubs, id)
	}
}

func (b *Bus) PublishSession(ev SessionChanged) {
	for _, fn := range b.sessionSnapshot() {
		fn(ev)
	}
}

func (b *Bus) PublishCart(ev CartChanged) {
	for _, fn := range b.cartSnapshot() {
		fn(ev)
	}
}

func (b *Bus) PublishNotification(ev Notification) {
	for _, fn := range b.noticeSnapshot() {
		fn(ev)
	}
}

// Snapshot subscriber lists under the read lock so a subscriber may
// unsubscribe (or subscribe) from inside its own callback.
func (b *Bus) sessionSnapshot() []func(SessionChanged) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(SessionChanged), 0, len(b.sessionSubs))
	for _, id := range b.sessionOrder {
		if fn, ok := b.sessionSubs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (b *Bus) cartSnapshot() []func(CartChanged) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(CartChanged), 0, len(b.cartSubs))
	for _, id := range b.cartOrder {
		if fn, ok := b.cartSubs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (b *Bus) noticeSnapshot() []func(Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(Notification), 0, len(b.noticeSubs))
	for _, id := range b.noticeOrder {
		if fn, ok := b.noticeSubs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
