package storage

import "errors"

// Well-known keys. These match the persisted state layout consumed by
// every session-aware component.
const (
	KeyUserToken     = "userToken"
	KeyUserData      = "userData"
	KeyCheckoutState = "checkoutState"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value layer behind session credentials and
// the checkout snapshot.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Change describes a write observed on a store. Value is nil when the
// key was deleted.
type Change struct {
	Key   string
	Value []byte
}

// Watcher is implemented by stores that can deliver change
// notifications, the analog of cross-tab storage events. Watch returns
// an unsubscribe func.
type Watcher interface {
	Watch(fn func(Change)) func()
}
