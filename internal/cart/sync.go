package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/digitalhat/storefront/internal/api"
	"github.com/digitalhat/storefront/internal/domain"
	"github.com/digitalhat/storefront/internal/events"
	"github.com/digitalhat/storefront/internal/notify"
)

// ErrCartUnavailable is returned for authenticated sessions whose role
// has no cart (admins).
var ErrCartUnavailable = errors.New("cart is not available for this account")

// SyncState is the per-cart synchronization state. The local view is
// provisional while PENDING and being reconciled while REVERTING; IDLE
// means local and server state agreed at the last convergence point.
type SyncState string

const (
	StateIdle      SyncState = "IDLE"
	StatePending   SyncState = "PENDING"
	StateReverting SyncState = "REVERTING"
)

func (s SyncState) String() string {
	return string(s)
}

// CartAPI is the slice of the backend the synchronizer needs.
type CartAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, productID string) (*domain.Cart, error)
}

// Sessions is what the synchronizer needs from the session layer.
type Sessions interface {
	Current() *domain.User
	Expire()
}

// Synchronizer keeps the local cart view under optimistic mutation
// reconciled against the server. Mutations apply locally first, then
// issue the network call; any mutation failure falls back to
// resyncFromServer, which discards local guesses wholesale. Mutations
// are not queued or coalesced; Fetch is the convergence point.
type Synchronizer struct {
	api      CartAPI
	sessions Sessions
	bus      *events.Bus
	notifier notify.Notifier
	log      *slog.Logger

	mu    sync.RWMutex
	cart  *domain.Cart
	state SyncState
}

func NewSynchronizer(cartAPI CartAPI, sessions Sessions, bus *events.Bus, notifier notify.Notifier, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		api:      cartAPI,
		sessions: sessions,
		bus:      bus,
		notifier: notifier,
		log:      log,
		state:    StateIdle,
	}
}

func (s *Synchronizer) Cart() *domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

func (s *Synchronizer) State() SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Fetch replaces the local cart wholesale with the server's; the swap
// is atomic, never a partial merge.
func (s *Synchronizer) Fetch(ctx context.Context) error {
	if err := s.requireOwner(); err != nil {
		return err
	}

	serverCart, err := s.api.GetCart(ctx)
	if err != nil {
		if api.IsAuthError(err) {
			s.expireSession()
			return err
		}
		s.notifier.Error("Failed to load your cart")
		s.setCart(nil, StateIdle)
		return err
	}

	s.setCart(serverCart, StateIdle)
	return nil
}

// Add applies an optimistic increment-or-append before the network
// call. Quantities below 1 are treated as 1.
func (s *Synchronizer) Add(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if err := s.requireOwner(); err != nil {
		return err
	}

	s.mu.Lock()
	optimistic := s.cart.Clone()
	if optimistic == nil {
		optimistic = &domain.Cart{}
	}
	found := false
	for i := range optimistic.Items {
		if optimistic.Items[i].ProductID == productID {
			optimistic.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		optimistic.Items = append(optimistic.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}
	s.cart = optimistic
	s.state = StatePending
	s.mu.Unlock()
	s.bus.PublishCart(events.CartChanged{Cart: optimistic})

	serverCart, err := s.api.AddCartItem(ctx, productID, quantity)
	if err != nil {
		return s.reconcile(ctx, "Could not add item to your cart", err)
	}

	s.setCart(serverCart, StateIdle)
	return nil
}

// UpdateQuantity optimistically sets the item's quantity to an absolute
// value; zero removes the row. Stock validation stays on the server.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if err := s.requireOwner(); err != nil {
		return err
	}

	s.mu.Lock()
	optimistic := s.cart.Clone()
	if optimistic == nil {
		optimistic = &domain.Cart{}
	}
	if quantity <= 0 {
		optimistic.Items = removeItem(optimistic.Items, productID)
	} else {
		for i := range optimistic.Items {
			if optimistic.Items[i].ProductID == productID {
				optimistic.Items[i].Quantity = quantity
				break
			}
		}
	}
	s.cart = optimistic
	s.state = StatePending
	s.mu.Unlock()
	s.bus.PublishCart(events.CartChanged{Cart: optimistic})

	serverCart, err := s.api.UpdateCartItem(ctx, productID, quantity)
	if err != nil {
		return s.reconcile(ctx, "Could not update your cart", err)
	}

	s.setCart(serverCart, StateIdle)
	return nil
}

// Remove optimistically filters the item out before the network call.
func (s *Synchronizer) Remove(ctx context.Context, productID string) error {
	if err := s.requireOwner(); err != nil {
		return err
	}

	s.mu.Lock()
	optimistic := s.cart.Clone()
	if optimistic == nil {
		optimistic = &domain.Cart{}
	}
	optimistic.Items = removeItem(optimistic.Items, productID)
	s.cart = optimistic
	s.state = StatePending
	s.mu.Unlock()
	s.bus.PublishCart(events.CartChanged{Cart: optimistic})

	serverCart, err := s.api.RemoveCartItem(ctx, productID)
	if err != nil {
		return s.reconcile(ctx, "Could not remove item from your cart", err)
	}

	s.setCart(serverCart, StateIdle)
	return nil
}

// Clear empties the cart. The backend exposes no bulk endpoint, so one
// delete is issued per line item, best effort: every deletion is
// attempted even when an earlier one fails, and the failures are joined.
// An already-empty cart is a no-op with zero network calls.
func (s *Synchronizer) Clear(ctx context.Context) error {
	if err := s.requireOwner(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		return nil
	}
	productIDs := make([]string, 0, len(s.cart.Items))
	for _, item := range s.cart.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	emptied := &domain.Cart{Items: []domain.CartItem{}}
	s.cart = emptied
	s.state = StatePending
	s.mu.Unlock()
	s.bus.PublishCart(events.CartChanged{Cart: emptied})

	var errs []error
	for _, productID := range productIDs {
		if _, err := s.api.RemoveCartItem(ctx, productID); err != nil {
			s.log.Warn("cart item deletion failed during clear",
				slog.String("productId", productID), slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return s.reconcile(ctx, "Could not clear your cart", errors.Join(errs...))
	}

	s.setCart(emptied, StateIdle)
	return nil
}

// reconcile is the shared failure path for mutations: expired sessions
// tear the cart down, anything else surfaces a notification and
// resynchronizes from the server.
func (s *Synchronizer) reconcile(ctx context.Context, message string, cause error) error {
	if api.IsAuthError(cause) {
		s.expireSession()
		return cause
	}
	s.notifier.Error(message)
	s.resyncFromServer(ctx)
	return cause
}

// resyncFromServer discards the optimistic local state and refetches
// the authoritative cart. When even the refetch fails, no cart is
// preserved.
func (s *Synchronizer) resyncFromServer(ctx context.Context) {
	s.mu.Lock()
	s.state = StateReverting
	s.mu.Unlock()

	serverCart, err := s.api.GetCart(ctx)
	if err != nil {
		if api.IsAuthError(err) {
			s.expireSession()
			return
		}
		s.log.Error("cart resync failed", slog.String("error", err.Error()))
		s.setCart(nil, StateIdle)
		return
	}

	s.setCart(serverCart, StateIdle)
}

// Reset drops the local cart without touching the server, used when
// the session goes anonymous.
func (s *Synchronizer) Reset() {
	s.setCart(nil, StateIdle)
}

func (s *Synchronizer) requireOwner() error {
	user := s.sessions.Current()
	if user == nil {
		s.notifier.Warning("Please sign in to use your cart")
		return api.ErrUnauthenticated
	}
	if !user.Role.CanOwnCart() {
		return ErrCartUnavailable
	}
	return nil
}

func (s *Synchronizer) expireSession() {
	s.sessions.Expire()
	s.setCart(nil, StateIdle)
}

func (s *Synchronizer) setCart(cart *domain.Cart, state SyncState) {
	s.mu.Lock()
	s.cart = cart
	s.state = state
	s.mu.Unlock()
	s.bus.PublishCart(events.CartChanged{Cart: cart})
}

func removeItem(items []domain.CartItem, productID string) []domain.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
