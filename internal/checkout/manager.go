package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/digitalhat/storefront/internal/api"
	"github.com/digitalhat/storefront/internal/domain"
	"github.com/digitalhat/storefront/internal/notify"
	"github.com/digitalhat/storefront/internal/storage"
)

// ErrNoCart means there is nothing to check out: no navigation state,
// no persisted snapshot and no server cart. Callers redirect to the
// cart page.
var ErrNoCart = errors.New("no cart available for checkout")

// CheckoutAPI is the slice of the backend the snapshot manager needs.
type CheckoutAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	CreateOrder(ctx context.Context, req api.OrderRequest) (*domain.Order, error)
}

type Sessions interface {
	Current() *domain.User
	Expire()
}

// LiveCart is the local cart view used to default missing payload
// fields.
type LiveCart interface {
	Cart() *domain.Cart
}

// Manager freezes a cart-derived payload into durable per-session
// storage so the checkout page works the same whether it was reached
// from the cart, bookmarked, refreshed or loaded out of order.
type Manager struct {
	store    storage.Store
	api      CheckoutAPI
	sessions Sessions
	liveCart LiveCart
	notifier notify.Notifier
	log      *slog.Logger
	shipping decimal.Decimal
}

func NewManager(store storage.Store, checkoutAPI CheckoutAPI, sessions Sessions, liveCart LiveCart, notifier notify.Notifier, shipping decimal.Decimal, log *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		api:      checkoutAPI,
		sessions: sessions,
		liveCart: liveCart,
		notifier: notifier,
		log:      log,
		shipping: shipping,
	}
}

// ProceedToCheckout normalizes the payload, defaulting missing fields
// from the live cart, and persists it under the fixed snapshot key.
// Anonymous users get a warning and nothing is written.
func (m *Manager) ProceedToCheckout(ctx context.Context, payload *domain.CheckoutSnapshot) (*domain.CheckoutSnapshot, error) {
	if m.sessions.Current() == nil {
		m.notifier.Warning("Please sign in to continue to checkout")
		return nil, api.ErrUnauthenticated
	}

	if payload == nil {
		payload = &domain.CheckoutSnapshot{}
	}

	if len(payload.Items) == 0 {
		cart := m.liveCart.Cart()
		if cart.IsEmpty() {
			return nil, ErrNoCart
		}
		items, err := m.enrichItems(ctx, cart)
		if err != nil {
			m.notifier.Error("Failed to prepare checkout")
			return nil, err
		}
		payload.Items = items
	}

	m.normalize(payload)

	if err := m.persist(payload); err != nil {
		m.notifier.Error("Failed to save checkout state")
		return nil, err
	}
	return payload, nil
}

// Snapshot reads the persisted snapshot; absent or corrupt storage
// yields nil, never an error.
func (m *Manager) Snapshot() *domain.CheckoutSnapshot {
	data, err := m.store.Get(storage.KeyCheckoutState)
	if err != nil {
		return nil
	}
	var snapshot domain.CheckoutSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		m.log.Warn("corrupt checkout snapshot in storage", slog.String("error", err.Error()))
		return nil
	}
	return &snapshot
}

// Clear removes the persisted snapshot, called after successful order
// placement.
func (m *Manager) Clear() {
	if err := m.store.Delete(storage.KeyCheckoutState); err != nil {
		m.log.Error("clear checkout snapshot", slog.String("error", err.Error()))
	}
}

// Resolve implements the checkout page's three-tier fallback:
// navigation state, then the persisted snapshot, then a fresh snapshot
// synthesized from the live server cart (which is persisted for later
// reloads). ErrNoCart when all three come up empty.
func (m *Manager) Resolve(ctx context.Context, navState *domain.CheckoutSnapshot) (*domain.CheckoutSnapshot, error) {
	if navState != nil {
		return navState, nil
	}

	if persisted := m.Snapshot(); persisted != nil {
		return persisted, nil
	}

	cart, err := m.api.GetCart(ctx)
	if err != nil {
		if api.IsAuthError(err) {
			m.sessions.Expire()
		}
		return nil, fmt.Errorf("fetch cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrNoCart
	}

	items, err := m.enrichItems(ctx, cart)
	if err != nil {
		return nil, err
	}
	snapshot := &domain.CheckoutSnapshot{Items: items}
	m.normalize(snapshot)

	if err := m.persist(snapshot); err != nil {
		// The synthesized snapshot is still usable this load; only
		// the next reload pays for the failed write.
		m.log.Error("persist synthesized snapshot", slog.String("error", err.Error()))
	}
	return snapshot, nil
}

// PlaceOrder submits the persisted snapshot and clears it on success.
func (m *Manager) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	snapshot := m.Snapshot()
	if snapshot == nil {
		return nil, ErrNoCart
	}

	order, err := m.api.CreateOrder(ctx, api.OrderRequest{
		Items:          snapshot.Items,
		Totals:         snapshot.Totals,
		Currency:       snapshot.Currency,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		if api.IsAuthError(err) {
			m.sessions.Expire()
			return nil, err
		}
		m.notifier.Error("Failed to place your order")
		return nil, err
	}

	m.Clear()
	m.notifier.Success("Order placed")
	return order, nil
}

// enrichItems joins cart line items with their product records, pricing
// each line. Quantity always mirrors the cart.
func (m *Manager) enrichItems(ctx context.Context, cart *domain.Cart) ([]domain.CheckoutItem, error) {
	items := make([]domain.CheckoutItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := m.api.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("fetch product %s: %w", line.ProductID, err)
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		items = append(items, domain.CheckoutItem{
			ProductID: product.ID,
			Title:     product.Title,
			UnitPrice: product.UnitPrice,
			Currency:  product.Currency,
			Stock:     product.Stock,
			ImageURL:  product.ImageURL,
			Quantity:  line.Quantity,
			Subtotal:  product.UnitPrice.Mul(qty),
		})
	}
	return items, nil
}

// normalize fills in totals, currency, item count and capture time so
// every persisted snapshot is complete regardless of what the caller
// supplied.
func (m *Manager) normalize(snapshot *domain.CheckoutSnapshot) {
	if snapshot.ItemCount == 0 {
		for _, item := range snapshot.Items {
			snapshot.ItemCount += item.Quantity
		}
	}
	if snapshot.Currency == "" {
		snapshot.Currency = "USD"
		if len(snapshot.Items) > 0 && snapshot.Items[0].Currency != "" {
			snapshot.Currency = snapshot.Items[0].Currency
		}
	}
	if snapshot.Totals.Total.IsZero() {
		subtotal := decimal.Zero
		for _, item := range snapshot.Items {
			subtotal = subtotal.Add(item.Subtotal)
		}
		snapshot.Totals = domain.Totals{
			Subtotal: subtotal,
			Shipping: m.shipping,
			Total:    subtotal.Add(m.shipping),
		}
	}
	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = time.Now()
	}
}

func (m *Manager) persist(snapshot *domain.CheckoutSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal checkout snapshot: %w", err)
	}
	if err := m.store.Set(storage.KeyCheckoutState, data); err != nil {
		return fmt.Errorf("persist checkout snapshot: %w", err)
	}
	return nil
}
