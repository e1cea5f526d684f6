package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/digitalhat/storefront/internal/api"
	"github.com/digitalhat/storefront/internal/domain"
	"github.com/digitalhat/storefront/internal/notify"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search is issued.
const DefaultDebounce = 300 * time.Millisecond

// ProductAPI is the slice of the backend the catalog needs.
type ProductAPI interface {
	ListProducts(ctx context.Context) (*api.ProductList, error)
	SearchProducts(ctx context.Context, params api.SearchParams) (*api.ProductList, error)
}

// Cache holds the fetched product list and a derived filtered view.
// Free-text queries are debounced on the injected clock, so tests drive
// virtual time instead of sleeping.
type Cache struct {
	api      ProductAPI
	notifier notify.Notifier
	clock    clockwork.Clock
	log      *slog.Logger
	debounce time.Duration

	mu       sync.RWMutex
	products []domain.Product
	filtered []domain.Product
	lastErr  error
	timer    clockwork.Timer

	sfg singleflight.Group
}

func NewCache(productAPI ProductAPI, notifier notify.Notifier, clock clockwork.Clock, log *slog.Logger) *Cache {
	return &Cache{
		api:      productAPI,
		notifier: notifier,
		clock:    clock,
		log:      log,
		debounce: DefaultDebounce,
	}
}

// FetchProducts loads the catalog, choosing the search endpoint when any
// filter is present and the plain listing otherwise. Concurrent calls
// with identical params share one network request. On failure both the
// product list and the filtered view are cleared and the error is
// surfaced before being returned.
func (c *Cache) FetchProducts(ctx context.Context, params api.SearchParams) (*api.ProductList, error) {
	key := fmt.Sprintf("%s|%d|%d|%s", params.Query, params.Page, params.Limit, params.Category)
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		if params.HasFilter() {
			return c.api.SearchProducts(ctx, params)
		}
		return c.api.ListProducts(ctx)
	})
	if err != nil {
		c.mu.Lock()
		c.products = nil
		c.filtered = nil
		c.lastErr = err
		c.mu.Unlock()
		c.notifier.Error("Failed to load products")
		return nil, err
	}

	list := v.(*api.ProductList)
	c.mu.Lock()
	c.products = list.Products
	c.filtered = list.Products
	c.lastErr = nil
	c.mu.Unlock()
	return list, nil
}

// SetQuery schedules a filtered fetch after the quiet period,
// superseding any pending one. An empty query short-circuits: the
// filtered view mirrors the full product list and no network call is
// made.
func (c *Cache) SetQuery(query string) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if query == "" {
		c.filtered = c.products
		c.mu.Unlock()
		return
	}
	c.timer = c.clock.AfterFunc(c.debounce, func() {
		c.runSearch(query)
	})
	c.mu.Unlock()
}

// runSearch prefers server-side filtering and falls back to the
// client-side substring filter over the cached list when the search
// endpoint is unavailable.
func (c *Cache) runSearch(query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, err := c.api.SearchProducts(ctx, api.SearchParams{Query: query})
	if err != nil {
		c.log.Warn("server search unavailable, filtering locally",
			slog.String("query", query), slog.String("error", err.Error()))
		c.mu.Lock()
		c.filtered = filterLocal(c.products, query)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.filtered = list.Products
	c.mu.Unlock()
}

func (c *Cache) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products
}

func (c *Cache) Filtered() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filtered
}

func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// SetDebounce overrides the quiet period; zero restores the default.
func (c *Cache) SetDebounce(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		d = DefaultDebounce
	}
	c.debounce = d
}

// filterLocal is the client-side fallback: case-insensitive substring
// match, hit when ANY of title/description/category/brand contains the
// query.
func filterLocal(products []domain.Product, query string) []domain.Product {
	needle := strings.ToLower(query)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matchProduct(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func matchProduct(p domain.Product, needle string) bool {
	for _, field := range []string{p.Title, p.Description, p.Category, p.Brand} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
