package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitalhat/storefront/internal/api"
	"github.com/digitalhat/storefront/internal/domain"
)

type mockProductAPI struct {
	m           sync.Mutex
	products    []domain.Product
	listErr     error
	searchErr   error
	listCalls   int
	searchCalls int
	lastParams  api.SearchParams
}

func (m *mockProductAPI) ListProducts(context.Context) (*api.ProductList, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &api.ProductList{Products: m.products, Total: len(m.products), Page: 1}, nil
}

func (m *mockProductAPI) SearchProducts(_ context.Context, params api.SearchParams) (*api.ProductList, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.searchCalls++
	m.lastParams = params
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	matched := filterLocal(m.products, params.Query)
	return &api.ProductList{Products: matched, Total: len(matched), Page: 1}, nil
}

func (m *mockProductAPI) calls() (list, search int) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.listCalls, m.searchCalls
}

type noopNotifier struct {
	m      sync.Mutex
	errors int
}

func (n *noopNotifier) Info(string)    {}
func (n *noopNotifier) Success(string) {}
func (n *noopNotifier) Warning(string) {}

func (n *noopNotifier) Error(string) {
	n.m.Lock()
	defer n.m.Unlock()
	n.errors++
}

func catalogFixture() []domain.Product {
	return []domain.Product{
		{ID: "hat-001", Title: "Classic Snapback", Description: "flat brim", Category: "caps", Brand: "DigitalHat"},
		{ID: "hat-002", Title: "Wool Fedora", Description: "wide brim", Category: "fedoras", Brand: "Brimline"},
		{ID: "hat-003", Title: "Cable Knit Beanie", Description: "fleece lining", Category: "beanies", Brand: "DigitalHat"},
	}
}

func newTestCache(products []domain.Product) (*Cache, *mockProductAPI, *clockwork.FakeClock, *noopNotifier) {
	mockAPI := &mockProductAPI{products: products}
	notifier := &noopNotifier{}
	clock := clockwork.NewFakeClock()
	sut := NewCache(mockAPI, notifier, clock, slog.New(slog.DiscardHandler))
	return sut, mockAPI, clock, notifier
}

func TestFetchProducts_PlainListing(t *testing.T) {
	sut, mockAPI, _, _ := newTestCache(catalogFixture())

	list, err := sut.FetchProducts(context.Background(), api.SearchParams{})
	require.NoError(t, err)
	assert.Len(t, list.Products, 3)
	assert.Len(t, sut.Filtered(), 3)

	listCalls, searchCalls := mockAPI.calls()
	assert.Equal(t, 1, listCalls)
	assert.Zero(t, searchCalls, "no filter means the plain listing endpoint")
}

func TestFetchProducts_FilterUsesSearchEndpoint(t *testing.T) {
	sut, mockAPI, _, _ := newTestCache(catalogFixture())

	_, err := sut.FetchProducts(context.Background(), api.SearchParams{Category: "caps", Page: 2})
	require.NoError(t, err)

	listCalls, searchCalls := mockAPI.calls()
	assert.Zero(t, listCalls)
	assert.Equal(t, 1, searchCalls)
}

func TestFetchProducts_FailureClearsState(t *testing.T) {
	sut, mockAPI, _, notifier := newTestCache(catalogFixture())
	_, err := sut.FetchProducts(context.Background(), api.SearchParams{})
	require.NoError(t, err)

	mockAPI.listErr = errors.New("backend down")
	_, err = sut.FetchProducts(context.Background(), api.SearchParams{})
	require.Error(t, err)

	assert.Nil(t, sut.Products())
	assert.Nil(t, sut.Filtered())
	assert.Error(t, sut.Err())
	assert.Equal(t, 1, notifier.errors)
}

func TestSetQuery_EmptyMirrorsFullListWithoutNetwork(t *testing.T) {
	sut, mockAPI, _, _ := newTestCache(catalogFixture())
	_, err := sut.FetchProducts(context.Background(), api.SearchParams{})
	require.NoError(t, err)

	sut.SetQuery("fedora")
	sut.SetQuery("")

	assert.Equal(t, sut.Products(), sut.Filtered())
	listCalls, searchCalls := mockAPI.calls()
	assert.Equal(t, 1, listCalls, "only the initial fetch")
	assert.Zero(t, searchCalls, "empty query issues no network call")
}

func TestSetQuery_DebouncedSearch(t *testing.T) {
	sut, mockAPI, clock, _ := newTestCache(catalogFixture())
	_, err := sut.FetchProducts(context.Background(), api.SearchParams{})
	require.NoError(t, err)

	sut.SetQuery("fedora")

	// Nothing happens inside the quiet period.
	clock.Advance(DefaultDebounce - time.Millisecond)
	_, searchCalls := mockAPI.calls()
	assert.Zero(t, searchCalls)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool {
		_, calls := mockAPI.calls()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		filtered := sut.Filtered()
		return len(filtered) == 1 && filtered[0].ID == "hat-002"
	}, time.Second, 5*time.Millisecond)
}

func TestSetQuery_RapidTypingSupersedesPendingSearch(t *testing.T) {
	sut, mockAPI, clock, _ := newTestCache(catalogFixture())
	_, err := sut.FetchProducts(context.Background(), api.SearchParams{})
	require.NoError(t, err)

	sut.SetQuery("f")
	clock.Advance(100 * time.Millisecond)
	sut.SetQuery("fe")
	clock.Advance(100 * time.Millisecond)
	sut.SetQuery("fedora")

	clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool {
		_, calls := mockAPI.calls()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	mockAPI.m.Lock()
	lastQuery := mockAPI.lastParams.Query
	mockAPI.m.Unlock()
	assert.Equal(t, "fedora", lastQuery, "only the final keystroke's query is issued")
}

func TestSearch_FallsBackToLocalFilter(t *testing.T) {
	sut, mockAPI, clock, _ := newTestCache(catalogFixture())
	_, err := sut.FetchProducts(context.Background(), api.SearchParams{})
	require.NoError(t, err)

	mockAPI.m.Lock()
	mockAPI.searchErr = errors.New("search endpoint unavailable")
	mockAPI.m.Unlock()

	// Matches on brand, case-insensitively.
	sut.SetQuery("DIGITALHAT")
	clock.Advance(DefaultDebounce)

	require.Eventually(t, func() bool {
		return len(sut.Filtered()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestMatchProduct_AnyField(t *testing.T) {
	p := domain.Product{Title: "Wool Fedora", Description: "wide brim", Category: "fedoras", Brand: "Brimline"}

	assert.True(t, matchProduct(p, "wool"))
	assert.True(t, matchProduct(p, "brim"))
	assert.True(t, matchProduct(p, "fedoras"))
	assert.True(t, matchProduct(p, "brimline"))
	assert.False(t, matchProduct(p, "beanie"))
}
