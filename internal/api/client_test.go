package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, func() string { return token }, slog.New(slog.DiscardHandler))
}

func TestRequest_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	sut := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"items":[]}`))
	}, "token-abc")

	_, err := sut.GetCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-abc", gotAuth)
}

func TestRequest_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	var hasHeader bool
	sut := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasHeader = r.Header["Authorization"]
		w.Write([]byte(`{"products":[],"total":0,"page":1}`))
	}, "")

	_, err := sut.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.False(t, hasHeader, "no Authorization header for anonymous calls")
}

func TestRequest_APIErrorCarriesStatusAndMessage(t *testing.T) {
	sut := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"insufficient stock"}`))
	}, "token-abc")

	_, err := sut.AddCartItem(context.Background(), "P1", 99)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "insufficient stock", apiErr.Message)
}

func TestRequest_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on
	sut := NewClient(server.URL, time.Second, func() string { return "" }, slog.New(slog.DiscardHandler))

	_, err := sut.ListProducts(context.Background())
	require.Error(t, err)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&APIError{Status: http.StatusUnauthorized}))
	assert.True(t, IsAuthError(&APIError{Status: http.StatusForbidden}))
	assert.False(t, IsAuthError(&APIError{Status: http.StatusNotFound}))
	assert.False(t, IsAuthError(&NetworkError{Op: "GET /api/cart", Err: errors.New("refused")}))
	assert.False(t, IsAuthError(nil))
}

func TestSearchParams_QueryEncoding(t *testing.T) {
	var gotQuery string
	sut := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"products":[],"total":0,"page":1}`))
	}, "")

	_, err := sut.SearchProducts(context.Background(), SearchParams{Query: "wool hat", Page: 2, Limit: 10, Category: "fedoras"})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "q=wool+hat")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "limit=10")
	assert.Contains(t, gotQuery, "category=fedoras")
}

func TestSearchParams_HasFilter(t *testing.T) {
	assert.False(t, SearchParams{}.HasFilter())
	assert.True(t, SearchParams{Query: "x"}.HasFilter())
	assert.True(t, SearchParams{Page: 1}.HasFilter())
	assert.True(t, SearchParams{Category: "caps"}.HasFilter())
}

func TestBreaker_OpensAfterConsecutiveServerErrors(t *testing.T) {
	calls := 0
	sut := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}, "")

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := sut.ListProducts(ctx)
		require.Error(t, err)
	}

	// Breaker is open now: the request short-circuits as a network
	// error without reaching the backend.
	_, err := sut.ListProducts(ctx)
	require.Error(t, err)
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Equal(t, 5, calls)
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	calls := 0
	sut := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}, "")

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := sut.GetProduct(ctx, "nope")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
	}
	assert.Equal(t, 10, calls, "4xx responses never trip the breaker")
}
