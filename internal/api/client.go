package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource returns the bearer token from persisted credentials, or
// "" when no session exists. It is consulted on every call so a token
// written by another tab is picked up without restarting the client.
type TokenSource func() string

// Client is the single point of HTTP access to the DigitalHat backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log *slog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    "digitalhat-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Only transport failures and server errors count against the
		// breaker; 4xx responses are expected application outcomes.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if apiErr, ok := err.(*APIError); ok {
				return apiErr.Status < http.StatusInternalServerError
			}
			return false
		},
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		log:     log,
	}
}

// request issues one HTTP call and decodes the JSON response into out
// (skipped when out is nil). The bearer token, when present, is attached
// to every call.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request payload: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	op := method + " " + path
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(req)
	})
	if err != nil {
		if _, ok := err.(*APIError); ok {
			return err
		}
		c.log.Debug("request failed", slog.String("op", op), slog.String("error", err.Error()))
		return &NetworkError{Op: op, Err: err}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response for %s: %w", op, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(data),
		}
	}
	return data, nil
}

// errorMessage pulls the backend's {"message": ...} field out of an
// error body, falling back to the raw body.
func errorMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}
