// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package backend is the HTTP client for the upstream store that owns
// the product catalog and the durable interaction history. The engine
// performs no other network I/O.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
	"github.com/samarJ19/wallmart-Hackathon/internal/ingest"
	"github.com/samarJ19/wallmart-Hackathon/internal/metrics"
	"github.com/samarJ19/wallmart-Hackathon/internal/recommend"
)

// errNotFound marks a 404 from the backend. It flows out as
// recommend.ErrUserNotFound and is not counted as a breaker failure.
var errNotFound = errors.New("backend: not found")

// Options configures the backend client.
type Options struct {
	// BaseURL is the backend API root, e.g. http://localhost:5000/api.
	BaseURL string

	// Timeout is the per-call HTTP timeout. Default: 10s
	Timeout time.Duration

	// RateLimit is the sustained request rate (req/s). Default: 10
	RateLimit float64

	// RateBurst is the limiter burst. Default: 20
	RateBurst int

	// BreakerFailureThreshold opens the breaker after this many
	// consecutive failures. Default: 5
	BreakerFailureThreshold uint32

	// BreakerOpenTimeout is the open-state duration before a probe.
	// Default: 30s
	BreakerOpenTimeout time.Duration
}

// Client talks to the backend with a token-bucket rate limit and a
// circuit breaker so a struggling upstream cannot stall the engine.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient builds a backend client.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 20
	}
	if opts.BreakerFailureThreshold == 0 {
		opts.BreakerFailureThreshold = 5
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = 30 * time.Second
	}

	clientLogger := logger.With().Str("component", "backend-client").Logger()

	settings := gobreaker.Settings{
		Name:    "backend",
		Timeout: opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A 404 is an answer, not an outage.
			return err == nil || errors.Is(err, errNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			open := 0.0
			if to == gobreaker.StateOpen {
				open = 1.0
			}
			metrics.BackendBreakerState.Set(open)
			clientLogger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		logger:  clientLogger,
	}
}

// catalogResponse is the backend's product listing shape.
type catalogResponse struct {
	Products []catalog.Product `json:"products"`
}

// historyResponse is the backend's interaction listing shape.
type historyResponse struct {
	Interactions []ingest.Event `json:"interactions"`
}

// FetchCatalog pulls the full product catalog for a snapshot refresh.
func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Product, error) {
	body, err := c.get(ctx, "/products", "catalog")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	var resp catalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return resp.Products, nil
}

// FetchUserHistory pulls a user's prior interactions for the history
// bootstrap. Returns recommend.ErrUserNotFound when the backend does
// not know the user; an empty slice means a known user with no history.
func (c *Client) FetchUserHistory(ctx context.Context, userID string) ([]ingest.Event, error) {
	body, err := c.get(ctx, "/users/"+userID+"/interactions", "history")
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %s", recommend.ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", userID, err)
	}

	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}
	return resp.Interactions, nil
}

// get runs one rate-limited GET through the circuit breaker.
func (c *Client) get(ctx context.Context, path, endpoint string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			metrics.ObserveBackendRequest(endpoint, 0)
			return nil, err
		}
		defer resp.Body.Close()

		metrics.ObserveBackendRequest(endpoint, resp.StatusCode)

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, errNotFound
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("backend returned %d for %s", resp.StatusCode, path)
		}

		return io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	})
}

var _ recommend.HistoryProvider = (*Client)(nil)
