// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/recommend"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Options{
		BaseURL:   srv.URL,
		Timeout:   time.Second,
		RateLimit: 1000,
		RateBurst: 1000,
	}, zerolog.Nop())
	return client, srv
}

func TestFetchCatalog(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("path = %s, want /products", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[
			{"id":"p1","category":"shoes","price":49.9,"brand":"acme","popularity":10,"active":true,"inventory":3},
			{"id":"p2","category":"bags","price":20,"brand":"acme","popularity":2,"active":false,"inventory":0}
		]}`))
	}))

	products, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].ID != "p1" || products[0].Category != "shoes" || !products[0].Active {
		t.Errorf("p1 decoded wrong: %+v", products[0])
	}
}

func TestFetchUserHistory(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1/interactions" {
			t.Errorf("path = %s, want /users/u1/interactions", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"interactions":[
			{"event_id":"e1","user_id":"u1","product_id":"p1","action":"purchase","timestamp":"2026-08-01T10:00:00Z"}
		]}`))
	}))

	events, err := client.FetchUserHistory(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].EventID != "e1" || events[0].Action != "purchase" {
		t.Errorf("event decoded wrong: %+v", events[0])
	}
}

func TestFetchUserHistoryNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.FetchUserHistory(context.Background(), "ghost")
	if !errors.Is(err, recommend.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Options{
		BaseURL:                 srv.URL,
		Timeout:                 time.Second,
		RateLimit:               1000,
		RateBurst:               1000,
		BreakerFailureThreshold: 3,
		BreakerOpenTimeout:      time.Minute,
	}, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := client.FetchCatalog(ctx); err == nil {
			t.Fatal("expected failure")
		}
	}

	// Once open, calls fail fast without reaching the server.
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3 before the breaker opened", got)
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Options{
		BaseURL:                 srv.URL,
		Timeout:                 time.Second,
		RateLimit:               1000,
		RateBurst:               1000,
		BreakerFailureThreshold: 2,
	}, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_, err := client.FetchUserHistory(ctx, "ghost")
		if !errors.Is(err, recommend.ErrUserNotFound) {
			t.Fatalf("call %d: err = %v, want ErrUserNotFound", i, err)
		}
	}
	if got := calls.Load(); got != 6 {
		t.Errorf("server saw %d calls, want all 6: 404s must not open the breaker", got)
	}
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.FetchCatalog(ctx); err == nil {
		t.Error("expected context deadline error")
	}
}
