// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package arms

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/metrics"
)

// MemoryStore is the in-process Store implementation.
//
// The arm map is guarded by a RWMutex for entry creation and lookup;
// each arm entry carries its own mutex so updates to different arms
// proceed fully in parallel while updates to the same arm serialize.
type MemoryStore struct {
	mu     sync.RWMutex
	arms   map[armKey]*memoryArm
	byUser map[string][]string // user -> product ids, for snapshots

	seen   *dedupSet
	closed bool
	logger zerolog.Logger
}

type armKey struct {
	userID    string
	productID string
}

type memoryArm struct {
	mu   sync.Mutex
	stat Stat
}

// MemoryOptions configures a MemoryStore.
type MemoryOptions struct {
	// DedupTTL is how long event ids are remembered. Default: 24h
	DedupTTL time.Duration

	// DedupMaxEntries bounds the seen-event set. Default: 100000
	DedupMaxEntries int
}

// NewMemoryStore creates an empty in-memory arm store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMemoryStore(opts MemoryOptions, logger zerolog.Logger) *MemoryStore {
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = 24 * time.Hour
	}
	if opts.DedupMaxEntries <= 0 {
		opts.DedupMaxEntries = 100000
	}
	return &MemoryStore{
		arms:   make(map[armKey]*memoryArm),
		byUser: make(map[string][]string),
		seen:   newDedupSet(opts.DedupTTL, opts.DedupMaxEntries),
		logger: logger.With().Str("component", "arm-store").Str("backend", "memory").Logger(),
	}
}

// GetOrCreate implements Store.
func (m *MemoryStore) GetOrCreate(_ context.Context, userID, productID string) (Stat, error) {
	arm, err := m.arm(userID, productID)
	if err != nil {
		return Stat{}, err
	}
	metrics.ArmStoreOps.WithLabelValues("memory", "get").Inc()

	arm.mu.Lock()
	defer arm.mu.Unlock()
	return arm.stat, nil
}

// Update implements Store. The dedup check and the counter update run
// under the arm's lock, so a replay racing its original cannot
// double-count.
func (m *MemoryStore) Update(_ context.Context, userID, productID string, reward float64, eventID string) (bool, error) {
	arm, err := m.arm(userID, productID)
	if err != nil {
		return false, err
	}
	metrics.ArmStoreOps.WithLabelValues("memory", "update").Inc()

	arm.mu.Lock()
	defer arm.mu.Unlock()

	if !m.seen.checkAndRemember(eventID) {
		m.logger.Debug().
			Str("event_id", eventID).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("duplicate event ignored")
		return false, nil
	}

	arm.stat.Pulls++
	arm.stat.CumulativeReward += reward
	return true, nil
}

// Snapshot implements Store.
func (m *MemoryStore) Snapshot(_ context.Context, userID string) (map[string]Stat, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrClosed
	}
	products := make([]string, len(m.byUser[userID]))
	copy(products, m.byUser[userID])
	m.mu.RUnlock()

	metrics.ArmStoreOps.WithLabelValues("memory", "snapshot").Inc()

	out := make(map[string]Stat, len(products))
	for _, productID := range products {
		m.mu.RLock()
		arm := m.arms[armKey{userID, productID}]
		m.mu.RUnlock()
		if arm == nil {
			continue
		}
		arm.mu.Lock()
		out[productID] = arm.stat
		arm.mu.Unlock()
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// arm returns the entry for the key, creating it lazily.
func (m *MemoryStore) arm(userID, productID string) (*memoryArm, error) {
	key := armKey{userID, productID}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrClosed
	}
	arm, ok := m.arms[key]
	m.mu.RUnlock()
	if ok {
		return arm, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if arm, ok = m.arms[key]; ok {
		return arm, nil
	}
	arm = &memoryArm{}
	m.arms[key] = arm
	m.byUser[userID] = append(m.byUser[userID], productID)
	return arm, nil
}

var _ Store = (*MemoryStore)(nil)
