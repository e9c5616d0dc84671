// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package arms stores per-(user, product) bandit arm statistics.
//
// Updates to the same arm are serialized so concurrent reward events
// never lose a read-modify-write, and every update is idempotent on its
// event id: replaying a delivered-twice event is a no-op.
package arms

import (
	"context"
	"errors"
)

// Stat holds the pull and reward counters of a single arm.
// Pulls never decreases; CumulativeReward accumulates signed rewards.
type Stat struct {
	Pulls            int64   `json:"pulls"`
	CumulativeReward float64 `json:"cumulative_reward"`
}

// Mean returns the average reward per pull. An arm that has never been
// pulled reports 0 here; ranking layers treat zero-pull arms separately.
func (s Stat) Mean() float64 {
	if s.Pulls == 0 {
		return 0
	}
	return s.CumulativeReward / float64(s.Pulls)
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("arm store is closed")

// Store is the arm statistics abstraction. Implementations must
// serialize updates per arm key and deduplicate events by id.
type Store interface {
	// GetOrCreate returns the arm's current stat, lazily creating a
	// zero-valued arm on first access.
	GetOrCreate(ctx context.Context, userID, productID string) (Stat, error)

	// Update applies a reward to the arm. The update is idempotent on
	// eventID: the first call applies (pulls+1, reward added) and
	// returns applied=true; replays of the same eventID change nothing
	// and return applied=false.
	Update(ctx context.Context, userID, productID string, reward float64, eventID string) (applied bool, err error)

	// Snapshot returns all arms of a user keyed by product id. The
	// returned map is a copy owned by the caller.
	Snapshot(ctx context.Context, userID string) (map[string]Stat, error)

	// Close releases backend resources.
	Close() error
}
