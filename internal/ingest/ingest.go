// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package ingest converts user interaction events into arm statistic
// and profile updates. Ingestion is the only write path into the arm
// store; the recommendation path never mutates statistics.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/arms"
	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
	"github.com/samarJ19/wallmart-Hackathon/internal/metrics"
	"github.com/samarJ19/wallmart-Hackathon/internal/profile"
)

// ErrValidation marks a malformed or unknown event. Wrapped errors
// carry the field-level reason.
var ErrValidation = errors.New("validation error")

// Action is the closed set of interaction types that carry a reward.
type Action string

const (
	ActionView     Action = "view"
	ActionTick     Action = "tick"
	ActionCross    Action = "cross"
	ActionCartAdd  Action = "cart_add"
	ActionPurchase Action = "purchase"
	ActionARView   Action = "ar_view"
)

// ParseAction validates an action string against the closed set.
// Unknown actions are rejected rather than silently zero-valued.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionView, ActionTick, ActionCross, ActionCartAdd, ActionPurchase, ActionARView:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
}

// RewardTable maps actions to reward values.
type RewardTable map[Action]float64

// DefaultRewardTable returns the fixed action-to-reward mapping.
func DefaultRewardTable() RewardTable {
	return RewardTable{
		ActionView:     0.1,
		ActionTick:     1.0,
		ActionCross:    -1.0,
		ActionCartAdd:  2.0,
		ActionPurchase: 5.0,
		ActionARView:   1.5,
	}
}

// RewardTableFromConfig builds a RewardTable from string-keyed config,
// falling back to the default value for any action the config omits.
func RewardTableFromConfig(rewards map[string]float64) (RewardTable, error) {
	table := DefaultRewardTable()
	for name, reward := range rewards {
		action, err := ParseAction(name)
		if err != nil {
			return nil, err
		}
		table[action] = reward
	}
	return table, nil
}

// Event is one user interaction. EventID drives idempotency: replays
// of the same id are swallowed as no-ops.
type Event struct {
	EventID   string            `json:"event_id"`
	UserID    string            `json:"user_id"`
	ProductID string            `json:"product_id"`
	Action    string            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Context   map[string]string `json:"context,omitempty"`
}

// Result reports the outcome of one ingestion.
type Result struct {
	// Accepted is true for every valid event, including duplicates.
	Accepted bool `json:"accepted"`

	// RewardApplied is the reward credited to the arm; zero for
	// duplicates.
	RewardApplied float64 `json:"reward_applied"`

	// Duplicate marks an already-seen event id.
	Duplicate bool `json:"duplicate"`
}

// Ingestor validates events, derives rewards, and applies them.
type Ingestor struct {
	store    arms.Store
	profiles *profile.Registry
	catalog  *catalog.Cache
	rewards  RewardTable
	logger   zerolog.Logger
}

// NewIngestor wires the ingestion path.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewIngestor(store arms.Store, profiles *profile.Registry, cache *catalog.Cache, rewards RewardTable, logger zerolog.Logger) *Ingestor {
	if rewards == nil {
		rewards = DefaultRewardTable()
	}
	return &Ingestor{
		store:    store,
		profiles: profiles,
		catalog:  cache,
		rewards:  rewards,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Ingest applies one interaction event.
//
// A valid, first-seen event updates the arm (pulls+1, reward added),
// bumps the user's interaction counter, and folds the reward into the
// category affinity EMA. A replayed event id changes nothing and is
// reported as an accepted duplicate, never an error. Once validation
// passes there is no partial-effect window: the arm update is a single
// atomic step and the profile update follows only a first application.
func (i *Ingestor) Ingest(ctx context.Context, event Event) (Result, error) {
	action, err := i.validate(event)
	if err != nil {
		metrics.FeedbackEvents.WithLabelValues(event.Action, "invalid").Inc()
		return Result{}, err
	}

	reward := i.rewards[action]

	applied, err := i.store.Update(ctx, event.UserID, event.ProductID, reward, event.EventID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to apply event %s: %w", event.EventID, err)
	}

	if !applied {
		metrics.FeedbackEvents.WithLabelValues(string(action), "duplicate").Inc()
		i.logger.Debug().
			Str("event_id", event.EventID).
			Str("user_id", event.UserID).
			Msg("duplicate event swallowed")
		return Result{Accepted: true, Duplicate: true}, nil
	}

	i.profiles.Apply(event.UserID, i.productCategory(event.ProductID), reward, event.Timestamp)
	metrics.FeedbackEvents.WithLabelValues(string(action), "applied").Inc()

	i.logger.Debug().
		Str("event_id", event.EventID).
		Str("user_id", event.UserID).
		Str("product_id", event.ProductID).
		Str("action", string(action)).
		Float64("reward", reward).
		Msg("event applied")

	return Result{Accepted: true, RewardApplied: reward}, nil
}

// validate checks required fields and the action against the closed set.
func (i *Ingestor) validate(event Event) (Action, error) {
	if event.EventID == "" {
		return "", fmt.Errorf("%w: event_id is required", ErrValidation)
	}
	if event.UserID == "" {
		return "", fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if event.ProductID == "" {
		return "", fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if event.Timestamp.IsZero() {
		return "", fmt.Errorf("%w: timestamp is required", ErrValidation)
	}
	return ParseAction(event.Action)
}

// productCategory resolves the product's category from the current
// catalog snapshot. Unknown products still accumulate arm statistics;
// they just contribute no affinity signal.
func (i *Ingestor) productCategory(productID string) string {
	if i.catalog == nil {
		return ""
	}
	snap, ok := i.catalog.Snapshot()
	if !ok {
		return ""
	}
	p, ok := snap.Lookup(productID)
	if !ok {
		return ""
	}
	return p.Category
}
