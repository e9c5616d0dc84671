// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package recommend implements the recommendation engine: UCB1 bandit
// scoring for users with history, a deterministic popularity/recency
// heuristic for cold-start users, and the orchestrator that picks
// between them.
package recommend

import (
	"errors"
	"time"
)

// Strategy identifies which policy produced a result.
type Strategy string

const (
	// StrategyColdStart marks results from the deterministic heuristic
	// used while a user has fewer than the threshold interactions.
	StrategyColdStart Strategy = "cold_start"

	// StrategyBandit marks results from the UCB1 selector.
	StrategyBandit Strategy = "bandit"
)

// Status reports the outcome of a recommendation request.
type Status string

const (
	// StatusOK means a non-empty ranked list was produced.
	StatusOK Status = "ok"

	// StatusNoCandidates means the filtered candidate pool was empty.
	// This is an explicit empty result, not an error.
	StatusNoCandidates Status = "no_candidates"
)

// ScoredProduct is one entry of a ranked recommendation list.
type ScoredProduct struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

// Result is a completed recommendation response.
type Result struct {
	// Recommendations is the ranked list, highest priority first. It
	// never contains duplicate product ids and never exceeds the
	// requested k.
	Recommendations []ScoredProduct `json:"recommendations"`

	// Strategy tags which policy produced the list.
	Strategy Strategy `json:"strategy"`

	// Status is ok or no_candidates.
	Status Status `json:"status"`

	// GeneratedAt is when the result was computed.
	GeneratedAt time.Time `json:"generated_at"`

	// Stale is set when the catalog snapshot backing the result is
	// older than the configured staleness tolerance.
	Stale bool `json:"stale"`
}

// Sentinel errors of the recommendation path.
var (
	// ErrUserNotFound marks a user the engine has never seen and the
	// upstream store does not know either. A known user with zero
	// history is NOT an error; it serves from cold start.
	ErrUserNotFound = errors.New("user not found")

	// ErrCatalogUnavailable means no catalog snapshot has ever been
	// loaded, so nothing can be recommended.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
