// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package recommend

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/arms"
	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
	"github.com/samarJ19/wallmart-Hackathon/internal/ingest"
	"github.com/samarJ19/wallmart-Hackathon/internal/metrics"
	"github.com/samarJ19/wallmart-Hackathon/internal/profile"
)

// HistoryProvider pulls a user's prior interaction history from the
// external interaction store. Implementations return ErrUserNotFound
// when the upstream store does not know the user at all.
type HistoryProvider interface {
	FetchUserHistory(ctx context.Context, userID string) ([]ingest.Event, error)
}

// Options are the engine tunables.
type Options struct {
	// ColdStartThreshold is the interaction count T at which a user
	// transitions from cold-start to bandit serving. Default: 3
	ColdStartThreshold int64

	// ExplorationC is the UCB1 exploration coefficient. Nil selects the
	// default sqrt(2); an explicit zero is honored and means pure
	// exploitation.
	ExplorationC *float64

	// DefaultK is the list size when the request does not specify one.
	// Default: 10
	DefaultK int

	// MaxK caps the requested list size. Default: 100
	MaxK int

	// StalenessTolerance is how old the catalog snapshot may grow
	// before results carry the stale flag. Default: 15m
	StalenessTolerance time.Duration

	// JitterAmplitude bounds the cold-start jitter. Nil selects the
	// default 0.05; an explicit zero is honored and disables jitter.
	JitterAmplitude *float64

	// ColdStart holds the heuristic weights. Default: 0.5/0.3/0.2
	ColdStart ColdStartWeights
}

func (o Options) withDefaults() Options {
	if o.ColdStartThreshold <= 0 {
		o.ColdStartThreshold = 3
	}
	if o.ExplorationC == nil {
		c := math.Sqrt2
		o.ExplorationC = &c
	}
	if o.DefaultK <= 0 {
		o.DefaultK = 10
	}
	if o.MaxK <= 0 {
		o.MaxK = 100
	}
	if o.StalenessTolerance <= 0 {
		o.StalenessTolerance = 15 * time.Minute
	}
	if o.JitterAmplitude == nil {
		amp := 0.05
		o.JitterAmplitude = &amp
	}
	if o.ColdStart == (ColdStartWeights{}) {
		o.ColdStart = ColdStartWeights{Popularity: 0.5, Recency: 0.3, Affinity: 0.2}
	}
	return o
}

// Engine is the recommendation orchestrator. Its Recommend path is
// read-only with respect to arm statistics; only ingestion (and the
// history bootstrap that feeds through it) writes.
type Engine struct {
	cache    *catalog.Cache
	store    arms.Store
	profiles *profile.Registry
	ingestor *ingest.Ingestor
	history  HistoryProvider // optional
	opts     Options
	logger   zerolog.Logger

	now func() time.Time
}

// NewEngine wires the orchestrator. history may be nil when no external
// interaction store is configured; profiles then only ever fill through
// live ingestion.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cache *catalog.Cache, store arms.Store, profiles *profile.Registry,
	ingestor *ingest.Ingestor, history HistoryProvider, opts Options, logger zerolog.Logger,
) *Engine {
	return &Engine{
		cache:    cache,
		store:    store,
		profiles: profiles,
		ingestor: ingestor,
		history:  history,
		opts:     opts.withDefaults(),
		logger:   logger.With().Str("component", "engine").Logger(),
		now:      time.Now,
	}
}

// Recommend returns a ranked product list for the user.
//
// The cold-start decision is made here, from the engine's own
// interaction counter, never from anything client-reported. Users below
// the threshold get the deterministic heuristic; everyone else gets the
// UCB1 selector. Catalog staleness beyond the tolerance degrades to a
// flagged result rather than a failure.
func (e *Engine) Recommend(ctx context.Context, userID, category string, k int) (Result, error) {
	start := e.now()

	if userID == "" {
		metrics.ObserveRecommend("", "error", time.Since(start))
		return Result{}, fmt.Errorf("%w: user_id is required", ingest.ErrValidation)
	}

	if k <= 0 {
		k = e.opts.DefaultK
	}
	if k > e.opts.MaxK {
		k = e.opts.MaxK
	}

	prof, err := e.loadProfile(ctx, userID)
	if err != nil {
		metrics.ObserveRecommend("", "error", time.Since(start))
		return Result{}, err
	}

	candidates, ok := e.cache.Candidates(category)
	if !ok {
		metrics.ObserveRecommend("", "error", time.Since(start))
		return Result{}, ErrCatalogUnavailable
	}

	stale := false
	if age, ok := e.cache.Staleness(); ok && age > e.opts.StalenessTolerance {
		stale = true
		metrics.RecommendStale.Inc()
		e.logger.Warn().
			Dur("age", age).
			Dur("tolerance", e.opts.StalenessTolerance).
			Msg("serving from stale catalog snapshot")
	}

	strategy := StrategyBandit
	if prof.TotalInteractions < e.opts.ColdStartThreshold {
		strategy = StrategyColdStart
	}

	if len(candidates) == 0 {
		metrics.ObserveRecommend(string(strategy), string(StatusNoCandidates), time.Since(start))
		return Result{
			Recommendations: []ScoredProduct{},
			Strategy:        strategy,
			Status:          StatusNoCandidates,
			GeneratedAt:     e.now(),
			Stale:           stale,
		}, nil
	}

	var ranked []ScoredProduct
	if strategy == StrategyColdStart {
		ranked = selectColdStart(candidates, prof.Affinity, e.opts.ColdStart,
			*e.opts.JitterAmplitude, userID, e.now(), k)
	} else {
		stats, err := e.store.Snapshot(ctx, userID)
		if err != nil {
			metrics.ObserveRecommend(string(strategy), "error", time.Since(start))
			return Result{}, fmt.Errorf("failed to load arm snapshot for %s: %w", userID, err)
		}
		ranked = selectUCB(candidates, stats, *e.opts.ExplorationC, k)
	}

	metrics.ObserveRecommend(string(strategy), string(StatusOK), time.Since(start))
	e.logger.Debug().
		Str("user_id", userID).
		Str("strategy", string(strategy)).
		Int("k", k).
		Int("returned", len(ranked)).
		Bool("stale", stale).
		Msg("recommendation served")

	return Result{
		Recommendations: ranked,
		Strategy:        strategy,
		Status:          StatusOK,
		GeneratedAt:     e.now(),
		Stale:           stale,
	}, nil
}

// loadProfile returns the user's profile, bootstrapping it from the
// external interaction store on first sight.
func (e *Engine) loadProfile(ctx context.Context, userID string) (profile.UserProfile, error) {
	if prof, ok := e.profiles.Get(userID); ok {
		return prof, nil
	}

	if e.history == nil {
		// No external store: every user id is accepted and starts cold.
		return e.profiles.GetOrCreate(userID), nil
	}

	events, err := e.history.FetchUserHistory(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return profile.UserProfile{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		// Infra failure, not an unknown user: degrade to cold-start
		// service instead of failing the request.
		e.logger.Warn().Err(err).Str("user_id", userID).
			Msg("history bootstrap failed, serving cold")
		return e.profiles.GetOrCreate(userID), nil
	}

	e.replayHistory(ctx, userID, events)
	return e.profiles.GetOrCreate(userID), nil
}

// replayHistory feeds prior events through the ingestion path so arm
// statistics and the profile reflect full history across restarts.
// Events without ids get a deterministic synthetic id, so a bootstrap
// replay stays idempotent like any other redelivery.
func (e *Engine) replayHistory(ctx context.Context, userID string, events []ingest.Event) {
	replayed := 0
	for _, event := range events {
		if event.UserID == "" {
			event.UserID = userID
		}
		if event.EventID == "" {
			event.EventID = syntheticEventID(event)
		}
		if _, err := e.ingestor.Ingest(ctx, event); err != nil {
			e.logger.Warn().Err(err).
				Str("user_id", userID).
				Str("event_id", event.EventID).
				Msg("skipping unreplayable history event")
			continue
		}
		replayed++
	}

	e.logger.Info().
		Str("user_id", userID).
		Int("events", len(events)).
		Int("replayed", replayed).
		Msg("user history bootstrapped")
}

// syntheticEventID derives a stable id from the event's identifying
// fields, so the same historical record always replays under the same
// id.
func syntheticEventID(event ingest.Event) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d", event.UserID, event.ProductID, event.Action, event.Timestamp.UnixNano())
	return fmt.Sprintf("hist-%016x", h.Sum64())
}
