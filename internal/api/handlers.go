// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package api serves the recommendation engine over HTTP using chi.
// Every response uses the APIResponse envelope.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/samarJ19/wallmart-Hackathon/internal/arms"
	"github.com/samarJ19/wallmart-Hackathon/internal/catalog"
	"github.com/samarJ19/wallmart-Hackathon/internal/ingest"
	"github.com/samarJ19/wallmart-Hackathon/internal/profile"
	"github.com/samarJ19/wallmart-Hackathon/internal/recommend"
)

// Refresher triggers an immediate catalog refresh outside the periodic
// sync cycle.
type Refresher interface {
	RefreshNow(ctx context.Context) error
}

// Handler holds the engine surfaces the HTTP layer exposes.
type Handler struct {
	engine    *recommend.Engine
	ingestor  *ingest.Ingestor
	cache     *catalog.Cache
	profiles  *profile.Registry
	store     arms.Store
	refresher Refresher // optional
	logger    zerolog.Logger
}

// NewHandler wires the HTTP handlers. refresher may be nil; the manual
// catalog refresh endpoint then reports the feature unavailable.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(engine *recommend.Engine, ingestor *ingest.Ingestor, cache *catalog.Cache,
	profiles *profile.Registry, store arms.Store, refresher Refresher, logger zerolog.Logger,
) *Handler {
	return &Handler{
		engine:    engine,
		ingestor:  ingestor,
		cache:     cache,
		profiles:  profiles,
		store:     store,
		refresher: refresher,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// FeedbackRequest is the POST /feedback body.
type FeedbackRequest struct {
	EventID   string            `json:"event_id" validate:"required,max=128"`
	UserID    string            `json:"user_id" validate:"required,max=128"`
	ProductID string            `json:"product_id" validate:"required,max=128"`
	Action    string            `json:"action" validate:"required,oneof=view tick cross cart_add purchase ar_view"`
	Timestamp string            `json:"timestamp" validate:"required"`
	Context   map[string]string `json:"context,omitempty"`
}

// GetRecommendations handles GET /api/v1/recommendations/{userID}.
//
// Query parameters: k (list size, optional), category (candidate
// filter, optional).
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	k, err := getIntParam(r, "k", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if k < 0 {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "k must be non-negative", nil)
		return
	}
	category := r.URL.Query().Get("category")

	result, err := h.engine.Recommend(r.Context(), userID, category, k)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   result,
	})
}

// PostFeedback handles POST /api/v1/feedback.
//
// Duplicate event ids are accepted and reported as duplicates, never
// rejected: at-least-once delivery upstream must stay safe to retry.
func (h *Handler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, r, http.StatusBadRequest, &APIResponse{Status: "error", Error: apiErr})
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
			"timestamp must be RFC3339", nil)
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), ingest.Event{
		EventID:   req.EventID,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Action:    req.Action,
		Timestamp: ts,
		Context:   req.Context,
	})
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   result,
	})
}

// PostCatalogRefresh handles POST /api/v1/catalog/refresh, forcing an
// immediate catalog pull outside the periodic sync.
func (h *Handler) PostCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		respondError(w, r, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE",
			"no catalog source configured", nil)
		return
	}

	if err := h.refresher.RefreshNow(r.Context()); err != nil {
		respondError(w, r, http.StatusBadGateway, "BACKEND_ERROR",
			"catalog refresh failed", err)
		return
	}

	snap, _ := h.cache.Snapshot()
	data := map[string]interface{}{"refreshed": true}
	if snap != nil {
		data["generation"] = snap.Generation
		data["products"] = len(snap.Products)
		data["fetched_at"] = snap.FetchedAt
	}

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   data,
	})
}

// userStats is the GET /users/{userID}/stats payload.
type userStats struct {
	Profile profile.UserProfile `json:"profile"`
	Arms    map[string]armStat  `json:"arms"`
}

type armStat struct {
	Pulls            int64   `json:"pulls"`
	CumulativeReward float64 `json:"cumulative_reward"`
	Mean             float64 `json:"mean"`
}

// GetUserStats handles GET /api/v1/users/{userID}/stats, exposing the
// engine's per-user state for debugging and demos.
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prof, ok := h.profiles.Get(userID)
	if !ok {
		respondError(w, r, http.StatusNotFound, "USER_NOT_FOUND",
			"user has no recorded state", nil)
		return
	}

	stats, err := h.store.Snapshot(r.Context(), userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR",
			"failed to load arm statistics", err)
		return
	}

	out := userStats{Profile: prof, Arms: make(map[string]armStat, len(stats))}
	for productID, s := range stats {
		out.Arms[productID] = armStat{
			Pulls:            s.Pulls,
			CumulativeReward: s.CumulativeReward,
			Mean:             s.Mean(),
		}
	}

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   out,
	})
}

// Healthz handles GET /healthz. Readiness degrades, it does not fail:
// a missing catalog snapshot reports "degraded" with a 200 so the
// supervisor does not restart a server that is merely waiting on the
// backend.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	data := map[string]interface{}{"catalog_loaded": true}

	if snap, ok := h.cache.Snapshot(); !ok {
		status = "degraded"
		data["catalog_loaded"] = false
	} else {
		data["catalog_generation"] = snap.Generation
		data["catalog_age_seconds"] = time.Since(snap.FetchedAt).Seconds()
	}
	data["status"] = status
	data["known_users"] = h.profiles.Len()

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   data,
	})
}

// respondEngineError maps engine error taxonomy onto HTTP statuses.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ingest.ErrValidation):
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, recommend.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, "USER_NOT_FOUND",
			"user is not known to the interaction store", nil)
	case errors.Is(err, recommend.ErrCatalogUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE",
			"no catalog snapshot is available yet", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR",
			"internal error", err)
	}
}
