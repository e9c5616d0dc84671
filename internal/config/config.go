// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

// Package config defines the application configuration tree and its
// layered loading (defaults, optional YAML file, environment overrides).
package config

import (
	"fmt"
	"math"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Backend  BackendConfig  `koanf:"backend"`
	Engine   EngineConfig   `koanf:"engine"`
	ArmStore ArmStoreConfig `koanf:"arm_store"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8001
	Port int `koanf:"port"`

	// Timeout is the per-request read/write timeout. Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. Default: ["*"]
	CORSOrigins []string `koanf:"cors_origins"`

	// FeedbackRateLimit is the per-IP request budget for the feedback
	// endpoint within FeedbackRateWindow. Default: 120
	FeedbackRateLimit int `koanf:"feedback_rate_limit"`

	// FeedbackRateWindow is the rate-limit window. Default: 1m
	FeedbackRateWindow time.Duration `koanf:"feedback_rate_window"`
}

// BackendConfig holds settings for the upstream store that owns the
// product catalog and the durable interaction history.
type BackendConfig struct {
	// URL is the backend API base URL, e.g. http://localhost:5000/api.
	URL string `koanf:"url"`

	// Timeout is the per-call HTTP timeout. Default: 10s
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained request rate toward the backend in
	// requests per second. Default: 10
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the rate limiter burst size. Default: 20
	RateBurst int `koanf:"rate_burst"`

	// BreakerFailureThreshold is the consecutive-failure count that
	// opens the circuit breaker. Default: 5
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerOpenTimeout is how long the breaker stays open before
	// probing again. Default: 30s
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// EngineConfig holds the recommendation engine tunables.
type EngineConfig struct {
	// ColdStartThreshold is the interaction count T at which a user
	// transitions from cold-start to bandit serving. Default: 3
	ColdStartThreshold int `koanf:"cold_start_threshold"`

	// ExplorationC is the UCB exploration coefficient. Default: sqrt(2)
	ExplorationC float64 `koanf:"exploration_c"`

	// DefaultK is the recommendation list size when the request does
	// not specify one. Default: 10
	DefaultK int `koanf:"default_k"`

	// MaxK caps the requested list size. Default: 100
	MaxK int `koanf:"max_k"`

	// RefreshInterval is the catalog sync period. Default: 5m
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// StalenessTolerance is how stale the catalog snapshot may grow
	// before results are flagged as stale. Default: 15m
	StalenessTolerance time.Duration `koanf:"staleness_tolerance"`

	// AffinityAlpha is the EMA smoothing factor for per-category
	// affinity updates. Default: 0.2
	AffinityAlpha float64 `koanf:"affinity_alpha"`

	// JitterAmplitude bounds the deterministic cold-start jitter added
	// to heuristic scores. Default: 0.05
	JitterAmplitude float64 `koanf:"jitter_amplitude"`

	// ColdStart holds the heuristic score weights for new users.
	ColdStart ColdStartWeights `koanf:"cold_start"`

	// Rewards maps interaction actions to reward values. Keys must be
	// members of the closed action set; unknown actions are rejected at
	// ingest time regardless of this map.
	Rewards map[string]float64 `koanf:"rewards"`

	// DedupTTL is how long seen event ids are remembered for
	// idempotent replay detection. Default: 24h
	DedupTTL time.Duration `koanf:"dedup_ttl"`

	// DedupMaxEntries bounds the in-memory seen-event set. Default: 100000
	DedupMaxEntries int `koanf:"dedup_max_entries"`
}

// ColdStartWeights are the component weights of the cold-start heuristic
// score: w1*popularity + w2*recency + w3*category affinity.
type ColdStartWeights struct {
	Popularity float64 `koanf:"popularity"`
	Recency    float64 `koanf:"recency"`
	Affinity   float64 `koanf:"affinity"`
}

// ArmStoreConfig selects and configures the arm statistics backend.
type ArmStoreConfig struct {
	// Backend is "memory" or "badger". Default: memory
	Backend string `koanf:"backend"`

	// Path is the badger data directory (badger backend only).
	Path string `koanf:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level. Default: info
	Level string `koanf:"level"`

	// Format is json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes caller file:line in log output. Default: false
	Caller bool `koanf:"caller"`
}

// DefaultRewards returns the fixed action-to-reward table.
func DefaultRewards() map[string]float64 {
	return map[string]float64{
		"view":     0.1,
		"tick":     1.0,
		"cross":    -1.0,
		"cart_add": 2.0,
		"purchase": 5.0,
		"ar_view":  1.5,
	}
}

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8001,
			Timeout:            30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			CORSOrigins:        []string{"*"},
			FeedbackRateLimit:  120,
			FeedbackRateWindow: time.Minute,
		},
		Backend: BackendConfig{
			URL:                     "http://localhost:5000/api",
			Timeout:                 10 * time.Second,
			RateLimit:               10,
			RateBurst:               20,
			BreakerFailureThreshold: 5,
			BreakerOpenTimeout:      30 * time.Second,
		},
		Engine: EngineConfig{
			ColdStartThreshold: 3,
			ExplorationC:       math.Sqrt2,
			DefaultK:           10,
			MaxK:               100,
			RefreshInterval:    5 * time.Minute,
			StalenessTolerance: 15 * time.Minute,
			AffinityAlpha:      0.2,
			JitterAmplitude:    0.05,
			ColdStart: ColdStartWeights{
				Popularity: 0.5,
				Recency:    0.3,
				Affinity:   0.2,
			},
			Rewards:         DefaultRewards(),
			DedupTTL:        24 * time.Hour,
			DedupMaxEntries: 100000,
		},
		ArmStore: ArmStoreConfig{
			Backend: "memory",
			Path:    "/data/arms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %v", c.Backend.Timeout)
	}
	if c.Backend.RateLimit <= 0 {
		return fmt.Errorf("backend.rate_limit must be positive, got %v", c.Backend.RateLimit)
	}
	if c.Engine.ColdStartThreshold < 1 {
		return fmt.Errorf("engine.cold_start_threshold must be >= 1, got %d", c.Engine.ColdStartThreshold)
	}
	if c.Engine.ExplorationC < 0 {
		return fmt.Errorf("engine.exploration_c must be non-negative, got %v", c.Engine.ExplorationC)
	}
	if c.Engine.DefaultK < 1 {
		return fmt.Errorf("engine.default_k must be >= 1, got %d", c.Engine.DefaultK)
	}
	if c.Engine.MaxK < c.Engine.DefaultK {
		return fmt.Errorf("engine.max_k (%d) must be >= engine.default_k (%d)", c.Engine.MaxK, c.Engine.DefaultK)
	}
	if c.Engine.RefreshInterval <= 0 {
		return fmt.Errorf("engine.refresh_interval must be positive, got %v", c.Engine.RefreshInterval)
	}
	if c.Engine.StalenessTolerance < c.Engine.RefreshInterval {
		return fmt.Errorf("engine.staleness_tolerance (%v) must be >= engine.refresh_interval (%v)",
			c.Engine.StalenessTolerance, c.Engine.RefreshInterval)
	}
	if c.Engine.AffinityAlpha <= 0 || c.Engine.AffinityAlpha > 1 {
		return fmt.Errorf("engine.affinity_alpha must be in (0,1], got %v", c.Engine.AffinityAlpha)
	}
	if c.Engine.JitterAmplitude < 0 {
		return fmt.Errorf("engine.jitter_amplitude must be non-negative, got %v", c.Engine.JitterAmplitude)
	}
	if c.Engine.DedupTTL <= 0 {
		return fmt.Errorf("engine.dedup_ttl must be positive, got %v", c.Engine.DedupTTL)
	}
	if c.Engine.DedupMaxEntries < 1 {
		return fmt.Errorf("engine.dedup_max_entries must be >= 1, got %d", c.Engine.DedupMaxEntries)
	}
	for action, reward := range c.Engine.Rewards {
		if !knownAction(action) {
			return fmt.Errorf("engine.rewards: unknown action %q", action)
		}
		if math.IsNaN(reward) || math.IsInf(reward, 0) {
			return fmt.Errorf("engine.rewards[%s] must be finite, got %v", action, reward)
		}
	}
	switch c.ArmStore.Backend {
	case "memory":
	case "badger":
		if c.ArmStore.Path == "" {
			return fmt.Errorf("arm_store.path is required for the badger backend")
		}
	default:
		return fmt.Errorf("arm_store.backend must be memory or badger, got %q", c.ArmStore.Backend)
	}
	return nil
}

// knownAction reports whether the action name is in the closed action set.
func knownAction(action string) bool {
	switch action {
	case "view", "tick", "cross", "cart_add", "purchase", "ar_view":
		return true
	}
	return false
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c

	clone.Server.CORSOrigins = make([]string, len(c.Server.CORSOrigins))
	copy(clone.Server.CORSOrigins, c.Server.CORSOrigins)

	clone.Engine.Rewards = make(map[string]float64, len(c.Engine.Rewards))
	for k, v := range c.Engine.Rewards {
		clone.Engine.Rewards[k] = v
	}

	return &clone
}
