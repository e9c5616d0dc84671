// Walmart Hackathon - Contextual Bandit Product Recommendation Engine
// Copyright 2026 Samar J. (samarJ19)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/samarJ19/wallmart-Hackathon

package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Engine.ColdStartThreshold != 3 {
		t.Errorf("cold_start_threshold = %d, want 3", cfg.Engine.ColdStartThreshold)
	}
	if cfg.Engine.ExplorationC != math.Sqrt2 {
		t.Errorf("exploration_c = %v, want sqrt(2)", cfg.Engine.ExplorationC)
	}
	if cfg.Engine.DefaultK != 10 {
		t.Errorf("default_k = %d, want 10", cfg.Engine.DefaultK)
	}
}

func TestDefaultRewards(t *testing.T) {
	t.Parallel()

	rewards := DefaultRewards()
	want := map[string]float64{
		"view":     0.1,
		"tick":     1.0,
		"cross":    -1.0,
		"cart_add": 2.0,
		"purchase": 5.0,
		"ar_view":  1.5,
	}
	if len(rewards) != len(want) {
		t.Fatalf("reward table has %d entries, want %d", len(rewards), len(want))
	}
	for action, reward := range want {
		if rewards[action] != reward {
			t.Errorf("rewards[%s] = %v, want %v", action, rewards[action], reward)
		}
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "missing backend url",
			mutate:  func(c *Config) { c.Backend.URL = "" },
			wantErr: "backend.url",
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.Engine.ColdStartThreshold = 0 },
			wantErr: "cold_start_threshold",
		},
		{
			name:    "negative exploration",
			mutate:  func(c *Config) { c.Engine.ExplorationC = -1 },
			wantErr: "exploration_c",
		},
		{
			name:    "max_k below default_k",
			mutate:  func(c *Config) { c.Engine.MaxK = 5 },
			wantErr: "max_k",
		},
		{
			name:    "staleness below refresh",
			mutate:  func(c *Config) { c.Engine.StalenessTolerance = time.Minute },
			wantErr: "staleness_tolerance",
		},
		{
			name:    "alpha out of range",
			mutate:  func(c *Config) { c.Engine.AffinityAlpha = 1.5 },
			wantErr: "affinity_alpha",
		},
		{
			name:    "unknown reward action",
			mutate:  func(c *Config) { c.Engine.Rewards["teleport"] = 9 },
			wantErr: "unknown action",
		},
		{
			name:    "bad arm store backend",
			mutate:  func(c *Config) { c.ArmStore.Backend = "redis" },
			wantErr: "arm_store.backend",
		},
		{
			name: "badger without path",
			mutate: func(c *Config) {
				c.ArmStore.Backend = "badger"
				c.ArmStore.Path = ""
			},
			wantErr: "arm_store.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.Engine.Rewards["purchase"] = 99
	clone.Server.CORSOrigins[0] = "https://evil.example"

	if cfg.Engine.Rewards["purchase"] == 99 {
		t.Error("mutating clone rewards changed the original")
	}
	if cfg.Server.CORSOrigins[0] == "https://evil.example" {
		t.Error("mutating clone CORS origins changed the original")
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
engine:
  cold_start_threshold: 5
  default_k: 7
backend:
  url: http://backend.internal/api
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("DEFAULT_K", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// File overrides default
	if cfg.Engine.ColdStartThreshold != 5 {
		t.Errorf("cold_start_threshold = %d, want 5 (file)", cfg.Engine.ColdStartThreshold)
	}
	if cfg.Backend.URL != "http://backend.internal/api" {
		t.Errorf("backend.url = %q, want file value", cfg.Backend.URL)
	}
	// Env overrides file
	if cfg.Engine.DefaultK != 4 {
		t.Errorf("default_k = %d, want 4 (env)", cfg.Engine.DefaultK)
	}
	// Untouched values keep defaults
	if cfg.Server.Port != 8001 {
		t.Errorf("server.port = %d, want default 8001", cfg.Server.Port)
	}
}

func TestEnvTransformSkipsUnknown(t *testing.T) {
	t.Parallel()

	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("envTransformFunc(PATH) = %q, want empty", got)
	}
	if got := envTransformFunc("BACKEND_URL"); got != "backend.url" {
		t.Errorf("envTransformFunc(BACKEND_URL) = %q, want backend.url", got)
	}
}
