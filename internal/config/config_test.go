// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestDefaultWeights(t *testing.T) {
	cfg := defaultConfig()

	// The production defaults from the scorer design.
	if cfg.Ranking.SkipPenalty != 8 {
		t.Errorf("SkipPenalty = %v, want 8", cfg.Ranking.SkipPenalty)
	}
	if cfg.Ranking.FollowBoost != 8 {
		t.Errorf("FollowBoost = %v, want 8", cfg.Ranking.FollowBoost)
	}
	if cfg.Ranking.LookbackDays != 14 {
		t.Errorf("LookbackDays = %v, want 14", cfg.Ranking.LookbackDays)
	}
	if cfg.Trending.MinViews != 10 {
		t.Errorf("Trending.MinViews = %v, want 10", cfg.Trending.MinViews)
	}
	if cfg.Ranking.CreatorCap != 2 || cfg.Trending.CreatorCap != 3 {
		t.Errorf("creator caps = (%d, %d), want (2, 3)",
			cfg.Ranking.CreatorCap, cfg.Trending.CreatorCap)
	}
}

func TestRankingValidateRejectsWeakSkipPenalty(t *testing.T) {
	cfg := defaultConfig()
	cfg.Ranking.SkipPenalty = 2 // weaker than LikeBoost (3)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when skip penalty does not dominate like boost")
	}
}

func TestRankingValidateRejectsBadTiers(t *testing.T) {
	cfg := defaultConfig()
	cfg.Ranking.EstablishedEventThreshold = 5 // below cold threshold
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for inverted tier thresholds")
	}
}

func TestValidateRejectsOversizedDefaultPage(t *testing.T) {
	cfg := defaultConfig()
	cfg.API.DefaultPageSize = cfg.API.MaxPageSize + 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for default page size above max")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("REELRANK_SERVER_PORT", "9090")
	t.Setenv("REELRANK_DATABASE_PATH", ":memory:")
	t.Setenv("REELRANK_RANKING_SKIP_PENALTY", "12")
	t.Setenv("REELRANK_API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Ranking.SkipPenalty != 12 {
		t.Errorf("SkipPenalty = %v, want 12", cfg.Ranking.SkipPenalty)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v, want two trimmed origins", cfg.API.CORSOrigins)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 7777\ndatabase:\n  path: \":memory:\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 from file", cfg.Server.Port)
	}
	// Defaults still apply for untouched sections.
	if cfg.API.MaxPageSize != 50 {
		t.Errorf("API.MaxPageSize = %d, want default 50", cfg.API.MaxPageSize)
	}
}
