// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

// Package config holds application configuration loaded via Koanf v2 with
// layered sources (highest priority wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables (REELRANK_ prefix)
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	NATS      NATSConfig      `koanf:"nats"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Ranking   RankingConfig   `koanf:"ranking"`
	Trending  TrendingConfig  `koanf:"trending"`
	Live      LiveConfig      `koanf:"live"`
	Signer    SignerConfig    `koanf:"signer"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig configures the DuckDB projection store.
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" opens an in-memory store.
	Path string `koanf:"path"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`

	// MaxMemory caps DuckDB memory usage, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`
}

// NATSConfig configures the JetStream event pipeline.
type NATSConfig struct {
	// Enabled turns the async ingestion pipeline on. When false, telemetry
	// is appended to the store directly (still best-effort).
	Enabled bool `koanf:"enabled"`

	URL string `koanf:"url"`

	// EmbeddedServer runs an in-process NATS server (standalone mode).
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	// StreamRetentionDays bounds how long unconsumed events are retained.
	StreamRetentionDays int `koanf:"stream_retention_days"`

	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`
}

// TelemetryConfig configures telemetry ingestion.
type TelemetryConfig struct {
	// MaxBatchSize is the largest accepted batch; longer batches are
	// silently truncated. Ingestion never errors toward the caller.
	MaxBatchSize int `koanf:"max_batch_size"`

	// SessionRateLimit is the sustained events/sec accepted per session.
	SessionRateLimit float64 `koanf:"session_rate_limit"`
	SessionRateBurst int     `koanf:"session_rate_burst"`

	// Circuit breaker around the store append path.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// RankingConfig exposes the personalized scorer's tunable weights.
// Defaults preserve the relative magnitudes the product relies on: the skip
// penalty strictly dominates the single-like boost.
type RankingConfig struct {
	LookbackDays   int `koanf:"lookback_days"`
	PoolMultiplier int `koanf:"pool_multiplier"`

	RecencyBase      float64 `koanf:"recency_base"`
	RecencyDecayDays float64 `koanf:"recency_decay_days"`
	EngagementWeight float64 `koanf:"engagement_weight"`
	CreatorBoost     float64 `koanf:"creator_boost"`
	FollowBoost      float64 `koanf:"follow_boost"`
	LikeBoost        float64 `koanf:"like_boost"`
	SkipPenalty      float64 `koanf:"skip_penalty"`
	NewCreatorBoost  float64 `koanf:"new_creator_boost"`
	ExplorationBoost float64 `koanf:"exploration_boost"`

	NewCreatorViewCeiling int64 `koanf:"new_creator_view_ceiling"`

	TrendingAreaEngagement  float64 `koanf:"trending_area_engagement"`
	TrendingAreaMaxAgeHours float64 `koanf:"trending_area_max_age_hours"`

	ColdEventThreshold        int     `koanf:"cold_event_threshold"`
	EstablishedEventThreshold int     `koanf:"established_event_threshold"`
	ColdExploreRatio          float64 `koanf:"cold_explore_ratio"`
	WarmExploreRatio          float64 `koanf:"warm_explore_ratio"`

	CreatorCap int `koanf:"creator_cap"`
}

// TrendingConfig exposes the trending scorer's tunable weights.
type TrendingConfig struct {
	WindowDays int   `koanf:"window_days"`
	MinViews   int64 `koanf:"min_views"`

	ShareRateWeight      float64 `koanf:"share_rate_weight"`
	CompletionRateWeight float64 `koanf:"completion_rate_weight"`
	DecayExponent        float64 `koanf:"decay_exponent"`

	ViralShareRate         float64 `koanf:"viral_share_rate"`
	HighCompletionRate     float64 `koanf:"high_completion_rate"`
	RapidEngagementHours   float64 `koanf:"rapid_engagement_hours"`
	RapidEngagementScore   float64 `koanf:"rapid_engagement_score"`
	RisingCreatorFollowers int64   `koanf:"rising_creator_followers"`
	RisingCreatorScore     float64 `koanf:"rising_creator_score"`

	CreatorCap int `koanf:"creator_cap"`
}

// DefaultRanking returns the production-tuned personalized ranking weights.
func DefaultRanking() RankingConfig {
	return RankingConfig{
		LookbackDays:              14,
		PoolMultiplier:            5,
		RecencyBase:               10,
		RecencyDecayDays:          10,
		EngagementWeight:          3,
		CreatorBoost:              5,
		FollowBoost:               8,
		LikeBoost:                 3,
		SkipPenalty:               8,
		NewCreatorBoost:           3,
		ExplorationBoost:          2,
		NewCreatorViewCeiling:     100,
		TrendingAreaEngagement:    100,
		TrendingAreaMaxAgeHours:   48,
		ColdEventThreshold:        10,
		EstablishedEventThreshold: 50,
		ColdExploreRatio:          0.5,
		WarmExploreRatio:          0.3,
		CreatorCap:                2,
	}
}

// DefaultTrending returns the production-tuned trending weights.
func DefaultTrending() TrendingConfig {
	return TrendingConfig{
		WindowDays:             7,
		MinViews:               10,
		ShareRateWeight:        50,
		CompletionRateWeight:   40,
		DecayExponent:          1.5,
		ViralShareRate:         0.1,
		HighCompletionRate:     0.5,
		RapidEngagementHours:   12,
		RapidEngagementScore:   50,
		RisingCreatorFollowers: 50,
		RisingCreatorScore:     5,
		CreatorCap:             3,
	}
}

// LiveConfig configures the live-session index.
type LiveConfig struct {
	// Path is the Badger directory. Empty uses an in-memory index.
	Path string `koanf:"path"`

	// SessionTTL is how long a live mark survives without refresh.
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// SignerConfig configures the playback URL signer.
type SignerConfig struct {
	// Secret keys the MAC. Required in production.
	Secret string `koanf:"secret"`

	// CDNBaseURL prefixes signed media paths, e.g. "https://cdn.reelkit.com".
	CDNBaseURL string `koanf:"cdn_base_url"`

	// URLTTL bounds how long a signed URL stays playable.
	URLTTL time.Duration `koanf:"url_ttl"`
}

// APIConfig configures request shaping for the feed endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	MaxExcludeIDs   int `koanf:"max_exclude_ids"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RequestTimeout bounds each ranking request end to end.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// SecurityConfig configures viewer identity extraction.
type SecurityConfig struct {
	// JWTSecret verifies bearer tokens carrying the viewer ID. When empty,
	// all requests are treated as anonymous.
	JWTSecret string `koanf:"jwt_secret"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks cross-field constraints. Weight magnitudes are validated
// here so a bad deploy fails at startup rather than mis-ranking silently.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.API.MaxPageSize <= 0 {
		return fmt.Errorf("api.max_page_size must be positive")
	}
	if c.API.DefaultPageSize <= 0 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("api.default_page_size must be in [1, %d]", c.API.MaxPageSize)
	}
	if c.Telemetry.MaxBatchSize <= 0 {
		return fmt.Errorf("telemetry.max_batch_size must be positive")
	}

	if err := c.Ranking.Validate(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	if err := c.Trending.Validate(); err != nil {
		return fmt.Errorf("trending: %w", err)
	}
	return nil
}

// Validate checks the personalized ranking weights.
func (r *RankingConfig) Validate() error {
	if r.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive")
	}
	if r.PoolMultiplier < 1 {
		return fmt.Errorf("pool_multiplier must be >= 1")
	}
	if r.RecencyDecayDays <= 0 {
		return fmt.Errorf("recency_decay_days must be positive")
	}
	if r.SkipPenalty <= r.LikeBoost {
		// The skip penalty must strictly dominate a single like, or
		// previously skipped content resurfaces.
		return fmt.Errorf("skip_penalty (%v) must strictly exceed like_boost (%v)", r.SkipPenalty, r.LikeBoost)
	}
	if r.TrendingAreaEngagement < 0 || r.TrendingAreaMaxAgeHours <= 0 {
		return fmt.Errorf("trending_area_engagement must be non-negative and trending_area_max_age_hours positive")
	}
	if r.ColdExploreRatio < 0 || r.ColdExploreRatio > 1 {
		return fmt.Errorf("cold_explore_ratio must be in [0, 1]")
	}
	if r.WarmExploreRatio < 0 || r.WarmExploreRatio > 1 {
		return fmt.Errorf("warm_explore_ratio must be in [0, 1]")
	}
	if r.ColdEventThreshold <= 0 || r.EstablishedEventThreshold <= r.ColdEventThreshold {
		return fmt.Errorf("event tier thresholds must satisfy 0 < cold < established")
	}
	if r.CreatorCap < 1 {
		return fmt.Errorf("creator_cap must be >= 1")
	}
	return nil
}

// Validate checks the trending weights.
func (t *TrendingConfig) Validate() error {
	if t.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive")
	}
	if t.MinViews < 0 {
		return fmt.Errorf("min_views must be non-negative")
	}
	if t.DecayExponent <= 0 {
		return fmt.Errorf("decay_exponent must be positive")
	}
	if t.CreatorCap < 1 {
		return fmt.Errorf("creator_cap must be >= 1")
	}
	return nil
}
