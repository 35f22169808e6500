// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file search paths in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelrank/config.yaml",
	"/etc/reelrank/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "REELRANK_CONFIG"

// envPrefix namespaces all environment overrides, e.g.
// REELRANK_SERVER_PORT=8080 -> server.port.
const envPrefix = "REELRANK_"

// defaultConfig returns a Config with all defaults applied. The ranking and
// trending weights default to the empirically tuned production values; they
// are configuration, not law, but their relative magnitudes matter (see
// RankingConfig.Validate).
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8420,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/reelrank.duckdb",
			Threads:   0, // 0 = runtime.NumCPU()
			MaxMemory: "2GB",
		},
		NATS: NATSConfig{
			Enabled:             false, // direct store writes by default
			URL:                 "nats://127.0.0.1:4222",
			EmbeddedServer:      true,
			StoreDir:            "/data/nats/jetstream",
			MaxMemory:           1 << 30,  // 1GB
			MaxStore:            10 << 30, // 10GB
			StreamRetentionDays: 7,
			DurableName:         "telemetry-appender",
			QueueGroup:          "appenders",
		},
		Telemetry: TelemetryConfig{
			MaxBatchSize:            100,
			SessionRateLimit:        50,
			SessionRateBurst:        100,
			BreakerFailureThreshold: 5,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
		},
		Ranking:  DefaultRanking(),
		Trending: DefaultTrending(),
		Live: LiveConfig{
			Path:       "", // in-memory by default
			SessionTTL: 90 * time.Second,
		},
		Signer: SignerConfig{
			Secret:     "",
			CDNBaseURL: "https://cdn.reelkit.com",
			URLTTL:     4 * time.Hour,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     50,
			MaxExcludeIDs:   200,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			RequestTimeout:  10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Security: SecurityConfig{
			JWTSecret: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
// defaults, then an optional YAML file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// REELRANK_SERVER_PORT -> server.port
	// REELRANK_RANKING_SKIP_PENALTY -> ranking.skip_penalty
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(s, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// supplied via environment variables.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated env strings into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		str, ok := val.(string)
		if !ok {
			continue // already a slice from YAML or defaults
		}
		parts := strings.Split(str, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
