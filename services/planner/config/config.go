// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the planner service configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Clarification store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// Config is the planner service configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `env:"PLANNER_PORT" envDefault:"12230"`

	// TopologyPath is the JSON topology export served as the snapshot
	// source. The file is watched and hot-reloaded.
	TopologyPath string `env:"TOPOLOGY_FIXTURE_PATH" envDefault:"/app/data/topology.json"`

	// ClarificationTTL bounds how long a pending clarification stays
	// resumable. Zero or negative disables expiry.
	ClarificationTTL time.Duration `env:"CLARIFY_TTL" envDefault:"10m"`

	// ClarifyStore selects the store backend: "memory" or "badger".
	ClarifyStore string `env:"CLARIFY_STORE" envDefault:"memory"`

	// BadgerPath is the directory for the badger-backed store. Empty runs
	// badger in memory.
	BadgerPath string `env:"CLARIFY_BADGER_PATH"`

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables
	// tracing export.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse planner config: %w", err)
	}
	if cfg.ClarifyStore != StoreMemory && cfg.ClarifyStore != StoreBadger {
		return Config{}, fmt.Errorf("CLARIFY_STORE must be %q or %q, got %q",
			StoreMemory, StoreBadger, cfg.ClarifyStore)
	}
	return cfg, nil
}
