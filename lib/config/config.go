// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the cafe server.
//
// Configuration is loaded from a single file specified by:
//   - CAFE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the cafe server.
type Config struct {
	// ListenAddress is the TCP address the server accepts connections on.
	// Default: ":8888"
	ListenAddress string `yaml:"listen_address"`

	// SessionPoolSize bounds the number of customer connections served
	// concurrently. A connection beyond this limit blocks in accept
	// until a slot frees up.
	// Default: 10
	SessionPoolSize int `yaml:"session_pool_size"`

	// WorkerPoolSize is the number of brewing goroutines the scheduler
	// dispatches orders to.
	// Default: 4
	WorkerPoolSize int `yaml:"worker_pool_size"`

	// CapacityCeiling is the maximum number of orders of a single
	// category (tea or coffee) that may be brewing at once.
	// Default: 2
	CapacityCeiling int `yaml:"capacity_ceiling"`

	// TeaBrewDuration is the configured brew time for a tea order. It
	// is loaded and validated but not passed to the server: tea brews
	// always take Category.BrewDuration's fixed 30s.
	// Default: 30s
	TeaBrewDuration time.Duration `yaml:"tea_brew_duration"`

	// CoffeeBrewDuration is the configured brew time for a coffee
	// order. It is loaded and validated but not passed to the server:
	// coffee brews always take Category.BrewDuration's fixed 45s.
	// Default: 45s
	CoffeeBrewDuration time.Duration `yaml:"coffee_brew_duration"`

	// SchedulerRequeueInterval is how long the scheduler sleeps before
	// retrying the head of the waiting queue after finding no capacity
	// for it.
	// Default: 100ms
	SchedulerRequeueInterval time.Duration `yaml:"scheduler_requeue_interval"`

	// StatsInterval is how often the in-process stats reporter
	// refreshes its dashboard.
	// Default: 2s
	StatsInterval time.Duration `yaml:"stats_interval"`
}

// Default returns the default configuration. LoadFile uses it as the
// base that the file's values overlay, and cafe-server runs with it
// unchanged when neither --config nor CAFE_CONFIG is given.
func Default() *Config {
	return &Config{
		ListenAddress:            ":8888",
		SessionPoolSize:          10,
		WorkerPoolSize:           4,
		CapacityCeiling:          2,
		TeaBrewDuration:          30 * time.Second,
		CoffeeBrewDuration:       45 * time.Second,
		SchedulerRequeueInterval: 100 * time.Millisecond,
		StatsInterval:            2 * time.Second,
	}
}

// Load loads configuration from the CAFE_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if CAFE_CONFIG is not set, this
// fails. This ensures deterministic, auditable configuration with no
// hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("CAFE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("CAFE_CONFIG environment variable not set; " +
			"set it to the path of your cafe.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values - this ensures deterministic, auditable
// configuration.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddress == "" {
		errs = append(errs, fmt.Errorf("listen_address is required"))
	}
	if c.SessionPoolSize <= 0 {
		errs = append(errs, fmt.Errorf("session_pool_size must be positive"))
	}
	if c.WorkerPoolSize <= 0 {
		errs = append(errs, fmt.Errorf("worker_pool_size must be positive"))
	}
	if c.CapacityCeiling <= 0 {
		errs = append(errs, fmt.Errorf("capacity_ceiling must be positive"))
	}
	if c.TeaBrewDuration <= 0 {
		errs = append(errs, fmt.Errorf("tea_brew_duration must be positive"))
	}
	if c.CoffeeBrewDuration <= 0 {
		errs = append(errs, fmt.Errorf("coffee_brew_duration must be positive"))
	}
	if c.SchedulerRequeueInterval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler_requeue_interval must be positive"))
	}
	if c.StatsInterval <= 0 {
		errs = append(errs, fmt.Errorf("stats_interval must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
