// Copyright 2026 The Cafe Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the cafe
// server.
//
// Configuration is loaded from a single file specified by either the
// CAFE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Key exports:
//
//   - [Config] -- pool sizes, brew durations, and the scheduler's
//     requeue interval
//   - [Default] -- returns a Config with the same defaults the server
//     uses when no config file is given
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other package in this module.
package config
