// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the llio
// command.
//
// Configuration is loaded from a single file named by either the
// LLIO_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no automatic file
// search; without either, the command runs on [Default].
//
// The file may carry development and production sections that
// override base values when [Config].Environment matches. Production
// defaults are stricter: lock acquisition does not wait, and only
// warnings and errors are logged.
//
// ${VAR} and ${VAR:-default} patterns in paths.temporary are expanded
// after loading. No other environment
// variables override config values.
//
// Values are kept as the strings written in the file. [Config.Validate]
// checks them and the typed accessors ([Config.Caching],
// [Config.Wait], [Config.LogLevel]) convert them to the handle and
// slog types the command uses.
package config
