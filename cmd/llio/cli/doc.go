// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the llio binary.
//
// The central type is [Command], a named command with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function.
// The tree is assembled in cmd/llio/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing,
// and help output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]. Two embeddable structs carry the flags every
// command shares:
//
//   - [GlobalParams]: --config and --verbose, resolved into a
//     validated configuration and a logger by [GlobalParams.Resolve].
//   - [OutputParams]: --format text|json|cbor, with
//     [OutputParams.Emit] writing structured reports.
package cli
