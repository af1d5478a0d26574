// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides llio's CBOR encoding configuration.
//
// The llio command prints its reports as text, JSON or CBOR. JSON and
// CBOR share struct definitions: report types carry `json` tags, and
// fxamacker/cbor v2 reads those when `cbor` tags are absent, so one
// tag controls field naming and omitempty for both formats.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Identical reports produce identical bytes, so CBOR output can itself
// be digested and compared.
//
// Enumerations such as caching modes and path encodings implement
// encoding.TextMarshaler and travel as their names, not their ordinal
// values:
//
//	data, err := codec.Marshal(report)
//	err = codec.Unmarshal(data, &report)
//
// [Diagnose] renders encoded output in diagnostic notation for humans.
package codec
