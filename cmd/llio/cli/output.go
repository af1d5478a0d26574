// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/bureau-foundation/llio/lib/codec"
)

// OutputParams is embedded in the parameters of commands that produce
// a report. Text output is the command's own business; json and cbor
// are written by [OutputParams.Emit].
type OutputParams struct {
	Format string `json:"-" flag:"format" default:"text" desc:"output format: text, json or cbor"`
}

// Validate rejects unknown formats.
func (o *OutputParams) Validate() error {
	switch o.Format {
	case "text", "json", "cbor":
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or cbor)", o.Format)
}

// Emit writes result to w as indented JSON or deterministic CBOR.
// Returns (true, nil) on success, (true, err) on write failure, or
// (false, nil) for text output, where the caller formats its own.
//
// Nil slices are written as empty arrays rather than null.
func (o *OutputParams) Emit(w io.Writer, result any) (bool, error) {
	result = normalizeNilSlice(result)
	switch o.Format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(result)
	case "cbor":
		return true, codec.NewEncoder(w).Encode(result)
	}
	return false, nil
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
