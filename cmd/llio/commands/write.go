// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/handle"
)

type writeParams struct {
	cli.GlobalParams
	cli.OutputParams
	Offset   int64  `flag:"offset" desc:"file offset of the first byte written"`
	Append   bool   `flag:"append" desc:"open append-only; every write lands at the end of the file"`
	Truncate bool   `flag:"truncate" desc:"truncate the file before writing"`
	Caching  string `flag:"caching" desc:"caching mode (default: io.caching)"`
}

// WriteReport describes a completed write.
type WriteReport struct {
	Path    string         `json:"path"`
	Offset  int64          `json:"offset"`
	Caching handle.Caching `json:"caching"`
	Bytes   int64          `json:"bytes"`
	Calls   int            `json:"calls"`
}

func writeCommand(streams Streams) *cli.Command {
	var params writeParams
	return &cli.Command{
		Name:    "write",
		Summary: "Copy stdin into a file with gather writes",
		Description: `Copy stdin into a file, creating it if needed, starting at --offset.

The input is cut into io.buffer_size pieces and written io.buffers
pieces per vectored write. Caching modes that write through (none,
reads, reads_and_metadata, safety_fsyncs) make each write durable
before the next begins.`,
		Usage: "llio write <file> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("write", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if err := requireArgs(args, 1, 1, "llio write <file> [flags]"); err != nil {
				return err
			}
			if params.Append && params.Truncate {
				return fmt.Errorf("--append and --truncate are mutually exclusive")
			}
			cfg, logger, err := streams.resolve(&params.GlobalParams, &params.OutputParams)
			if err != nil {
				return err
			}
			caching, err := cachingFor(params.Caching, cfg)
			if err != nil {
				return err
			}

			data, err := io.ReadAll(streams.In)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}

			mode, creation := handle.ModeWrite, handle.IfNeeded
			if params.Append {
				mode = handle.ModeAppend
			}
			if params.Truncate {
				creation = handle.Truncate
			}
			h, err := openFile(args[0], mode, creation, caching, logger)
			if err != nil {
				return err
			}

			calls, err := gatherWrite(h, data, params.Offset, cfg.IO.BufferSize, cfg.IO.Buffers)
			if err != nil {
				h.Close()
				return err
			}
			if err := h.Close(); err != nil {
				return err
			}

			report := WriteReport{
				Path:    args[0],
				Offset:  params.Offset,
				Caching: caching,
				Bytes:   int64(len(data)),
				Calls:   calls,
			}
			if done, err := params.Emit(streams.Out, report); done {
				return err
			}
			where := fmt.Sprintf("at offset %d", params.Offset)
			if params.Append {
				where = "at end of file"
			}
			_, err = fmt.Fprintf(streams.Out, "wrote %s to %s %s in %d calls\n",
				humanize.IBytes(uint64(len(data))), args[0], where, calls)
			return err
		},
	}
}

// gatherWrite writes data at offset in pieces of pieceSize, at most
// pieces per call, and returns the number of calls made. Short writes
// resume where the kernel stopped.
func gatherWrite(h *handle.IOHandle, data []byte, offset int64, pieceSize, pieces int) (int, error) {
	calls := 0
	gather := make([][]byte, 0, pieces)
	for len(data) > 0 {
		gather = gather[:0]
		for remaining := data; len(remaining) > 0 && len(gather) < pieces; {
			size := min(pieceSize, len(remaining))
			gather = append(gather, remaining[:size])
			remaining = remaining[size:]
		}
		written, err := h.Write(handle.Request{Buffers: gather, Offset: offset}, handle.Infinite())
		if err != nil {
			return calls, err
		}
		calls++
		count := 0
		for _, buffer := range written {
			count += len(buffer)
		}
		if count == 0 {
			return calls, fmt.Errorf("write at %d made no progress", offset)
		}
		data = data[count:]
		offset += int64(count)
	}
	return calls, nil
}
