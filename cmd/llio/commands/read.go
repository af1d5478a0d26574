// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"cmp"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/handle"
)

type readParams struct {
	cli.GlobalParams
	cli.OutputParams
	Offset     int64  `flag:"offset" desc:"file offset of the first byte"`
	Buffers    int    `flag:"buffers" desc:"scatter buffer count (default: io.buffers)"`
	BufferSize int    `flag:"buffer-size" desc:"size of each scatter buffer (default: io.buffer_size)"`
	Caching    string `flag:"caching" desc:"caching mode (default: io.caching)"`
}

// ReadReport describes one scatter read.
type ReadReport struct {
	Path    string         `json:"path"`
	Offset  int64          `json:"offset"`
	Caching handle.Caching `json:"caching"`
	Filled  []int          `json:"filled"`
	Bytes   int            `json:"bytes"`
	Data    []byte         `json:"data"`
}

func readCommand(streams Streams) *cli.Command {
	var params readParams
	return &cli.Command{
		Name:    "read",
		Summary: "Read from a file with one scatter read",
		Description: `Read from a file with a single vectored read into a set of equally
sized buffers, and write what arrived to stdout.

The kernel fills the buffers in order and may return fewer bytes than
requested; the json and cbor reports show how many bytes landed in
each buffer.`,
		Usage: "llio read <file> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("read", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if err := requireArgs(args, 1, 1, "llio read <file> [flags]"); err != nil {
				return err
			}
			cfg, logger, err := streams.resolve(&params.GlobalParams, &params.OutputParams)
			if err != nil {
				return err
			}
			caching, err := cachingFor(params.Caching, cfg)
			if err != nil {
				return err
			}
			buffers := cmp.Or(params.Buffers, cfg.IO.Buffers)
			bufferSize := cmp.Or(params.BufferSize, cfg.IO.BufferSize)
			if buffers < 0 || bufferSize < 0 {
				return fmt.Errorf("--buffers and --buffer-size must be positive")
			}

			h, err := openFile(args[0], handle.ModeRead, handle.OpenExisting, caching, logger)
			if err != nil {
				return err
			}
			defer h.Close()

			backing := make([]byte, buffers*bufferSize)
			scatter := make([][]byte, buffers)
			for index := range scatter {
				scatter[index] = backing[index*bufferSize : (index+1)*bufferSize]
			}
			filled, err := h.Read(handle.Request{Buffers: scatter, Offset: params.Offset}, handle.Infinite())
			if err != nil {
				return err
			}

			report := ReadReport{
				Path:    args[0],
				Offset:  params.Offset,
				Caching: h.Caching(),
				Filled:  make([]int, len(filled)),
			}
			for index, buffer := range filled {
				report.Filled[index] = len(buffer)
				report.Bytes += len(buffer)
			}
			report.Data = backing[:report.Bytes]
			logger.Debug("read",
				"path", args[0],
				"offset", params.Offset,
				"bytes", humanize.IBytes(uint64(report.Bytes)),
				"buffers", len(filled),
			)

			if done, err := params.Emit(streams.Out, report); done {
				return err
			}
			for _, buffer := range filled {
				if _, err := streams.Out.Write(buffer); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
