// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/digest"
	"github.com/bureau-foundation/llio/lib/handle"
)

type digestParams struct {
	cli.GlobalParams
	cli.OutputParams
	Caching string `flag:"caching" desc:"caching mode (default: io.caching)"`
}

// DigestReport is the digest of one file.
type DigestReport struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
	Bytes  int64  `json:"bytes"`
}

func digestCommand(streams Streams) *cli.Command {
	var params digestParams
	return &cli.Command{
		Name:    "digest",
		Summary: "Print BLAKE3 digests of files",
		Description: `Print the BLAKE3-256 digest of each file, read with vectored reads of
io.buffers buffers of io.buffer_size bytes. Text output matches the
"<digest>  <path>" form of b3sum.`,
		Usage: "llio digest <file>... [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("digest", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, -1, "llio digest <file>... [flags]"); err != nil {
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

			reports := make([]DigestReport, 0, len(args))
			for _, path := range args {
				report, err := digestFile(ctx, path, caching, cfg.IO.BufferSize, cfg.IO.Buffers, logger)
				if err != nil {
					return err
				}
				reports = append(reports, report)
			}

			if done, err := params.Emit(streams.Out, reports); done {
				return err
			}
			for _, report := range reports {
				if _, err := fmt.Fprintf(streams.Out, "%s  %s\n", report.Digest, report.Path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func digestFile(ctx context.Context, path string, caching handle.Caching, bufferSize, buffers int, logger *slog.Logger) (DigestReport, error) {
	h, err := openFile(path, handle.ModeRead, handle.OpenExisting, caching, logger)
	if err != nil {
		return DigestReport{}, err
	}
	defer h.Close()

	sum, size, err := digest.Handle(ctx, h, bufferSize, buffers)
	if err != nil {
		return DigestReport{}, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("digested", "path", path, "size", humanize.IBytes(uint64(size)))
	return DigestReport{Path: path, Digest: digest.Format(sum), Bytes: size}, nil
}
