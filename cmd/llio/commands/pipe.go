// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/config"
	"github.com/bureau-foundation/llio/lib/handle"
	"github.com/bureau-foundation/llio/lib/pathview"
	"github.com/bureau-foundation/llio/lib/pipe"
)

// pollInterval is how long the named pipe relay sleeps when the fifo
// is empty.
const pollInterval = 20 * time.Millisecond

type pipeParams struct {
	cli.GlobalParams
	Name      string `flag:"name" desc:"fifo name in the temporary directory (default: a random name)"`
	Anonymous bool   `flag:"anonymous" desc:"relay stdin to stdout through an anonymous pipe instead"`
	Caching   string `flag:"caching" desc:"caching mode (default: io.caching)"`
}

func pipeCommand(streams Streams) *cli.Command {
	var params pipeParams
	return &cli.Command{
		Name:    "pipe",
		Summary: "Create a named pipe and relay what is written to it",
		Description: `Create a named pipe in paths.temporary (or the storage-backed temporary
directory when unset), print its path, and copy everything written to
it to stdout until interrupted. The fifo is removed on exit.

With --anonymous, stdin is copied through an anonymous pipe to stdout
instead.`,
		Usage: "llio pipe [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("pipe", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 0, 0, "llio pipe [flags]"); err != nil {
				return err
			}
			if params.Anonymous && params.Name != "" {
				return fmt.Errorf("--anonymous and --name are mutually exclusive")
			}
			cfg, logger, err := streams.resolve(&params.GlobalParams, nil)
			if err != nil {
				return err
			}
			caching, err := cachingFor(params.Caching, cfg)
			if err != nil {
				return err
			}
			if params.Anonymous {
				return relayAnonymous(streams, caching, cfg.IO.BufferSize, logger)
			}
			return relayNamed(ctx, streams, cfg, params.Name, caching, logger)
		},
	}
}

// temporaryBase opens the configured temporary directory, or returns
// nil to let the pipe package discover one.
func temporaryBase(cfg *config.Config) (*handle.PathHandle, error) {
	if cfg.Paths.Temporary == "" {
		return nil, nil
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return handle.OpenDirectory(nil, pathview.FromString(cfg.Paths.Temporary))
}

// relayNamed holds the fifo open for reading and writing, so it never
// reports end of stream, and polls it until ctx is cancelled.
func relayNamed(ctx context.Context, streams Streams, cfg *config.Config, name string, caching handle.Caching, logger *slog.Logger) error {
	base, err := temporaryBase(cfg)
	if err != nil {
		return err
	}
	if base != nil {
		defer base.Close()
	}

	var fifo *pipe.Handle
	if name == "" {
		fifo, err = pipe.Random(handle.ModeWrite, caching, handle.FlagMultiplexable, base)
	} else {
		fifo, err = pipe.Open(pathview.FromString(name), handle.ModeWrite, handle.IfNeeded, caching, handle.FlagMultiplexable, base)
	}
	if err != nil {
		return err
	}
	defer fifo.Close()
	fifo.SetLogger(logger)

	path := filepath.Join(fifo.Base().Path(), fifo.Name())
	if _, err := fmt.Fprintln(streams.Out, path); err != nil {
		return err
	}
	logger.Info("pipe ready", "path", path)

	buffer := make([]byte, cfg.IO.BufferSize)
	var total uint64
	for {
		n, err := fifo.ReadAt(0, buffer)
		if err != nil && !errors.Is(err, handle.ErrTimeout) {
			return err
		}
		if n > 0 {
			if _, err := streams.Out.Write(buffer[:n]); err != nil {
				return err
			}
			total += uint64(n)
			if ctx.Err() == nil {
				continue
			}
		}
		select {
		case <-ctx.Done():
			logger.Debug("pipe closed", "path", path, "relayed", humanize.IBytes(total))
			return nil
		case <-time.After(pollInterval):
		}
	}
}

// relayAnonymous copies stdin into the write end of an anonymous pipe
// while copying the read end to stdout.
func relayAnonymous(streams Streams, caching handle.Caching, bufferSize int, logger *slog.Logger) error {
	reader, writer, err := pipe.Anonymous(caching, handle.FlagNone)
	if err != nil {
		return err
	}
	defer reader.Close()

	fed := make(chan error, 1)
	go func() {
		_, err := io.CopyBuffer(io.NewOffsetWriter(writer.WriterAt(), 0), streams.In, make([]byte, bufferSize))
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		fed <- err
	}()

	buffer := make([]byte, bufferSize)
	var total uint64
	for {
		n, err := reader.ReadAt(0, buffer)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if _, err := streams.Out.Write(buffer[:n]); err != nil {
			return err
		}
		total += uint64(n)
	}
	if err := <-fed; err != nil {
		return fmt.Errorf("feeding pipe: %w", err)
	}
	logger.Debug("relayed through anonymous pipe", "bytes", humanize.IBytes(total))
	return nil
}
