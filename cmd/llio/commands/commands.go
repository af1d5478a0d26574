// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the llio command tree. Every command opens
// its resources through lib/handle, so the tree doubles as a tour of
// the library: path decomposition, scatter reads, gather writes,
// byte-range locks, named and anonymous pipes, and digests.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/config"
	"github.com/bureau-foundation/llio/lib/handle"
	"github.com/bureau-foundation/llio/lib/pathview"
)

// Streams are the standard streams the commands read and write.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Root builds and returns the complete llio command tree.
func Root(streams Streams) *cli.Command {
	return &cli.Command{
		Name: "llio",
		Description: `llio: low-level file and pipe I/O.

Open files and pipes with explicit caching modes, read and write them
with scatter/gather buffers, take byte-range locks, and inspect how a
path decomposes.`,
		HelpOutput: streams.Err,
		Subcommands: []*cli.Command{
			pathCommand(streams),
			readCommand(streams),
			writeCommand(streams),
			digestCommand(streams),
			lockCommand(streams),
			pipeCommand(streams),
			versionCommand(streams),
		},
		Examples: []cli.Example{
			{
				Description: "Show how a Windows path decomposes",
				Command:     `llio path --style windows 'C:\Users\build\out.tar.gz'`,
			},
			{
				Description: "Read 64 KiB at offset 1 MiB bypassing the page cache",
				Command:     "llio read data.bin --offset 1048576 --buffers 4 --buffer-size 16384 --caching only_metadata",
			},
			{
				Description: "Hold an exclusive lock on the first page until interrupted",
				Command:     "llio lock data.bin --length 4096",
			},
			{
				Description: "Relay whatever is written into a fresh named pipe",
				Command:     "llio pipe",
			},
		},
	}
}

// resolve loads configuration and builds the command logger, checking
// the output format when the command has one.
func (s Streams) resolve(global *cli.GlobalParams, output *cli.OutputParams) (*config.Config, *slog.Logger, error) {
	if output != nil {
		if err := output.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return global.Resolve(s.Err)
}

// cachingFor returns the caching mode named by a --caching flag, or
// the configured mode when the flag is empty.
func cachingFor(flag string, cfg *config.Config) (handle.Caching, error) {
	if flag == "" {
		return cfg.Caching()
	}
	return handle.ParseCaching(flag)
}

// openFile opens path relative to the working directory and routes the
// handle's diagnostics to logger.
func openFile(path string, mode handle.Mode, creation handle.Creation, caching handle.Caching, logger *slog.Logger) (*handle.IOHandle, error) {
	h, err := handle.Open(nil, pathview.FromString(path), mode, creation, caching, handle.FlagNone)
	if err != nil {
		return nil, err
	}
	h.SetLogger(logger.With("path", path))
	return h, nil
}

// requireArgs checks the positional argument count.
func requireArgs(args []string, minimum, maximum int, usage string) error {
	if len(args) < minimum || (maximum >= 0 && len(args) > maximum) {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
