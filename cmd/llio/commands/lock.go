// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/handle"
)

type lockParams struct {
	cli.GlobalParams
	cli.OutputParams
	Offset uint64 `flag:"offset" desc:"first byte of the range"`
	Length uint64 `flag:"length" desc:"bytes in the range; 0 locks through end of file however it grows"`
	Shared bool   `flag:"shared" desc:"take a shared (read) lock instead of an exclusive one"`
	Wait   string `flag:"wait" desc:"immediate or infinite (default: locking.wait)"`
	Probe  bool   `flag:"probe" desc:"release as soon as the lock is granted instead of holding it"`
}

// LockReport describes a granted lock.
type LockReport struct {
	Path          string `json:"path"`
	Offset        uint64 `json:"offset"`
	Length        uint64 `json:"length"`
	Exclusive     bool   `json:"exclusive"`
	ProcessScoped bool   `json:"process_scoped"`
}

func lockCommand(streams Streams) *cli.Command {
	var params lockParams
	return &cli.Command{
		Name:    "lock",
		Summary: "Hold a byte-range lock until interrupted",
		Description: `Take an advisory byte-range lock on a file, creating it if needed, and
hold it until interrupted. Locks belong to the open file description,
so they conflict with other handles in this process as well as other
processes. On kernels without such locks the lock falls back to process
scope, which the report shows as process_scoped.

With --wait immediate a range already held elsewhere exits with status
1 instead of waiting.`,
		Usage: "llio lock <file> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("lock", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, 1, "llio lock <file> [flags]"); err != nil {
				return err
			}
			cfg, logger, err := streams.resolve(&params.GlobalParams, &params.OutputParams)
			if err != nil {
				return err
			}
			wait, err := cfg.Wait()
			if params.Wait != "" {
				wait, err = handle.ParseWait(params.Wait)
			}
			if err != nil {
				return err
			}
			caching, err := cfg.Caching()
			if err != nil {
				return err
			}

			mode := handle.ModeWrite
			if params.Shared {
				mode = handle.ModeRead
			}
			h, err := openFile(args[0], mode, handle.IfNeeded, caching, logger)
			if err != nil {
				return err
			}
			defer h.Close()

			guard, err := h.Lock(params.Offset, params.Length, !params.Shared, wait)
			if errors.Is(err, handle.ErrTimeout) {
				fmt.Fprintf(streams.Err, "%s: range is locked elsewhere\n", args[0])
				return &cli.ExitError{Code: 1}
			}
			if err != nil {
				return err
			}
			defer guard.Unlock()

			report := LockReport{
				Path:          args[0],
				Offset:        guard.Offset(),
				Length:        guard.Length(),
				Exclusive:     guard.Exclusive(),
				ProcessScoped: guard.ProcessScoped(),
			}
			if done, err := params.Emit(streams.Out, report); done {
				if err != nil {
					return err
				}
			} else if _, err := fmt.Fprintln(streams.Out, describeLock(report)); err != nil {
				return err
			}

			if params.Probe {
				return nil
			}
			<-ctx.Done()
			logger.Info("releasing lock", "path", args[0])
			return nil
		},
	}
}

func describeLock(report LockReport) string {
	kind := "exclusive"
	if !report.Exclusive {
		kind = "shared"
	}
	extent := "through end of file"
	if report.Length != handle.WholeFile {
		extent = "for " + humanize.IBytes(report.Length)
	}
	scope := ""
	if report.ProcessScoped {
		scope = " (process scope)"
	}
	return fmt.Sprintf("locked %s: %s from offset %d %s%s", report.Path, kind, report.Offset, extent, scope)
}
