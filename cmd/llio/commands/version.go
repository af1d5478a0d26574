// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/digest"
	"github.com/bureau-foundation/llio/lib/version"
)

type versionParams struct {
	Digest bool `flag:"digest" desc:"also print the BLAKE3 digest of the running binary"`
}

func versionCommand(streams Streams) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(ctx context.Context, _ []string) error {
			if _, err := fmt.Fprintf(streams.Out, "llio %s\n", version.Full()); err != nil {
				return err
			}
			if !params.Digest {
				return nil
			}
			sum, path, err := version.SelfDigest(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(streams.Out, "  Binary: %s\n  Digest: %s\n", path, digest.Format(sum))
			return err
		},
	}
}
