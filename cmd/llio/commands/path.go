// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"unicode/utf16"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/llio/cmd/llio/cli"
	"github.com/bureau-foundation/llio/lib/pathview"
)

type pathParams struct {
	cli.GlobalParams
	cli.OutputParams
	Encoding string `flag:"encoding" default:"utf8" desc:"encoding to view the path in: bytes, narrow, wide, utf8 or utf16"`
	Style    string `flag:"style" default:"native" desc:"lexical style: posix, windows or native"`
}

// PathReport is the decomposition of one path.
type PathReport struct {
	Path          string            `json:"path"`
	Encoding      pathview.Encoding `json:"encoding"`
	Style         string            `json:"style"`
	Absolute      bool              `json:"absolute"`
	Glob          bool              `json:"glob"`
	RootName      string            `json:"root_name,omitempty"`
	RootDirectory string            `json:"root_directory,omitempty"`
	RootPath      string            `json:"root_path,omitempty"`
	RelativePath  string            `json:"relative_path,omitempty"`
	ParentPath    string            `json:"parent_path,omitempty"`
	Filename      string            `json:"filename,omitempty"`
	Stem          string            `json:"stem,omitempty"`
	Extension     string            `json:"extension,omitempty"`
	Segments      []string          `json:"segments"`
	KernelBytes   int               `json:"kernel_bytes"`
	Borrowed      bool              `json:"borrowed"`
}

func pathCommand(streams Streams) *cli.Command {
	var params pathParams
	return &cli.Command{
		Name:    "path",
		Summary: "Decompose a path without touching the filesystem",
		Description: `Decompose a path into its root, parent, filename, stem, extension
and segments, viewing it in the requested encoding and lexical style.

kernel_bytes is the length of the zero-terminated form handed to
system calls; borrowed reports whether that form could reuse the
path's own memory instead of a copy.`,
		Usage: "llio path <path> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("path", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if err := requireArgs(args, 1, 1, "llio path <path> [flags]"); err != nil {
				return err
			}
			if _, _, err := streams.resolve(&params.GlobalParams, &params.OutputParams); err != nil {
				return err
			}
			encoding, err := pathview.ParseEncoding(params.Encoding)
			if err != nil {
				return err
			}
			style, err := pathview.ParseStyle(params.Style)
			if err != nil {
				return err
			}

			report := describePath(args[0], encoding, style)
			if done, err := params.Emit(streams.Out, report); done {
				return err
			}

			tw := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "path:\t%s\n", report.Path)
			fmt.Fprintf(tw, "encoding:\t%s\n", report.Encoding)
			fmt.Fprintf(tw, "style:\t%s\n", report.Style)
			fmt.Fprintf(tw, "absolute:\t%t\n", report.Absolute)
			fmt.Fprintf(tw, "glob:\t%t\n", report.Glob)
			for _, field := range []struct{ name, value string }{
				{"root name", report.RootName},
				{"root directory", report.RootDirectory},
				{"root path", report.RootPath},
				{"relative path", report.RelativePath},
				{"parent path", report.ParentPath},
				{"filename", report.Filename},
				{"stem", report.Stem},
				{"extension", report.Extension},
			} {
				if field.value != "" {
					fmt.Fprintf(tw, "%s:\t%s\n", field.name, field.value)
				}
			}
			for index, segment := range report.Segments {
				fmt.Fprintf(tw, "segment %d:\t%s\n", index, segment)
			}
			fmt.Fprintf(tw, "kernel bytes:\t%d (borrowed: %t)\n", report.KernelBytes, report.Borrowed)
			return tw.Flush()
		},
	}
}

// viewIn builds a view of text in encoding. Byte encodings are backed
// by a zero-terminated slice so the kernel form can borrow it.
func viewIn(text string, encoding pathview.Encoding) pathview.View {
	switch encoding {
	case pathview.Wide:
		return pathview.FromWide([]rune(text))
	case pathview.UTF16:
		return pathview.FromUTF16(utf16.Encode([]rune(text)))
	}
	terminated := append([]byte(text), 0)
	component := terminated[:len(text)]
	switch encoding {
	case pathview.Bytes:
		return pathview.FromComponent(pathview.ComponentFromBytes(component, true))
	case pathview.Narrow:
		return pathview.FromComponent(pathview.ComponentFromNarrow(component, true))
	default:
		return pathview.FromComponent(pathview.ComponentFromUTF8(component, true))
	}
}

func describePath(text string, encoding pathview.Encoding, style pathview.Style) PathReport {
	view := viewIn(text, encoding)
	report := PathReport{
		Path:          view.String(),
		Encoding:      view.Encoding(),
		Style:         style.String(),
		Absolute:      view.IsAbsoluteStyle(style),
		Glob:          view.ContainsGlobStyle(style),
		RootName:      view.RootNameStyle(style).String(),
		RootDirectory: view.RootDirectoryStyle(style).String(),
		RootPath:      view.RootPathStyle(style).String(),
		RelativePath:  view.RelativePathStyle(style).String(),
		ParentPath:    view.ParentPathStyle(style).String(),
		Filename:      view.FilenameStyle(style).String(),
		Stem:          view.StemStyle(style).String(),
		Extension:     view.ExtensionStyle(style).String(),
		Segments:      []string{},
	}
	for segment := range view.SegmentsStyle(style) {
		report.Segments = append(report.Segments, segment.String())
	}
	view.WithCStr(func(cstr pathview.CStr) error {
		report.KernelBytes = cstr.Len()
		report.Borrowed = cstr.Borrowed()
		return nil
	})
	return report
}
