package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/dupgraph"
	"github.com/hupe1980/dupgraph/codec"
	"github.com/hupe1980/dupgraph/community"
)

// group is one dumped component or community.
type group struct {
	ID   int      `json:"id"`
	Keys []string `json:"keys"`
}

func writeGroups(w io.Writer, format string, n int, keys func(i int) []string) error {
	bw := bufio.NewWriter(w)
	var line []byte
	for i := 0; i < n; i++ {
		switch format {
		case "json":
			var err error
			line, err = codec.GoJSON{}.Append(line[:0], group{ID: i, Keys: keys(i)})
			if err != nil {
				return err
			}
			line = append(line, '\n')
			if _, err := bw.Write(line); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintln(bw, strings.Join(keys(i), " ")); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("%w: unknown format %q", dupgraph.ErrInvalidConfiguration, format)
	}
	return nil
}

func newDumpCCCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dumpcc [artifact]",
		Short: "Print the connected components, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			m, err := dupgraph.LoadComponents(ctx, store, artifact(args, "cc.bin"), dupgraph.WithLogger(a.logger))
			if err != nil {
				return err
			}
			comps := m.Components()
			return writeGroups(cmd.OutOrStdout(), format, len(comps), func(i int) []string {
				return m.Keys(comps[i])
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json)")
	return cmd
}

func newDumpCMDCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dumpcmd [artifact]",
		Short: "Print the communities, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			m, err := dupgraph.LoadCommunities(ctx, store, artifact(args, "cmd.bin"), dupgraph.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return writeGroups(cmd.OutOrStdout(), format, len(m.Communities), m.Keys)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json)")
	return cmd
}

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the supported community detection algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, alg := range community.Algorithms() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), alg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func artifact(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}
