package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/dupgraph"
	"github.com/hupe1980/dupgraph/bucket"
	"github.com/hupe1980/dupgraph/rowsource"
)

func newCCCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cc",
		Short: "Find connected components of the bucketed elements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sc := a.cfg.Source

			sqlSrc, err := rowsource.Open(rowsource.Dialect(sc.Driver), sc.DSN, rowsource.WithTable(sc.Table))
			if err != nil {
				return err
			}
			defer sqlSrc.Close()

			var src bucket.Source = sqlSrc
			if sc.RateLimit > 0 {
				src = rowsource.WithRateLimit(src, sc.RateLimit, sc.Burst)
			}

			opts, err := a.commonOptions()
			if err != nil {
				return err
			}
			model, _, err := dupgraph.FindConnectedComponents(ctx, src, opts...)
			if err != nil {
				return err
			}

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			if err := dupgraph.SaveComponents(ctx, store, output, model, opts...); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), model.Summary())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "cc.bin", "name of the component model artifact")
	f.String("source-driver", "sqlite", "row source driver (sqlite, postgres)")
	f.String("source-dsn", "", "row source data source name")
	f.String("table", "hashtables", "rows table")
	f.Float64("rate-limit", 0, "maximum rows per second (0 = unlimited)")

	bind(a.v, f.Lookup, map[string]string{
		"source.driver":     "source-driver",
		"source.dsn":        "source-dsn",
		"source.table":      "table",
		"source.rate_limit": "rate-limit",
	})
	return cmd
}
