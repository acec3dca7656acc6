package main

import (
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"github.com/hupe1980/dupgraph"
	"github.com/hupe1980/dupgraph/codec"
	"github.com/hupe1980/dupgraph/community"
	"github.com/hupe1980/dupgraph/executor"
	"github.com/hupe1980/dupgraph/graph"
)

func newCMDCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "cmd",
		Short: "Detect communities inside the connected components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			opts, err := a.detectOptions()
			if err != nil {
				return err
			}
			pool := executor.NewPool(a.cfg.Workers)
			defer pool.Close()
			opts = append(opts, dupgraph.WithExecutor(pool))

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			ccModel, err := dupgraph.LoadComponents(ctx, store, input, opts...)
			if err != nil {
				return err
			}
			cmdModel, _, err := dupgraph.DetectCommunities(ctx, ccModel, opts...)
			if err != nil {
				return err
			}
			if err := dupgraph.SaveCommunities(ctx, store, output, cmdModel, opts...); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cmdModel.Summary())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "cc.bin", "name of the component model artifact")
	f.StringVarP(&output, "output", "o", "cmd.bin", "name of the communities model artifact")
	f.String("algorithm", "multilevel", "community detection algorithm")
	f.String("mode", "linear", "edge construction mode (linear, quadratic)")
	f.String("params", "", "algorithm parameters file (yaml or json)")
	f.String("failure-policy", "escalate", "failed component handling (escalate, skip, whole)")
	f.Int("trivial-threshold", dupgraph.DefaultTrivialThreshold, "largest component size emitted without detection")

	bind(a.v, f.Lookup, map[string]string{
		"detect.algorithm":         "algorithm",
		"detect.mode":              "mode",
		"detect.params_file":       "params",
		"detect.failure_policy":    "failure-policy",
		"detect.trivial_threshold": "trivial-threshold",
	})
	return cmd
}

func (a *app) detectOptions() ([]dupgraph.Option, error) {
	dc := a.cfg.Detect

	alg, err := community.ParseAlgorithm(dc.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dupgraph.ErrUnsupportedAlgorithm, err)
	}
	mode, err := graph.ParseMode(dc.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dupgraph.ErrInvalidConfiguration, err)
	}
	policy, err := dupgraph.ParseFailurePolicy(dc.FailurePolicy)
	if err != nil {
		return nil, err
	}

	params := community.Config{}
	if dc.ParamsFile != "" {
		if err := codec.DecodeFile(dc.ParamsFile, &params); err != nil {
			return nil, fmt.Errorf("%w: %w", dupgraph.ErrInvalidConfiguration, err)
		}
	}
	// Inline params from the config file override the params file.
	maps.Copy(params, dc.Params)

	opts, err := a.commonOptions()
	if err != nil {
		return nil, err
	}
	return append(opts,
		dupgraph.WithAlgorithm(alg),
		dupgraph.WithEdgeMode(mode),
		dupgraph.WithAlgorithmConfig(params),
		dupgraph.WithFailurePolicy(policy),
		dupgraph.WithTrivialThreshold(dc.TrivialThreshold),
	), nil
}
