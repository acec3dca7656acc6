package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/dupgraph"
	"github.com/hupe1980/dupgraph/blobstore"
	"github.com/hupe1980/dupgraph/blobstore/minio"
	"github.com/hupe1980/dupgraph/blobstore/s3"
	"github.com/hupe1980/dupgraph/internal/config"
	"github.com/hupe1980/dupgraph/persistence"
)

// app carries state shared by subcommands once the config is loaded.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *dupgraph.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "dupgraph",
		Short:         "Group near-duplicates into connected components and communities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (yaml or json)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("store", "local", "artifact store (local, s3, minio)")
	pf.String("store-path", ".", "root directory of the local store")
	pf.String("bucket", "", "bucket of the s3 or minio store")
	pf.String("prefix", "", "key prefix inside the bucket")
	pf.String("endpoint", "", "minio or s3-compatible endpoint")
	pf.String("compression", "zstd", "artifact compression (none, lz4, zstd)")
	pf.Int("workers", 0, "parallel detection workers (0 = GOMAXPROCS)")

	bind(a.v, pf.Lookup, map[string]string{
		"log.level":         "log-level",
		"log.format":        "log-format",
		"store.backend":     "store",
		"store.path":        "store-path",
		"store.bucket":      "bucket",
		"store.prefix":      "prefix",
		"store.endpoint":    "endpoint",
		"store.compression": "compression",
		"workers":           "workers",
	})

	root.AddCommand(
		newCCCmd(a),
		newCMDCmd(a),
		newDumpCCCmd(a),
		newDumpCMDCmd(a),
		newAlgorithmsCmd(),
	)
	return root
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("%w: %w", dupgraph.ErrInvalidConfiguration, err)
	}
	if cfg.Log.Format == "json" {
		a.logger = dupgraph.NewJSONLogger(stderr, level)
	} else {
		a.logger = dupgraph.NewTextLogger(stderr, level)
	}
	return nil
}

func (a *app) store(ctx context.Context) (blobstore.BlobStore, error) {
	sc := a.cfg.Store
	switch sc.Backend {
	case "s3":
		opts := []s3.Option{s3.WithPrefix(sc.Prefix)}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(sc.Endpoint))
		}
		return s3.New(ctx, sc.Bucket, opts...)
	case "minio":
		return minio.New(sc.Endpoint, sc.Bucket, sc.Prefix, minio.Options{
			AccessKey: sc.AccessKey,
			SecretKey: sc.SecretKey,
			Region:    sc.Region,
			Secure:    sc.Secure,
		})
	default:
		return blobstore.NewLocalStore(sc.Path), nil
	}
}

func (a *app) commonOptions() ([]dupgraph.Option, error) {
	c, err := persistence.ParseCompression(a.cfg.Store.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dupgraph.ErrInvalidConfiguration, err)
	}
	return []dupgraph.Option{
		dupgraph.WithLogger(a.logger),
		dupgraph.WithCompression(c),
	}, nil
}

func bind(v *viper.Viper, lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, flag := range keys {
		if f := lookup(flag); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}
