package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/dyncast/config"
	"github.com/wippyai/dyncast/sweep"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		seed        uint64
		maxSeeds    uint64
		metricsAddr string
		findings    string
		artifactDir string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Scan seeds upward, reporting those any toolchain fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("seed") {
				cfg.StartSeed = seed
			}
			if flags.Changed("max-seeds") {
				cfg.MaxSeeds = maxSeeds
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if flags.Changed("findings") {
				cfg.Findings = findings
			}
			if flags.Changed("artifact-dir") {
				cfg.Artifacts.Kind = config.ArtifactsDir
				cfg.Artifacts.Dir = artifactDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, cleanup, err := a.newSweeper(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			err = s.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 1, "initial seed, counting upward")
	cmd.Flags().Uint64Var(&maxSeeds, "max-seeds", 0, "stop after this many seeds (0: never)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&findings, "findings", "", "append failing seeds to this JSONL file")
	cmd.Flags().StringVar(&artifactDir, "artifact-dir", "", "keep failing reproducers in this directory")
	return cmd
}

func (a *app) newSweeper(ctx context.Context, cmd *cobra.Command) (*sweep.Sweeper, func(), error) {
	cfg := a.cfg
	runners, err := a.runners()
	if err != nil {
		return nil, nil, err
	}
	fl, err := a.flattener(cfg.IncludeDirs)
	if err != nil {
		return nil, nil, err
	}

	metrics := sweep.NewMetrics()
	options := []sweep.Option{
		sweep.WithMetrics(metrics),
		sweep.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}
	var closers []func() error

	store, err := newStore(cfg.Artifacts)
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		options = append(options, sweep.WithStore(store))
	}

	if cfg.Findings != "" {
		report, err := sweep.OpenReport(cfg.Findings)
		if err != nil {
			return nil, nil, err
		}
		options = append(options, sweep.WithReport(report))
		closers = append(closers, report.Close)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				a.log.Error("metrics listener", zap.Error(err))
			}
		}()
	}

	s := sweep.New(sweep.Options{
		Toolchains:     cfg.Toolchains,
		Generate:       a.generateOptions(),
		CXXFlags:       cfg.Flags(),
		SupportSources: cfg.SupportSources,
		StartSeed:      cfg.StartSeed,
		MaxSeeds:       cfg.MaxSeeds,
		PointerSize:    cfg.PointerSize,
		Parallelism:    cfg.Parallelism,
	}, runners, fl, options...)

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				a.log.Warn("close", zap.Error(err))
			}
		}
	}
	return s, cleanup, nil
}

func newStore(cfg config.ArtifactConfig) (sweep.ArtifactStore, error) {
	switch cfg.Kind {
	case config.ArtifactsDir:
		return sweep.NewDirStore(cfg.Dir)
	case config.ArtifactsMinio:
		return sweep.NewMinioStore(sweep.MinioConfig{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
	}
	return nil, nil
}
