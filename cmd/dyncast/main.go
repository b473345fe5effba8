package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/dyncast/config"
	"github.com/wippyai/dyncast/flatten"
	"github.com/wippyai/dyncast/hierarchy"
	"github.com/wippyai/dyncast/layout"
	"github.com/wippyai/dyncast/remote"
	"github.com/wippyai/dyncast/sweep"
)

const appName = "dyncast"

func main() {
	err := newRootCmd().Execute()
	var status exitStatus
	switch {
	case err == nil:
	case stderrors.As(err, &status):
		os.Exit(int(status))
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitStatus carries a toolchain's nonzero status out of a command.
type exitStatus int

func (s exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(s)) }

// app is the state shared by every subcommand.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Layout oracle and test generator for C++ dynamic_cast",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newGenerateCmd(a),
		newLayoutCmd(a),
		newFlattenCmd(a),
		newRunCmd(a),
		newSweepCmd(a),
		newExploreCmd(a),
	)
	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var zcfg zap.Config
	if a.verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	log, err := zcfg.Build()
	if err != nil {
		return err
	}
	a.log = log.Named(appName)
	layout.SetLogger(a.log.Named("layout"))
	remote.SetLogger(a.log.Named("remote"))
	sweep.SetLogger(a.log.Named("sweep"))
	return nil
}

func (a *app) generateOptions() hierarchy.GenerateOptions {
	opts := hierarchy.DefaultGenerateOptions()
	opts.Classes = a.cfg.Classes
	if opts.Roots > opts.Classes {
		opts.Roots = opts.Classes
	}
	return opts
}

func (a *app) flattener(includeDirs []string) (*flatten.Flattener, error) {
	return flatten.New(includeDirs, flatten.WithCacheSize(a.cfg.CacheSize))
}

// runners builds the configured compile services, each behind a result cache.
func (a *app) runners() (remote.Runners, error) {
	client := newHTTPClient(a.cfg.HTTPTimeout)
	wandbox, err := remote.NewCached(remote.NewWandbox(a.cfg.Wandbox.URL, client), a.cfg.CacheSize)
	if err != nil {
		return remote.Runners{}, err
	}
	rextester, err := remote.NewCached(remote.NewRextester(a.cfg.Rextester.URL, client), a.cfg.CacheSize)
	if err != nil {
		return remote.Runners{}, err
	}
	return remote.Runners{
		Wandbox:   wandbox,
		Rextester: rextester,
		Local:     remote.NewLocal(""),
	}, nil
}
