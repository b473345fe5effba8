package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/dyncast"
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/emit"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/remote"
	"github.com/wippyai/dyncast/sweep"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func modeFlag(msvc bool) abi.Mode {
	if msvc {
		return abi.Microsoft
	}
	return abi.Itanium
}

func (a *app) model(seed uint64, msvc bool) (*dyncast.Model, error) {
	return dyncast.Build(seed, a.cfg.Target(modeFlag(msvc)), a.generateOptions())
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		seed      uint64
		msvc      bool
		benchmark bool
		classes   int
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write things.gen.h, things.gen.cc and harness.gen.cc for a seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("classes") {
				a.cfg.Classes = classes
			}
			m, err := a.model(seed, msvc)
			if err != nil {
				return err
			}
			flavor := emit.FlavorTest
			if benchmark {
				flavor = emit.FlavorBenchmark
			}
			files, err := emit.Render(m, flavor)
			if err != nil {
				return err
			}
			return files.WriteDir(outDir)
		},
	}
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 1, "hierarchy seed")
	cmd.Flags().BoolVar(&msvc, "msvc", false, "lay out for the Microsoft ABI")
	cmd.Flags().BoolVar(&benchmark, "benchmark", false, "emit the benchmark harness instead of the test")
	cmd.Flags().IntVar(&classes, "classes", 10, "number of classes")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func newLayoutCmd(a *app) *cobra.Command {
	var (
		seed uint64
		msvc bool
	)
	cmd := &cobra.Command{
		Use:   "layout [CLASS...]",
		Short: "Dump the subobject layout of generated classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.model(seed, msvc)
			if err != nil {
				return err
			}
			classes := m.Classes()
			if len(args) > 0 {
				classes = classes[:0:0]
				for _, name := range args {
					c, ok := m.Hierarchy().Lookup(name)
					if !ok {
						return errors.NotFound(errors.PhaseLayout, "class", name)
					}
					classes = append(classes, c)
				}
			}

			out := cmd.OutOrStdout()
			styled := isTerminal(os.Stdout)
			for i, c := range classes {
				l, err := m.Layout(c)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				heading := fmt.Sprintf("%s (%s, %d bytes)", c.Name(), m.Target(), l.Size())
				if styled {
					heading = headingStyle.Render(heading)
				}
				fmt.Fprintln(out, heading)
				if err := l.Dump(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 1, "hierarchy seed")
	cmd.Flags().BoolVar(&msvc, "msvc", false, "lay out for the Microsoft ABI")
	return cmd
}

func newFlattenCmd(a *app) *cobra.Command {
	var (
		includeDirs []string
		run         bool
		gcc         bool
		clang       bool
		msvc        bool
	)
	cmd := &cobra.Command{
		Use:   "flatten FILE...",
		Short: "Inline local includes into one translation unit, optionally compiling it",
		RunE: func(cmd *cobra.Command, args []string) error {
			fl, err := a.flattener(append(append([]string(nil), a.cfg.IncludeDirs...), includeDirs...))
			if err != nil {
				return err
			}
			src, err := fl.Flatten(args...)
			if err != nil {
				return err
			}

			if !gcc && !clang && !msvc {
				if !run {
					fmt.Fprintln(cmd.OutOrStdout(), src)
					return nil
				}
				gcc, clang = true, true
			}
			var names []string
			for _, sel := range []struct {
				on   bool
				name string
			}{{clang, "clang"}, {gcc, "gcc"}, {msvc, "msvc"}} {
				if sel.on {
					names = append(names, sel.name)
				}
			}
			return a.runSource(cmd, src, names)
		},
	}
	cmd.Flags().StringSliceVarP(&includeDirs, "include-dir", "I", nil, "extra directories searched for local includes")
	cmd.Flags().BoolVar(&run, "run", false, "compile and run on Clang then GCC")
	cmd.Flags().BoolVar(&gcc, "g++", false, "run on GCC only")
	cmd.Flags().BoolVar(&clang, "clang", false, "run on Clang only")
	cmd.Flags().BoolVar(&msvc, "msvc", false, "run on MSVC only")
	return cmd
}

// runSource runs src on the named toolchains in order and turns the first
// nonzero status into the process exit status.
func (a *app) runSource(cmd *cobra.Command, src string, names []string) error {
	toolchains, err := remote.Select(a.cfg.Toolchains, names...)
	if err != nil {
		return err
	}
	runners, err := a.runners()
	if err != nil {
		return err
	}
	status, err := remote.RunSequence(cmd.Context(), runners, toolchains, src, a.cfg.Flags(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if status != 0 {
		return exitStatus(status)
	}
	return nil
}

func newRunCmd(a *app) *cobra.Command {
	var (
		seed       uint64
		msvc       bool
		toolchains []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, flatten and run one seed's test harness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := modeFlag(msvc)
			m, err := a.model(seed, msvc)
			if err != nil {
				return err
			}
			files, err := emit.Render(m, emit.FlavorTest)
			if err != nil {
				return err
			}
			fl, err := a.flattener(a.cfg.IncludeDirs)
			if err != nil {
				return err
			}
			src, err := sweep.Unity(fl, files, a.cfg.SupportSources, "dyncast-gen")
			if err != nil {
				return err
			}

			names := toolchains
			if len(names) == 0 {
				for _, tc := range a.cfg.Toolchains {
					if tm, err := tc.Mode(); err == nil && tm == mode {
						names = append(names, tc.Name)
					}
				}
			}
			return a.runSource(cmd, src, names)
		},
	}
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 1, "hierarchy seed")
	cmd.Flags().BoolVar(&msvc, "msvc", false, "lay out for the Microsoft ABI")
	cmd.Flags().StringSliceVarP(&toolchains, "toolchain", "t", nil, "toolchains to run (default: every toolchain of the ABI)")
	return cmd
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
