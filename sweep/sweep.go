package sweep

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/dyncast"
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/emit"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/flatten"
	"github.com/wippyai/dyncast/hierarchy"
	"github.com/wippyai/dyncast/remote"
)

// Options parameterize a sweep.
type Options struct {
	Toolchains     []remote.Toolchain
	Generate       hierarchy.GenerateOptions
	CXXFlags       []string
	SupportSources []string
	StartSeed      uint64
	// MaxSeeds bounds the sweep; zero runs until the context is cancelled.
	MaxSeeds    uint64
	PointerSize int
	Parallelism int
}

// Outcome is what happened to one seed.
type Outcome struct {
	Results map[string]remote.Result
	// Failed lists failing toolchains (and generator stages) in toolchain order.
	Failed []string
	Seed   uint64
}

// Sweeper drives the seed loop.
type Sweeper struct {
	opts      Options
	runners   remote.Runners
	flattener *flatten.Flattener
	metrics   *Metrics
	store     ArtifactStore
	report    *Report
	out       io.Writer
	progress  io.Writer
	progMu    sync.Mutex
	runID     string
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithMetrics records into m.
func WithMetrics(m *Metrics) Option { return func(s *Sweeper) { s.metrics = m } }

// WithStore keeps failing reproducers in store.
func WithStore(store ArtifactStore) Option { return func(s *Sweeper) { s.store = store } }

// WithReport appends findings to r.
func WithReport(r *Report) Option { return func(s *Sweeper) { s.report = r } }

// WithOutput sets where failing seed lines and progress dots go.
func WithOutput(out, progress io.Writer) Option {
	return func(s *Sweeper) {
		s.out = out
		s.progress = progress
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option { return func(s *Sweeper) { s.runID = id } }

// New creates a Sweeper. fl resolves the support sources and their includes.
func New(opts Options, runners remote.Runners, fl *flatten.Flattener, options ...Option) *Sweeper {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.PointerSize == 0 {
		opts.PointerSize = abi.DefaultPointerSize
	}
	s := &Sweeper{
		opts:      opts,
		runners:   runners,
		flattener: fl,
		out:       io.Discard,
		progress:  io.Discard,
		runID:     uuid.New().String(),
	}
	for _, o := range options {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// RunID identifies this sweep in artifact keys and findings.
func (s *Sweeper) RunID() string { return s.runID }

// Metrics returns the collectors the sweeper records into.
func (s *Sweeper) Metrics() *Metrics { return s.metrics }

// Run scans seeds from StartSeed until MaxSeeds are done or ctx is
// cancelled. Transport errors are logged and the sweep moves on.
func (s *Sweeper) Run(ctx context.Context) error {
	Logger().Info("sweep started",
		zap.String("run_id", s.runID),
		zap.Uint64("start_seed", s.opts.StartSeed),
		zap.Uint64("max_seeds", s.opts.MaxSeeds))

	for n := uint64(0); s.opts.MaxSeeds == 0 || n < s.opts.MaxSeeds; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		seed := s.opts.StartSeed + n
		if _, err := s.Seed(ctx, seed); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			Logger().Warn("seed aborted", zap.Uint64("seed", seed), zap.Error(err))
		}
	}
	return nil
}

// Seed processes one seed on every toolchain.
func (s *Sweeper) Seed(ctx context.Context, seed uint64) (*Outcome, error) {
	out := &Outcome{Seed: seed, Results: make(map[string]remote.Result)}
	failed := make(map[string]bool)
	sources := make(map[string]string)
	var firstErr error

	for _, group := range s.groups() {
		src, err := s.Source(seed, group.mode)
		if err != nil {
			Logger().Warn("generation failed", zap.Uint64("seed", seed), zap.Stringer("abi", group.mode), zap.Error(err))
			s.metrics.GeneratorFailures.WithLabelValues(group.mode.String()).Inc()
			failed[generatorStage(group.mode)] = true
			continue
		}

		results, err := s.runGroup(ctx, group.toolchains, src)
		for i, tc := range group.toolchains {
			res := results[i]
			if !res.ran {
				continue
			}
			out.Results[tc.Name] = res.Result
			if !res.OK() {
				failed[tc.Name] = true
				sources[tc.Name] = src
			}
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, g := range s.groups() {
		if failed[generatorStage(g.mode)] {
			out.Failed = append(out.Failed, generatorStage(g.mode))
		}
		for _, tc := range g.toolchains {
			if failed[tc.Name] {
				out.Failed = append(out.Failed, tc.Name)
			}
		}
	}

	s.metrics.SeedsScanned.Inc()
	if len(out.Failed) > 0 {
		s.metrics.FailingSeeds.Inc()
		s.record(ctx, out, sources)
	}
	return out, firstErr
}

type runResult struct {
	remote.Result
	ran bool
}

// runGroup runs src on toolchains concurrently. Results are indexed like
// toolchains; a toolchain whose run errored has ran == false. One toolchain's
// error does not cancel the others; the first error is returned after all
// have finished.
func (s *Sweeper) runGroup(ctx context.Context, toolchains []remote.Toolchain, src string) ([]runResult, error) {
	results := make([]runResult, len(toolchains))
	var g errgroup.Group
	g.SetLimit(s.opts.Parallelism)

	for i, tc := range toolchains {
		g.Go(func() error {
			rn, err := s.runners.For(tc)
			if err != nil {
				return err
			}
			start := time.Now()
			res, err := rn.Run(ctx, tc.Job(src, s.opts.CXXFlags))
			if err != nil {
				s.metrics.observeRun(tc.Name, "error", time.Since(start))
				return err
			}
			outcome := "pass"
			if !res.OK() {
				outcome = "fail"
			} else {
				s.dot()
			}
			s.metrics.observeRun(tc.Name, outcome, time.Since(start))
			results[i] = runResult{Result: res, ran: true}
			return nil
		})
	}
	return results, g.Wait()
}

func (s *Sweeper) dot() {
	s.progMu.Lock()
	defer s.progMu.Unlock()
	io.WriteString(s.progress, ".")
}

// record prints the failing seed, appends the finding and stores reproducers.
func (s *Sweeper) record(ctx context.Context, out *Outcome, sources map[string]string) {
	fmt.Fprintf(s.out, "%s: %d\n", strings.Join(out.Failed, "+"), out.Seed)
	Logger().Info("failing seed",
		zap.Uint64("seed", out.Seed),
		zap.Strings("toolchains", out.Failed))

	var keys []string
	if s.store != nil {
		for _, name := range out.Failed {
			src, ok := sources[name]
			if !ok {
				continue
			}
			key := ArtifactKey(s.runID, out.Seed, name)
			if err := s.store.Put(ctx, key, []byte(src)); err != nil {
				Logger().Warn("store artifact", zap.String("key", key), zap.Error(err))
				continue
			}
			keys = append(keys, key)
		}
	}

	if s.report != nil {
		err := s.report.Add(Finding{
			Time:       time.Now().UTC(),
			RunID:      s.runID,
			Toolchains: out.Failed,
			Artifacts:  keys,
			Seed:       out.Seed,
		})
		if err != nil {
			Logger().Warn("findings report", zap.Error(err))
		}
	}
}

type group struct {
	toolchains []remote.Toolchain
	mode       abi.Mode
}

// groups partitions the toolchains by ABI, Itanium first.
func (s *Sweeper) groups() []group {
	var itanium, microsoft group
	itanium.mode, microsoft.mode = abi.Itanium, abi.Microsoft
	for _, tc := range s.opts.Toolchains {
		mode, err := tc.Mode()
		if err != nil {
			continue
		}
		if mode == abi.Microsoft {
			microsoft.toolchains = append(microsoft.toolchains, tc)
		} else {
			itanium.toolchains = append(itanium.toolchains, tc)
		}
	}
	var out []group
	for _, g := range []group{itanium, microsoft} {
		if len(g.toolchains) > 0 {
			out = append(out, g)
		}
	}
	return out
}

func generatorStage(mode abi.Mode) string {
	if mode == abi.Microsoft {
		return "msvc-generator"
	}
	return "generator"
}

// Source builds the single translation unit for seed under mode: the
// generated typeinfo, the support sources and the test harness.
func (s *Sweeper) Source(seed uint64, mode abi.Mode) (string, error) {
	target := abi.Target{Mode: mode, PointerSize: s.opts.PointerSize}
	m, err := dyncast.Build(seed, target, s.opts.Generate)
	if err != nil {
		return "", err
	}
	files, err := emit.Render(m, emit.FlavorTest)
	if err != nil {
		return "", err
	}
	return Unity(s.flattener, files, s.opts.SupportSources, filepath.Join("dyncast-gen", mode.String(), strconv.FormatUint(seed, 10)))
}

// Unity flattens generated files plus support sources into one translation
// unit. The generated files are served from memory under genDir.
func Unity(fl *flatten.Flattener, files *emit.Files, support []string, genDir string) (string, error) {
	overlay := make(map[string]string)
	for name, content := range files.Map() {
		overlay[filepath.Join(genDir, name)] = content
	}
	withGen := fl.Overlay(overlay)

	inputs := []string{filepath.Join(genDir, emit.ThingsSource)}
	for _, name := range support {
		path, ok := fl.Locate(name)
		if !ok {
			return "", errors.FileNotFound(name)
		}
		inputs = append(inputs, path)
	}
	inputs = append(inputs, filepath.Join(genDir, emit.HarnessFile))
	return withGen.Flatten(inputs...)
}
