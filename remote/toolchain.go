package remote

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
)

// Runner kinds a Toolchain can name.
const (
	KindWandbox   = "wandbox"
	KindRextester = "rextester"
	KindLocal     = "local"
)

// Toolchain is one compiler under test.
type Toolchain struct {
	Name     string `yaml:"name" validate:"required"`
	Runner   string `yaml:"runner" validate:"oneof=wandbox rextester local"`
	Compiler string `yaml:"compiler" validate:"required"`
	Options  string `yaml:"options"`
	ABI      string `yaml:"abi" validate:"oneof=itanium microsoft"`
	// CXXFlags forwards the configured extra flags to this toolchain.
	CXXFlags bool `yaml:"cxxflags"`
}

// GCC, Clang and MSVC are the toolchains the sweep exercises by default.
func GCC() Toolchain {
	return Toolchain{Name: "gcc", Runner: KindWandbox, Compiler: "gcc-head", Options: "c++1z,warning", ABI: "itanium", CXXFlags: true}
}

func Clang() Toolchain {
	return Toolchain{Name: "clang", Runner: KindWandbox, Compiler: "clang-head", Options: "c++1z,warning", ABI: "itanium", CXXFlags: true}
}

func MSVC() Toolchain {
	return Toolchain{Name: "msvc", Runner: KindRextester, Compiler: RextesterVisualCpp, Options: RextesterMSVCArgs, ABI: "microsoft"}
}

// DefaultToolchains returns GCC, Clang and MSVC in sweep order.
func DefaultToolchains() []Toolchain {
	return []Toolchain{GCC(), Clang(), MSVC()}
}

// Mode returns the layout convention the toolchain follows.
func (t Toolchain) Mode() (abi.Mode, error) {
	return abi.ParseMode(t.ABI)
}

// Title is the name used in progress lines.
func (t Toolchain) Title() string {
	switch t.Name {
	case "gcc":
		return "GCC"
	case "clang":
		return "Clang"
	case "msvc":
		return "MSVC"
	}
	return t.Name
}

// Job builds the request for source. cxxflags is used only when the
// toolchain forwards extra flags.
func (t Toolchain) Job(source string, cxxflags []string) Job {
	job := Job{Source: source, Compiler: t.Compiler, Options: t.Options}
	if t.CXXFlags {
		job.RawFlags = cxxflags
	}
	return job
}

// Runners maps runner kinds to implementations.
type Runners struct {
	Wandbox   Runner
	Rextester Runner
	Local     Runner
}

// For returns the runner a toolchain needs.
func (r Runners) For(t Toolchain) (Runner, error) {
	var rn Runner
	switch t.Runner {
	case KindWandbox:
		rn = r.Wandbox
	case KindRextester:
		rn = r.Rextester
	case KindLocal:
		rn = r.Local
	default:
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(t.Name).
			Detail("unknown runner %q", t.Runner).
			Build()
	}
	if rn == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).
			Path(t.Name).
			Detail("runner %q not configured", t.Runner).
			Build()
	}
	return rn, nil
}

// RunSequence runs source on each toolchain in order, writing a heading and
// the transcript of each run to w. It stops at the first nonzero status and
// returns it.
func RunSequence(ctx context.Context, runners Runners, toolchains []Toolchain, source string, cxxflags []string, w io.Writer) (int, error) {
	for _, tc := range toolchains {
		rn, err := runners.For(tc)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(w, "Running on %s...\n", tc.Title())
		res, err := rn.Run(ctx, tc.Job(source, cxxflags))
		if err != nil {
			return 0, err
		}
		io.WriteString(w, res.Transcript())
		if !res.OK() {
			return res.Status, nil
		}
	}
	return 0, nil
}

// Select picks toolchains by name, preserving the order of names.
func Select(all []Toolchain, names ...string) ([]Toolchain, error) {
	var out []Toolchain
	for _, n := range names {
		found := false
		for _, tc := range all {
			if strings.EqualFold(tc.Name, n) {
				out = append(out, tc)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.NotFound(errors.PhaseCompile, "toolchain", n)
		}
	}
	return out, nil
}
