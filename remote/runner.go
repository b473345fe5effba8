package remote

import (
	"context"
	"strings"
)

// Job is one compile-and-run request.
type Job struct {
	// Source is the complete translation unit.
	Source string
	// Compiler names the service-side compiler (gcc-head, clang-head), the
	// Rextester language choice, or a local compiler binary.
	Compiler string
	// Options are passed verbatim in the runner's own format.
	Options string
	// RawFlags are extra compiler flags, one per entry (typically CXXFLAGS).
	RawFlags []string
}

// Result is what the toolchain reported. Status is the process exit status;
// zero means the harness compiled and every check passed.
type Result struct {
	CompilerMessage string
	ProgramOutput   string
	ProgramError    string
	Signal          string
	Status          int
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Status == 0 }

// Transcript joins the non-empty outputs in the order a user reads them.
func (r Result) Transcript() string {
	var parts []string
	for _, s := range []string{r.CompilerMessage, r.ProgramOutput, r.Signal, r.ProgramError} {
		if s != "" {
			parts = append(parts, strings.TrimRight(s, "\n"))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n"
}

// Runner compiles and runs a Job.
type Runner interface {
	Run(ctx context.Context, job Job) (Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, job Job) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, job Job) (Result, error) { return f(ctx, job) }

// SplitFlags splits a CXXFLAGS-style string on whitespace.
func SplitFlags(s string) []string {
	return strings.Fields(s)
}
