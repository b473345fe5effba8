package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dyncast/errors"
)

// Local compiles with an installed compiler. Job.Compiler is the executable
// (g++, clang++, cl) and Job.Options a space-separated argument list.
type Local struct {
	// Dir holds the scratch directories; empty means os.TempDir.
	Dir string
}

// NewLocal creates a local runner using dir for scratch space.
func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

// Run writes the source, compiles it and runs the binary. A compiler failure
// is reported as that compiler's exit status with its diagnostics.
func (l *Local) Run(ctx context.Context, job Job) (Result, error) {
	if job.Compiler == "" {
		return Result{}, errors.InvalidInput(errors.PhaseCompile, "local runner needs a compiler")
	}
	work, err := os.MkdirTemp(l.Dir, "dyncast-")
	if err != nil {
		return Result{}, errors.Wrap(errors.PhaseCompile, errors.KindIO, err, "scratch directory")
	}
	defer os.RemoveAll(work)

	src := filepath.Join(work, "unity.cc")
	bin := filepath.Join(work, "unity.exe")
	if err := os.WriteFile(src, []byte(job.Source), 0o644); err != nil {
		return Result{}, errors.Wrap(errors.PhaseCompile, errors.KindIO, err, "write source")
	}

	args := strings.Fields(job.Options)
	args = append(args, job.RawFlags...)
	args = append(args, "-o", bin, src)

	var compileOut bytes.Buffer
	cc := exec.CommandContext(ctx, job.Compiler, args...)
	cc.Stdout = &compileOut
	cc.Stderr = &compileOut
	if status, err := exitCode(cc.Run()); err != nil {
		return Result{}, errors.New(errors.PhaseCompile, errors.KindToolchainFail).
			Path(job.Compiler).
			Cause(err).
			Detail("start compiler").
			Build()
	} else if status != 0 {
		return Result{Status: status, CompilerMessage: compileOut.String()}, nil
	}

	var stdout, stderr bytes.Buffer
	run := exec.CommandContext(ctx, bin)
	run.Stdout = &stdout
	run.Stderr = &stderr
	runErr := run.Run()
	status, err := exitCode(runErr)
	if err != nil {
		return Result{}, errors.Wrap(errors.PhaseCompile, errors.KindIO, err, "run harness")
	}

	res := Result{
		Status:          status,
		CompilerMessage: compileOut.String(),
		ProgramOutput:   stdout.String(),
		ProgramError:    stderr.String(),
	}
	if ps := run.ProcessState; ps != nil && !ps.Exited() {
		res.Signal = ps.String()
	}
	Logger().Debug("local run", zap.String("compiler", job.Compiler), zap.Int("status", status))
	return res, nil
}

// exitCode maps a command error to its exit status. Errors other than a
// nonzero exit are returned.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// killed by a signal
			code = 128
		}
		return code, nil
	}
	return 0, err
}
