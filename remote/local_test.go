package remote

import (
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/dyncast/errors"
)

func TestLocalRequiresCompiler(t *testing.T) {
	_, err := NewLocal(t.TempDir()).Run(context.Background(), Job{Source: "x"})
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
}

func TestLocalMissingCompiler(t *testing.T) {
	_, err := NewLocal(t.TempDir()).Run(context.Background(), Job{Source: "x", Compiler: "dyncast-no-such-compiler"})
	assert.True(t, errors.HasKind(err, errors.KindToolchainFail))
}

func TestLocalCompileFailureIsStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX false")
	}
	falseBin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}
	res, err := NewLocal(t.TempDir()).Run(context.Background(), Job{Source: "x", Compiler: falseBin})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Status)
}
