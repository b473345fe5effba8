package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
)

func TestWandboxRun(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"1","compiler_message":"warning: x","program_output":"3 failures.\n","signal":"Aborted","program_error":"assert"}`))
	}))
	defer srv.Close()

	wb := NewWandbox(srv.URL, srv.Client())
	res, err := wb.Run(context.Background(), Job{
		Source:   "int main() {}",
		Compiler: "gcc-head",
		Options:  "c++1z,warning",
		RawFlags: []string{"-DFREE_USE_OF_CXX17", "-O2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "int main() {}", got["code"])
	assert.Equal(t, "gcc-head", got["compiler"])
	assert.Equal(t, "c++1z,warning", got["options"])
	assert.Equal(t, "-DFREE_USE_OF_CXX17\n-O2", got["compiler-option-raw"])

	assert.Equal(t, 1, res.Status)
	assert.False(t, res.OK())
	assert.Equal(t, "warning: x\n3 failures.\nAborted\nassert\n", res.Transcript())
}

func TestWandboxStatusForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"string", `{"status":"0"}`, 0},
		{"number", `{"status":139}`, 139},
		{"missing", `{"compiler_message":"error"}`, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := NewWandbox(srv.URL, srv.Client()).Run(context.Background(), Job{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestWandboxOmitsEmptyRawOptions(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"status":"0"}`))
	}))
	defer srv.Close()

	_, err := NewWandbox(srv.URL, srv.Client()).Run(context.Background(), Job{Compiler: "clang-head"})
	require.NoError(t, err)
	_, present := raw["compiler-option-raw"]
	assert.False(t, present)
}

func TestWandboxErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "busy", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewWandbox(srv.URL, srv.Client()).Run(context.Background(), Job{})
		assert.True(t, errors.HasKind(err, errors.KindRemote))
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := NewWandbox(srv.URL, srv.Client()).Run(context.Background(), Job{})
		assert.True(t, errors.HasKind(err, errors.KindDecode))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewWandbox(url, nil).Run(context.Background(), Job{})
		assert.True(t, errors.HasKind(err, errors.KindRemote))
	})
}

func TestRextesterRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "int main() {}", r.PostForm.Get("Program"))
		assert.Equal(t, "28", r.PostForm.Get("LanguageChoice"))
		assert.Equal(t, "source_file.cpp -o a.exe", r.PostForm.Get("CompilerArgs"))
		_, _ = w.Write([]byte(`{"Errors":"Assertion failed\r\nProcess exit code is not 0: 3\r\n","Result":"1 failures.\n"}`))
	}))
	defer srv.Close()

	res, err := NewRextester(srv.URL, srv.Client()).Run(context.Background(), MSVC().Job("int main() {}", []string{"-DX"}))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Status)
	assert.Equal(t, "1 failures.\n", res.ProgramOutput)
	assert.Contains(t, res.CompilerMessage, "Assertion failed")
}

func TestRextesterNullFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Errors":null,"Result":"0 failures.\n"}`))
	}))
	defer srv.Close()

	res, err := NewRextester(srv.URL, srv.Client()).Run(context.Background(), Job{})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.CompilerMessage)
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		errs string
		want int
	}{
		{"", 0},
		{"warning C4250", 0},
		{"Process exit code is not 0: 42", 42},
		{"a\nProcess exit code is not 0: 1\nProcess exit code is not 0: 7\n", 7},
		{"  Process exit code is not 0: 9", 0},
	}
	for _, tt := range tests {
		if got := exitStatus(tt.errs); got != tt.want {
			t.Errorf("exitStatus(%q) = %d, want %d", tt.errs, got, tt.want)
		}
	}
}

func TestCached(t *testing.T) {
	calls := 0
	inner := RunnerFunc(func(ctx context.Context, job Job) (Result, error) {
		calls++
		if job.Source == "fail" {
			return Result{}, errors.Remote("test", context.DeadlineExceeded)
		}
		return Result{Status: len(job.Source)}, nil
	})
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := c.Run(ctx, Job{Source: "abc", Compiler: "gcc-head"})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Status)
	}
	assert.Equal(t, 1, calls)

	_, err = c.Run(ctx, Job{Source: "abc", Compiler: "clang-head"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	for i := 0; i < 2; i++ {
		_, err = c.Run(ctx, Job{Source: "fail"})
		require.Error(t, err)
	}
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, c.Len())

	_, err = NewCached(inner, 0)
	assert.Error(t, err)
}

func TestToolchains(t *testing.T) {
	all := DefaultToolchains()
	require.Len(t, all, 3)

	mode, err := MSVC().Mode()
	require.NoError(t, err)
	assert.Equal(t, abi.Microsoft, mode)
	mode, err = GCC().Mode()
	require.NoError(t, err)
	assert.Equal(t, abi.Itanium, mode)

	assert.Equal(t, []string{"-DX"}, GCC().Job("s", []string{"-DX"}).RawFlags)
	assert.Nil(t, MSVC().Job("s", []string{"-DX"}).RawFlags)

	picked, err := Select(all, "clang", "GCC")
	require.NoError(t, err)
	assert.Equal(t, "clang", picked[0].Name)
	assert.Equal(t, "gcc", picked[1].Name)

	_, err = Select(all, "icc")
	assert.True(t, errors.HasKind(err, errors.KindNotFound))

	_, err = Runners{}.For(GCC())
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
	_, err = Runners{}.For(Toolchain{Name: "x", Runner: "ssh"})
	assert.True(t, errors.HasKind(err, errors.KindUnsupported))
}

func TestRunSequenceStopsAtFirstFailure(t *testing.T) {
	var order []string
	wb := RunnerFunc(func(ctx context.Context, job Job) (Result, error) {
		order = append(order, job.Compiler)
		if job.Compiler == "clang-head" {
			return Result{Status: 2, ProgramOutput: "1 failures."}, nil
		}
		return Result{}, nil
	})

	var out bytes.Buffer
	status, err := RunSequence(context.Background(), Runners{Wandbox: wb}, []Toolchain{Clang(), GCC()}, "src", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, status)
	assert.Equal(t, []string{"clang-head"}, order)
	assert.Equal(t, "Running on Clang...\n1 failures.\n", out.String())

	order = nil
	out.Reset()
	status, err = RunSequence(context.Background(), Runners{Wandbox: wb}, []Toolchain{GCC()}, "src", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, "Running on GCC...\n", out.String())
}
