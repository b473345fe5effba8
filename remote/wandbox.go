package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/dyncast/errors"
)

// DefaultWandboxURL is the public compile endpoint.
const DefaultWandboxURL = "https://wandbox.org/api/compile.json"

// Wandbox runs jobs on wandbox.org.
type Wandbox struct {
	http    *http.Client
	baseURL string
}

// NewWandbox creates a client. An empty url selects DefaultWandboxURL and a
// nil client a default one with a generous timeout.
func NewWandbox(url string, client *http.Client) *Wandbox {
	if url == "" {
		url = DefaultWandboxURL
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Wandbox{http: client, baseURL: url}
}

type wandboxReq struct {
	Code      string `json:"code"`
	Compiler  string `json:"compiler"`
	Options   string `json:"options"`
	RawOption string `json:"compiler-option-raw,omitempty"`
}

type wandboxResp struct {
	Status          flexInt `json:"status"`
	CompilerMessage string  `json:"compiler_message"`
	ProgramOutput   string  `json:"program_output"`
	ProgramError    string  `json:"program_error"`
	Signal          string  `json:"signal"`
}

// flexInt accepts a JSON number or a numeric string; Wandbox sends the
// status as a string.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("status %s: %w", b, err)
	}
	f.value, f.set = v, true
	return nil
}

// Run posts the job and decodes the compile/run outcome. A response without a
// status counts as status -1.
func (w *Wandbox) Run(ctx context.Context, job Job) (Result, error) {
	reqBody := wandboxReq{
		Code:      job.Source,
		Compiler:  job.Compiler,
		Options:   job.Options,
		RawOption: strings.Join(job.RawFlags, "\n"),
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, errors.Remote("wandbox", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, bytes.NewReader(b))
	if err != nil {
		return Result{}, errors.Remote("wandbox", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := w.http.Do(req)
	if err != nil {
		return Result{}, errors.Remote("wandbox", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, errors.Remote("wandbox", unexpectedStatus(resp))
	}

	var out wandboxResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, errors.New(errors.PhaseCompile, errors.KindDecode).
			Path("wandbox").
			Cause(err).
			Detail("decode response").
			Build()
	}

	status := -1
	if out.Status.set {
		status = out.Status.value
	}
	Logger().Debug("wandbox run",
		zap.String("compiler", job.Compiler),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)))

	return Result{
		Status:          status,
		CompilerMessage: out.CompilerMessage,
		ProgramOutput:   out.ProgramOutput,
		ProgramError:    out.ProgramError,
		Signal:          out.Signal,
	}, nil
}

func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("unexpected status %s: %s", resp.Status, string(body))
}
