package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/dyncast/errors"
)

// DefaultRextesterURL is the public run endpoint.
const DefaultRextesterURL = "http://rextester.com/rundotnet/api"

// Rextester language choice and arguments for Visual C++.
const (
	RextesterVisualCpp = "28"
	RextesterMSVCArgs  = "source_file.cpp -o a.exe"
)

var exitCodeRe = regexp.MustCompile(`^Process exit code is not 0: (\d+)`)

// Rextester runs jobs on rextester.com. Job.Compiler is the language choice
// and Job.Options the compiler arguments.
type Rextester struct {
	http    *http.Client
	baseURL string
}

// NewRextester creates a client with the same defaults as NewWandbox.
func NewRextester(u string, client *http.Client) *Rextester {
	if u == "" {
		u = DefaultRextesterURL
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Rextester{http: client, baseURL: u}
}

type rextesterResp struct {
	Errors *string `json:"Errors"`
	Result *string `json:"Result"`
}

// Run posts the job as a form. Rextester has no status field; the exit code
// is recovered from its "Process exit code is not 0" diagnostic.
func (r *Rextester) Run(ctx context.Context, job Job) (Result, error) {
	language := job.Compiler
	if language == "" {
		language = RextesterVisualCpp
	}
	form := url.Values{
		"Program":        {job.Source},
		"LanguageChoice": {language},
		"CompilerArgs":   {job.Options},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, errors.Remote("rextester", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.http.Do(req)
	if err != nil {
		return Result{}, errors.Remote("rextester", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, errors.Remote("rextester", unexpectedStatus(resp))
	}

	var out rextesterResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, errors.New(errors.PhaseCompile, errors.KindDecode).
			Path("rextester").
			Cause(err).
			Detail("decode response").
			Build()
	}

	var res Result
	if out.Errors != nil {
		res.CompilerMessage = *out.Errors
		res.Status = exitStatus(*out.Errors)
	}
	if out.Result != nil {
		res.ProgramOutput = *out.Result
	}
	Logger().Debug("rextester run", zap.Int("status", res.Status))
	return res, nil
}

// exitStatus returns the last exit code reported in errs, or 0.
func exitStatus(errs string) int {
	status := 0
	for _, line := range strings.Split(errs, "\n") {
		m := exitCodeRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			status = n
		}
	}
	return status
}
