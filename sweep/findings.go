package sweep

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/wippyai/dyncast/errors"
)

// Finding is one failing seed.
type Finding struct {
	Time       time.Time `json:"time"`
	RunID      string    `json:"run_id"`
	Toolchains []string  `json:"toolchains"`
	Artifacts  []string  `json:"artifacts,omitempty"`
	Seed       uint64    `json:"seed"`
}

// Report appends findings as JSON lines. It is safe for concurrent use.
type Report struct {
	mu  sync.Mutex
	enc *json.Encoder
	c   io.Closer
}

// NewReport writes findings to w.
func NewReport(w io.Writer) *Report {
	return &Report{enc: json.NewEncoder(w)}
}

// OpenReport appends to the file at path, creating it if needed.
func OpenReport(path string) (*Report, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSweep, errors.KindIO, err, path)
	}
	r := NewReport(f)
	r.c = f
	return r, nil
}

// Add writes one finding.
func (r *Report) Add(f Finding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(f); err != nil {
		return errors.Wrap(errors.PhaseSweep, errors.KindIO, err, "findings report")
	}
	return nil
}

// Close closes the underlying file, if Report opened one.
func (r *Report) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// ReadFindings decodes a JSONL report.
func ReadFindings(rd io.Reader) ([]Finding, error) {
	dec := json.NewDecoder(rd)
	var out []Finding
	for {
		var f Finding
		if err := dec.Decode(&f); err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, errors.Wrap(errors.PhaseSweep, errors.KindDecode, err, "findings report")
		}
		out = append(out, f)
	}
}
