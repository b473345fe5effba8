package flatten

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wippyai/dyncast/errors"
)

var (
	includeRe = regexp.MustCompile(`^\s*#\s*include\s+"(.*)"`)
	pragmaRe  = regexp.MustCompile(`^#pragma once`)
)

// DefaultCacheSize bounds the number of files whose lines are kept between
// Flatten calls.
const DefaultCacheSize = 256

// Flattener inlines local includes. It is safe for concurrent use.
type Flattener struct {
	readFile    func(string) ([]byte, error)
	cache       *lru.Cache[string, []string]
	overlay     map[string]string
	includeDirs []string
	cacheSize   int
}

// Option configures a Flattener.
type Option func(*Flattener)

// WithOverlay serves the given files from memory instead of disk. Keys are
// resolved to absolute paths.
func WithOverlay(files map[string]string) Option {
	return func(f *Flattener) {
		for name, content := range files {
			f.overlay[absPath(name)] = content
		}
	}
}

// WithCacheSize changes the file cache capacity.
func WithCacheSize(n int) Option {
	return func(f *Flattener) {
		f.cacheSize = n
	}
}

// WithReadFile replaces os.ReadFile for files not in the overlay.
func WithReadFile(read func(string) ([]byte, error)) Option {
	return func(f *Flattener) {
		f.readFile = read
	}
}

// New creates a Flattener searching includeDirs, in order, for headers.
func New(includeDirs []string, opts ...Option) (*Flattener, error) {
	f := &Flattener{
		readFile:  os.ReadFile,
		overlay:   make(map[string]string),
		cacheSize: DefaultCacheSize,
	}
	for _, d := range includeDirs {
		f.includeDirs = append(f.includeDirs, absPath(d))
	}
	for _, opt := range opts {
		opt(f)
	}
	cache, err := lru.New[string, []string](f.cacheSize)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFlatten, errors.KindInvalidInput, err, "file cache")
	}
	f.cache = cache
	return f, nil
}

// Overlay returns a Flattener that also serves files from memory, on top of
// any overlay f already has. The file cache is shared with f.
func (f *Flattener) Overlay(files map[string]string) *Flattener {
	cp := *f
	cp.overlay = make(map[string]string, len(f.overlay)+len(files))
	for k, v := range f.overlay {
		cp.overlay[k] = v
	}
	for name, content := range files {
		cp.overlay[absPath(name)] = content
	}
	return &cp
}

// Locate finds name in the configured include directories.
func (f *Flattener) Locate(name string) (string, bool) {
	if filepath.IsAbs(name) {
		return f.locate(filepath.Base(name), []string{filepath.Dir(name)})
	}
	return f.locate(name, f.includeDirs)
}

// Flatten concatenates files with every local include inlined. Files already
// emitted earlier in the same call, including as headers, are skipped.
func (f *Flattener) Flatten(files ...string) (string, error) {
	seen := make(map[string]bool)
	var out strings.Builder
	for _, name := range files {
		if err := f.preprocess(&out, absPath(name), f.includeDirs, seen); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func (f *Flattener) preprocess(out *strings.Builder, name string, dirs []string, seen map[string]bool) error {
	if seen[name] {
		return nil
	}
	seen[name] = true

	lines, err := f.lines(name)
	if err != nil {
		return err
	}

	local := make([]string, len(dirs), len(dirs)+1)
	copy(local, dirs)
	local = append(local, filepath.Dir(name))

	for _, line := range lines {
		if m := includeRe.FindStringSubmatch(line); m != nil {
			header, ok := f.locate(m[1], local)
			if !ok {
				return errors.FileNotFound(m[1], name)
			}
			if err := f.preprocess(out, header, local, seen); err != nil {
				if e, ok := errors.As(err); ok && e.Kind == errors.KindNotFound {
					return e.In(name)
				}
				return err
			}
			continue
		}
		if pragmaRe.MatchString(line) {
			continue
		}
		out.WriteString(strings.TrimRight(line, " \t\r\n\v\f"))
		out.WriteByte('\n')
	}
	return nil
}

func (f *Flattener) locate(name string, dirs []string) (string, bool) {
	for _, d := range dirs {
		full := filepath.Join(d, name)
		if _, ok := f.overlay[full]; ok {
			return full, true
		}
		if _, err := os.Stat(full); err == nil {
			return full, true
		}
	}
	return "", false
}

func (f *Flattener) lines(name string) ([]string, error) {
	if content, ok := f.overlay[name]; ok {
		return splitLines(content), nil
	}
	if cached, ok := f.cache.Get(name); ok {
		return cached, nil
	}
	data, err := f.readFile(name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.FileNotFound(name)
		}
		return nil, errors.New(errors.PhaseFlatten, errors.KindIO).
			Path(name).
			Cause(err).
			Detail("read source").
			Build()
	}
	lines := splitLines(string(data))
	f.cache.Add(name, lines)
	return lines, nil
}

// Cached reports how many files the cache holds.
func (f *Flattener) Cached() int { return f.cache.Len() }

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
