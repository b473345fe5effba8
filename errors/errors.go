package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseGenerate Phase = "generate" // random hierarchy construction
	PhaseLayout   Phase = "layout"   // subobject placement
	PhaseOracle   Phase = "oracle"   // expected-result tables
	PhaseEmit     Phase = "emit"     // C++ source rendering
	PhaseFlatten  Phase = "flatten"  // include inlining
	PhaseCompile  Phase = "compile"  // toolchain runners
	PhaseSweep    Phase = "sweep"    // seed scanning
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvariant     Kind = "invariant"
	KindCycle         Kind = "cycle"
	KindNotFound      Kind = "not_found"
	KindInvalidInput  Kind = "invalid_input"
	KindUnsupported   Kind = "unsupported"
	KindRemote        Kind = "remote"
	KindIO            Kind = "io"
	KindDecode        Kind = "decode"
	KindToolchainFail Kind = "toolchain_failed"
)

// Error is the structured error type used throughout dyncast
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Class  string
	ABI    string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Class != "" || e.ABI != "" {
		b.WriteString(": ")
		if e.Class != "" && e.ABI != "" {
			b.WriteString("class ")
			b.WriteString(e.Class)
			b.WriteString(", abi ")
			b.WriteString(e.ABI)
		} else if e.Class != "" {
			b.WriteString("class ")
			b.WriteString(e.Class)
		} else {
			b.WriteString("abi ")
			b.WriteString(e.ABI)
		}
	}

	if e.Detail != "" {
		if e.Class != "" || e.ABI != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasKind reports whether err's chain holds an *Error of the given kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		e, ok := As(err)
		if !ok {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the class or file path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Class sets the class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// ABI sets the ABI mode name
func (b *Builder) ABI(mode string) *Builder {
	b.err.ABI = mode
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Invariant reports an inconsistency inside the layout model itself.
// It never describes a compiler bug.
func Invariant(phase Phase, class string, detail string, args ...any) *Error {
	return New(phase, KindInvariant).Class(class).Detail(detail, args...).Build()
}

// Cycle creates an error for a base edge that would make a class its own ancestor
func Cycle(phase Phase, derived, base string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCycle,
		Path:   []string{derived, base},
		Class:  derived,
		Detail: fmt.Sprintf("%s already derives from %s", base, derived),
	}
}

// FileNotFound creates a missing-header error. Each includer is appended
// as an " in <file>" suffix, innermost first.
func FileNotFound(name string, includers ...string) *Error {
	detail := "file not found: " + name
	for _, inc := range includers {
		detail += " in " + inc
	}
	return &Error{
		Phase:  PhaseFlatten,
		Kind:   KindNotFound,
		Detail: detail,
		Value:  name,
	}
}

// In appends the including file to a not-found chain and returns the error.
func (e *Error) In(includer string) *Error {
	e.Detail += " in " + includer
	return e
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Remote creates a transport or protocol error for a compilation service
func Remote(service string, cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindRemote,
		Detail: service,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}
