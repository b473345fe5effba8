package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseLayout,
				Kind:   KindInvariant,
				Path:   []string{"Class9", "Class4", "Class1"},
				Class:  "Class1",
				ABI:    "microsoft",
				Detail: "placed twice",
			},
			contains: []string{"[layout]", "invariant", "Class9.Class4.Class1", "class Class1", "abi microsoft", "placed twice"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseOracle,
				Kind:  KindNotFound,
			},
			contains: []string{"[oracle]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCompile,
				Kind:   KindRemote,
				Detail: "wandbox",
				Cause:  errors.New("connection refused"),
			},
			contains: []string{"[compile]", "remote", "wandbox", "caused by", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseFlatten,
		Kind:  KindIO,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseGenerate,
		Kind:  KindCycle,
		Path:  []string{"Class2"},
	}

	if !err.Is(&Error{Phase: PhaseGenerate, Kind: KindCycle}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseLayout, Kind: KindCycle}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseGenerate, Kind: KindInvariant}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseGenerate, Kind: KindCycle}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseOracle, KindInvariant).
		Path("Class5", "Class2").
		Class("Class2").
		ABI("itanium").
		Value(24).
		Cause(cause).
		Detail("offset %d recorded as %s", 24, "both").
		Build()

	if err.Phase != PhaseOracle {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseOracle)
	}
	if err.Kind != KindInvariant {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvariant)
	}
	if len(err.Path) != 2 || err.Path[0] != "Class5" || err.Path[1] != "Class2" {
		t.Errorf("Path = %v, want [Class5 Class2]", err.Path)
	}
	if err.Class != "Class2" {
		t.Errorf("Class = %v, want 'Class2'", err.Class)
	}
	if err.ABI != "itanium" {
		t.Errorf("ABI = %v, want 'itanium'", err.ABI)
	}
	if err.Value != 24 {
		t.Errorf("Value = %v, want 24", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "offset 24 recorded as both" {
		t.Errorf("Detail = %v, want 'offset 24 recorded as both'", err.Detail)
	}
}

func TestFileNotFoundChain(t *testing.T) {
	err := FileNotFound("missing.h", "/src/inner.h")
	err.In("/src/outer.cc")

	want := "file not found: missing.h in /src/inner.h in /src/outer.cc"
	if err.Detail != want {
		t.Errorf("Detail = %q, want %q", err.Detail, want)
	}
	if err.Kind != KindNotFound || err.Phase != PhaseFlatten {
		t.Errorf("got %s/%s, want flatten/not_found", err.Phase, err.Kind)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Invariant", func(t *testing.T) {
		err := Invariant(PhaseOracle, "Class3", "offset %d unrecorded", 40)
		if err.Kind != KindInvariant {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvariant)
		}
		if !strings.Contains(err.Error(), "offset 40 unrecorded") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		err := Cycle(PhaseGenerate, "Class1", "Class6")
		if err.Kind != KindCycle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCycle)
		}
		if err.Class != "Class1" {
			t.Errorf("Class = %v, want Class1", err.Class)
		}
	})

	t.Run("Remote", func(t *testing.T) {
		err := Remote("rextester", errors.New("timeout"))
		if !HasKind(err, KindRemote) {
			t.Error("HasKind should find remote")
		}
		if HasKind(err, KindIO) {
			t.Error("HasKind should not find io")
		}
	})
}

func TestAs(t *testing.T) {
	inner := NotFound(PhaseOracle, "class", "Class11")
	wrapped := Wrap(PhaseEmit, KindInvariant, inner, "render typeinfo")

	e, ok := As(wrapped)
	if !ok || e.Phase != PhaseEmit {
		t.Fatalf("As returned %v, %v", e, ok)
	}
	if !HasKind(wrapped, KindNotFound) {
		t.Error("HasKind should walk the cause chain")
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Error("As should fail for plain errors")
	}
}
