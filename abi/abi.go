package abi

import (
	"strings"

	"github.com/wippyai/dyncast/errors"
)

// Mode selects a layout convention.
type Mode uint8

const (
	Itanium Mode = iota
	Microsoft
)

func (m Mode) String() string {
	switch m {
	case Itanium:
		return "itanium"
	case Microsoft:
		return "microsoft"
	default:
		return "unknown"
	}
}

// ParseMode accepts "itanium", "microsoft" and the usual toolchain aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "itanium", "gcc", "clang", "g++", "":
		return Itanium, nil
	case "microsoft", "msvc", "ms":
		return Microsoft, nil
	}
	return Itanium, errors.InvalidInput(errors.PhaseConfig, "unknown abi mode "+s)
}

// DefaultPointerSize is the slot size of the LP64 and LLP64 targets both
// conventions are exercised on.
const DefaultPointerSize = 8

// Target is a layout convention plus the size of one pointer slot.
type Target struct {
	Mode        Mode
	PointerSize int
}

// ForMode returns a Target with the default pointer size.
func ForMode(m Mode) Target {
	return Target{Mode: m, PointerSize: DefaultPointerSize}
}

func (t Target) String() string {
	return t.Mode.String()
}

// Validate rejects pointer sizes no real target uses.
func (t Target) Validate() error {
	switch t.PointerSize {
	case 4, 8:
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			ABI(t.Mode.String()).
			Value(t.PointerSize).
			Detail("pointer size %d not supported", t.PointerSize).
			Build()
	}
	if t.Mode != Itanium && t.Mode != Microsoft {
		return errors.InvalidInput(errors.PhaseConfig, "unknown abi mode")
	}
	return nil
}

// Slot returns the byte size of one pointer slot.
func (t Target) Slot() int {
	if t.PointerSize == 0 {
		return DefaultPointerSize
	}
	return t.PointerSize
}
