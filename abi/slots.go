package abi

// Shape summarises a class's direct bases for slot reservation.
type Shape struct {
	DirectBases        int
	VirtualDirectBases int
	// NonVirtualBaseHasVirtualBases is true when some non-virtual direct
	// base has virtual bases of its own (and therefore its own vbptr).
	NonVirtualBaseHasVirtualBases bool
}

// SlotKind names one pointer-sized slot a class reserves for itself.
type SlotKind uint8

const (
	SlotVptr SlotKind = iota
	SlotVfptr
	SlotVbptr
	SlotData
)

func (k SlotKind) String() string {
	switch k {
	case SlotVptr:
		return "vptr"
	case SlotVfptr:
		return "vfptr"
	case SlotVbptr:
		return "vbptr"
	default:
		return "data"
	}
}

// OwnSlots lists the slots a class with the given shape reserves after its
// non-virtual bases, in placement order.
//
// The Itanium rule approximates primary-base selection: a class gets its own
// vptr only when it has no non-virtual base to share one with. That holds for
// generated hierarchies but is not the full ABI algorithm.
func (t Target) OwnSlots(s Shape) []SlotKind {
	var slots []SlotKind
	switch t.Mode {
	case Microsoft:
		if s.DirectBases == 0 {
			slots = append(slots, SlotVfptr)
		}
		if s.VirtualDirectBases > 0 && !s.NonVirtualBaseHasVirtualBases {
			slots = append(slots, SlotVbptr)
		}
	default:
		// No non-virtual primary base to share a vptr with.
		if s.VirtualDirectBases == s.DirectBases {
			slots = append(slots, SlotVptr)
		}
	}
	return append(slots, SlotData)
}

// OwnSize is the byte size of OwnSlots.
func (t Target) OwnSize(s Shape) int {
	return len(t.OwnSlots(s)) * t.Slot()
}
