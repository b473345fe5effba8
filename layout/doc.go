// Package layout computes the physical subobject layout of a class under a
// selected ABI and answers reachability questions over it.
//
// A Layout is an arena: a flat, ordered list of Subobjects, one per physically
// distinct base instance. Containment links (DirectSubobjectOf and
// DirectSuperobjectOf) are indices into that arena, so a virtual base shared by
// several owners is still a single entry.
//
// # Placement
//
// Placement runs in two phases per root. First every non-virtual base is
// placed depth-first in declaration order, each class reserving its own ABI
// slots after its non-virtual bases. Then the root's transitive virtual bases
// are appended, each once, in the order hierarchy.Class.VirtualBases returns.
//
// # Usage
//
//	eng := layout.NewEngine(abi.ForMode(abi.Itanium))
//	l, err := eng.Layout(class)
//	// l.Size(), l.Subobjects(), l.UnambiguousPublicBases() available
//
// An Engine memoizes one Layout per root class and is not safe for concurrent
// use. A returned Layout is read-only and may be shared freely.
package layout
