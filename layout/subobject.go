package layout

import (
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/hierarchy"
)

// Subobject is one placed instance of a class inside a root's layout.
type Subobject struct {
	Class *hierarchy.Class
	// DirectSubobjectOf holds the arena indices of the subobjects whose
	// layout directly contains this one. Only virtual bases have more than one.
	DirectSubobjectOf []int
	// DirectSuperobjectOf is the inverse of DirectSubobjectOf, ordered by the
	// owner's declared base order.
	DirectSuperobjectOf []int
	Index               int
	Offset              int
	Virtual             bool
}

// Name returns the declared type name of the subobject.
func (s Subobject) Name() string { return s.Class.Name() }

// Pair is a (parent, child) pair of arena indices where parent has a public
// path down to child.
type Pair struct {
	Parent int
	Child  int
}

// Layout is the complete, immutable layout of one root class.
type Layout struct {
	root       *hierarchy.Class
	target     abi.Target
	subs       []Subobject
	size       int
	publicTo   [][]bool
	classCount map[*hierarchy.Class]int
	pairs      []Pair
	ambiguous  map[Pair]bool
}

// Root returns the class this layout was computed for.
func (l *Layout) Root() *hierarchy.Class { return l.root }

// Target returns the ABI target the layout follows.
func (l *Layout) Target() abi.Target { return l.target }

// Size is the full object size in bytes.
func (l *Layout) Size() int { return l.size }

// Len returns the number of subobjects, root included.
func (l *Layout) Len() int { return len(l.subs) }

// Subobject returns the i-th subobject. Its slices must not be modified.
func (l *Layout) Subobject(i int) Subobject { return l.subs[i] }

// RootSubobject returns the subobject for the root class itself.
func (l *Layout) RootSubobject() Subobject { return l.subs[0] }

// Subobjects returns every subobject in placement order, root first.
func (l *Layout) Subobjects() []Subobject {
	out := make([]Subobject, len(l.subs))
	copy(out, l.subs)
	return out
}

// Count returns how many subobjects of class c the layout holds.
func (l *Layout) Count(c *hierarchy.Class) int { return l.classCount[c] }

// IsAmbiguousBase reports whether c occurs in at least two subobjects, which
// makes it unaddressable as a conversion target.
func (l *Layout) IsAmbiguousBase(c *hierarchy.Class) bool { return l.classCount[c] >= 2 }
