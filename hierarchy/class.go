package hierarchy

import (
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
)

// ClassID is a class's stable identity within its Hierarchy.
type ClassID int

// Edge is one direct-base declaration.
type Edge struct {
	Base    *Class
	Virtual bool
	Public  bool
}

// String renders the edge as it appears in a base-specifier list.
func (e Edge) String() string {
	s := "protected "
	if e.Public {
		s = "public "
	}
	if e.Virtual {
		s += "virtual "
	}
	return s + e.Base.name
}

// Class is a node of the declared graph.
type Class struct {
	name  string
	bases []Edge
	id    ClassID
}

func (c *Class) ID() ClassID  { return c.id }
func (c *Class) Name() string { return c.name }

// Bases returns the direct-base edges in declaration order.
func (c *Class) Bases() []Edge {
	out := make([]Edge, len(c.bases))
	copy(out, c.bases)
	return out
}

// NumBases returns the number of direct bases.
func (c *Class) NumBases() int { return len(c.bases) }

// Base returns the i-th direct-base edge.
func (c *Class) Base(i int) Edge { return c.bases[i] }

// AddBase declares base as a direct base of c. It is a no-op when c already
// has a direct edge to base, and fails when base already derives from c.
func (c *Class) AddBase(base *Class, virtual, public bool) error {
	if base == nil {
		return errors.InvalidInput(errors.PhaseGenerate, "nil base for "+c.name)
	}
	for _, e := range c.bases {
		if e.Base == base {
			return nil
		}
	}
	if base.HasAncestor(c) {
		return errors.Cycle(errors.PhaseGenerate, c.name, base.name)
	}
	c.bases = append(c.bases, Edge{Base: base, Virtual: virtual, Public: public})
	return nil
}

// HasAncestor reports whether target is reachable from c through declared
// edges of any kind. A class is its own ancestor.
func (c *Class) HasAncestor(target *Class) bool {
	if c == target {
		return true
	}
	for _, e := range c.bases {
		if e.Base.HasAncestor(target) {
			return true
		}
	}
	return false
}

// InheritanceOrderOf returns the declaration index of base among c's direct bases.
func (c *Class) InheritanceOrderOf(base *Class) (int, bool) {
	for i, e := range c.bases {
		if e.Base == base {
			return i, true
		}
	}
	return 0, false
}

// HasDirectPublicBase reports whether c declares base as a public direct base.
func (c *Class) HasDirectPublicBase(base *Class) bool {
	for _, e := range c.bases {
		if e.Base == base && e.Public {
			return true
		}
	}
	return false
}

// HasDirectVirtualBase reports whether c declares base as a virtual direct base.
func (c *Class) HasDirectVirtualBase(base *Class) bool {
	for _, e := range c.bases {
		if e.Base == base && e.Virtual {
			return true
		}
	}
	return false
}

// HasAnyVirtualBases reports whether some path from c crosses a virtual edge.
func (c *Class) HasAnyVirtualBases() bool {
	for _, e := range c.bases {
		if e.Virtual || e.Base.HasAnyVirtualBases() {
			return true
		}
	}
	return false
}

// VirtualBases collects every class reachable from c through at least one
// virtual edge, each once. The order is part of the layout contract:
//   - Itanium visits each direct edge, records its base if virtual, then
//     descends into it.
//   - Microsoft descends into each direct base first and records the edge's
//     base afterwards, so deeper virtual bases come first.
func (c *Class) VirtualBases(mode abi.Mode) []*Class {
	seen := make(map[*Class]bool)
	var acc []*Class
	c.collectVirtualBases(mode, seen, &acc)
	return acc
}

func (c *Class) collectVirtualBases(mode abi.Mode, seen map[*Class]bool, acc *[]*Class) {
	for _, e := range c.bases {
		if mode == abi.Microsoft {
			e.Base.collectVirtualBases(mode, seen, acc)
		}
		if e.Virtual && !seen[e.Base] {
			seen[e.Base] = true
			*acc = append(*acc, e.Base)
		}
		if mode != abi.Microsoft {
			e.Base.collectVirtualBases(mode, seen, acc)
		}
	}
}

// Shape summarises c's direct bases for abi slot reservation.
func (c *Class) Shape() abi.Shape {
	var s abi.Shape
	s.DirectBases = len(c.bases)
	for _, e := range c.bases {
		if e.Virtual {
			s.VirtualDirectBases++
		} else if e.Base.HasAnyVirtualBases() {
			s.NonVirtualBaseHasVirtualBases = true
		}
	}
	return s
}
