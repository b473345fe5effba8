package oracle

import (
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/hierarchy"
	"github.com/wippyai/dyncast/layout"
)

// Cast is one cell of the dynamic_cast legality matrix.
type Cast struct {
	From    *hierarchy.Class
	To      *hierarchy.Class
	Allowed bool
}

// Path is a chain of as_X() conversions starting at From. Steps holds each
// class converted to, in order; an empty path is From itself.
type Path struct {
	From  *hierarchy.Class
	Steps []*hierarchy.Class
}

// Static returns the static type at the end of the path.
func (p Path) Static() *hierarchy.Class {
	if len(p.Steps) == 0 {
		return p.From
	}
	return p.Steps[len(p.Steps)-1]
}

// Hierarchy holds the tables of every class and the cross-class relations.
type Hierarchy struct {
	classes []*hierarchy.Class
	target  abi.Target
	tables  []*Tables
	index   map[*hierarchy.Class]int
	casts   [][]bool
}

// Build lays out every class of h with eng and derives all tables.
func Build(h *hierarchy.Hierarchy, eng *layout.Engine) (*Hierarchy, error) {
	if h == nil || eng == nil {
		return nil, errors.InvalidInput(errors.PhaseOracle, "nil hierarchy or engine")
	}
	o := &Hierarchy{
		classes: h.Classes(),
		target:  eng.Target(),
		index:   make(map[*hierarchy.Class]int),
	}
	for i, c := range o.classes {
		l, err := eng.Layout(c)
		if err != nil {
			return nil, err
		}
		t, err := ForLayout(l)
		if err != nil {
			return nil, err
		}
		o.tables = append(o.tables, t)
		o.index[c] = i
	}

	o.casts = make([][]bool, len(o.classes))
	for i, from := range o.classes {
		o.casts[i] = make([]bool, len(o.classes))
		for j, to := range o.classes {
			o.casts[i][j] = o.decide(o.tables[i].layout, from, to)
		}
	}
	return o, nil
}

// decide applies, in order: identity, ambiguity, public base, non-public base.
// Anything else is an unrelated or derived type, which dynamic_cast accepts
// at compile time.
func (o *Hierarchy) decide(l *layout.Layout, from, to *hierarchy.Class) bool {
	if from == to {
		return true
	}
	if l.IsAmbiguousBase(to) {
		return false
	}
	for _, so := range l.PublicBases() {
		if so.Class == to {
			return true
		}
	}
	for _, so := range l.NonPublicBases() {
		if so.Class == to {
			return false
		}
	}
	return true
}

// Target returns the ABI target the tables follow.
func (o *Hierarchy) Target() abi.Target { return o.target }

// Classes returns the classes in declaration order.
func (o *Hierarchy) Classes() []*hierarchy.Class {
	out := make([]*hierarchy.Class, len(o.classes))
	copy(out, o.classes)
	return out
}

// Tables returns every class's tables in declaration order.
func (o *Hierarchy) Tables() []*Tables {
	out := make([]*Tables, len(o.tables))
	copy(out, o.tables)
	return out
}

// For returns the tables of c.
func (o *Hierarchy) For(c *hierarchy.Class) (*Tables, bool) {
	i, ok := o.index[c]
	if !ok {
		return nil, false
	}
	return o.tables[i], true
}

// CanDynamicCast reports whether dynamic_cast<to*>(from*) is well-formed.
// Classes outside the hierarchy are never castable.
func (o *Hierarchy) CanDynamicCast(from, to *hierarchy.Class) bool {
	i, ok := o.index[from]
	if !ok {
		return false
	}
	j, ok := o.index[to]
	if !ok {
		return false
	}
	return o.casts[i][j]
}

// Casts returns the full matrix row by row.
func (o *Hierarchy) Casts() []Cast {
	out := make([]Cast, 0, len(o.classes)*len(o.classes))
	for i, from := range o.classes {
		for j, to := range o.classes {
			out = append(out, Cast{From: from, To: to, Allowed: o.casts[i][j]})
		}
	}
	return out
}

// ConvertibleBases returns the direct bases of c that c can name without
// ambiguity, in declaration order. These are the as_X() accessors c gets.
func (o *Hierarchy) ConvertibleBases(c *hierarchy.Class) []hierarchy.Edge {
	t, ok := o.For(c)
	if !ok {
		return nil
	}
	var out []hierarchy.Edge
	for _, e := range c.Bases() {
		if !t.layout.IsAmbiguousBase(e.Base) {
			out = append(out, e)
		}
	}
	return out
}

// BasePaths returns every as_X() chain from c, depth-first in declaration
// order, starting with the empty path. Each step must be unambiguous in the
// class it is taken from.
func (o *Hierarchy) BasePaths(c *hierarchy.Class) []Path {
	var out []Path
	var walk func(cur *hierarchy.Class, steps []*hierarchy.Class)
	walk = func(cur *hierarchy.Class, steps []*hierarchy.Class) {
		out = append(out, Path{From: c, Steps: steps})
		for _, e := range o.ConvertibleBases(cur) {
			next := make([]*hierarchy.Class, len(steps)+1)
			copy(next, steps)
			next[len(steps)] = e.Base
			walk(e.Base, next)
		}
	}
	if _, ok := o.index[c]; ok {
		walk(c, nil)
	}
	return out
}
