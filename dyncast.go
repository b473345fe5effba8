package dyncast

import (
	"github.com/wippyai/dyncast/abi"
	"github.com/wippyai/dyncast/errors"
	"github.com/wippyai/dyncast/hierarchy"
	"github.com/wippyai/dyncast/layout"
	"github.com/wippyai/dyncast/oracle"
)

// Model is everything known about one seed under one ABI target: the
// generated hierarchy, every class's layout and the oracle tables.
type Model struct {
	hierarchy *hierarchy.Hierarchy
	oracle    *oracle.Hierarchy
	seed      uint64
	target    abi.Target
}

// Build generates the hierarchy for seed and derives its layouts and tables.
// opts.Seed is overridden by seed.
func Build(seed uint64, target abi.Target, opts hierarchy.GenerateOptions) (*Model, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	opts.Seed = seed
	h, err := hierarchy.Generate(opts)
	if err != nil {
		return nil, err
	}
	return FromHierarchy(seed, target, h)
}

// FromHierarchy derives a Model from an already built hierarchy.
func FromHierarchy(seed uint64, target abi.Target, h *hierarchy.Hierarchy) (*Model, error) {
	if h == nil {
		return nil, errors.InvalidInput(errors.PhaseOracle, "nil hierarchy")
	}
	o, err := oracle.Build(h, layout.NewEngine(target))
	if err != nil {
		return nil, err
	}
	return &Model{
		hierarchy: h,
		oracle:    o,
		seed:      seed,
		target:    target,
	}, nil
}

// Seed returns the seed the model was generated from.
func (m *Model) Seed() uint64 { return m.seed }

// Target returns the ABI target.
func (m *Model) Target() abi.Target { return m.target }

// Hierarchy returns the declared class graph.
func (m *Model) Hierarchy() *hierarchy.Hierarchy { return m.hierarchy }

// Oracle returns the cross-class oracle.
func (m *Model) Oracle() *oracle.Hierarchy { return m.oracle }

// Classes returns the classes in declaration order.
func (m *Model) Classes() []*hierarchy.Class { return m.hierarchy.Classes() }

// Tables returns the oracle tables of c.
func (m *Model) Tables(c *hierarchy.Class) (*oracle.Tables, error) {
	if c == nil {
		return nil, errors.InvalidInput(errors.PhaseOracle, "nil class")
	}
	t, ok := m.oracle.For(c)
	if !ok {
		return nil, errors.NotFound(errors.PhaseOracle, "class", c.Name())
	}
	return t, nil
}

// Layout returns the layout of c.
func (m *Model) Layout(c *hierarchy.Class) (*layout.Layout, error) {
	t, err := m.Tables(c)
	if err != nil {
		return nil, err
	}
	return t.Layout(), nil
}
