package hierarchy

import (
	"github.com/wippyai/dyncast/errors"
)

// Hierarchy owns a set of classes in creation order.
type Hierarchy struct {
	classes []*Class
	byName  map[string]*Class
}

// New creates an empty hierarchy
func New() *Hierarchy {
	return &Hierarchy{byName: make(map[string]*Class)}
}

// NewClass creates a class with no bases. Names must be unique.
func (h *Hierarchy) NewClass(name string) (*Class, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseGenerate, "class name cannot be empty")
	}
	if _, exists := h.byName[name]; exists {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
			Class(name).
			Detail("duplicate class name").
			Build()
	}
	c := &Class{name: name, id: ClassID(len(h.classes))}
	h.classes = append(h.classes, c)
	h.byName[name] = c
	return c, nil
}

// MustClass is NewClass for hand-written hierarchies in tests and examples.
func (h *Hierarchy) MustClass(name string, bases ...Edge) *Class {
	c, err := h.NewClass(name)
	if err != nil {
		panic(err)
	}
	for _, e := range bases {
		if err := c.AddBase(e.Base, e.Virtual, e.Public); err != nil {
			panic(err)
		}
	}
	return c
}

// Classes returns all classes in creation order.
func (h *Hierarchy) Classes() []*Class {
	out := make([]*Class, len(h.classes))
	copy(out, h.classes)
	return out
}

// Len returns the number of classes.
func (h *Hierarchy) Len() int { return len(h.classes) }

// Lookup finds a class by name.
func (h *Hierarchy) Lookup(name string) (*Class, bool) {
	c, ok := h.byName[name]
	return c, ok
}

// ByID returns the class with the given id.
func (h *Hierarchy) ByID(id ClassID) (*Class, bool) {
	if id < 0 || int(id) >= len(h.classes) {
		return nil, false
	}
	return h.classes[id], true
}

// Edge constructors for MustClass.

func Public(base *Class) Edge           { return Edge{Base: base, Public: true} }
func Protected(base *Class) Edge        { return Edge{Base: base} }
func PublicVirtual(base *Class) Edge    { return Edge{Base: base, Virtual: true, Public: true} }
func ProtectedVirtual(base *Class) Edge { return Edge{Base: base, Virtual: true} }
