// Package hierarchy is the declared inheritance graph: classes and their
// ordered direct-base edges, each tagged virtual or not and public or
// protected.
//
// The graph stays acyclic and never holds two direct edges from one class to
// the same base. Classes are mutated only while a Hierarchy is being built;
// layouts computed from them assume the graph no longer changes.
//
//	h := hierarchy.New()
//	a := h.MustClass("A")
//	b := h.MustClass("B", hierarchy.PublicVirtual(a)) // struct B : public virtual A
package hierarchy
