// Package emit renders a dyncast.Model as C++ sources.
//
// Three files are produced:
//
//	things.gen.h     class definitions, as_X() accessors, sizeof assertions
//	things.gen.cc    per-class typeinfo lookup functions and the dispatcher
//	harness.gen.cc   the test or benchmark driver walking every as_X() chain
//
// All values (sizes, offsets, public/non-public classification, cast
// legality) come from the model's oracle tables.
package emit
