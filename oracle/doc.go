// Package oracle turns computed layouts into the lookup tables a generated
// harness checks compiler conversions against.
//
// Per class (Tables):
//
//   - base offsets: each unambiguous public base type and where it sits
//   - cross casts: (from type, to type, from offset) -> to offset for every
//     unambiguous public parent/child pair
//   - self reachability: (type, offset) -> whether that subobject is a public
//     base of the complete object
//
// Per hierarchy (Hierarchy): the dynamic_cast legality matrix between every
// pair of classes and the as_X() conversion chains the harness walks.
//
// Every table is derived from layout results only; nothing here re-derives
// placement.
package oracle
