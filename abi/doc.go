// Package abi describes the two C++ object-layout conventions dyncast models.
//
// Itanium is the convention used by GCC and Clang; Microsoft is the MSVC
// convention. The layout engine never branches on a process-wide switch: every
// layout and virtual-base query takes a Target, so both modes can be computed
// side by side in one process.
//
// # Slot Rules
//
// After a class's non-virtual bases are placed, the class reserves its own
// pointer-sized slots:
//   - Itanium: a vptr when every direct base is virtual (or there are none),
//     then one data slot.
//   - Microsoft: a vfptr when there are no direct bases, a vbptr when some
//     direct base is virtual and no non-virtual direct base already carries
//     virtual bases, then one data slot.
package abi
