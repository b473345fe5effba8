// Package remote compiles and runs a flattened translation unit on a
// toolchain and reports the outcome.
//
// Runners:
//
//   - Wandbox: GCC and Clang through the wandbox.org compile API
//   - Rextester: MSVC through the rextester.com run API
//   - Local: an installed compiler driven through os/exec
//   - Cached: an LRU decorator over any Runner
//
// A nonzero Result.Status is an ordinary outcome, the signal a sweep looks
// for. Errors are reserved for transport and protocol failures.
package remote
