// Package sweep scans seeds upward, replaying each seed's generated harness on
// every configured toolchain and recording the seeds some toolchain fails.
//
// Per seed, one model is built per ABI the toolchains need; the toolchains
// sharing a model run concurrently. A failing seed is printed as
//
//	gcc+clang: 17
//
// appended to the JSONL findings report, and its flattened sources are kept
// in the artifact store under <run-id>/<seed>/<toolchain>.cc.
package sweep
