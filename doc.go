// Package dyncast models how C++ compilers lay out objects under multiple,
// virtual and diamond inheritance, and derives from that model a ground-truth
// oracle for every dynamic_cast between the classes of a random hierarchy.
//
// # Architecture Overview
//
// Data flows one way through the packages:
//
//	dyncast/          Root package: Build ties a seed to a Model
//	├── abi/          Itanium and Microsoft slot rules, pointer size
//	├── hierarchy/    Declared class graph and the seeded generator
//	├── layout/       Subobject placement and public-path reachability
//	├── oracle/       Base-offset, cross-cast and self-reachability tables
//	├── emit/         C++ rendering of a Model (headers, typeinfo, harness)
//	├── flatten/      Single translation unit flattening of local includes
//	├── remote/       Wandbox, Rextester and local compiler runners
//	├── sweep/        Seed sweep across toolchains, metrics, artifacts
//	├── config/       YAML, .env and environment configuration
//	├── errors/       Structured error types
//	└── cmd/dyncast/  CLI: generate, layout, flatten, run, sweep, explore
//
// # Quick Start
//
//	m, err := dyncast.Build(42, abi.ForMode(abi.Itanium), hierarchy.DefaultGenerateOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range m.Classes() {
//	    l, _ := m.Layout(c)
//	    fmt.Print(l)
//	}
//
// # Determinism
//
// Identical (seed, ABI target, options) input always yields byte-identical
// layouts, tables and emitted sources, so a failing seed found by a sweep
// can be replayed later on any single toolchain.
//
// # Thread Safety
//
// A Model is read-only once built and safe to share. layout.Engine, used
// internally by Build, is not safe for concurrent use.
package dyncast
