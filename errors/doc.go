// Package errors provides structured error types for dyncast.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the class path, the class and ABI involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindInvariant).
//		Path("Class7", "Class3").
//		Class("Class3").
//		ABI("itanium").
//		Detail("subobject %d placed twice", 4).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Cycle(errors.PhaseGenerate, "Class4", "Class2")
//	err := errors.FileNotFound("things.gen.h", "/tmp/harness.gen.cc")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
