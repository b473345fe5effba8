// Package flatten produces a single translation unit from a set of C++
// sources by inlining their local includes.
//
// Only quoted includes (#include "x.h") are inlined; system includes pass
// through unchanged. Each file is emitted at most once per Flatten call, so
// include cycles terminate, and "#pragma once" lines are dropped. A header is
// searched for in the configured include directories, then in the directory
// of every file on the include chain.
//
// A missing header fails with a chain naming each includer:
//
//	file not found: missing.h in /src/b.h in /src/a.cc
package flatten
