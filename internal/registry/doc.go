// Package registry tracks the set of known graph types and resolves which
// one applies to a given file path.
//
// Matching is glob-based using github.com/bmatcuk/doublestar/v4, which
// understands "**" the way the rest of the retrieval pack's manifest-driven
// tools do, rather than a hand-rolled pattern matcher. A file may match
// multiple versions of the same graph type id; [Registry.GetForFile]
// always returns the highest version that matches.
package registry
