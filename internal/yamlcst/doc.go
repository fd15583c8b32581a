// Package yamlcst parses YAML into a comment-preserving concrete syntax
// tree and exposes byte-accurate range queries and splice-based edits over
// it.
//
// The central design constraint is that editing a single scalar must never
// rewrite a sibling or drop a comment. A naive decode-mutate-encode round
// trip through a Go struct loses both. Instead, every mutation here locates
// the byte range of the target node within the original source (by walking
// [github.com/goccy/go-yaml/ast] and collecting token positions) and
// splices a freshly encoded replacement into that range, leaving everything
// outside it untouched. There is no dependency on any structural "patch" or
// "path replace" API from the underlying library: the exact shape of such
// an API is not something this package can verify without running the
// toolchain, so the splice is built entirely on primitives (token
// positions, [parser.ParseBytes], a scalar encoder) that are exercised
// elsewhere in this module already.
//
// A [Parsed] value is cheap and short-lived: callers reparse after every
// mutation rather than trying to keep a CST in sync with edits applied to
// it, which sidesteps an entire class of tree-patching bugs at the cost of
// re-parsing on every edit. Documents in this domain are small enough
// (authored by hand) that this is not a performance concern.
package yamlcst
