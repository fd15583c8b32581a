// Package tree builds the host's tree-view model from a parsed graph
// document: one group per top-level section (meta, nodes, edges), with
// node/edge children expanded down to their individual fields. IDs are
// chosen to match what internal/sourcesync maps back to YAML dot-paths, so
// a host can round-trip a tree selection into a text-cursor position and
// back.
package tree
