// Package convert implements the conversion engine: parsing a graph
// document, extracting its nodes and edges according to a graph type's
// mapping, and rendering Mermaid source together with the source maps a
// host uses to sync selection between the diagram, the tree view, and the
// YAML text.
//
// Conversion never aborts partway through. Schema validation errors are
// collected and returned alongside a best-effort render; a misbehaving
// transform script falls back to the element's default rendering; an
// unknown shape falls back to a plain rectangle. The one thing that does
// stop conversion early is a YAML document that fails to parse at all, in
// which case the result carries only the parse error and no Mermaid
// source.
package convert
