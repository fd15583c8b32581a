// Package nodeeditor builds the node-editor form shown when a node is
// selected: a resolved field schema plus the node's current values, cached
// per (graph type id, version) since resolving a schema into a field tree
// is the expensive step and a graph type is immutable once registered.
package nodeeditor
