// Package model holds the data types shared across graph document
// conversion: graph type registration, mapping rules, extracted node/edge
// data, source ranges, and the field-schema tree used to drive the node
// editor form.
//
// Nothing in this package parses YAML or renders Mermaid; it exists so that
// the yamlcst, schema, mapping, registry, transform, convert, tree, and
// nodeeditor packages can agree on a single vocabulary without importing
// one another.
package model
