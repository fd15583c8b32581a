// Package mapping parses versioned mapping files — the declarative rules
// that turn extracted node/edge data into Mermaid text — into
// [go.jacobcolvin.com/graphdoc/internal/model.GraphMapping] values.
//
// Mapping files are YAML with kebab-case keys, decoded through
// github.com/goccy/go-yaml's struct-tag mapping (the same library
// internal/yamlcst uses for comment-preserving AST access), then
// normalized into the model package's structured, camelCase-field form.
// Versioning is explicit: each mapping file declares map.version, and
// only versions this package knows how to parse are accepted.
package mapping
