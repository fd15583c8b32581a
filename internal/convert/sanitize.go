package convert

import "strings"

// idSanitizer rewrites a YAML node key into a Mermaid-safe identifier.
// Grounded in the id sanitizers of other_examples' Mermaid renderers, which
// replace the characters YAML commonly allows but Mermaid flowchart/graph
// syntax does not.
var idSanitizer = strings.NewReplacer("-", "_")

// familiesSkippingSanitize are the diagram families whose own grammar
// already tolerates the characters node keys tend to contain.
var familiesSkippingSanitize = map[string]bool{
	"erDiagram":       true,
	"stateDiagram-v2": true,
}

// SanitizeID rewrites id for safe use as a Mermaid identifier in
// mermaidType's syntax. It is idempotent: sanitizing an already-sanitized
// id returns it unchanged.
func SanitizeID(mermaidType, id string) string {
	if familiesSkippingSanitize[mermaidType] {
		return id
	}

	return idSanitizer.Replace(id)
}
