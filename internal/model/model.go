package model

import "github.com/google/jsonschema-go/jsonschema"

// SourceRange is a byte range into the original YAML document text.
type SourceRange struct {
	StartOffset int
	EndOffset   int
}

// Len reports the number of bytes spanned by r.
func (r SourceRange) Len() int {
	return r.EndOffset - r.StartOffset
}

// NodeData is one extracted graph node.
type NodeData struct {
	// ID is the key used in the source document and in NodeMap; it is never
	// sanitized.
	ID string
	// Shape is the visual Mermaid shape key (e.g. "rectangle", "decision").
	Shape string
	// Type is the domain-semantic node type (e.g. "start", "decision").
	Type string
	// Subtype is an optional secondary classifier, passed through to
	// transform scripts.
	Subtype string
	// Fields holds every other property of the node as decoded from YAML.
	Fields map[string]any
}

// EdgeData is one extracted graph edge.
type EdgeData struct {
	From   string
	To     string
	Fields map[string]any
}

// ValidationSeverity distinguishes blocking problems from advisory ones.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationError is one schema or parse problem surfaced to the host.
// Path is a "/"-rooted JSON Pointer, or "/" for the document root.
type ValidationError struct {
	Path     string             `json:"path"`
	Message  string             `json:"message"`
	Severity ValidationSeverity `json:"severity"`
}

// ConversionResult is the output of converting one YAML document into
// Mermaid source, together with the maps needed to sync selection between
// the rendered diagram, the tree view, and the YAML text.
type ConversionResult struct {
	MermaidSource string
	Errors        []ValidationError
	NodeMap       map[string]SourceRange
	EdgeMap       map[int]SourceRange
}

// FieldKind classifies a FieldSchema node for the node-editor form.
type FieldKind string

const (
	KindScalar FieldKind = "scalar"
	KindEnum   FieldKind = "enum"
	KindArray  FieldKind = "array"
	KindObject FieldKind = "object"
)

// FieldSchema is one node in the recursive field tree the node editor
// renders as a form. It is derived from a resolved JSON Schema, not a
// verbatim copy of one: enums collapse to Kind == KindEnum regardless of
// their declared Type, x-widget passes through untouched, and Required is
// flattened onto the child rather than left on the parent's Required list.
type FieldSchema struct {
	Path       string
	Label      string
	Kind       FieldKind
	Type       string
	Enum       []any
	Items      *FieldSchema
	Properties []*FieldSchema
	Required   bool
	Widget     string
	Default    any
}

// TransformScope selects which kind of element a TransformRule applies to.
type TransformScope string

const (
	ScopeNode TransformScope = "node"
	ScopeEdge TransformScope = "edge"
)

// TransformMatch is the predicate that selects whether a TransformRule
// applies to a given element. Exactly one of Exists, Equals, or Pattern is
// expected to be set; a rule with none of them matches every element in its
// Scope that has Field, or every element in its Scope when Field is empty.
type TransformMatch struct {
	Field   string
	Exists  *bool
	Equals  any
	Pattern string
}

// TransformRule is one inline user script bound to a match predicate.
type TransformRule struct {
	Scope TransformScope
	Match TransformMatch
	JS    string
}

// StyleRuleEntry is the Mermaid `style` directive fragment applied when a
// StyleRulesSection's Field matches its map key.
type StyleRuleEntry struct {
	Fill   string
	Stroke string
	Color  string
}

// StyleRulesSection conditions node styling on a field value.
type StyleRulesSection struct {
	Field string
	Rules map[string]StyleRuleEntry
}

// MapSection is the `map` block of a mapping file.
type MapSection struct {
	ID               string
	Version          int
	FilePatterns     []string
	MermaidType      string
	DirectionField   string
	DefaultDirection string
}

// NodeShapesSection is the `node-shapes` block of a mapping file.
type NodeShapesSection struct {
	SourcePath        string
	IDField           string
	LabelField        string
	ShapeField        string
	DefaultShapes     map[string]string
	Shapes            map[string]string
	InitialConnector  string
	FinalConnector    string
}

// EdgeLinksSection is the `edge-links` block of a mapping file.
type EdgeLinksSection struct {
	SourcePath    string
	FromField     string
	FromImplicit  string
	ToField       string
	LabelField    string
	LinkStyles    map[string]string
	LabelTemplate string
}

// GraphMapping is the fully parsed, version-normalized form of a mapping
// file: the declarative rules that turn extracted NodeData/EdgeData into
// Mermaid text.
type GraphMapping struct {
	Map        MapSection
	NodeShapes NodeShapesSection
	EdgeLinks  EdgeLinksSection
	StyleRules *StyleRulesSection
	Transforms []TransformRule
}

// GraphType is one registered (id, version) unit: a file-pattern match, a
// compiled schema, and the mapping rules that render it.
type GraphType struct {
	ID           string
	Version      int
	FilePatterns []string
	Schema       *jsonschema.Schema
	Mapping      *GraphMapping
	StyleSheet   string
}
