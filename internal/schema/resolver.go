package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

// ErrUnresolvedRef indicates a $ref could not be found in the schema's
// $defs/definitions.
var ErrUnresolvedRef = errors.New("unresolved $ref")

const widgetExtraKey = "x-widget"

// Resolver resolves $ref references within one root schema and builds the
// recursive field-schema trees the node editor renders as a form.
type Resolver struct {
	root *jsonschema.Schema
}

// NewResolver creates a Resolver that resolves $ref against root's own
// $defs/definitions.
func NewResolver(root *jsonschema.Schema) *Resolver {
	return &Resolver{root: root}
}

// Resolve follows s.Ref (if set) to its target in $defs/definitions,
// merging any sibling keywords declared alongside the $ref over the
// resolved target, and returns the dereferenced schema. A schema with no
// $ref is returned unchanged.
func (r *Resolver) Resolve(s *jsonschema.Schema) (*jsonschema.Schema, error) {
	if s == nil || s.Ref == "" {
		return s, nil
	}

	name, ok := defName(s.Ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedRef, s.Ref)
	}

	target := r.lookupDef(name)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedRef, s.Ref)
	}

	merged := mergeSiblings(target, s)

	return r.Resolve(merged)
}

func (r *Resolver) lookupDef(name string) *jsonschema.Schema {
	if r.root == nil {
		return nil
	}

	if r.root.Defs != nil {
		if s, ok := r.root.Defs[name]; ok {
			return s
		}
	}

	if r.root.Definitions != nil {
		if s, ok := r.root.Definitions[name]; ok {
			return s
		}
	}

	return nil
}

// defName extracts the $defs/definitions member name from a local JSON
// Pointer ref such as "#/$defs/node". Non-local refs are not supported.
func defName(ref string) (string, bool) {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix), true
		}
	}

	return "", false
}

// mergeSiblings returns a schema combining target's keywords with any
// sibling keywords overlay declared next to its own $ref; overlay's
// explicitly-set fields win.
func mergeSiblings(target, overlay *jsonschema.Schema) *jsonschema.Schema {
	merged := *target

	if overlay.Title != "" {
		merged.Title = overlay.Title
	}

	if overlay.Description != "" {
		merged.Description = overlay.Description
	}

	if overlay.Default != nil {
		merged.Default = overlay.Default
	}

	if len(overlay.Required) > 0 {
		merged.Required = overlay.Required
	}

	if overlay.Extra != nil {
		if merged.Extra == nil {
			merged.Extra = make(map[string]any, len(overlay.Extra))
		}

		for k, v := range overlay.Extra {
			merged.Extra[k] = v
		}
	}

	return &merged
}

// ExtractNodeSubSchema navigates sectionPath ("." separated, e.g. "nodes")
// into schema's properties, resolving $ref at each step, and returns the
// sub-schema describing one element: additionalProperties for a keyed map,
// items for an array, or the node itself if it is neither.
func (r *Resolver) ExtractNodeSubSchema(sectionPath string) (*jsonschema.Schema, error) {
	cur, err := r.Resolve(r.root)
	if err != nil {
		return nil, err
	}

	for _, seg := range strings.Split(sectionPath, ".") {
		if seg == "" {
			continue
		}

		if cur.Properties == nil {
			return nil, fmt.Errorf("%w: %s has no properties", ErrUnresolvedRef, sectionPath)
		}

		next, ok := cur.Properties[seg]
		if !ok {
			return nil, fmt.Errorf("%w: %s not found under %s", ErrUnresolvedRef, seg, sectionPath)
		}

		cur, err = r.Resolve(next)
		if err != nil {
			return nil, err
		}
	}

	if cur.AdditionalProperties != nil && !isTrueSchema(cur.AdditionalProperties) && !isFalseSchema(cur.AdditionalProperties) {
		return r.Resolve(cur.AdditionalProperties)
	}

	if cur.Items != nil {
		return r.Resolve(cur.Items)
	}

	return cur, nil
}

func isTrueSchema(s *jsonschema.Schema) bool {
	return s != nil && s.Not == nil && s.Type == "" && len(s.Types) == 0 && s.Properties == nil
}

func isFalseSchema(s *jsonschema.Schema) bool {
	return s != nil && s.Not != nil && isTrueSchema(s.Not)
}

// ComposeSchemas composes a domain overlay onto a base schema: when both
// declare $defs.node, the result's node becomes allOf[base.node,
// overlay.node]; overlay's top-level properties are added where the base
// does not already declare them.
func ComposeSchemas(base, overlay *jsonschema.Schema) *jsonschema.Schema {
	composed := cloneSchema(base)

	if composed.Defs == nil {
		composed.Defs = make(map[string]*jsonschema.Schema)
	}

	baseNode, hasBaseNode := composed.Defs["node"]

	var overlayNode *jsonschema.Schema

	hasOverlayNode := false

	if overlay.Defs != nil {
		overlayNode, hasOverlayNode = overlay.Defs["node"]
	}

	switch {
	case hasBaseNode && hasOverlayNode:
		composed.Defs["node"] = &jsonschema.Schema{AllOf: []*jsonschema.Schema{baseNode, overlayNode}}
	case hasOverlayNode:
		composed.Defs["node"] = overlayNode
	}

	if overlay.Properties != nil {
		if composed.Properties == nil {
			composed.Properties = make(map[string]*jsonschema.Schema)
		}

		for k, v := range overlay.Properties {
			if _, exists := composed.Properties[k]; !exists {
				composed.Properties[k] = v
			}
		}
	}

	return composed
}

// cloneSchema returns a shallow copy of s with its own Defs and Properties
// maps, so composition never mutates the original.
func cloneSchema(s *jsonschema.Schema) *jsonschema.Schema {
	clone := *s

	if s.Defs != nil {
		clone.Defs = make(map[string]*jsonschema.Schema, len(s.Defs))
		for k, v := range s.Defs {
			clone.Defs[k] = v
		}
	}

	if s.Properties != nil {
		clone.Properties = make(map[string]*jsonschema.Schema, len(s.Properties))
		for k, v := range s.Properties {
			clone.Properties[k] = v
		}
	}

	return &clone
}

// MergeDefaultShapes right-biases overlay's entries over base's.
func MergeDefaultShapes(base, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overlay))

	for k, v := range base {
		merged[k] = v
	}

	for k, v := range overlay {
		merged[k] = v
	}

	return merged
}

// BuildFieldSchemas walks schema's properties (after resolving $ref) into a
// recursive []*model.FieldSchema tree, in PropertyOrder when present,
// otherwise sorted by key for determinism.
func (r *Resolver) BuildFieldSchemas(s *jsonschema.Schema, basePath string) ([]*model.FieldSchema, error) {
	resolved, err := r.Resolve(s)
	if err != nil {
		return nil, err
	}

	if resolved.Properties == nil {
		return nil, nil
	}

	required := make(map[string]bool, len(resolved.Required))
	for _, name := range resolved.Required {
		required[name] = true
	}

	order := resolved.PropertyOrder
	if len(order) == 0 {
		for name := range resolved.Properties {
			order = append(order, name)
		}

		sort.Strings(order)
	}

	fields := make([]*model.FieldSchema, 0, len(order))

	for _, name := range order {
		propSchema, ok := resolved.Properties[name]
		if !ok {
			continue
		}

		path := name
		if basePath != "" {
			path = basePath + "." + name
		}

		field, err := r.buildField(propSchema, path, name, required[name])
		if err != nil {
			return nil, err
		}

		fields = append(fields, field)
	}

	return fields, nil
}

// buildField resolves s and classifies it into one FieldSchema node.
func (r *Resolver) buildField(s *jsonschema.Schema, path, key string, required bool) (*model.FieldSchema, error) {
	resolved, err := r.Resolve(s)
	if err != nil {
		return nil, err
	}

	label := resolved.Title
	if label == "" {
		label = humanize(key)
	}

	field := &model.FieldSchema{
		Path:     path,
		Label:    label,
		Required: required,
		Default:  resolved.Default,
		Widget:   widgetOf(resolved),
	}

	switch {
	case len(resolved.Enum) > 0:
		field.Kind = model.KindEnum
		field.Enum = resolved.Enum
		field.Type = schemaType(resolved)

	case schemaType(resolved) == "array":
		field.Kind = model.KindArray

		if resolved.Items != nil {
			item, err := r.buildField(resolved.Items, path+"[]", key, false)
			if err != nil {
				return nil, err
			}

			field.Items = item
		}

	case schemaType(resolved) == "object" || resolved.Properties != nil:
		field.Kind = model.KindObject

		children, err := r.BuildFieldSchemas(resolved, path)
		if err != nil {
			return nil, err
		}

		field.Properties = children

	default:
		field.Kind = model.KindScalar
		field.Type = schemaType(resolved)
	}

	return field, nil
}

func schemaType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}

	if len(s.Types) > 0 {
		return s.Types[0]
	}

	return ""
}

func widgetOf(s *jsonschema.Schema) string {
	if s.Extra == nil {
		return ""
	}

	if w, ok := s.Extra[widgetExtraKey].(string); ok {
		return w
	}

	return ""
}

// humanize turns a camelCase or kebab-case key into a human label, e.g.
// "maxRetries" -> "Max Retries".
func humanize(key string) string {
	var b strings.Builder

	for i, r := range key {
		switch {
		case r == '-' || r == '_':
			b.WriteByte(' ')

			continue
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
		}

		b.WriteRune(r)
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		if w == "" {
			continue
		}

		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}
