package convert

import (
	"fmt"
	"strconv"
	"strings"

	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/internal/yamlcst"
)

const keyFieldSentinel = "_key"

const parentKeySentinel = "_parent_key"

// Nodes exposes node extraction for callers outside the conversion pipeline
// proper, such as the SelectionCoordinator resolving a clicked node id back
// to its data without re-running a full conversion.
func Nodes(parsed *yamlcst.Parsed, mapping *model.GraphMapping) ([]model.NodeData, map[string]model.SourceRange, error) {
	return extractNodes(parsed, mapping.NodeShapes)
}

// extractNodes walks nodeShapes.sourcePath in document order and builds one
// NodeData per entry.
func extractNodes(parsed *yamlcst.Parsed, ns model.NodeShapesSection) ([]model.NodeData, map[string]model.SourceRange, error) {
	keys, ok := yamlcst.OrderedMapKeys(parsed, ns.SourcePath)
	if !ok {
		return nil, nil, fmt.Errorf("%w: node-shapes.source-path %q", ErrExtract, ns.SourcePath)
	}

	nodes := make([]model.NodeData, 0, len(keys))
	nodeMap := make(map[string]model.SourceRange, len(keys))

	for _, key := range keys {
		entryPath := joinPath(ns.SourcePath, key)

		raw, _ := model.GetPath(parsed.Data, entryPath)

		fields, _ := model.AsMap(raw)
		if fields == nil {
			fields = map[string]any{}
		}

		id := key
		if ns.IDField != "" && ns.IDField != keyFieldSentinel {
			if s, ok := stringField(fields, ns.IDField); ok {
				id = s
			}
		}

		nodeType := "default"
		if s, ok := stringField(fields, "type"); ok {
			nodeType = s
		}

		subtype, _ := stringField(fields, "subtype")

		node := model.NodeData{
			ID:      id,
			Shape:   resolveShape(ns, nodeType, fields),
			Type:    nodeType,
			Subtype: subtype,
			Fields:  fields,
		}
		nodes = append(nodes, node)

		if r, ok := yamlcst.MapEntryRange(parsed, entryPath); ok {
			nodeMap[id] = r
		}
	}

	return nodes, nodeMap, nil
}

// resolveShape picks a node's shape, in order of precedence: an explicit
// shapeField value, then defaultShapes[type], then "rectangle".
func resolveShape(ns model.NodeShapesSection, nodeType string, fields map[string]any) string {
	if ns.ShapeField != "" {
		if s, ok := stringField(fields, ns.ShapeField); ok && s != "" {
			return s
		}
	}

	if shape, ok := ns.DefaultShapes[nodeType]; ok {
		return shape
	}

	return "rectangle"
}

// colocatedArray reports whether edgeLinks.sourcePath names an array nested
// under each node, e.g. "nodes.*.transitions", and if so returns the array's
// field name.
func colocatedArray(nodesPath, edgeSourcePath string) (arrayField string, ok bool) {
	prefix := nodesPath + ".*."
	if !strings.HasPrefix(edgeSourcePath, prefix) {
		return "", false
	}

	return strings.TrimPrefix(edgeSourcePath, prefix), true
}

// extractEdges dispatches between the co-located and top-level edge
// extraction strategies based on edgeLinks.sourcePath's shape.
func extractEdges(parsed *yamlcst.Parsed, nodes []model.NodeData, nodesPath string, el model.EdgeLinksSection) ([]model.EdgeData, map[int]model.SourceRange, error) {
	if arrayField, ok := colocatedArray(nodesPath, el.SourcePath); ok {
		return extractColocatedEdges(parsed, nodes, arrayField, el)
	}

	return extractTopLevelEdges(parsed, el)
}

func extractColocatedEdges(parsed *yamlcst.Parsed, nodes []model.NodeData, arrayField string, el model.EdgeLinksSection) ([]model.EdgeData, map[int]model.SourceRange, error) {
	var edges []model.EdgeData

	edgeMap := make(map[int]model.SourceRange)

	for _, n := range nodes {
		raw, ok := n.Fields[arrayField]
		if !ok {
			continue
		}

		items, ok := model.AsSlice(raw)
		if !ok {
			continue
		}

		for i, item := range items {
			fields, _ := model.AsMap(item)
			if fields == nil {
				fields = map[string]any{}
			}

			from := n.ID
			if el.FromImplicit != parentKeySentinel {
				if s, ok := stringField(fields, el.FromField); ok {
					from = s
				}
			}

			to, _ := stringField(fields, el.ToField)

			idx := len(edges)
			edges = append(edges, model.EdgeData{From: from, To: to, Fields: fields})

			itemPath := colocatedItemPath(el.SourcePath, n.ID, i)

			if r, ok := yamlcst.SourceRange(parsed, itemPath); ok {
				edgeMap[idx] = r
			}
		}
	}

	return edges, edgeMap, nil
}

func extractTopLevelEdges(parsed *yamlcst.Parsed, el model.EdgeLinksSection) ([]model.EdgeData, map[int]model.SourceRange, error) {
	raw, ok := model.GetPath(parsed.Data, el.SourcePath)
	if !ok {
		return nil, nil, fmt.Errorf("%w: edge-links.source-path %q", ErrExtract, el.SourcePath)
	}

	items, ok := model.AsSlice(raw)
	if !ok {
		return nil, nil, fmt.Errorf("%w: edge-links.source-path %q is not a sequence", ErrExtract, el.SourcePath)
	}

	edges := make([]model.EdgeData, 0, len(items))
	edgeMap := make(map[int]model.SourceRange, len(items))

	for i, item := range items {
		fields, _ := model.AsMap(item)
		if fields == nil {
			fields = map[string]any{}
		}

		from, _ := stringField(fields, el.FromField)
		to, _ := stringField(fields, el.ToField)

		edges = append(edges, model.EdgeData{From: from, To: to, Fields: fields})

		itemPath := el.SourcePath + "." + strconv.Itoa(i)
		if r, ok := yamlcst.SourceRange(parsed, itemPath); ok {
			edgeMap[i] = r
		}
	}

	return edges, edgeMap, nil
}

// colocatedItemPath substitutes nodeID for the "*" segment of sourcePath and
// appends the item's sequence index, turning "nodes.*.transitions" plus
// ("start", 0) into "nodes.start.transitions.0".
func colocatedItemPath(sourcePath, nodeID string, index int) string {
	segments := strings.Split(sourcePath, ".")
	for i, seg := range segments {
		if seg == "*" {
			segments[i] = nodeID
		}
	}

	return strings.Join(segments, ".") + "." + strconv.Itoa(index)
}

func joinPath(base, next string) string {
	if base == "" {
		return next
	}

	return base + "." + next
}

func stringField(fields map[string]any, key string) (string, bool) {
	if key == "" {
		return "", false
	}

	v, ok := fields[key]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}
