package tree

import (
	"fmt"

	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/internal/yamlcst"
)

const (
	metaGroupID  = "__meta__"
	nodesGroupID = "__nodes__"
	edgesGroupID = "__edges__"
)

// Node is one entry in the host's tree view.
type Node struct {
	ID       string
	Label    string
	Icon     string
	Children []*Node
}

// iconByType is the fallback icon set for common node types; types outside
// this set render with a blank icon rather than guessing.
var iconByType = map[string]string{
	"start":      "play",
	"final":      "stop",
	"initial":    "circle",
	"decision":   "git-branch",
	"subroutine": "box",
	"default":    "square",
}

// Build produces the top-level groups (meta, nodes, edges) for a parsed
// graph document, in document order.
func Build(parsed *yamlcst.Parsed, gt model.GraphType) []*Node {
	groups := make([]*Node, 0, 3)

	if meta := buildMetaGroup(parsed); meta != nil {
		groups = append(groups, meta)
	}

	groups = append(groups, buildNodesGroup(parsed, gt))
	groups = append(groups, buildEdgesGroup(parsed, gt))

	return groups
}

func buildMetaGroup(parsed *yamlcst.Parsed) *Node {
	keys, ok := yamlcst.OrderedMapKeys(parsed, "meta")
	if !ok {
		return nil
	}

	group := &Node{ID: metaGroupID, Label: "meta"}

	for _, k := range keys {
		val, _ := model.GetPath(parsed.Data, "meta."+k)
		group.Children = append(group.Children, &Node{
			ID:    metaGroupID + "." + k,
			Label: fmt.Sprintf("%s: %v", k, val),
		})
	}

	return group
}

func buildNodesGroup(parsed *yamlcst.Parsed, gt model.GraphType) *Node {
	group := &Node{ID: nodesGroupID, Label: "nodes"}

	sourcePath := gt.Mapping.NodeShapes.SourcePath

	keys, ok := yamlcst.OrderedMapKeys(parsed, sourcePath)
	if !ok {
		return group
	}

	for _, id := range keys {
		entryPath := sourcePath + "." + id

		fields, _ := model.AsMap(getOrNil(parsed, entryPath))

		label := id
		if s, ok := fields[gt.Mapping.NodeShapes.LabelField].(string); ok && s != "" {
			label = s
		}

		nodeType, _ := fields["type"].(string)

		group.Children = append(group.Children, &Node{
			ID:       id,
			Label:    label,
			Icon:     iconByType[nodeType],
			Children: buildFieldChildren(parsed, entryPath, id),
		})
	}

	return group
}

func buildEdgesGroup(parsed *yamlcst.Parsed, gt model.GraphType) *Node {
	group := &Node{ID: edgesGroupID, Label: "edges"}

	sourcePath := gt.Mapping.EdgeLinks.SourcePath

	raw, ok := model.GetPath(parsed.Data, sourcePath)
	if !ok {
		return group
	}

	items, ok := model.AsSlice(raw)
	if !ok {
		return group
	}

	for i, item := range items {
		fields, _ := model.AsMap(item)

		from, _ := fields[gt.Mapping.EdgeLinks.FromField].(string)
		to, _ := fields[gt.Mapping.EdgeLinks.ToField].(string)

		group.Children = append(group.Children, &Node{
			ID:    fmt.Sprintf("__edge_%d", i),
			Label: fmt.Sprintf("%s -> %s", from, to),
		})
	}

	return group
}

// buildFieldChildren expands a node's own fields into tree children: scalar
// fields are leaves, array fields expand into indexed children, and nested
// maps recurse one level further.
func buildFieldChildren(parsed *yamlcst.Parsed, entryPath, treeID string) []*Node {
	keys, ok := yamlcst.OrderedMapKeys(parsed, entryPath)
	if !ok {
		return nil
	}

	var children []*Node

	for _, field := range keys {
		fieldPath := entryPath + "." + field
		fieldTreeID := treeID + "." + field

		val, _ := model.GetPath(parsed.Data, fieldPath)

		switch v := val.(type) {
		case []any:
			item := &Node{ID: fieldTreeID, Label: field}
			for i := range v {
				item.Children = append(item.Children, &Node{
					ID:    fmt.Sprintf("%s[%d]", fieldTreeID, i),
					Label: fmt.Sprintf("%s[%d]", field, i),
				})
			}

			children = append(children, item)

		case map[string]any:
			children = append(children, &Node{
				ID:       fieldTreeID,
				Label:    field,
				Children: buildFieldChildren(parsed, fieldPath, fieldTreeID),
			})

		default:
			children = append(children, &Node{
				ID:    fieldTreeID,
				Label: fmt.Sprintf("%s: %v", field, v),
			})
		}
	}

	return children
}

func getOrNil(parsed *yamlcst.Parsed, path string) any {
	v, _ := model.GetPath(parsed.Data, path)

	return v
}
