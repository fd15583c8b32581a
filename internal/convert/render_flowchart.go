package convert

import (
	"fmt"
	"strings"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

func flowchartHeader(mapping *model.GraphMapping) string {
	direction := mapping.Map.DefaultDirection
	if direction == "" {
		direction = "TD"
	}

	return mapping.Map.MermaidType + " " + direction
}

// renderFlowchartNode looks up the node's shape template and substitutes
// {label}/{id}. A shape with no template falls back to a plain rectangle.
func renderFlowchartNode(mapping *model.GraphMapping, n model.NodeData) []string {
	sid := SanitizeID(mapping.Map.MermaidType, n.ID)
	label := labelOf(n.Fields, mapping.NodeShapes.LabelField, n.ID)

	tmpl, ok := mapping.NodeShapes.Shapes[n.Shape]
	if !ok {
		return []string{fmt.Sprintf("%s[\"%s\"]", sid, label)}
	}

	body := strings.NewReplacer("{label}", label, "{id}", sid).Replace(tmpl)

	return []string{sid + body}
}

// renderFlowchartEdge selects an arrow glyph by fields.style, falling back
// to the plain arrow when a label is present but the selected glyph isn't
// one of the two that read naturally with an inline label.
func renderFlowchartEdge(mapping *model.GraphMapping, e model.EdgeData) []string {
	from := SanitizeID(mapping.Map.MermaidType, e.From)
	to := SanitizeID(mapping.Map.MermaidType, e.To)

	style, _ := stringField(e.Fields, "style")
	if style == "" {
		style = "default"
	}

	arrow, ok := mapping.EdgeLinks.LinkStyles[style]
	if !ok {
		arrow = "-->"
	}

	label, _ := stringField(e.Fields, mapping.EdgeLinks.LabelField)
	if label == "" {
		return []string{fmt.Sprintf("%s %s %s", from, arrow, to)}
	}

	if arrow != "-.->" && arrow != "==>" {
		arrow = "-->"
	}

	return []string{fmt.Sprintf("%s %s|%s| %s", from, arrow, label, to)}
}

func labelOf(fields map[string]any, labelField, fallback string) string {
	if s, ok := stringField(fields, labelField); ok && s != "" {
		return s
	}

	return fallback
}
