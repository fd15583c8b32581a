package convert

import (
	"fmt"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

func erHeader() string {
	return "erDiagram"
}

// erRelations maps the edge's semantic cardinality to Mermaid's crow's-foot
// glyphs.
var erRelations = map[string]string{
	"one-to-one":   "||--||",
	"one-to-many":  "||--o{",
	"many-to-one":  "}o--||",
	"many-to-many": "}o--o{",
}

const erDefaultRelation = "||--o{"

func renderERNode(n model.NodeData) []string {
	lines := []string{n.ID + " {"}

	if raw, ok := n.Fields["attributes"]; ok {
		if attrs, ok := model.AsSlice(raw); ok {
			for _, a := range attrs {
				fields, ok := model.AsMap(a)
				if !ok {
					continue
				}

				attrType, _ := stringField(fields, "type")
				name, _ := stringField(fields, "name")
				key, _ := stringField(fields, "key")

				line := attrType + " " + name
				if key != "" {
					line += " " + key
				}

				lines = append(lines, line)
			}
		}
	}

	lines = append(lines, "}")

	return lines
}

func renderEREdge(mapping *model.GraphMapping, e model.EdgeData) []string {
	rel := erDefaultRelation
	if t, ok := stringField(e.Fields, "type"); ok {
		if r, ok := erRelations[t]; ok {
			rel = r
		}
	}

	label, _ := stringField(e.Fields, mapping.EdgeLinks.LabelField)
	if label == "" {
		label, _ = stringField(e.Fields, "label")
	}

	return []string{fmt.Sprintf("%s %s %s : \"%s\"", e.From, rel, e.To, label)}
}
