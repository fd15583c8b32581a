package convert

import (
	"fmt"
	"strings"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

const (
	nodeTypeInitial = "initial"
	nodeTypeFinal   = "final"
)

func stateHeader() string {
	return "stateDiagram-v2"
}

// renderStateNode emits nothing for initial/final pseudo-nodes; those are
// handled as connectors around the body instead.
func renderStateNode(mapping *model.GraphMapping, n model.NodeData) []string {
	if n.Type == nodeTypeInitial || n.Type == nodeTypeFinal {
		return nil
	}

	label := labelOf(n.Fields, mapping.NodeShapes.LabelField, n.ID)

	return []string{fmt.Sprintf("%s : %s", n.ID, label)}
}

func renderStateEdge(_ *model.GraphMapping, e model.EdgeData) []string {
	line := fmt.Sprintf("%s --> %s", e.From, e.To)

	event, _ := stringField(e.Fields, "event")
	if event == "" {
		return []string{line}
	}

	line += " : " + event

	if guard, _ := stringField(e.Fields, "guard"); guard != "" {
		line += " [" + guard + "]"
	}

	return []string{line}
}

// stateConnectors returns the "[*] --> id" / "id --> [*]" lines for every
// node whose Type marks it as the initial or final pseudo-state, using the
// mapping's connector template when one is declared.
func stateConnectors(mapping *model.GraphMapping, nodes []model.NodeData, nodeType string) []string {
	tmpl := mapping.NodeShapes.InitialConnector
	if nodeType == nodeTypeFinal {
		tmpl = mapping.NodeShapes.FinalConnector
	}

	var lines []string

	for _, n := range nodes {
		if n.Type != nodeType {
			continue
		}

		if tmpl != "" {
			lines = append(lines, strings.ReplaceAll(tmpl, "{id}", n.ID))

			continue
		}

		if nodeType == nodeTypeInitial {
			lines = append(lines, fmt.Sprintf("[*] --> %s", n.ID))
		} else {
			lines = append(lines, fmt.Sprintf("%s --> [*]", n.ID))
		}
	}

	return lines
}
