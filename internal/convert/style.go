package convert

import (
	"fmt"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

// styleLine resolves styleRules.field (a dot-path into the node's fields)
// and, when it matches a declared rule, returns the "style <sid> ..."
// directive for n.
func styleLine(mapping *model.GraphMapping, mermaidType string, n model.NodeData) (string, bool) {
	sr := mapping.StyleRules
	if sr == nil {
		return "", false
	}

	raw, ok := model.GetPath(n.Fields, sr.Field)
	if !ok {
		return "", false
	}

	val, ok := raw.(string)
	if !ok {
		return "", false
	}

	rule, ok := sr.Rules[val]
	if !ok {
		return "", false
	}

	sid := SanitizeID(mermaidType, n.ID)

	return fmt.Sprintf("style %s fill:%s,stroke:%s,color:%s", sid, rule.Fill, rule.Stroke, rule.Color), true
}
