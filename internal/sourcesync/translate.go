package sourcesync

import (
	"regexp"
	"strings"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

const (
	metaGroupID  = "__meta__"
	nodesGroupID = "__nodes__"
	edgesGroupID = "__edges__"
)

var edgeIndexPattern = regexp.MustCompile(`^__edge_(\d+)$`)

var arrayIndexSuffix = regexp.MustCompile(`^(.+)\[(\d+)\]$`)

// TreeIDToPath translates a tree-view node id into the YAML dot-path it
// represents, so that a tree selection can drive a CST edit or a text-view
// reveal. It returns ok=false for ids with no corresponding document path,
// such as the top-level group ids themselves.
func TreeIDToPath(mapping *model.GraphMapping, treeID string) (path string, ok bool) {
	switch treeID {
	case metaGroupID:
		return "meta", true
	case nodesGroupID:
		return mapping.NodeShapes.SourcePath, true
	case edgesGroupID:
		return mapping.EdgeLinks.SourcePath, true
	}

	if rest, found := strings.CutPrefix(treeID, metaGroupID+"."); found {
		return "meta." + rest, true
	}

	if m := edgeIndexPattern.FindStringSubmatch(treeID); m != nil {
		return mapping.EdgeLinks.SourcePath + "." + m[1], true
	}

	return nodePath(mapping.NodeShapes.SourcePath, treeID), true
}

// nodePath rewrites a bare node tree id ("start", "start.label",
// "start.transitions[0]") into its dot-path under sourcePath, turning a
// trailing "[n]" array index into a ".n" segment.
func nodePath(sourcePath, treeID string) string {
	segments := strings.Split(treeID, ".")

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, sourcePath)

	for _, seg := range segments {
		if m := arrayIndexSuffix.FindStringSubmatch(seg); m != nil {
			parts = append(parts, m[1], m[2])

			continue
		}

		parts = append(parts, seg)
	}

	return strings.Join(parts, ".")
}

// NodeIDFromTreeID returns the node id a tree-view id belongs to, stripping
// any field or array-index suffix. It returns ok=false for ids that don't
// belong to a node (the group ids, meta fields, edges).
func NodeIDFromTreeID(mapping *model.GraphMapping, parsedNodeIDs map[string]struct{}, treeID string) (string, bool) {
	if treeID == metaGroupID || treeID == nodesGroupID || treeID == edgesGroupID {
		return "", false
	}

	if strings.HasPrefix(treeID, metaGroupID+".") || edgeIndexPattern.MatchString(treeID) {
		return "", false
	}

	head, _, _ := strings.Cut(treeID, ".")

	if _, ok := parsedNodeIDs[head]; ok {
		return head, true
	}

	return "", false
}
