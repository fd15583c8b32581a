package nodeeditor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/internal/schema"
)

// ShowNode is the outbound message the host renders as a form.
type ShowNode struct {
	Type     string              `json:"type"`
	NodeID   string              `json:"nodeId"`
	NodeData model.NodeData      `json:"nodeData"`
	Schema   []*model.FieldSchema `json:"schema"`
}

type cacheKey struct {
	graphTypeID string
	version     int
}

// Controller builds the node-editor form for a selected node, caching the
// resolved field schema per (graph type id, version) since a GraphType's
// schema never changes after registration.
//
// A Controller is safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	cache map[cacheKey][]*model.FieldSchema
}

// NewController creates an empty Controller.
func NewController() *Controller {
	return &Controller{cache: make(map[cacheKey][]*model.FieldSchema)}
}

// ClearCache drops every cached field schema. Call this after a registry
// reload, since a graph type's (id, version) may now resolve to a
// different schema.
func (c *Controller) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[cacheKey][]*model.FieldSchema)
}

// Show builds the ShowNode message for nodeID within gt.
func (c *Controller) Show(nodeID string, node model.NodeData, gt model.GraphType) (ShowNode, error) {
	fields, err := c.fieldSchema(gt)
	if err != nil {
		return ShowNode{}, err
	}

	return ShowNode{
		Type:     "showNode",
		NodeID:   nodeID,
		NodeData: node,
		Schema:   fields,
	}, nil
}

func (c *Controller) fieldSchema(gt model.GraphType) ([]*model.FieldSchema, error) {
	key := cacheKey{graphTypeID: gt.ID, version: gt.Version}

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()

		return cached, nil
	}
	c.mu.Unlock()

	if gt.Schema == nil {
		return nil, nil
	}

	resolver := schema.NewResolver(gt.Schema)

	nodeSchema, err := resolver.ExtractNodeSubSchema(gt.Mapping.NodeShapes.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolve node schema: %w", err)
	}

	fields, err := resolver.BuildFieldSchemas(nodeSchema, "")
	if err != nil {
		return nil, fmt.Errorf("build field schema: %w", err)
	}

	c.mu.Lock()
	c.cache[key] = fields
	c.mu.Unlock()

	return fields, nil
}

var arraySegment = regexp.MustCompile(`^(.+)\[(\d+)\]$`)

// JSONPointerToPath parses a "/"-rooted JSON Pointer (as reported by schema
// validation) into a dot-path rooted at basePath, turning each
// "name[idx]" segment into "name.idx" so it composes with CST edit paths.
func JSONPointerToPath(basePath, pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return basePath
	}

	segments := strings.Split(pointer, "/")

	parts := make([]string, 0, len(segments)*2)

	for _, seg := range segments {
		if m := arraySegment.FindStringSubmatch(seg); m != nil {
			parts = append(parts, m[1], m[2])

			continue
		}

		if idx, err := strconv.Atoi(seg); err == nil {
			parts = append(parts, strconv.Itoa(idx))

			continue
		}

		parts = append(parts, seg)
	}

	if basePath == "" {
		return strings.Join(parts, ".")
	}

	return basePath + "." + strings.Join(parts, ".")
}
