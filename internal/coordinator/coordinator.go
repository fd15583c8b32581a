package coordinator

import (
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"

	"go.jacobcolvin.com/graphdoc/internal/convert"
	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/internal/nodeeditor"
	"go.jacobcolvin.com/graphdoc/internal/tree"
	"go.jacobcolvin.com/graphdoc/internal/yamlcst"
)

// ErrUnknownMessage indicates Dispatch received a message with no handler.
var ErrUnknownMessage = errors.New("unknown message")

// ErrInvalidNodeID indicates a requested node id fails the naming rule:
// lowercase, starting with a-z, followed by a-z0-9-.
var ErrInvalidNodeID = errors.New("invalid node id")

// ErrDuplicateNodeID indicates a requested node id already exists.
var ErrDuplicateNodeID = errors.New("duplicate node id")

var nodeIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Coordinator owns one document's editing session: the current YAML text,
// the selected node, and the glue between the conversion engine, the tree
// builder, and the node editor.
//
// Not safe for concurrent use: a Coordinator is driven by one event loop,
// per §5's single-threaded cooperative scheduling model.
type Coordinator struct {
	Send func(Message)

	text   []byte
	gt     model.GraphType
	engine *convert.Engine
	editor *nodeeditor.Controller

	currentNodeID         string
	suppressNextSelection atomic.Bool
}

// New creates a Coordinator for gt's document text, using send to deliver
// outbound messages.
func New(text []byte, gt model.GraphType, send func(Message)) *Coordinator {
	return &Coordinator{
		Send:   send,
		text:   text,
		gt:     gt,
		engine: convert.NewEngine(),
		editor: nodeeditor.NewController(),
	}
}

func (c *Coordinator) emit(msg Message) {
	if c.Send != nil {
		c.Send(msg)
	}
}

// Dispatch routes one inbound message per §4.10's table.
func (c *Coordinator) Dispatch(msg Message) error {
	switch m := msg.(type) {
	case ReadyMsg:
		return c.reconvertAndEmit()

	case NodeClickedMsg:
		return c.selectNode(m.NodeID)

	case TreeNodeSelectedMsg:
		return c.selectNode(m.NodeID)

	case ApplyEditMsg:
		return c.applyEdit(m)

	case RequestAddNodeMsg:
		return c.addNode(m.ID)

	case RequestDuplicateNodeMsg:
		return c.duplicateNode(m.SourceNodeID)

	case RequestDeleteNodeMsg:
		return c.deleteNode(m.NodeID)

	case RequestRenameNodeMsg:
		return c.renameNode(m.OldID, m.NewID)

	case RequestAddConnectionMsg:
		return c.addConnection(m.NodeID, m.Target)

	case RequestDeleteConnectionMsg:
		return c.deleteConnection(m.NodeID, m.ConnectionIndex)

	case ChangeDirectionMsg:
		return c.changeDirection(m.Direction)

	case RequestExportSvgMsg:
		// SVG rasterization is the host's job; core only needs to
		// acknowledge the dispatch table is complete.
		return nil

	default:
		return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}
}

// Reveal programmatically selects nodeID (e.g. the host scrolled the
// diagram to it) without re-triggering the Select algorithm: it arms the
// suppression latch so the next selection-change event is swallowed
// instead of bouncing back out.
func (c *Coordinator) Reveal(nodeID string) {
	c.suppressNextSelection.Store(true)
	c.currentNodeID = nodeID

	c.emit(SelectNodeMsg{NodeID: nodeID})
	c.emit(HighlightMermaidNodeMsg{NodeID: nodeID})
}

// selectNode implements the Select algorithm: de-duplicate against
// currentNodeID, consume the suppression latch if armed, otherwise show the
// node editor and broadcast the new selection.
func (c *Coordinator) selectNode(nodeID string) error {
	if c.suppressNextSelection.CompareAndSwap(true, false) {
		return nil
	}

	if nodeID == c.currentNodeID {
		return nil
	}

	c.currentNodeID = nodeID

	if nodeID == "" {
		c.emit(ClearNodeEditorMsg{})

		return nil
	}

	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	node, ok := c.lookupNode(parsed, nodeID)
	if !ok {
		c.emit(ClearNodeEditorMsg{})

		return nil
	}

	shown, err := c.editor.Show(nodeID, node, c.gt)
	if err != nil {
		return err
	}

	c.emit(SelectNodeMsg{NodeID: nodeID})
	c.emit(HighlightMermaidNodeMsg{NodeID: nodeID})
	c.emit(ShowNodeMsg{ShowNode: shown})

	return nil
}

func (c *Coordinator) lookupNode(parsed *yamlcst.Parsed, nodeID string) (model.NodeData, bool) {
	nodes, _, err := convert.Nodes(parsed, c.gt.Mapping)
	if err != nil {
		return model.NodeData{}, false
	}

	for _, n := range nodes {
		if n.ID == nodeID {
			return n, true
		}
	}

	return model.NodeData{}, false
}

// applyEdit CST-edits every (path, value) pair rooted at the node (or the
// document root for the synthetic "__meta__" id), applying them against the
// running edited text so chained edits compose, then reconverts once.
func (c *Coordinator) applyEdit(m ApplyEditMsg) error {
	for _, edit := range m.Edits {
		path := edit.Path
		if m.NodeID != "__meta__" {
			path = c.gt.Mapping.NodeShapes.SourcePath + "." + m.NodeID + "." + edit.Path
		}

		parsed, err := yamlcst.Parse(c.text)
		if err != nil {
			return err
		}

		out, err := yamlcst.EditValue(parsed, path, edit.Value)
		if err != nil {
			return err
		}

		c.text = []byte(out)
	}

	return c.reconvertAndEmit()
}

func (c *Coordinator) addNode(id string) error {
	if !nodeIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %s", ErrInvalidNodeID, id)
	}

	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	if _, ok := c.lookupNode(parsed, id); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, id)
	}

	out, err := yamlcst.AddMapEntry(parsed, c.gt.Mapping.NodeShapes.SourcePath, id, map[string]any{"label": id})
	if err != nil {
		return err
	}

	c.text = []byte(out)

	return c.reconvertAndEmit()
}

func (c *Coordinator) duplicateNode(sourceID string) error {
	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	src, ok := c.lookupNode(parsed, sourceID)
	if !ok {
		return fmt.Errorf("%w: source node %s", ErrUnknownMessage, sourceID)
	}

	clone := make(map[string]any, len(src.Fields))
	for k, v := range src.Fields {
		if k == c.outgoingLinkField() {
			continue
		}

		clone[k] = v
	}

	newID := c.uniqueCopyID(parsed, sourceID)

	out, err := yamlcst.AddMapEntry(parsed, c.gt.Mapping.NodeShapes.SourcePath, newID, clone)
	if err != nil {
		return err
	}

	c.text = []byte(out)

	return c.reconvertAndEmit()
}

// outgoingLinkField names the field a duplicated node must not copy: its
// co-located outgoing-edge array, when edgeLinks declares one.
func (c *Coordinator) outgoingLinkField() string {
	if field, ok := colocatedArrayField(c.gt.Mapping.NodeShapes.SourcePath, c.gt.Mapping.EdgeLinks.SourcePath); ok {
		return field
	}

	return ""
}

func (c *Coordinator) uniqueCopyID(parsed *yamlcst.Parsed, sourceID string) string {
	base := sourceID + "-copy"

	candidate := base
	n := 1

	for {
		if _, ok := c.lookupNode(parsed, candidate); !ok {
			return candidate
		}

		n++
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (c *Coordinator) deleteNode(nodeID string) error {
	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	out, err := yamlcst.DeleteEntry(parsed, c.gt.Mapping.NodeShapes.SourcePath+"."+nodeID)
	if err != nil {
		return err
	}

	c.text = []byte(out)

	if c.currentNodeID == nodeID {
		c.currentNodeID = ""
		c.emit(ClearNodeEditorMsg{})
	}

	return c.reconvertAndEmit()
}

// renameNode adds the value under the new key, deletes the old entry, and
// rewrites every "to" reference to the old id held in a node's co-located
// outgoing array; without a co-located array no references are rewritten.
func (c *Coordinator) renameNode(oldID, newID string) error {
	if !nodeIDPattern.MatchString(newID) {
		return fmt.Errorf("%w: %s", ErrInvalidNodeID, newID)
	}

	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	node, ok := c.lookupNode(parsed, oldID)
	if !ok {
		return fmt.Errorf("%w: source node %s", ErrUnknownMessage, oldID)
	}

	out, err := yamlcst.AddMapEntry(parsed, c.gt.Mapping.NodeShapes.SourcePath, newID, map[string]any(node.Fields))
	if err != nil {
		return err
	}

	c.text = []byte(out)

	parsed, err = yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	out, err = yamlcst.DeleteEntry(parsed, c.gt.Mapping.NodeShapes.SourcePath+"."+oldID)
	if err != nil {
		return err
	}

	c.text = []byte(out)

	if err := c.rewriteOutgoingReferences(oldID, newID); err != nil {
		return err
	}

	if c.currentNodeID == oldID {
		c.currentNodeID = newID
	}

	return c.reconvertAndEmit()
}

// rewriteOutgoingReferences scans every node's co-located outgoing array (if
// the mapping declares one) and replaces "to: <oldID>" entries with newID.
func (c *Coordinator) rewriteOutgoingReferences(oldID, newID string) error {
	field, ok := colocatedArrayField(c.gt.Mapping.NodeShapes.SourcePath, c.gt.Mapping.EdgeLinks.SourcePath)
	if !ok {
		return nil
	}

	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	nodes, _, err := convert.Nodes(parsed, c.gt.Mapping)
	if err != nil {
		return err
	}

	for _, n := range nodes {
		raw, ok := n.Fields[field]
		if !ok {
			continue
		}

		items, ok := raw.([]any)
		if !ok {
			continue
		}

		for i, item := range items {
			fields, ok := item.(map[string]any)
			if !ok {
				continue
			}

			to, _ := fields[c.gt.Mapping.EdgeLinks.ToField].(string)
			if to != oldID {
				continue
			}

			parsed, err := yamlcst.Parse(c.text)
			if err != nil {
				return err
			}

			path := fmt.Sprintf("%s.%s.%s.%d.%s", c.gt.Mapping.NodeShapes.SourcePath, n.ID, field, i, c.gt.Mapping.EdgeLinks.ToField)

			out, err := yamlcst.EditValue(parsed, path, newID)
			if err != nil {
				return err
			}

			c.text = []byte(out)
		}
	}

	return nil
}

func (c *Coordinator) addConnection(nodeID, target string) error {
	field, ok := colocatedArrayField(c.gt.Mapping.NodeShapes.SourcePath, c.gt.Mapping.EdgeLinks.SourcePath)
	if !ok {
		return fmt.Errorf("%w: edge-links.source-path is not co-located", ErrUnknownMessage)
	}

	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	arrayPath := c.gt.Mapping.NodeShapes.SourcePath + "." + nodeID + "." + field

	item := map[string]any{c.gt.Mapping.EdgeLinks.ToField: target}

	var out string

	if _, exists := yamlcst.SourceRange(parsed, arrayPath); exists {
		out, err = yamlcst.AppendToSequence(parsed, arrayPath, item)
	} else {
		out, err = yamlcst.AddMapEntry(parsed, c.gt.Mapping.NodeShapes.SourcePath+"."+nodeID, field, []any{item})
	}

	if err != nil {
		return err
	}

	c.text = []byte(out)

	return c.reconvertAndEmit()
}

func (c *Coordinator) deleteConnection(nodeID string, index int) error {
	field, ok := colocatedArrayField(c.gt.Mapping.NodeShapes.SourcePath, c.gt.Mapping.EdgeLinks.SourcePath)
	if !ok {
		return fmt.Errorf("%w: edge-links.source-path is not co-located", ErrUnknownMessage)
	}

	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s.%s.%s.%d", c.gt.Mapping.NodeShapes.SourcePath, nodeID, field, index)

	out, err := yamlcst.DeleteEntry(parsed, path)
	if err != nil {
		return err
	}

	c.text = []byte(out)

	return c.reconvertAndEmit()
}

func (c *Coordinator) changeDirection(direction string) error {
	parsed, err := yamlcst.Parse(c.text)
	if err != nil {
		return err
	}

	field := c.gt.Mapping.Map.DirectionField
	if field == "" {
		return nil
	}

	out, err := yamlcst.EditValue(parsed, "meta."+field, direction)
	if err != nil {
		return err
	}

	c.text = []byte(out)

	return c.reconvertAndEmit()
}

// reconvertAndEmit re-converts the current text and emits updateAll, always
// before any derived selectNode/showNode per the ordering guarantee in §5.
func (c *Coordinator) reconvertAndEmit() error {
	result, err := c.engine.Convert(c.text, c.gt)
	if err != nil {
		return err
	}

	parsed, perr := yamlcst.Parse(c.text)

	var treeData []*tree.Node
	if perr == nil {
		treeData = tree.Build(parsed, c.gt)
	}

	c.emit(UpdateAllMsg{
		YAMLText:      string(c.text),
		MermaidSource: result.MermaidSource,
		TreeData:      treeData,
		Errors:        result.Errors,
	})

	return nil
}

// colocatedArrayField reports the array field name when edgeSourcePath is
// co-located under nodesPath (e.g. "nodes.*.transitions" -> "transitions").
func colocatedArrayField(nodesPath, edgeSourcePath string) (string, bool) {
	prefix := nodesPath + ".*."
	if len(edgeSourcePath) <= len(prefix) || edgeSourcePath[:len(prefix)] != prefix {
		return "", false
	}

	return edgeSourcePath[len(prefix):], true
}
