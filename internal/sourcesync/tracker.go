package sourcesync

import (
	"go.jacobcolvin.com/graphdoc/internal/coordinator"
	"go.jacobcolvin.com/graphdoc/internal/yamlcst"
)

// CursorKind distinguishes a cursor move the user made directly from one the
// host made on the user's behalf (e.g. scrolling the text view to follow a
// diagram click). Only direct moves should reveal a node; otherwise a reveal
// would immediately bounce back and fight the selection that caused it.
type CursorKind int

const (
	CursorKindProgrammatic CursorKind = iota
	CursorKindUser
)

// Tracker watches cursor moves in the text view and reveals the enclosing
// node elsewhere in the host, de-duplicating against the last node it
// revealed so that moving within one node's block doesn't re-fire.
type Tracker struct {
	nodesPath  string
	lastNodeID string
}

// NewTracker creates a Tracker scoped to the node mapping's source path.
func NewTracker(nodesPath string) *Tracker {
	return &Tracker{nodesPath: nodesPath}
}

// Reset clears the last-revealed node, so the next user cursor move always
// reveals regardless of what was last shown. Call this after the document
// text is replaced wholesale (e.g. loading a new file).
func (t *Tracker) Reset() {
	t.lastNodeID = ""
}

// OnCursorMoved resolves the node enclosing offset and, if it differs from
// the last node this Tracker revealed, asks c to reveal it. Programmatic
// moves are recorded as the current position but never trigger a reveal.
func (t *Tracker) OnCursorMoved(parsed *yamlcst.Parsed, offset int, kind CursorKind, c *coordinator.Coordinator) {
	nodeID, ok := yamlcst.FindNodeAtOffset(parsed, offset, t.nodesPath)
	if !ok {
		return
	}

	if nodeID == t.lastNodeID {
		return
	}

	t.lastNodeID = nodeID

	if kind != CursorKindUser {
		return
	}

	c.Reveal(nodeID)
}
