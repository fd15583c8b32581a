package coordinator

import (
	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/internal/nodeeditor"
	"go.jacobcolvin.com/graphdoc/internal/tree"
)

// Message is any inbound or outbound protocol value. Kind mirrors the
// value's own type so hosts can switch on it after JSON round-tripping.
type Message interface {
	Kind() string
}

// Edit is one field change within an ApplyEditMsg.
type Edit struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// --- Inbound (host -> coordinator) ---

type ReadyMsg struct{}

func (ReadyMsg) Kind() string { return "ready" }

type NodeClickedMsg struct{ NodeID string }

func (NodeClickedMsg) Kind() string { return "nodeClicked" }

type TreeNodeSelectedMsg struct{ NodeID string }

func (TreeNodeSelectedMsg) Kind() string { return "treeNodeSelected" }

type ApplyEditMsg struct {
	NodeID string
	Edits  []Edit
}

func (ApplyEditMsg) Kind() string { return "applyEdit" }

type RequestAddNodeMsg struct{ ID string }

func (RequestAddNodeMsg) Kind() string { return "requestAddNode" }

type RequestDuplicateNodeMsg struct{ SourceNodeID string }

func (RequestDuplicateNodeMsg) Kind() string { return "requestDuplicateNode" }

type RequestDeleteNodeMsg struct{ NodeID string }

func (RequestDeleteNodeMsg) Kind() string { return "requestDeleteNode" }

type RequestRenameNodeMsg struct{ OldID, NewID string }

func (RequestRenameNodeMsg) Kind() string { return "requestRenameNode" }

type RequestAddConnectionMsg struct {
	NodeID string
	Target string
}

func (RequestAddConnectionMsg) Kind() string { return "requestAddConnection" }

type RequestDeleteConnectionMsg struct {
	NodeID          string
	ConnectionIndex int
}

func (RequestDeleteConnectionMsg) Kind() string { return "requestDeleteConnection" }

type ChangeDirectionMsg struct{ Direction string }

func (ChangeDirectionMsg) Kind() string { return "changeDirection" }

type RequestExportSvgMsg struct{}

func (RequestExportSvgMsg) Kind() string { return "requestExportSvg" }

// --- Outbound (coordinator -> host) ---

type UpdateAllMsg struct {
	YAMLText      string
	MermaidSource string
	TreeData      []*tree.Node
	Errors        []model.ValidationError
}

func (UpdateAllMsg) Kind() string { return "updateAll" }

type SelectNodeMsg struct{ NodeID string }

func (SelectNodeMsg) Kind() string { return "selectNode" }

type HighlightMermaidNodeMsg struct{ NodeID string }

func (HighlightMermaidNodeMsg) Kind() string { return "highlightMermaidNode" }

type ShowNodeMsg struct{ nodeeditor.ShowNode }

func (ShowNodeMsg) Kind() string { return "showNode" }

type ClearNodeEditorMsg struct{}

func (ClearNodeEditorMsg) Kind() string { return "clearNodeEditor" }

type ShowErrorsMsg struct{ Errors []model.ValidationError }

func (ShowErrorsMsg) Kind() string { return "showErrors" }
