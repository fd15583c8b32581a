// Package coordinator implements the SelectionCoordinator: the single
// event loop a host (CLI or TUI) drives with inbound messages, and which
// replies with outbound messages describing how the diagram, tree, YAML
// text, and node-editor form should change in response.
//
// The message protocol is a closed set of Go structs rather than a
// postMessage bridge, since both hosts in this module speak to the
// coordinator in-process. A coordinator owns one document; a host editing
// several documents runs one coordinator per document.
package coordinator
