// Package sourcesync maps between tree-view IDs, YAML dot-paths, and
// cursor byte offsets in the document text, and drives the coordinator's
// reveal-on-cursor-move behavior: moving the text cursor into a node's
// block selects it in the tree and diagram, without re-selecting when the
// cursor merely moves within the same node's block.
package sourcesync
