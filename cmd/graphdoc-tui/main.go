// Command graphdoc-tui is a terminal reference host for the graph editor
// coordinator: a tree pane, a Mermaid-source pane, and a node-editor pane,
// kept in sync by the same message protocol a browser-based host would use.
package main

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"go.jacobcolvin.com/graphdoc/internal/registry"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: graphdoc-tui [--types-dir DIR] <file.yaml>")

		return 1
	}

	typesDir := "graph-types"
	path := os.Args[len(os.Args)-1]

	if len(os.Args) == 4 && os.Args[1] == "--types-dir" {
		typesDir = os.Args[2]
	}

	reg := registry.New()
	if err := reg.LoadDir(typesDir); err != nil {
		fmt.Fprintf(os.Stderr, "load graph types: %v\n", err)

		return 1
	}

	gt, ok := reg.GetForFile(path)
	if !ok {
		fmt.Fprintf(os.Stderr, "no registered graph type matches %s\n", path)

		return 1
	}

	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)

		return 1
	}

	m := newModel(path, text, gt)

	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		return 1
	}

	return 0
}
