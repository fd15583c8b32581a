package convert_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/graphdoc/internal/convert"
	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/stringtest"
)

func flowchartMapping() *model.GraphMapping {
	return &model.GraphMapping{
		Map: model.MapSection{
			ID: "flow", Version: 1, MermaidType: "flowchart", DefaultDirection: "TD",
		},
		NodeShapes: model.NodeShapesSection{
			SourcePath: "nodes", IDField: "_key", LabelField: "label",
			DefaultShapes: map[string]string{
				"start": "start", "decision": "decision", "subroutine": "subroutine",
			},
			Shapes: map[string]string{
				"start":      `(["{label}"])`,
				"decision":   `{"{label}"}`,
				"subroutine": `[["{label}"]]`,
			},
		},
		EdgeLinks: model.EdgeLinksSection{
			SourcePath: "edges", FromField: "from", ToField: "to",
			LinkStyles: map[string]string{"default": "-->"},
		},
		StyleRules: &model.StyleRulesSection{
			Field: "status",
			Rules: map[string]model.StyleRuleEntry{
				"active": {Fill: "#d4edda", Stroke: "#000", Color: "#000"},
			},
		},
	}
}

func TestConvertFlowchartWithStyles(t *testing.T) {
	t.Parallel()

	text := []byte(stringtest.JoinLF(
		"nodes:",
		"  start: {type: start, label: Begin}",
		`  test:  {type: decision, label: "Tests Pass?", status: active}`,
		`  deploy: {type: subroutine, label: "Deploy to Staging"}`,
		"edges: []",
	))

	gt := model.GraphType{ID: "flow", Version: 1, Mapping: flowchartMapping()}

	eng := convert.NewEngine()

	result, err := eng.Convert(text, gt)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.MermaidSource, "flowchart TD"))
	assert.Contains(t, result.MermaidSource, `start(["Begin"])`)
	assert.Contains(t, result.MermaidSource, `test{"Tests Pass?"}`)
	assert.Contains(t, result.MermaidSource, `deploy[["Deploy to Staging"]]`)
	assert.Contains(t, result.MermaidSource, "style test fill:#d4edda,stroke:#000,color:#000")

	assert.Contains(t, result.NodeMap, "start")
	assert.Contains(t, result.NodeMap, "test")
	assert.Contains(t, result.NodeMap, "deploy")
}

func stateMapping() *model.GraphMapping {
	return &model.GraphMapping{
		Map: model.MapSection{ID: "state", Version: 1, MermaidType: "stateDiagram-v2"},
		NodeShapes: model.NodeShapesSection{
			SourcePath: "states", IDField: "_key", LabelField: "label",
		},
		EdgeLinks: model.EdgeLinksSection{
			SourcePath: "transitions", FromField: "from", ToField: "to",
		},
	}
}

func TestConvertStateMachineWithInitialAndFinal(t *testing.T) {
	t.Parallel()

	text := []byte(stringtest.JoinLF(
		"states:",
		"  init: {type: initial}",
		"  pending: {type: default, label: Pending}",
		"  completed: {type: final}",
		"transitions:",
		"  - from: init",
		"    to: pending",
		"    event: submit",
		"  - from: pending",
		"    to: completed",
		"    event: approve",
		"    guard: isValid",
	))

	gt := model.GraphType{ID: "state", Version: 1, Mapping: stateMapping()}

	eng := convert.NewEngine()

	result, err := eng.Convert(text, gt)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.MermaidSource, "stateDiagram-v2"))
	assert.Contains(t, result.MermaidSource, "[*] --> init")
	assert.Contains(t, result.MermaidSource, "pending : Pending")
	assert.Contains(t, result.MermaidSource, "pending --> completed : approve [isValid]")
	assert.Contains(t, result.MermaidSource, "completed --> [*]")
	assert.NotContains(t, result.MermaidSource, "init :")
}

func erMapping() *model.GraphMapping {
	return &model.GraphMapping{
		Map: model.MapSection{ID: "er", Version: 1, MermaidType: "erDiagram"},
		NodeShapes: model.NodeShapesSection{
			SourcePath: "entities", IDField: "_key",
		},
		EdgeLinks: model.EdgeLinksSection{
			SourcePath: "relations", FromField: "from", ToField: "to", LabelField: "label",
		},
	}
}

func TestConvertERDiagram(t *testing.T) {
	t.Parallel()

	text := []byte(stringtest.JoinLF(
		"entities:",
		"  User:",
		"    attributes:",
		"      - {type: int, name: id, key: PK}",
		"      - {type: string, name: email}",
		"relations:",
		"  - from: User",
		"    to: Role",
		"    type: many-to-one",
		"    label: has",
	))

	gt := model.GraphType{ID: "er", Version: 1, Mapping: erMapping()}

	eng := convert.NewEngine()

	result, err := eng.Convert(text, gt)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.MermaidSource, "erDiagram"))
	assert.Contains(t, result.MermaidSource, "User {")
	assert.Contains(t, result.MermaidSource, "int id PK")
	assert.Contains(t, result.MermaidSource, "string email")
	assert.Contains(t, result.MermaidSource, `User }o--|| Role : "has"`)
}

func TestConvertSanitizesFlowchartIDsButNotNodeMapKeys(t *testing.T) {
	t.Parallel()

	text := []byte(stringtest.JoinLF(
		"nodes:",
		"  node-a: {type: start, label: Start}",
		"edges: []",
	))

	gt := model.GraphType{ID: "flow", Version: 1, Mapping: flowchartMapping()}

	eng := convert.NewEngine()

	result, err := eng.Convert(text, gt)
	require.NoError(t, err)

	assert.Contains(t, result.MermaidSource, `node_a(["Start"])`)
	assert.Contains(t, result.NodeMap, "node-a")
	assert.NotContains(t, result.NodeMap, "node_a")
}

func TestSanitizeIDIdempotent(t *testing.T) {
	t.Parallel()

	id := convert.SanitizeID("flowchart", "node-a-b")
	assert.Equal(t, id, convert.SanitizeID("flowchart", id))
}

func TestSanitizeIDSkipsERAndState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "node-a", convert.SanitizeID("erDiagram", "node-a"))
	assert.Equal(t, "node-a", convert.SanitizeID("stateDiagram-v2", "node-a"))
}

func TestConvertColocatedEdges(t *testing.T) {
	t.Parallel()

	mapping := &model.GraphMapping{
		Map: model.MapSection{ID: "state", Version: 1, MermaidType: "stateDiagram-v2"},
		NodeShapes: model.NodeShapesSection{
			SourcePath: "states", IDField: "_key",
		},
		EdgeLinks: model.EdgeLinksSection{
			SourcePath: "states.*.transitions", FromImplicit: "_parent_key", ToField: "to",
		},
	}

	text := []byte(stringtest.JoinLF(
		"states:",
		"  init: {type: initial, transitions: [{to: pending}]}",
		"  pending: {type: final}",
	))

	gt := model.GraphType{ID: "state", Version: 1, Mapping: mapping}

	eng := convert.NewEngine()

	result, err := eng.Convert(text, gt)
	require.NoError(t, err)

	assert.Contains(t, result.MermaidSource, "init --> pending")
	assert.Len(t, result.EdgeMap, 1)
}

func TestConvertTransformFirstMatchWins(t *testing.T) {
	t.Parallel()

	mapping := flowchartMapping()
	exists := true
	mapping.Transforms = []model.TransformRule{
		{
			Scope: model.ScopeNode,
			Match: model.TransformMatch{Field: "label", Exists: &exists},
			JS:    `return ["first"];`,
		},
		{
			Scope: model.ScopeNode,
			Match: model.TransformMatch{Field: "label", Exists: &exists},
			JS:    `return ["second"];`,
		},
	}

	text := []byte(stringtest.JoinLF(
		"nodes:",
		"  start: {type: start, label: Begin}",
		"edges: []",
	))

	gt := model.GraphType{ID: "flow", Version: 1, Mapping: mapping}

	eng := convert.NewEngine()

	result, err := eng.Convert(text, gt)
	require.NoError(t, err)

	assert.Contains(t, result.MermaidSource, "first")
	assert.NotContains(t, result.MermaidSource, "second")
}

func TestConvertTransformFallsBackOnFailure(t *testing.T) {
	t.Parallel()

	mapping := flowchartMapping()
	mapping.Transforms = []model.TransformRule{
		{Scope: model.ScopeNode, Match: model.TransformMatch{}, JS: `throw new Error("boom");`},
	}

	text := []byte(stringtest.JoinLF(
		"nodes:",
		"  start: {type: start, label: Begin}",
		"edges: []",
	))

	gt := model.GraphType{ID: "flow", Version: 1, Mapping: mapping}

	eng := convert.NewEngine()

	result, err := eng.Convert(text, gt)
	require.NoError(t, err)

	assert.Contains(t, result.MermaidSource, `start(["Begin"])`)
}

func TestConvertReturnsParseErrorWithoutCrashing(t *testing.T) {
	t.Parallel()

	gt := model.GraphType{ID: "flow", Version: 1, Mapping: flowchartMapping()}

	eng := convert.NewEngine()

	result, err := eng.Convert([]byte("nodes: [unterminated"), gt)
	require.NoError(t, err)
	assert.Empty(t, result.MermaidSource)
	require.Len(t, result.Errors, 1)
}
