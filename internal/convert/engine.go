package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/internal/schema"
	"go.jacobcolvin.com/graphdoc/internal/transform"
	"go.jacobcolvin.com/graphdoc/internal/yamlcst"
)

const bodyIndent = "    "

// Callbacks lets a host extend conversion without forking the engine: every
// hook is optional and called synchronously during Convert.
type Callbacks struct {
	// Prepare runs before parsing, only via ConvertWithPrepare. An error
	// is logged and conversion proceeds.
	Prepare func(ctx context.Context) error
	// SetMermaidType is called once the mapping's mermaidType is known.
	SetMermaidType func(mermaidType string)
	// OnNodeEmit receives the default rendering for a node and may return
	// extra lines appended after it.
	OnNodeEmit func(id string, node model.NodeData, lines []string) []string
	// OnEdgeEmit receives the default rendering for an edge and may return
	// extra lines appended after it.
	OnEdgeEmit func(edge model.EdgeData, lines []string) []string
	// OnComplete receives the id of every node emitted, in order (edges
	// have no ids and are not included), and the full body so far, and may
	// return extra trailing lines.
	OnComplete func(allIDs []string, output []string) []string
}

// Engine converts YAML graph documents into Mermaid source.
//
// Create instances with [NewEngine]. An Engine is safe for concurrent use
// once constructed.
type Engine struct {
	transforms *transform.Runtime
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTransformRuntime overrides the runtime used to execute transform
// scripts. Useful for sharing one runtime (and its compiled-pattern cache)
// across many engines.
func WithTransformRuntime(rt *transform.Runtime) Option {
	return func(e *Engine) {
		if rt != nil {
			e.transforms = rt
		}
	}
}

// WithEngineLogger overrides the logger used to report recovered panics.
func WithEngineLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine with a default transform runtime.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{transforms: transform.NewRuntime(), logger: slog.Default()}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Convert parses text as a graph document of type gt and renders Mermaid
// source. It never returns an error for malformed graph data; conversion
// problems surface as Errors on the result instead. Text that fails to
// parse as YAML is reported the same way, as an Error at "/".
func (e *Engine) Convert(text []byte, gt model.GraphType) (result model.ConversionResult, err error) {
	return e.ConvertWithCallbacks(text, gt, nil)
}

// ConvertWithCallbacks is Convert with host extension points.
func (e *Engine) ConvertWithCallbacks(text []byte, gt model.GraphType, cb *Callbacks) (result model.ConversionResult, err error) {
	return e.convert(text, gt, cb)
}

// ConvertWithPrepare runs cb.Prepare(ctx) before parsing, then behaves like
// ConvertWithCallbacks. If Prepare returns an error, the error is logged
// and conversion still runs.
func (e *Engine) ConvertWithPrepare(ctx context.Context, text []byte, gt model.GraphType, cb *Callbacks) (model.ConversionResult, error) {
	if cb != nil && cb.Prepare != nil {
		if err := cb.Prepare(ctx); err != nil {
			e.logger.Warn("prepare failed, converting anyway", slog.Any("error", err))
		}
	}

	return e.convert(text, gt, cb)
}

// convert is the shared implementation. A panic anywhere in the pipeline
// (a malformed mapping indexing past a slice, for instance) is recovered
// and reported as a single ValidationError rather than crashing the host.
func (e *Engine) convert(text []byte, gt model.GraphType, cb *Callbacks) (result model.ConversionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("conversion panicked", slog.Any("recover", r))

			result.Errors = append(result.Errors, model.ValidationError{
				Path:     "/",
				Message:  fmt.Sprintf("internal error: %v", r),
				Severity: model.SeverityError,
			})
		}
	}()

	parsed, perr := yamlcst.Parse(text)
	if perr != nil {
		return model.ConversionResult{
			Errors: []model.ValidationError{{Path: "/", Message: perr.Error(), Severity: model.SeverityError}},
		}, nil
	}

	mapping := gt.Mapping

	var validationErrs []model.ValidationError

	if gt.Schema != nil {
		v, verr := schema.NewValidator(gt.Schema)
		if verr != nil {
			validationErrs = append(validationErrs, model.ValidationError{
				Path: "/", Message: verr.Error(), Severity: model.SeverityWarning,
			})
		} else {
			validationErrs = v.Validate(parsed.Data)
		}
	}

	if cb != nil && cb.SetMermaidType != nil {
		cb.SetMermaidType(mapping.Map.MermaidType)
	}

	nodes, nodeMap, nerr := extractNodes(parsed, mapping.NodeShapes)
	if nerr != nil {
		validationErrs = append(validationErrs, model.ValidationError{
			Path: "/" + strings.ReplaceAll(mapping.NodeShapes.SourcePath, ".", "/"), Message: nerr.Error(), Severity: model.SeverityError,
		})

		nodes = nil
		nodeMap = map[string]model.SourceRange{}
	}

	edges, edgeMap, eerr := extractEdges(parsed, nodes, mapping.NodeShapes.SourcePath, mapping.EdgeLinks)
	if eerr != nil {
		validationErrs = append(validationErrs, model.ValidationError{
			Path: "/" + strings.ReplaceAll(mapping.EdgeLinks.SourcePath, ".", "/"), Message: eerr.Error(), Severity: model.SeverityError,
		})

		edges = nil
		edgeMap = map[int]model.SourceRange{}
	}

	tctx := transform.Context{AllNodes: nodes, AllEdges: edges, Mapping: mapping}

	var body []string

	var allIDs []string

	body = append(body, e.emitInitialConnector(mapping, nodes)...)

	for _, n := range nodes {
		lines := e.renderNode(mapping, tctx, n)

		if cb != nil && cb.OnNodeEmit != nil {
			lines = append(lines, cb.OnNodeEmit(n.ID, n, lines)...)
		}

		body = append(body, lines...)
		allIDs = append(allIDs, n.ID)
	}

	for _, ed := range edges {
		lines := e.renderEdge(mapping, tctx, ed)

		if cb != nil && cb.OnEdgeEmit != nil {
			lines = append(lines, cb.OnEdgeEmit(ed, lines)...)
		}

		body = append(body, lines...)
	}

	body = append(body, e.emitFinalConnectors(mapping, nodes)...)
	body = append(body, e.emitStyleLines(mapping, nodes)...)

	if cb != nil && cb.OnComplete != nil {
		body = append(body, cb.OnComplete(allIDs, body)...)
	}

	source := assembleSource(header(mapping), body)

	return model.ConversionResult{
		MermaidSource: source,
		Errors:        validationErrs,
		NodeMap:       nodeMap,
		EdgeMap:       edgeMap,
	}, nil
}

func header(mapping *model.GraphMapping) string {
	switch mapping.Map.MermaidType {
	case "erDiagram":
		return erHeader()
	case "stateDiagram-v2":
		return stateHeader()
	default:
		return flowchartHeader(mapping)
	}
}

func (e *Engine) emitInitialConnector(mapping *model.GraphMapping, nodes []model.NodeData) []string {
	if mapping.Map.MermaidType != "stateDiagram-v2" {
		return nil
	}

	return stateConnectors(mapping, nodes, nodeTypeInitial)
}

func (e *Engine) emitFinalConnectors(mapping *model.GraphMapping, nodes []model.NodeData) []string {
	if mapping.Map.MermaidType != "stateDiagram-v2" {
		return nil
	}

	return stateConnectors(mapping, nodes, nodeTypeFinal)
}

func (e *Engine) emitStyleLines(mapping *model.GraphMapping, nodes []model.NodeData) []string {
	var lines []string

	for _, n := range nodes {
		if line, ok := styleLine(mapping, mapping.Map.MermaidType, n); ok {
			lines = append(lines, line)
		}
	}

	return lines
}

func (e *Engine) renderNode(mapping *model.GraphMapping, tctx transform.Context, n model.NodeData) []string {
	var def []string

	switch mapping.Map.MermaidType {
	case "erDiagram":
		def = renderERNode(n)
	case "stateDiagram-v2":
		def = renderStateNode(mapping, n)
	default:
		def = renderFlowchartNode(mapping, n)
	}

	return e.applyTransforms(model.ScopeNode, transform.NodeJS(n), tctx, n.Fields, def)
}

func (e *Engine) renderEdge(mapping *model.GraphMapping, tctx transform.Context, ed model.EdgeData) []string {
	var def []string

	switch mapping.Map.MermaidType {
	case "erDiagram":
		def = renderEREdge(mapping, ed)
	case "stateDiagram-v2":
		def = renderStateEdge(mapping, ed)
	default:
		def = renderFlowchartEdge(mapping, ed)
	}

	return e.applyTransforms(model.ScopeEdge, transform.EdgeJS(ed), tctx, ed.Fields, def)
}

// applyTransforms walks the mapping's transform rules in declaration order
// and runs the first one whose scope and match predicate select element,
// replacing def. A script that errors, times out, or returns something
// other than a string array leaves def untouched.
func (e *Engine) applyTransforms(scope model.TransformScope, element map[string]any, tctx transform.Context, fields map[string]any, def []string) []string {
	for _, rule := range tctx.Mapping.Transforms {
		if rule.Scope != scope {
			continue
		}

		if !e.transforms.Matches(rule.Match, fields) {
			continue
		}

		return e.transforms.Run(rule.JS, element, tctx, def)
	}

	return def
}

func assembleSource(headerLine string, body []string) string {
	var b strings.Builder

	b.WriteString(headerLine)

	for _, line := range body {
		b.WriteString("\n")
		b.WriteString(bodyIndent)
		b.WriteString(line)
	}

	return b.String()
}
