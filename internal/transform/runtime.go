package transform

import (
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/dop251/goja"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

const defaultTimeout = 500 * time.Millisecond

// Context is the second argument passed to every transform script.
type Context struct {
	AllNodes []model.NodeData
	AllEdges []model.EdgeData
	Mapping  *model.GraphMapping
}

// Runtime executes transform scripts in isolated goja VMs, one per call, so
// that no state or pending timer leaks between elements.
//
// Create instances with [NewRuntime]. A Runtime is safe for concurrent use.
type Runtime struct {
	timeout      time.Duration
	patternCache sync.Map // pattern string -> *regexp.Regexp
	logger       *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout overrides the default 500ms per-script execution budget.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger overrides the logger used to report isolated script failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRuntime creates a Runtime with a 500ms default per-script timeout.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{timeout: defaultTimeout, logger: slog.Default()}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Matches reports whether match selects an element whose field values are
// fields. A match with no Field applies to every element in scope; a match
// with a Field but no predicate applies to elements that have that field.
func (rt *Runtime) Matches(match model.TransformMatch, fields map[string]any) bool {
	if match.Field == "" {
		return true
	}

	val, exists := fields[match.Field]

	switch {
	case match.Exists != nil:
		return exists == *match.Exists

	case match.Equals != nil:
		return exists && val == match.Equals

	case match.Pattern != "":
		if !exists {
			return false
		}

		s, ok := val.(string)
		if !ok {
			return false
		}

		re, err := rt.compilePattern(match.Pattern)
		if err != nil {
			rt.logger.Warn("transform match pattern invalid", slog.String("pattern", match.Pattern), slog.Any("error", err))

			return false
		}

		return re.MatchString(s)

	default:
		return exists
	}
}

func (rt *Runtime) compilePattern(pattern string) (*regexp.Regexp, error) {
	if v, ok := rt.patternCache.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	rt.patternCache.Store(pattern, re)

	return re, nil
}

// Run executes js as `(function(element, ctx) { <js> })(element, ctx)` in a
// fresh, time-boxed VM. fallback is exposed to the script as ctx.output and
// is what Run returns when the script errors or times out. When the script
// returns anything other than an array of strings, Run returns ctx.output
// if it then exports as an array of strings, and fallback otherwise.
func (rt *Runtime) Run(js string, element map[string]any, ctx Context, fallback []string) []string {
	vm := goja.New()

	timer := time.AfterFunc(rt.timeout, func() {
		vm.Interrupt("transform execution timed out")
	})
	defer timer.Stop()

	if err := vm.Set("element", element); err != nil {
		rt.logger.Warn("transform setup failed", slog.Any("error", err))

		return fallback
	}

	ctxValue := map[string]any{
		"allNodes": nodesToJS(ctx.AllNodes),
		"allEdges": edgesToJS(ctx.AllEdges),
		"output":   append([]string{}, fallback...),
	}

	if err := vm.Set("ctx", ctxValue); err != nil {
		rt.logger.Warn("transform setup failed", slog.Any("error", err))

		return fallback
	}

	wrapped := "(function(element, ctx) {\n" + js + "\n})(element, ctx)"

	val, err := vm.RunString(wrapped)
	if err != nil {
		rt.logger.Warn("transform execution failed", slog.Any("error", err))

		return fallback
	}

	if lines, ok := exportStringSlice(val.Export()); ok {
		return lines
	}

	// Fall back to ctx.output, which the script may have mutated in place
	// instead of returning.
	if ctxOut, ok := vm.Get("ctx").Export().(map[string]any); ok {
		if lines, ok := exportStringSlice(ctxOut["output"]); ok {
			return lines
		}
	}

	rt.logger.Warn("transform returned a non-array value, using fallback")

	return fallback
}

func exportStringSlice(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}

	lines := make([]string, 0, len(arr))

	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}

		lines = append(lines, s)
	}

	return lines, true
}

// NodeJS flattens a NodeData into the plain map a transform script sees as
// `element`.
func NodeJS(n model.NodeData) map[string]any {
	m := make(map[string]any, len(n.Fields)+4)

	for k, v := range n.Fields {
		m[k] = v
	}

	m["id"] = n.ID
	m["shape"] = n.Shape
	m["type"] = n.Type
	m["subtype"] = n.Subtype

	return m
}

// EdgeJS flattens an EdgeData into the plain map a transform script sees as
// `element`.
func EdgeJS(e model.EdgeData) map[string]any {
	m := make(map[string]any, len(e.Fields)+2)

	for k, v := range e.Fields {
		m[k] = v
	}

	m["from"] = e.From
	m["to"] = e.To

	return m
}

func nodesToJS(nodes []model.NodeData) []map[string]any {
	out := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		out[i] = NodeJS(n)
	}

	return out
}

func edgesToJS(edges []model.EdgeData) []map[string]any {
	out := make([]map[string]any, len(edges))
	for i, e := range edges {
		out[i] = EdgeJS(e)
	}

	return out
}
