package yamlcst

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

// Sentinel errors returned by this package.
var (
	ErrParse = errors.New("parse yaml")
	ErrNoDoc = errors.New("document has no content")
)

// Parsed bundles a parsed document with its original source text and a
// generically-decoded data view, so that range/edit operations and data
// extraction both work from one parse.
type Parsed struct {
	Text []byte
	File *ast.File
	Body ast.Node
	// Data is the document decoded into generic Go values (map[string]any,
	// []any, and scalars), the same shape json.Unmarshal into `any` would
	// produce.
	Data any
}

// Parse parses text into a [Parsed] value using the first document in the
// file. Comments are retained.
func Parse(text []byte) (*Parsed, error) {
	file, err := parser.ParseBytes(text, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, ErrNoDoc
	}

	var data any

	if err := yaml.Unmarshal(text, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return &Parsed{
		Text: text,
		File: file,
		Body: file.Docs[0].Body,
		Data: data,
	}, nil
}

// splitPath splits a dot-path into segments, e.g. "nodes.start.label" ->
// ["nodes", "start", "label"]. An empty path yields no segments, meaning
// "the document root".
func splitPath(dotPath string) []string {
	if dotPath == "" {
		return nil
	}

	return strings.Split(dotPath, ".")
}

// segmentIndex reports whether seg is a sequence index, and its value.
func segmentIndex(seg string) (int, bool) {
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}

	return n, true
}

// resolve walks node along segments and returns the matching value node and,
// when the final step was a mapping key, the owning MappingValueNode (so
// callers can recover the key's own range too).
func resolve(node ast.Node, segments []string) (value ast.Node, entry *ast.MappingValueNode, ok bool) {
	if len(segments) == 0 {
		return node, nil, node != nil
	}

	seg := segments[0]
	rest := segments[1:]

	switch n := node.(type) {
	case *ast.MappingNode:
		for _, mvn := range n.Values {
			if mvn.Key.String() == seg {
				if len(rest) == 0 {
					return mvn.Value, mvn, true
				}

				return resolve(mvn.Value, rest)
			}
		}

		return nil, nil, false

	case *ast.MappingValueNode:
		if n.Key.String() == seg {
			if len(rest) == 0 {
				return n.Value, n, true
			}

			return resolve(n.Value, rest)
		}

		return nil, nil, false

	case *ast.SequenceNode:
		idx, isIdx := segmentIndex(seg)
		if !isIdx || idx < 0 || idx >= len(n.Values) {
			return nil, nil, false
		}

		if len(rest) == 0 {
			return n.Values[idx], nil, true
		}

		return resolve(n.Values[idx], rest)

	default:
		return nil, nil, false
	}
}

// tokenRange reports the byte range spanned by node and all of its
// descendants, found by walking the subtree and taking the min start / max
// end of every token encountered.
func tokenRange(node ast.Node) (model.SourceRange, bool) {
	v := &rangeVisitor{}

	ast.Walk(v, node)

	if !v.found {
		return model.SourceRange{}, false
	}

	return model.SourceRange{StartOffset: v.start, EndOffset: v.end}, true
}

type rangeVisitor struct {
	found bool
	start int
	end   int
}

func (v *rangeVisitor) Visit(node ast.Node) ast.Visitor {
	tok := node.GetToken()
	if tok != nil && tok.Position != nil {
		start := tok.Position.Offset

		end := start + len(tok.Value)
		if len(tok.Origin) > len(tok.Value) {
			end = start + len(tok.Origin)
		}

		if !v.found {
			v.found = true
			v.start = start
			v.end = end
		} else {
			if start < v.start {
				v.start = start
			}

			if end > v.end {
				v.end = end
			}
		}
	}

	return v
}

// SourceRange resolves dotPath against parsed and returns the byte range of
// the value found there.
func SourceRange(parsed *Parsed, dotPath string) (model.SourceRange, bool) {
	value, _, ok := resolve(parsed.Body, splitPath(dotPath))
	if !ok {
		return model.SourceRange{}, false
	}

	return tokenRange(value)
}

// MapEntryRange resolves dotPath and, if it names a mapping entry, returns
// the range spanning its key through its value (so a host can select or
// replace the whole "key: value" block).
func MapEntryRange(parsed *Parsed, dotPath string) (model.SourceRange, bool) {
	_, entry, ok := resolve(parsed.Body, splitPath(dotPath))
	if !ok || entry == nil {
		return SourceRange(parsed, dotPath)
	}

	return tokenRange(entry)
}

// OrderedMapKeys resolves dotPath to a mapping node and returns its keys in
// document order. Decoding the same path through [Parsed.Data] loses this
// order because Go map iteration is randomized; callers that must preserve
// YAML insertion order (e.g. node extraction) use this instead.
func OrderedMapKeys(parsed *Parsed, dotPath string) ([]string, bool) {
	value, _, ok := resolve(parsed.Body, splitPath(dotPath))
	if !ok {
		return nil, false
	}

	mapping, ok := value.(*ast.MappingNode)
	if !ok {
		return nil, false
	}

	keys := make([]string, 0, len(mapping.Values))
	for _, mvn := range mapping.Values {
		keys = append(keys, mvn.Key.String())
	}

	return keys, true
}

// FindNodeAtOffset scans the direct children of nodesPath (expected to be a
// mapping, e.g. "nodes") and returns the key of the child whose own range
// contains offset.
func FindNodeAtOffset(parsed *Parsed, offset int, nodesPath string) (string, bool) {
	value, _, ok := resolve(parsed.Body, splitPath(nodesPath))
	if !ok {
		return "", false
	}

	mapping, ok := value.(*ast.MappingNode)
	if !ok {
		return "", false
	}

	for _, mvn := range mapping.Values {
		r, rok := tokenRange(mvn)
		if !rok {
			continue
		}

		if offset >= r.StartOffset && offset < r.EndOffset {
			return mvn.Key.String(), true
		}
	}

	return "", false
}

// encodeScalar marshals newValue at the given indentation so it can be
// spliced in place of an existing node. Scalars are encoded inline; maps
// and sequences are encoded as a standalone YAML document and re-indented.
func encodeScalar(newValue any, indent int) (string, error) {
	out, err := yaml.MarshalWithOptions(newValue, yaml.Indent(2))
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}

	text := strings.TrimSuffix(string(out), "\n")

	switch newValue.(type) {
	case map[string]any, []any:
		pad := strings.Repeat(" ", indent)
		lines := strings.Split(text, "\n")

		for i := 1; i < len(lines); i++ {
			lines[i] = pad + lines[i]
		}

		return strings.Join(lines, "\n"), nil
	default:
		return text, nil
	}
}

// columnOf returns the 0-based column of offset on its line within text.
func columnOf(text []byte, offset int) int {
	col := 0

	for i := offset - 1; i >= 0 && text[i] != '\n'; i-- {
		col++
	}

	return col
}

// splice replaces the bytes in r within parsed.Text with replacement and
// returns the resulting document text.
func splice(parsed *Parsed, r model.SourceRange, replacement string) string {
	var b strings.Builder

	b.Write(parsed.Text[:r.StartOffset])
	b.WriteString(replacement)
	b.Write(parsed.Text[r.EndOffset:])

	return b.String()
}

// EditValue replaces the value at dotPath with newValue, re-encoding it at
// the original indentation, and returns the resulting document text. Only
// the bytes within the target node's range are touched; comments and
// siblings are preserved verbatim. A dotPath that does not resolve is a
// silent no-op: the original text is returned unchanged.
func EditValue(parsed *Parsed, dotPath string, newValue any) (string, error) {
	r, ok := SourceRange(parsed, dotPath)
	if !ok {
		return string(parsed.Text), nil
	}

	indent := columnOf(parsed.Text, r.StartOffset)

	replacement, err := encodeScalar(newValue, indent)
	if err != nil {
		return "", err
	}

	return splice(parsed, r, replacement), nil
}

// DeleteEntry removes the mapping entry or sequence item at dotPath,
// including its own line, and returns the resulting document text. A
// dotPath that does not resolve (including the document root, which
// cannot be deleted) is a silent no-op: the original text is returned
// unchanged.
func DeleteEntry(parsed *Parsed, dotPath string) (string, error) {
	segments := splitPath(dotPath)
	if len(segments) == 0 {
		return string(parsed.Text), nil
	}

	_, entry, ok := resolve(parsed.Body, segments)

	var r model.SourceRange

	var rok bool

	if ok && entry != nil {
		r, rok = tokenRange(entry)
	} else {
		r, rok = SourceRange(parsed, dotPath)
	}

	if !rok {
		return string(parsed.Text), nil
	}

	start, end := expandToWholeLines(parsed.Text, r)

	return splice(parsed, model.SourceRange{StartOffset: start, EndOffset: end}, ""), nil
}

// expandToWholeLines extends r to cover the full line(s) it sits on,
// including the trailing newline, so deleting it does not leave a blank
// line behind.
func expandToWholeLines(text []byte, r model.SourceRange) (int, int) {
	start := r.StartOffset
	for start > 0 && text[start-1] != '\n' {
		start--
	}

	end := r.EndOffset
	for end < len(text) && text[end] != '\n' {
		end++
	}

	if end < len(text) {
		end++
	}

	return start, end
}

// AddMapEntry inserts a new "key: value" entry into the mapping at
// dotPath, appending it after the last existing entry. A dotPath that does
// not resolve to a non-empty mapping is a silent no-op: the original text
// is returned unchanged.
func AddMapEntry(parsed *Parsed, dotPath, key string, value any) (string, error) {
	var (
		target ast.Node
		ok     bool
	)

	if dotPath == "" {
		target, ok = parsed.Body, true
	} else {
		target, _, ok = resolve(parsed.Body, splitPath(dotPath))
	}

	if !ok {
		return string(parsed.Text), nil
	}

	mapping, isMap := target.(*ast.MappingNode)
	if !isMap || len(mapping.Values) == 0 {
		return string(parsed.Text), nil
	}

	last := mapping.Values[len(mapping.Values)-1]

	r, rok := tokenRange(last)
	if !rok {
		return string(parsed.Text), nil
	}

	indent := columnOf(parsed.Text, r.StartOffset)

	encoded, err := encodeScalar(value, indent+2)
	if err != nil {
		return "", err
	}

	line := "\n" + strings.Repeat(" ", indent) + key + ": " + encoded

	switch value.(type) {
	case map[string]any, []any:
		// A block collection starts on its own line, one level deeper.
		line = "\n" + strings.Repeat(" ", indent) + key + ":\n" + strings.Repeat(" ", indent+2) + encoded
	}

	return splice(parsed, model.SourceRange{StartOffset: r.EndOffset, EndOffset: r.EndOffset}, line), nil
}

// AppendToSequence appends value as a new "- " item at the end of the
// sequence at dotPath. A dotPath that does not resolve to a non-empty
// sequence is a silent no-op: the original text is returned unchanged.
func AppendToSequence(parsed *Parsed, dotPath string, value any) (string, error) {
	target, _, ok := resolve(parsed.Body, splitPath(dotPath))
	if !ok {
		return string(parsed.Text), nil
	}

	seq, isSeq := target.(*ast.SequenceNode)
	if !isSeq || len(seq.Values) == 0 {
		return string(parsed.Text), nil
	}

	last := seq.Values[len(seq.Values)-1]

	r, rok := tokenRange(last)
	if !rok {
		return string(parsed.Text), nil
	}

	indent := columnOf(parsed.Text, r.StartOffset)
	if indent >= 2 {
		indent -= 2
	}

	encoded, err := encodeScalar(value, indent+2)
	if err != nil {
		return "", err
	}

	line := "\n" + strings.Repeat(" ", indent) + "- " + encoded

	return splice(parsed, model.SourceRange{StartOffset: r.EndOffset, EndOffset: r.EndOffset}, line), nil
}
