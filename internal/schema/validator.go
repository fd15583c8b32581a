package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/google/jsonschema-go/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"go.jacobcolvin.com/graphdoc/internal/model"
)

// ErrCompile indicates a schema failed to compile.
var ErrCompile = errors.New("compile schema")

// resourceURL is the synthetic resource identity every schema is compiled
// under. Callers never see it; it only exists because the underlying
// compiler addresses schemas by URL.
const resourceURL = "graphdoc://schema"

// Validator compiles a [gojsonschema.Schema] once and validates decoded
// YAML/JSON data against it, translating failures into
// [model.ValidationError] values with JSON-Pointer paths.
//
// A Validator is immutable after construction and safe for concurrent use.
// Since compilation is the expensive step, [NewValidator] caches each
// Validator by schema pointer; that cache has no clear operation.
type Validator struct {
	compiled *jsonschema.Schema
}

var compileCache sync.Map // *gojsonschema.Schema -> *Validator

// NewValidator compiles schema into a [Validator]. The $schema and $id
// meta-keys are ignored during compilation to avoid draft-detection
// surprises: every schema in this module is compiled under the compiler's
// default draft regardless of what it declares.
func NewValidator(s *gojsonschema.Schema) (*Validator, error) {
	if cached, ok := compileCache.Load(s); ok {
		return cached.(*Validator), nil
	}

	doc, err := toCompilerDoc(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	v := &Validator{compiled: compiled}
	compileCache.Store(s, v)

	return v, nil
}

// toCompilerDoc marshals s to JSON and decodes it back into a generic
// document, stripping $schema/$id so the compiler cannot get confused about
// draft version or resource identity.
func toCompilerDoc(s *gojsonschema.Schema) (any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	var doc map[string]any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	delete(doc, "$schema")
	delete(doc, "$id")

	return doc, nil
}

// Validate checks data against the compiled schema and returns every
// violation found, in encounter order. A nil/empty result means data is
// valid.
func (v *Validator) Validate(data any) []model.ValidationError {
	err := v.compiled.Validate(data)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []model.ValidationError{{
			Path:     "/",
			Message:  err.Error(),
			Severity: model.SeverityError,
		}}
	}

	var out []model.ValidationError

	collectCauses(verr, &out)

	if len(out) == 0 {
		out = append(out, model.ValidationError{
			Path:     "/",
			Message:  verr.Error(),
			Severity: model.SeverityError,
		})
	}

	return out
}

// collectCauses flattens the validation error tree into leaf violations;
// leaves carry the most specific instance location and are the ones worth
// surfacing to a user pointing at a field.
func collectCauses(verr *jsonschema.ValidationError, out *[]model.ValidationError) {
	if len(verr.Causes) == 0 {
		*out = append(*out, model.ValidationError{
			Path:     pointerPath(verr.InstanceLocation),
			Message:  verr.Error(),
			Severity: model.SeverityError,
		})

		return
	}

	for _, cause := range verr.Causes {
		collectCauses(cause, out)
	}
}

// pointerPath joins the location segments the underlying validator reports
// into a "/"-rooted JSON Pointer.
func pointerPath(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}

	return "/" + strings.Join(segments, "/")
}
