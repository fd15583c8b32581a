// Package schema compiles and validates graph-type schemas and resolves
// the $ref/$defs composition a domain-overlay schema needs before it can
// drive the node editor form.
//
// It splits two concerns the distilled design treats as one "schema" idea
// into the two real jobs they are: [Validator] compiles a schema once and
// reports data/schema mismatches with JSON-Pointer paths, using
// github.com/santhosh-tekuri/jsonschema/v6 because
// github.com/google/jsonschema-go/jsonschema (the struct representation
// internal/model's GraphType.Schema field and internal/mapping both use)
// models schema shape but does not itself validate instances. [Resolver]
// works purely in terms of that
// struct representation: it resolves $defs references, composes a base
// schema with a domain overlay via allOf, and walks properties into the
// recursive model.FieldSchema tree the node editor consumes.
package schema
