package ingest

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed trace.schema.json
var traceSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// traceSchema compiles the embedded record schema once per process.
func traceSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		const id = "https://hintscan.dev/trace.schema.json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(id, strings.NewReader(traceSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to register trace schema: %w", err)
			return
		}
		s, err := c.Compile(id)
		if err != nil {
			schemaErr = fmt.Errorf("failed to compile trace schema: %w", err)
			return
		}
		schema = s
	})
	return schema, schemaErr
}
