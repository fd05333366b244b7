// Package schema provides JSON schema validation for pipeline record files.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/dssim-tools/bitcert/schema"
)

var (
	recordSchema *jsonschema.Schema
	compileOnce  sync.Once
	compileErr   error
)

// compileSchemas compiles all embedded schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		recordData, err := schemafs.FS.ReadFile("record.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read record schema: %w", err)
			return
		}

		recordDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(recordData))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal record schema: %w", err)
			return
		}

		if err := compiler.AddResource("record.schema.json", recordDoc); err != nil {
			compileErr = fmt.Errorf("add record schema resource: %w", err)
			return
		}

		recordSchema, err = compiler.Compile("record.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile record schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateRecord validates JSON data against the record schema.
func ValidateRecord(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := recordSchema.Validate(v); err != nil {
		return fmt.Errorf("record validation failed: %w", err)
	}

	return nil
}
