package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/config.schema.json
var globalConfigSchema []byte

const globalConfigSchemaName = "config.schema.json"

// ValidateGlobalConfigJSON validates a configuration document, already
// converted to JSON, against the embedded schema.
func ValidateGlobalConfigJSON(data []byte) error {
	return ValidateAgainstSchema(globalConfigSchemaName, globalConfigSchema, data, "")
}

// ValidateAgainstSchema compiles schema under name and validates data with
// it. A non-empty ref selects a subschema, e.g. "/definitions/requirement".
func ValidateAgainstSchema(name string, schema []byte, data []byte, ref string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("loading schema %s: %w", name, err)
	}

	target := name
	if ref != "" {
		target = name + "#" + strings.TrimPrefix(ref, "#")
	}
	sch, err := compiler.Compile(target)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", target, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%s validation failed: %w", name, err)
	}
	return nil
}
