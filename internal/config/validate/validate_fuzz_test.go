package validate

import (
	"strings"
	"testing"
)

// FuzzValidateAgainstSchema tests schema validation with various inputs
func FuzzValidateAgainstSchema(f *testing.F) {
	basicSchema := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"minVersion": {"type": "string"}
		},
		"required": ["name"]
	}`)

	f.Add("test-schema", basicSchema, []byte(`{"name": "docker", "minVersion": "1.10"}`), "")
	f.Add("test-schema", basicSchema, []byte(`{"name": "docker"}`), "")
	f.Add("test-schema", basicSchema, []byte(`{}`), "")
	f.Add("test-schema", basicSchema, []byte(`{"name": null}`), "")
	f.Add("test-schema", basicSchema, []byte(`invalid json`), "")
	f.Add("test-schema", basicSchema, []byte(`null`), "")
	f.Add("test-schema", basicSchema, []byte(`[]`), "")

	f.Fuzz(func(t *testing.T, name string, schema []byte, data []byte, ref string) {
		// Skip schema names the compiler cannot turn into a resource URL
		if name == "" || strings.Contains(name, "#") || len(name) < 3 {
			t.Skip("Skipping invalid schema name")
		}
		if len(schema) < 10 {
			t.Skip("Skipping too small schema")
		}

		// Must not panic; both outcomes are acceptable
		_ = ValidateAgainstSchema(name, schema, data, ref)
	})
}

// FuzzValidateGlobalConfigJSON tests configuration validation
func FuzzValidateGlobalConfigJSON(f *testing.F) {
	f.Add([]byte(`{"logging": {"level": "debug"}}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"distro": {"probes": []}}`))
	f.Add([]byte(`{"requirements": [{"name": "docker", "minVersion": "1.10"}]}`))
	f.Add([]byte(`invalid json`))
	f.Add([]byte(`null`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`{"unknown": "field"}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		_ = ValidateGlobalConfigJSON(data)
	})
}
