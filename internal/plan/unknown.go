package plan

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dssim-tools/bitcert/internal/errors"
)

// LoadWithWarnings parses plan data and returns any unknown key warnings.
// A plan that does not parse is a usage error: the file came from the user.
func LoadWithWarnings(data []byte) (*Plan, []string, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, nil, errors.Usagef("failed to parse plan file: %v", err)
	}

	// Detect unknown keys
	warnings := detectUnknownKeys(data)

	return &p, warnings, nil
}

// detectUnknownKeys compares raw YAML with known struct fields.
// Note: Since this is called after successful Plan parsing, a parse failure
// here would indicate an unexpected internal inconsistency.
func detectUnknownKeys(data []byte) []string {
	var warnings []string

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// This should never happen since the data was already parsed successfully.
		// Return a warning so the condition is visible rather than silently ignored.
		return []string{"internal: failed to re-parse plan for unknown key detection"}
	}

	knownTopLevel := getYAMLFields(reflect.TypeOf(Plan{}))
	for key := range raw {
		if !knownTopLevel[key] {
			warnings = append(warnings, fmt.Sprintf("unknown key %q at top level (ignored)", key))
		}
	}

	// Check nested unknown keys in buffer entries
	if buffersRaw, ok := raw["buffers"]; ok {
		bufferWarnings := checkBufferUnknownKeys(buffersRaw)
		warnings = append(warnings, bufferWarnings...)
	}

	return warnings
}

func checkBufferUnknownKeys(node yaml.Node) []string {
	var warnings []string

	var entries []map[string]yaml.Node
	if err := node.Decode(&entries); err != nil {
		// Should not happen since Plan.Buffers parsed successfully.
		return []string{"internal: failed to re-parse buffers for unknown key detection"}
	}

	knownBufferFields := getYAMLFields(reflect.TypeOf(BufferCheck{}))
	for i, entry := range entries {
		for key := range entry {
			if !knownBufferFields[key] {
				warnings = append(warnings, fmt.Sprintf("unknown key %q in buffers[%d] (ignored)", key, i))
			}
		}
	}

	return warnings
}

// getYAMLFields returns a map of known YAML key names for a struct type.
func getYAMLFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		// Extract key name from tag (before comma)
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}
