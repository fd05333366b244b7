package exact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadRecord reads and parses one result record from a JSON file.
// Errors here are harness failures, distinct from comparison discrepancies.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// ParseRecord parses a result record from raw JSON bytes.
//
// Numbers are kept as json.Number so that native score_bits_u64 integers
// above 2^53 survive without float64 truncation.
func ParseRecord(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	// A record file holds exactly one JSON document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse record: trailing data after JSON document")
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse record: root is not a JSON object")
	}
	return &Record{root: obj}, nil
}
