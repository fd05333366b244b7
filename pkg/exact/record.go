// Package exact implements the exact-match comparison policy for DSSIM
// pipeline run records: the score comparison across its three
// representations (opaque text, raw 64-bit pattern, floating-point value)
// and the typed first-divergence diff of debug buffer dumps.
//
// Equality is always bit-exact. Floating-point values compare by their
// IEEE-754 bit patterns, never by numeric ==, so signed zeros and NaN
// payload differences are mismatches. There is no tolerance mode.
//
// Example usage:
//
//	ref, err := exact.LoadRecord("ref.json")
//	if err != nil {
//	    return err
//	}
//	gpu, err := exact.LoadRecord("gpu.json")
//	if err != nil {
//	    return err
//	}
//
//	report, err := exact.CompareScores(ref, gpu)
//	if err != nil {
//	    return err
//	}
//	report = append(report, exact.CompareBuffer(ref, gpu, "stage0_mu1_f32le", "")...)
//	if report.Passed() {
//	    fmt.Println("exact match")
//	}
package exact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Record is a single pipeline run's result record.
//
// Records are loosely structured: every field is optional, and absence is
// meaningful rather than an error. Accessors report presence with an ok
// result instead of failing, which keeps the "check does not apply" case
// distinct from a malformed record. Unknown fields are ignored.
type Record struct {
	root map[string]any
}

// InputPair is an order-significant pair of source identifiers.
type InputPair struct {
	Image1 string
	Image2 string
}

// BufferRef locates one debug dump: a path to a flat binary file and the
// declared element type, if any. A bare-string debug_dumps entry resolves
// to a BufferRef with an empty ElemType.
type BufferRef struct {
	Path     string
	ElemType string
}

// lookup walks nested objects by key. A JSON null anywhere on the path is
// reported as absent, matching the record contract that null and missing
// are equivalent.
func (r *Record) lookup(keys ...string) (any, bool) {
	var cur any = r.root
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// scoreField reads a score field from result.<name>, falling back to the
// record's top level for older producer generations.
func (r *Record) scoreField(name string) (any, bool) {
	if v, ok := r.lookup("result", name); ok {
		return v, true
	}
	return r.lookup(name)
}

// scalarText renders a JSON scalar as a string. Containers report false.
func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Status returns the record's top-level status tag. An empty status is
// treated as absent.
func (r *Record) Status() (string, bool) {
	v, ok := r.lookup("status")
	if !ok {
		return "", false
	}
	s, ok := scalarText(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// InputPair returns the record's input pair. The pair counts as populated
// only when both identifiers are present strings; any other shape means
// the input-pair check does not apply to this record.
func (r *Record) InputPair() (InputPair, bool) {
	v1, ok1 := r.lookup("input", "image1")
	v2, ok2 := r.lookup("input", "image2")
	if !ok1 || !ok2 {
		return InputPair{}, false
	}
	s1, ok1 := v1.(string)
	s2, ok2 := v2.(string)
	if !ok1 || !ok2 {
		return InputPair{}, false
	}
	return InputPair{Image1: s1, Image2: s2}, true
}

// ScoreText returns the opaque score token. Numeric values render in
// their canonical decimal form so that hand-edited records compare the
// same way as producer output.
func (r *Record) ScoreText() (string, bool) {
	v, ok := r.scoreField("score_text")
	if !ok {
		return "", false
	}
	return scalarText(v)
}

// ScoreBits returns the score's raw 64-bit pattern. Native integers and
// decimal or 0x-prefixed hex strings are accepted; every form is reduced
// modulo 2^64. A string that parses as neither is an error, which the
// caller is expected to surface rather than absorb.
func (r *Record) ScoreBits() (uint64, bool, error) {
	v, ok := r.scoreField("score_bits_u64")
	if !ok {
		return 0, false, nil
	}
	switch t := v.(type) {
	case json.Number:
		n, err := parseBits(t.String())
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	case string:
		n, err := parseBits(t)
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	default:
		return 0, false, nil
	}
}

// ScoreFloat returns the score as a floating-point value. Numbers and
// numeric strings (including NaN and Inf spellings) are accepted; values
// beyond the double range saturate to infinity rather than erroring.
func (r *Record) ScoreFloat() (float64, bool, error) {
	v, ok := r.scoreField("score_f64")
	if !ok {
		return 0, false, nil
	}
	var text string
	switch t := v.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, true, nil
		}
		return 0, false, fmt.Errorf("invalid score_f64 value %q", text)
	}
	return f, true, nil
}

// DumpEntry resolves the named debug_dumps entry. Bare-string entries are
// a path with no declared element type. Entries of any other shape count
// as missing.
func (r *Record) DumpEntry(key string) (BufferRef, bool) {
	v, ok := r.lookup("debug_dumps", key)
	if !ok {
		return BufferRef{}, false
	}
	switch t := v.(type) {
	case string:
		return BufferRef{Path: t}, true
	case map[string]any:
		var ref BufferRef
		if p, ok := t["path"].(string); ok {
			ref.Path = p
		}
		if et, ok := scalarText(t["elem_type"]); ok {
			ref.ElemType = et
		}
		return ref, true
	default:
		return BufferRef{}, false
	}
}

// DumpKeys returns the debug_dumps keys that resolve to a usable entry,
// sorted for stable iteration. Records without a debug_dumps section
// return an empty slice.
func (r *Record) DumpKeys() []string {
	v, ok := r.lookup("debug_dumps")
	if !ok {
		return nil
	}
	dumps, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(dumps))
	for key := range dumps {
		if _, ok := r.DumpEntry(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// parseBits normalizes a textual 64-bit pattern. Parsing goes through
// big.Int so that values wider than 64 bits and negative decimals reduce
// to their low 64 bits instead of overflowing.
func parseBits(s string) (uint64, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	digits := text
	base := 10
	if strings.HasPrefix(text, "0x") {
		digits = text[2:]
		base = 16
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, fmt.Errorf("invalid score_bits_u64 value %q", s)
	}
	n.And(n, bitsMask)
	return n.Uint64(), nil
}

var bitsMask = new(big.Int).SetUint64(^uint64(0))
