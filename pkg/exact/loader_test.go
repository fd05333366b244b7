package exact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRecord(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "ref.json")
	record := `{
		"schema_version": 1,
		"engine": "dawn-webgpu",
		"status": "ok",
		"input": {"image1": "a.png", "image2": "b.png"},
		"result": {"score_text": "0.01234567", "score_bits_u64": "0x3F8947AE147AE148"},
		"adapter": {"backend": "vulkan"},
		"debug_dumps": {"stage0_mu1_f32le": {"path": "dumps/mu1.bin", "elem_type": "f32_le", "elem_count": 16}}
	}`
	if err := os.WriteFile(path, []byte(record), 0o644); err != nil {
		t.Fatal(err)
	}

	rec, err := LoadRecord(path)
	if err != nil {
		t.Fatalf("LoadRecord() error = %v", err)
	}
	if status, ok := rec.Status(); !ok || status != "ok" {
		t.Errorf("Status() = (%q, %v), want (ok, true)", status, ok)
	}
	if text, ok := rec.ScoreText(); !ok || text != "0.01234567" {
		t.Errorf("ScoreText() = (%q, %v), want (0.01234567, true)", text, ok)
	}
	if ref, ok := rec.DumpEntry("stage0_mu1_f32le"); !ok || ref.ElemType != "f32_le" {
		t.Errorf("DumpEntry() = (%+v, %v), want f32_le entry", ref, ok)
	}
}

func TestLoadRecordMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadRecord(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("LoadRecord() error = nil, want read failure")
	}
}

func TestParseRecordRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"empty input", ``},
		{"malformed JSON", `{"status": `},
		{"trailing data", `{"status": "ok"} {"status": "ok"}`},
		{"trailing garbage", `{"status": "ok"} x`},
		{"array root", `[1, 2, 3]`},
		{"scalar root", `42`},
		{"null root", `null`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseRecord([]byte(tt.data)); err == nil {
				t.Errorf("ParseRecord(%q) error = nil, want parse failure", tt.data)
			}
		})
	}
}

// Native integers above 2^53 must survive decoding exactly; float64
// decoding would round them.
func TestParseRecordPreservesWideIntegers(t *testing.T) {
	t.Parallel()

	rec := mustParse(t, `{"result": {"score_bits_u64": 18446744073709551615}}`)
	bits, ok, err := rec.ScoreBits()
	if err != nil || !ok {
		t.Fatalf("ScoreBits() = (_, %v, %v), want present", ok, err)
	}
	if bits != 1<<64-1 {
		t.Errorf("ScoreBits() = %d, want %d", bits, uint64(1<<64-1))
	}
}
