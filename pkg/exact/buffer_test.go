package exact

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeDump(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
	return path
}

// dumpRecord builds a record whose debug_dumps holds a single entry.
func dumpRecord(t *testing.T, key string, entry any) *Record {
	t.Helper()
	data, err := json.Marshal(map[string]any{"debug_dumps": map[string]any{key: entry}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	rec, err := ParseRecord(data)
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	return rec
}

func u32le(values ...uint32) []byte {
	var buf []byte
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	return buf
}

func u64le(values ...uint64) []byte {
	var buf []byte
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	return buf
}

func TestCompareBufferIdentical(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := []byte{1, 2, 3, 4, 5}
	refPath := writeDump(t, dir, "ref.bin", data)
	gpuPath := writeDump(t, dir, "gpu.bin", data)

	ref := dumpRecord(t, "stage0", map[string]any{"path": refPath, "elem_type": "u8"})
	gpu := dumpRecord(t, "stage0", map[string]any{"path": gpuPath, "elem_type": "u8"})

	report := CompareBuffer(ref, gpu, "stage0", "")
	if !report.Passed() {
		t.Errorf("CompareBuffer() on identical dumps = %v, want empty", report)
	}
}

func TestCompareBufferResolution(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := writeDump(t, dir, "ok.bin", []byte{1})

	tests := []struct {
		name     string
		refEntry any
		gpuEntry any
		want     []string
	}{
		{
			"ref entry missing",
			nil,
			map[string]any{"path": existing},
			[]string{"ref JSON missing debug_dumps.stage0"},
		},
		{
			"gpu entry missing",
			map[string]any{"path": existing},
			nil,
			[]string{"gpu JSON missing debug_dumps.stage0"},
		},
		{
			"gpu entry has wrong shape",
			map[string]any{"path": existing},
			[]any{existing},
			[]string{"gpu JSON missing debug_dumps.stage0"},
		},
		{
			"ref path empty",
			map[string]any{"elem_type": "u8"},
			map[string]any{"path": existing},
			[]string{"debug_dumps.stage0.path missing in ref or gpu JSON"},
		},
		{
			"gpu path empty string",
			map[string]any{"path": existing},
			map[string]any{"path": ""},
			[]string{"debug_dumps.stage0.path missing in ref or gpu JSON"},
		},
		{
			"elem_type conflict",
			map[string]any{"path": existing, "elem_type": "f32_le"},
			map[string]any{"path": existing, "elem_type": "u32_le"},
			[]string{"elem_type mismatch between ref and gpu dumps: ref=f32_le gpu=u32_le"},
		},
		{
			"ref file missing",
			map[string]any{"path": filepath.Join(dir, "gone.bin")},
			map[string]any{"path": existing},
			[]string{fmt.Sprintf("ref dump file not found: %s", filepath.Join(dir, "gone.bin"))},
		},
		{
			"gpu file missing",
			map[string]any{"path": existing},
			map[string]any{"path": filepath.Join(dir, "gone.bin")},
			[]string{fmt.Sprintf("gpu dump file not found: %s", filepath.Join(dir, "gone.bin"))},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ref, gpu *Record
			if tt.refEntry == nil {
				ref = mustParse(t, `{"debug_dumps": {}}`)
			} else {
				ref = dumpRecord(t, "stage0", tt.refEntry)
			}
			if tt.gpuEntry == nil {
				gpu = mustParse(t, `{"debug_dumps": {}}`)
			} else {
				gpu = dumpRecord(t, "stage0", tt.gpuEntry)
			}
			report := CompareBuffer(ref, gpu, "stage0", "")
			checkEntries(t, report, tt.want...)
		})
	}
}

func TestCompareBufferBareStringEntries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// Bare-string entries default to u8.
	refPath := writeDump(t, dir, "ref.bin", []byte{1, 2, 3})
	gpuPath := writeDump(t, dir, "gpu.bin", []byte{1, 2, 9})

	report := CompareBuffer(
		dumpRecord(t, "image1_rgba8", refPath),
		dumpRecord(t, "image1_rgba8", gpuPath),
		"image1_rgba8", "")
	checkEntries(t, report, "debug buffer mismatch: index=2, ref=3, gpu=9")
}

func TestCompareBufferForceDtype(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := u32le(7, 8, 9)
	refPath := writeDump(t, dir, "ref.bin", data)
	gpuPath := writeDump(t, dir, "gpu.bin", data)

	// The override silences the declared conflict and wins over both.
	ref := dumpRecord(t, "stage0", map[string]any{"path": refPath, "elem_type": "f32_le"})
	gpu := dumpRecord(t, "stage0", map[string]any{"path": gpuPath, "elem_type": "u8"})

	report := CompareBuffer(ref, gpu, "stage0", DTypeU32LE)
	if !report.Passed() {
		t.Errorf("CompareBuffer() with force dtype = %v, want empty", report)
	}
}

func TestCompareBufferAlignment(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	refPath := writeDump(t, dir, "ref.bin", []byte{1, 2, 3, 4, 5, 6, 7})
	gpuPath := writeDump(t, dir, "gpu.bin", u32le(1, 2))

	ref := dumpRecord(t, "stage0", map[string]any{"path": refPath, "elem_type": "u32_le"})
	gpu := dumpRecord(t, "stage0", map[string]any{"path": gpuPath, "elem_type": "u32_le"})

	report := CompareBuffer(ref, gpu, "stage0", "")
	checkEntries(t, report,
		"failed to read debug buffer (u32_le): buffer size is not aligned with dtype (u32_le): bytes=7, item_size=4")
}

func TestCompareBufferUnsupportedDtype(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	refPath := writeDump(t, dir, "ref.bin", []byte{1, 2})
	gpuPath := writeDump(t, dir, "gpu.bin", []byte{1, 2})

	ref := dumpRecord(t, "stage0", map[string]any{"path": refPath, "elem_type": "u16_le"})
	gpu := dumpRecord(t, "stage0", map[string]any{"path": gpuPath, "elem_type": "u16_le"})

	report := CompareBuffer(ref, gpu, "stage0", "")
	checkEntries(t, report,
		"failed to read debug buffer (u16_le): unsupported dtype: u16_le")
}

func TestCompareBufferLengthMismatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name string
		ref  []byte
		gpu  []byte
		want []string
	}{
		{
			"diverging prefix localized",
			[]byte{1, 2, 3},
			[]byte{1, 2, 9, 9, 9},
			[]string{
				"buffer length mismatch: ref=3 gpu=5 elements",
				"first mismatch index=2, ref=3, gpu=9",
			},
		},
		{
			"clean prefix reports length only",
			[]byte{1, 2, 3},
			[]byte{1, 2, 3, 4},
			[]string{"buffer length mismatch: ref=3 gpu=4 elements"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			refPath := writeDump(t, dir, tt.name+"-ref.bin", tt.ref)
			gpuPath := writeDump(t, dir, tt.name+"-gpu.bin", tt.gpu)
			report := CompareBuffer(
				dumpRecord(t, "stage0", refPath),
				dumpRecord(t, "stage0", gpuPath),
				"stage0", "")
			checkEntries(t, report, tt.want...)
		})
	}
}

func TestCompareBufferFirstDivergenceOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	refPath := writeDump(t, dir, "ref.bin", []byte{1, 1, 1})
	gpuPath := writeDump(t, dir, "gpu.bin", []byte{9, 9, 9})

	report := CompareBuffer(
		dumpRecord(t, "stage0", refPath),
		dumpRecord(t, "stage0", gpuPath),
		"stage0", "")
	checkEntries(t, report, "debug buffer mismatch: index=0, ref=1, gpu=9")
}

func TestCompareBufferU32LittleEndian(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	refPath := writeDump(t, dir, "ref.bin", []byte{0x01, 0x00, 0x00, 0x00})
	gpuPath := writeDump(t, dir, "gpu.bin", []byte{0x00, 0x00, 0x00, 0x01})

	ref := dumpRecord(t, "stage0", map[string]any{"path": refPath, "elem_type": "u32_le"})
	gpu := dumpRecord(t, "stage0", map[string]any{"path": gpuPath, "elem_type": "u32_le"})

	report := CompareBuffer(ref, gpu, "stage0", "")
	checkEntries(t, report, "debug buffer mismatch: index=0, ref=1, gpu=16777216")
}

func TestCompareBufferFloat32BitEquality(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// +0.0f and -0.0f are numerically equal but not bit-identical;
	// the report carries exactly 8 hex digits per pattern.
	refPath := writeDump(t, dir, "ref.bin", u32le(0x00000000))
	gpuPath := writeDump(t, dir, "gpu.bin", u32le(0x80000000))

	ref := dumpRecord(t, "mu1", map[string]any{"path": refPath, "elem_type": "f32_le"})
	gpu := dumpRecord(t, "mu1", map[string]any{"path": gpuPath, "elem_type": "f32_le"})

	report := CompareBuffer(ref, gpu, "mu1", "")
	checkEntries(t, report,
		"debug buffer mismatch: index=0, ref=0 (0x00000000), gpu=-0 (0x80000000)")
}

func TestCompareBufferFloat64NaNPayloads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// Same quiet-NaN class, different payloads: a numeric comparator
	// cannot tell these apart at all.
	refPath := writeDump(t, dir, "acc.bin", u64le(0x7FF8000000000001))
	gpuPath := writeDump(t, dir, "acc.bin2", u64le(0x7FF8000000000002))

	ref := dumpRecord(t, "acc", map[string]any{"path": refPath, "elem_type": "f64_le"})
	gpu := dumpRecord(t, "acc", map[string]any{"path": gpuPath, "elem_type": "f64_le"})

	report := CompareBuffer(ref, gpu, "acc", "")
	checkEntries(t, report,
		"debug buffer mismatch: index=0, ref=NaN (0x7FF8000000000001), gpu=NaN (0x7FF8000000000002)")

	// Identical payloads pass, where numeric == on NaN would fail.
	report = CompareBuffer(ref, ref, "acc", "")
	if !report.Passed() {
		t.Errorf("CompareBuffer() on identical NaN payloads = %v, want empty", report)
	}
}

func TestCompareBufferFloat64Values(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	refPath := writeDump(t, dir, "ref.bin", u64le(0x3FF0000000000000, 0x4000000000000000))
	gpuPath := writeDump(t, dir, "gpu.bin", u64le(0x3FF0000000000000, 0x4000000000000001))

	ref := dumpRecord(t, "sum", map[string]any{"path": refPath, "elem_type": "f64_le"})
	gpu := dumpRecord(t, "sum", map[string]any{"path": gpuPath, "elem_type": "f64_le"})

	report := CompareBuffer(ref, gpu, "sum", "")
	checkEntries(t, report,
		"debug buffer mismatch: index=1, ref=2 (0x4000000000000000), gpu=2.0000000000000004 (0x4000000000000001)")
}

func TestParseDType(t *testing.T) {
	t.Parallel()

	for _, name := range DTypeNames() {
		if _, ok := ParseDType(name); !ok {
			t.Errorf("ParseDType(%q) not ok, want supported", name)
		}
	}
	if _, ok := ParseDType("u16_le"); ok {
		t.Error("ParseDType(u16_le) ok, want unsupported")
	}
	if _, ok := ParseDType(""); ok {
		t.Error("ParseDType(\"\") ok, want unsupported")
	}
}
