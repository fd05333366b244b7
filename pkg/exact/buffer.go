package exact

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
)

// DType identifies the element type of a debug buffer dump.
type DType string

// The closed set of supported buffer element types. Multi-byte types are
// little-endian on disk.
const (
	DTypeU8    DType = "u8"
	DTypeU32LE DType = "u32_le"
	DTypeF32LE DType = "f32_le"
	DTypeF64LE DType = "f64_le"
)

// dtypeSpec drives the typed buffer diff: element width, the comparison
// key extracted from one element (the native value for integer types, the
// IEEE-754 bit pattern for float types), and the report renderings. hex
// is nil for types whose reports carry no bit-pattern column.
type dtypeSpec struct {
	width  int
	key    func(elem []byte) uint64
	render func(elem []byte) string
	hex    func(elem []byte) string
}

var dtypes = map[DType]dtypeSpec{
	DTypeU8: {
		width:  1,
		key:    func(e []byte) uint64 { return uint64(e[0]) },
		render: func(e []byte) string { return strconv.FormatUint(uint64(e[0]), 10) },
	},
	DTypeU32LE: {
		width:  4,
		key:    func(e []byte) uint64 { return uint64(binary.LittleEndian.Uint32(e)) },
		render: func(e []byte) string { return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(e)), 10) },
	},
	DTypeF32LE: {
		width: 4,
		key:   func(e []byte) uint64 { return uint64(binary.LittleEndian.Uint32(e)) },
		render: func(e []byte) string {
			f := math.Float32frombits(binary.LittleEndian.Uint32(e))
			return strconv.FormatFloat(float64(f), 'g', -1, 32)
		},
		hex: func(e []byte) string { return formatBits32(binary.LittleEndian.Uint32(e)) },
	},
	DTypeF64LE: {
		width: 8,
		key:   func(e []byte) uint64 { return binary.LittleEndian.Uint64(e) },
		render: func(e []byte) string {
			f := math.Float64frombits(binary.LittleEndian.Uint64(e))
			return strconv.FormatFloat(f, 'g', -1, 64)
		},
		hex: func(e []byte) string { return formatBits64(binary.LittleEndian.Uint64(e)) },
	},
}

// ParseDType reports whether s names a supported element type.
func ParseDType(s string) (DType, bool) {
	_, ok := dtypes[DType(s)]
	return DType(s), ok
}

// DTypeNames lists the supported element type names for usage messages.
func DTypeNames() []string {
	return []string{string(DTypeU8), string(DTypeU32LE), string(DTypeF32LE), string(DTypeF64LE)}
}

// buffer is one decoded dump: raw bytes viewed as count elements of a
// fixed width.
type buffer struct {
	spec  dtypeSpec
	data  []byte
	count int
}

func (b *buffer) elem(i int) []byte {
	off := i * b.spec.width
	return b.data[off : off+b.spec.width]
}

func (b *buffer) key(i int) uint64      { return b.spec.key(b.elem(i)) }
func (b *buffer) render(i int) string   { return b.spec.render(b.elem(i)) }
func (b *buffer) hexValue(i int) string { return b.spec.hex(b.elem(i)) }

// readBuffer loads a dump file and checks the alignment invariant: the
// byte length must be an exact multiple of the element width.
func readBuffer(path string, dtype string) (*buffer, error) {
	spec, ok := dtypes[DType(dtype)]
	if !ok {
		return nil, fmt.Errorf("unsupported dtype: %s", dtype)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%spec.width != 0 {
		return nil, fmt.Errorf("buffer size is not aligned with dtype (%s): bytes=%d, item_size=%d",
			dtype, len(raw), spec.width)
	}
	return &buffer{spec: spec, data: raw, count: len(raw) / spec.width}, nil
}

// firstDivergence scans the overlapping prefix of two buffers and returns
// the first index whose comparison keys differ.
func firstDivergence(ref, gpu *buffer) (int, bool) {
	limit := min(ref.count, gpu.count)
	for i := 0; i < limit; i++ {
		if ref.key(i) != gpu.key(i) {
			return i, true
		}
	}
	return 0, false
}

// CompareBuffer diffs the debug dump named key between two run records.
//
// Resolution failures (missing entry, missing path, element type
// conflict), read failures (missing file, misaligned length, unknown
// element type), and value divergence all land in the report as ordinary
// entries; each is terminal for this call. A force dtype overrides both
// declared element types and silences a declared conflict. The scan stops
// at the first divergence: the point is to localize, not to enumerate.
func CompareBuffer(ref, gpu *Record, key string, force DType) Report {
	var report Report

	refEntry, ok := ref.DumpEntry(key)
	if !ok {
		report.Add("ref JSON missing debug_dumps.%s", key)
		return report
	}
	gpuEntry, ok := gpu.DumpEntry(key)
	if !ok {
		report.Add("gpu JSON missing debug_dumps.%s", key)
		return report
	}

	if refEntry.Path == "" || gpuEntry.Path == "" {
		report.Add("debug_dumps.%s.path missing in ref or gpu JSON", key)
		return report
	}

	if force == "" && refEntry.ElemType != "" && gpuEntry.ElemType != "" &&
		refEntry.ElemType != gpuEntry.ElemType {
		report.Add("elem_type mismatch between ref and gpu dumps: ref=%s gpu=%s",
			refEntry.ElemType, gpuEntry.ElemType)
		return report
	}

	dtype := string(force)
	if dtype == "" {
		dtype = refEntry.ElemType
	}
	if dtype == "" {
		dtype = gpuEntry.ElemType
	}
	if dtype == "" {
		dtype = string(DTypeU8)
	}

	if _, err := os.Stat(refEntry.Path); err != nil {
		report.Add("ref dump file not found: %s", refEntry.Path)
		return report
	}
	if _, err := os.Stat(gpuEntry.Path); err != nil {
		report.Add("gpu dump file not found: %s", gpuEntry.Path)
		return report
	}

	refBuf, err := readBuffer(refEntry.Path, dtype)
	if err != nil {
		report.Add("failed to read debug buffer (%s): %v", dtype, err)
		return report
	}
	gpuBuf, err := readBuffer(gpuEntry.Path, dtype)
	if err != nil {
		report.Add("failed to read debug buffer (%s): %v", dtype, err)
		return report
	}

	if refBuf.count != gpuBuf.count {
		report.Add("buffer length mismatch: ref=%d gpu=%d elements", refBuf.count, gpuBuf.count)
		// Best-effort localization within the overlapping prefix.
		if i, found := firstDivergence(refBuf, gpuBuf); found {
			report.Add("first mismatch index=%d, ref=%s, gpu=%s", i, refBuf.render(i), gpuBuf.render(i))
		}
		return report
	}

	if i, found := firstDivergence(refBuf, gpuBuf); found {
		if refBuf.spec.hex != nil {
			report.Add("debug buffer mismatch: index=%d, ref=%s (%s), gpu=%s (%s)",
				i, refBuf.render(i), refBuf.hexValue(i), gpuBuf.render(i), gpuBuf.hexValue(i))
		} else {
			report.Add("debug buffer mismatch: index=%d, ref=%s, gpu=%s",
				i, refBuf.render(i), gpuBuf.render(i))
		}
	}
	return report
}
