package exact

import "fmt"

// formatBits64 renders a 64-bit pattern as 0x plus exactly 16 uppercase
// hex digits. Reports rely on the fixed width.
func formatBits64(bits uint64) string {
	return fmt.Sprintf("0x%016X", bits)
}

// formatBits32 renders a 32-bit pattern as 0x plus exactly 8 uppercase
// hex digits.
func formatBits32(bits uint32) string {
	return fmt.Sprintf("0x%08X", bits)
}
