package exact

import (
	"fmt"
	"math"
)

// CompareScores compares the final scores of two run records.
//
// The status and input-pair checks are independent and always both run;
// their findings accumulate. The score check short-circuits on the first
// representation present on both sides, in precedence order score_text,
// score_bits_u64, score_f64. Representations present on only one side are
// never compared across kinds; when no representation is shared, that is
// itself a discrepancy.
//
// A malformed score_bits_u64 or score_f64 value that the score check
// actually consults is returned as an error for the caller to surface,
// not absorbed into the report.
func CompareScores(ref, gpu *Record) (Report, error) {
	var report Report

	if status, ok := ref.Status(); ok && status != "ok" {
		report.Add("Reference JSON status is not ok: %s", status)
	}
	if status, ok := gpu.Status(); ok && status != "ok" {
		report.Add("GPU JSON status is not ok: %s", status)
	}

	refPair, refHasPair := ref.InputPair()
	gpuPair, gpuHasPair := gpu.InputPair()
	if refHasPair && gpuHasPair && refPair != gpuPair {
		report.Add("Input pair mismatch: ref=(%s, %s), gpu=(%s, %s)",
			refPair.Image1, refPair.Image2, gpuPair.Image1, gpuPair.Image2)
	}

	refText, refHasText := ref.ScoreText()
	gpuText, gpuHasText := gpu.ScoreText()
	if refHasText && gpuHasText {
		if refText != gpuText {
			report.Add("score_text mismatch (EXACT required): ref=%s, gpu=%s", refText, gpuText)
		}
		return report, nil
	}

	refBits, refHasBits, err := ref.ScoreBits()
	if err != nil {
		return nil, fmt.Errorf("ref: %w", err)
	}
	gpuBits, gpuHasBits, err := gpu.ScoreBits()
	if err != nil {
		return nil, fmt.Errorf("gpu: %w", err)
	}
	if refHasBits && gpuHasBits {
		if refBits != gpuBits {
			report.Add("score_bits_u64 mismatch: ref=%s, gpu=%s",
				formatBits64(refBits), formatBits64(gpuBits))
		}
		return report, nil
	}

	refFloat, refHasFloat, err := ref.ScoreFloat()
	if err != nil {
		return nil, fmt.Errorf("ref: %w", err)
	}
	gpuFloat, gpuHasFloat, err := gpu.ScoreFloat()
	if err != nil {
		return nil, fmt.Errorf("gpu: %w", err)
	}
	if refHasFloat && gpuHasFloat {
		refPattern := math.Float64bits(refFloat)
		gpuPattern := math.Float64bits(gpuFloat)
		if refPattern != gpuPattern {
			report.Add("score_f64 bit mismatch: ref=%s, gpu=%s",
				formatBits64(refPattern), formatBits64(gpuPattern))
		}
		return report, nil
	}

	report.Add("No comparable score fields found. Provide result.score_text or result.score_bits_u64.")
	return report, nil
}
