package imaging

import (
	"math"
)

// PSNR measures the distortion between an original and a stego buffer
// of 8-bit values (pixel channels or PCM sample bytes), in dB.
// Identical buffers report +Inf.
func PSNR(original, stego []byte) float64 {
	if len(original) != len(stego) || len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE)), MAX = 255 for 8-bit
	return 20 * math.Log10(255.0/math.Sqrt(mse))
}

// ValidatePSNR reports whether the distortion stays above a quality threshold.
func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true
	}
	return psnr >= threshold
}
