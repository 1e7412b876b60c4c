package analyze

import (
	"math"

	"github.com/racerxdl/segdsp/tools"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Floor used for bins with no energy so plots stay finite.
const minDB = -100.0

// IQPower pairs the raw bytes as signed 8 bit I/Q samples and returns
// 10*log10(|c|^2) per complex sample, so the output is half the input length.
// A trailing odd byte is ignored.
type IQPower struct{}

func (IQPower) Name() string { return EstimatorIQ }

func (IQPower) Estimate(samples []byte) []float64 {
	iq := toComplex(samples, len(samples)/2)
	out := make([]float64, len(iq))
	for i, c := range iq {
		out[i] = toDB(tools.ComplexAbsSquared(c))
	}
	return out
}

// Spectrum returns the shifted power spectrum, in dB, of the first bins I/Q
// pairs of a capture. Used for display only.
func Spectrum(samples []byte, bins int) []float64 {
	n := min(bins, len(samples)/2)
	if n <= 0 {
		return nil
	}

	input := make([]complex128, n)
	for i, c := range toComplex(samples, n) {
		input[i] = complex128(c)
	}

	fft := fourier.NewCmplxFFT(n)
	coeff := fft.Coefficients(nil, input)

	out := make([]float64, n)
	for i := range coeff {
		out[i] = toDB(tools.ComplexAbsSquared(complex64(coeff[fft.ShiftIdx(i)])))
	}
	return out
}

func toComplex(samples []byte, n int) []complex64 {
	out := make([]complex64, n)
	for i := 0; i < n; i++ {
		re := float32(int8(samples[2*i])) / 128
		im := float32(int8(samples[2*i+1])) / 128
		out[i] = complex(re, im)
	}
	return out
}

func toDB(v float32) float64 {
	if v <= 0 {
		return minDB
	}
	return max(minDB, 10*math.Log10(float64(v)))
}
