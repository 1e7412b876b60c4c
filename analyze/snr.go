package analyze

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Reported when a capture carries no measurable noise.
const snrCeiling = 100.0

// SNR is the M2M4 estimate, in dB, of one capture treated as signed 8 bit
// I/Q. See Pauluzzi and Beaulieu, "A comparison of SNR estimation techniques
// for the AWGN channel", IEEE Trans. Communications 48(10), 2000.
func SNR(samples []byte) float64 {
	iq := toComplex(samples, len(samples)/2)
	if len(iq) == 0 {
		return 0
	}

	m2 := make([]float64, len(iq))
	m4 := make([]float64, len(iq))
	for i, c := range iq {
		p := float64(real(c))*float64(real(c)) + float64(imag(c))*float64(imag(c))
		m2[i] = p
		m4[i] = p * p
	}
	y1 := stat.Mean(m2, nil)
	y2 := stat.Mean(m4, nil)

	radicand := 2*y1*y1 - y2
	if radicand <= 0 {
		return 0
	}
	signal := math.Sqrt(radicand)
	noise := y1 - signal
	if noise <= 0 {
		return snrCeiling
	}
	return min(snrCeiling, max(0, 10*math.Log10(signal/noise)))
}
