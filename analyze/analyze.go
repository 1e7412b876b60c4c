package analyze

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	EstimatorMagnitude = "magnitude"
	EstimatorIQ        = "iq"
)

// Estimator turns one capture window of raw bytes into power estimates.
type Estimator interface {
	Estimate(samples []byte) []float64
	Name() string
}

// Magnitude treats every raw byte as an independent linear magnitude and maps
// it to 20*log10(v), or 0 for a zero byte. One estimate per input byte.
//
// The receivers this runs against emit interleaved I/Q byte pairs, so this is
// a pseudo-power on its own scale, not a calibrated measurement. Its ceiling is
// 20*log10(255) ~= 48.13.
type Magnitude struct{}

func (Magnitude) Name() string { return EstimatorMagnitude }

func (Magnitude) Estimate(samples []byte) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		if v > 0 {
			out[i] = 20 * math.Log10(float64(v))
		}
	}
	return out
}

// Analyze runs the default magnitude estimator.
func Analyze(samples []byte) []float64 {
	return Magnitude{}.Estimate(samples)
}

// Peak returns the largest estimate. ok is false for an empty sequence.
func Peak(estimates []float64) (peak float64, ok bool) {
	if len(estimates) == 0 {
		return 0, false
	}
	return floats.Max(estimates), true
}

type Summary struct {
	Peak  float64
	Mean  float64
	Count int
}

func Summarize(estimates []float64) Summary {
	s := Summary{Count: len(estimates)}
	if s.Count == 0 {
		return s
	}
	s.Peak = floats.Max(estimates)
	s.Mean = stat.Mean(estimates, nil)
	return s
}

// ByName returns the estimator configured as name. sampleRate is only used
// by the channel estimator.
func ByName(name string, sampleRate float64) (Estimator, error) {
	switch name {
	case "", EstimatorMagnitude:
		return Magnitude{}, nil
	case EstimatorIQ:
		return IQPower{}, nil
	case EstimatorChannel:
		if sampleRate <= 0 {
			return nil, fmt.Errorf("the %s estimator needs a positive sample rate: %v given", EstimatorChannel, sampleRate)
		}
		return NewChannelPower(sampleRate, DefaultChannelBandwidth), nil
	default:
		return nil, fmt.Errorf("unknown estimator %q, pick one of: %s, %s, %s", name, EstimatorMagnitude, EstimatorIQ, EstimatorChannel)
	}
}
