package analyze

import (
	"github.com/racerxdl/segdsp/dsp"
	"github.com/racerxdl/segdsp/tools"
)

const (
	EstimatorChannel = "channel"

	// TETRA carriers are 25 kHz apart.
	DefaultChannelBandwidth = 25_000.0
)

// ChannelPower low pass filters the I/Q stream down to one channel around the
// tuned frequency and decimates it before taking 10*log10(|c|^2), so energy
// from neighbouring carriers does not count towards the peak.
type ChannelPower struct {
	SampleRate float64
	Bandwidth  float64

	decimation int
	taps       []float32
}

func NewChannelPower(sampleRate, bandwidth float64) *ChannelPower {
	if bandwidth <= 0 {
		bandwidth = DefaultChannelBandwidth
	}
	bandwidth = min(bandwidth, sampleRate)
	return &ChannelPower{
		SampleRate: sampleRate,
		Bandwidth:  bandwidth,
		decimation: max(1, int(sampleRate/bandwidth)),
		taps:       dsp.MakeLowPass(1, sampleRate, bandwidth/2, bandwidth/4),
	}
}

func (c *ChannelPower) Name() string { return EstimatorChannel }

func (c *ChannelPower) Estimate(samples []byte) []float64 {
	iq := toComplex(samples, len(samples)/2)
	if len(iq) == 0 {
		return []float64{}
	}

	// Fresh filter per capture: history must not leak across frequencies.
	decimator := dsp.MakeDecimationFirFilter(c.decimation, c.taps)
	filtered := decimator.Work(iq)

	out := make([]float64, len(filtered))
	for i, v := range filtered {
		out[i] = toDB(tools.ComplexAbsSquared(v))
	}
	return out
}
