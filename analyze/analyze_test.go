package analyze

import (
	"math"
	"testing"
)

func TestMagnitudeLength(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{0},
		{1, 2, 3},
		make([]byte, 4096),
	}
	for _, in := range inputs {
		if got := Analyze(in); len(got) != len(in) {
			t.Errorf("expected %d estimates, got %d", len(in), len(got))
		}
	}
}

func TestMagnitudeValues(t *testing.T) {
	out := Analyze([]byte{0, 1, 10, 100, 255})
	expected := []float64{0, 0, 20, 40, 20 * math.Log10(255)}
	for i, want := range expected {
		if math.Abs(out[i]-want) > 1e-9 {
			t.Errorf("estimate %d: expected %f, got %f", i, want, out[i])
		}
	}
}

func TestMagnitudeEmpty(t *testing.T) {
	if out := Analyze([]byte{}); len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
	if out := Analyze([]byte{0}); len(out) != 1 || out[0] != 0.0 {
		t.Fatalf("expected [0], got %v", out)
	}
}

func TestPeak(t *testing.T) {
	if _, ok := Peak(nil); ok {
		t.Error("peak of empty sequence should report no value")
	}

	peak, ok := Peak([]float64{3, 41.5, -2, 41.5, 7})
	if !ok {
		t.Fatal("expected a peak")
	}
	if peak != 41.5 {
		t.Errorf("expected 41.5, got %f", peak)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20, 30})
	if s.Count != 3 || s.Peak != 30 || s.Mean != 20 {
		t.Errorf("unexpected summary: %+v", s)
	}

	if s := Summarize(nil); s.Count != 0 || s.Peak != 0 {
		t.Errorf("unexpected empty summary: %+v", s)
	}
}

func TestIQPower(t *testing.T) {
	// I=127, Q=0 is close to full scale, I=Q=0 is silence, the odd byte is dropped.
	out := IQPower{}.Estimate([]byte{127, 0, 0, 0, 5})
	if len(out) != 2 {
		t.Fatalf("expected 2 estimates, got %d", len(out))
	}
	if math.Abs(out[0]-10*math.Log10(math.Pow(127.0/128, 2))) > 1e-4 {
		t.Errorf("unexpected full scale power %f", out[0])
	}
	if out[1] != minDB {
		t.Errorf("expected floor for silence, got %f", out[1])
	}
}

func TestSpectrumTone(t *testing.T) {
	// A DC tone ends up in the centre bin once the spectrum is shifted.
	bins := 64
	samples := make([]byte, 2*bins)
	for i := 0; i < bins; i++ {
		samples[2*i] = 100
	}

	power := Spectrum(samples, bins)
	if len(power) != bins {
		t.Fatalf("expected %d bins, got %d", bins, len(power))
	}

	peakIdx := 0
	for i, v := range power {
		if v > power[peakIdx] {
			peakIdx = i
		}
	}
	if peakIdx != bins/2 {
		t.Errorf("expected DC in bin %d, got %d", bins/2, peakIdx)
	}

	if Spectrum(nil, bins) != nil {
		t.Error("expected nil spectrum for empty capture")
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", EstimatorMagnitude, EstimatorIQ, EstimatorChannel} {
		if _, err := ByName(name, 1e6); err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
		}
	}
	if _, err := ByName("fft", 1e6); err == nil {
		t.Error("expected error for unknown estimator")
	}
	if _, err := ByName(EstimatorChannel, 0); err == nil {
		t.Error("expected error for channel estimator without a sample rate")
	}
}
