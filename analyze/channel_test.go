package analyze

import (
	"math"
	"testing"
)

func tone(pairs int, i1, i2 int8) []byte {
	out := make([]byte, 0, 2*pairs)
	for n := range pairs {
		v := i1
		if n%2 == 1 {
			v = i2
		}
		out = append(out, byte(v), 0)
	}
	return out
}

func TestChannelPowerPassesDC(t *testing.T) {
	c := NewChannelPower(1e6, DefaultChannelBandwidth)
	out := c.Estimate(tone(8000, 100, 100))
	if len(out) == 0 || len(out) >= 8000 {
		t.Fatalf("expected decimated output, got %d estimates", len(out))
	}

	want := 10 * math.Log10(math.Pow(100.0/128, 2))
	if got := out[len(out)-1]; math.Abs(got-want) > 0.5 {
		t.Errorf("expected settled DC power near %.2f dB, got %.2f", want, got)
	}
}

func TestChannelPowerRejectsOutOfBand(t *testing.T) {
	c := NewChannelPower(1e6, DefaultChannelBandwidth)
	// Alternating sign is a tone at half the sample rate.
	out := c.Estimate(tone(8000, 100, -100))

	dc := 10 * math.Log10(math.Pow(100.0/128, 2))
	if got := out[len(out)-1]; got > dc-20 {
		t.Errorf("expected an out of band tone to be attenuated, got %.2f dB", got)
	}
}

func TestChannelPowerEmpty(t *testing.T) {
	if out := NewChannelPower(1e6, 0).Estimate([]byte{7}); len(out) != 0 {
		t.Errorf("expected no estimates, got %v", out)
	}
}

func TestSNR(t *testing.T) {
	tests := []struct {
		name    string
		samples []byte
		want    float64
	}{
		{"empty", nil, 0},
		{"constant envelope", tone(100, 100, 100), snrCeiling},
		{"two levels", tone(100, 100, 50), 10 * math.Log10(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SNR(tt.samples); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
