package radio

import (
	"context"
	"errors"

	"github.com/jrwynneiii/tetrasweep/clock"
)

// Receiver captures fixed-duration sample windows through a Radio. It keeps
// the device open between captures and only retunes it.
type Receiver struct {
	radio    *Radio
	clock    clock.Clock
	settings Settings
}

func NewReceiver(r *Radio, c clock.Clock, s Settings) *Receiver {
	return &Receiver{radio: r, clock: c, settings: s}
}

// Capture tunes to freq and reads chunks until the capture duration has
// elapsed. At least one chunk is always read. Any failure is returned as is;
// there is no retry.
func (rx *Receiver) Capture(ctx context.Context, freq uint64) ([]byte, error) {
	if rx.radio.State() == StateClosed {
		if err := rx.radio.Open(); err != nil {
			return nil, err
		}
	}

	tuning := Tuning{
		Frequency:  freq,
		SampleRate: rx.settings.SampleRate,
		Gain:       rx.settings.Gain,
	}
	if err := rx.radio.Configure(tuning); err != nil {
		return nil, err
	}
	if err := rx.radio.EnterReceive(); err != nil {
		return nil, err
	}

	start := rx.clock.Now()
	var samples []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(err, rx.radio.ExitReceive())
		}

		chunk, err := rx.radio.ReceiveChunk(ctx)
		if err != nil {
			return nil, errors.Join(err, rx.radio.ExitReceive())
		}
		samples = append(samples, chunk...)

		if rx.clock.Since(start) >= rx.settings.Duration {
			break
		}
	}

	if err := rx.radio.ExitReceive(); err != nil {
		return nil, err
	}
	return samples, nil
}

func (rx *Receiver) Close() error {
	return rx.radio.Close()
}
