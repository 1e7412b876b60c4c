package radio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const (
	MaxLNAGain  = 40
	MaxVGAGain  = 62
	LNAGainStep = 8
	VGAGainStep = 2
)

var ErrInvalidState = errors.New("invalid radio state")

type State int

const (
	StateClosed State = iota
	StateIdle
	StateConfigured
	StateReceiving
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateIdle:
		return "idle"
	case StateConfigured:
		return "configured"
	case StateReceiving:
		return "receiving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Gain struct {
	AmpEnabled bool
	LNA        int // IF gain, 0-40 dB in 8 dB steps
	VGA        int // baseband gain, 0-62 dB in 2 dB steps
}

func (g Gain) Validate() error {
	if g.LNA < 0 || g.LNA > MaxLNAGain {
		return fmt.Errorf("LNA gain must be between 0 and %d dB: %d given", MaxLNAGain, g.LNA)
	}
	if g.LNA%LNAGainStep != 0 {
		return fmt.Errorf("LNA gain must be a multiple of %d dB: %d given", LNAGainStep, g.LNA)
	}
	if g.VGA < 0 || g.VGA > MaxVGAGain {
		return fmt.Errorf("VGA gain must be between 0 and %d dB: %d given", MaxVGAGain, g.VGA)
	}
	if g.VGA%VGAGainStep != 0 {
		return fmt.Errorf("VGA gain must be a multiple of %d dB: %d given", VGAGainStep, g.VGA)
	}
	return nil
}

// Tuning is everything a driver needs to be set up for one capture.
type Tuning struct {
	Frequency  uint64
	SampleRate float64
	Gain       Gain
}

// Driver is the hardware (or replay) backend behind a Radio. Radio makes
// sure the calls arrive in a valid order.
type Driver interface {
	Name() string
	Open() error
	Configure(t Tuning) error
	StartRx() error
	Read(ctx context.Context) ([]byte, error)
	StopRx() error
	Close() error
}

// Radio tracks the device lifecycle closed -> idle -> configured -> receiving
// and rejects operations that are not valid in the current state.
type Radio struct {
	driver Driver
	state  State
	tuning Tuning
	logger *log.Logger
}

func New(driver Driver, logger *log.Logger) *Radio {
	if logger == nil {
		logger = log.Default()
	}
	return &Radio{
		driver: driver,
		logger: logger.WithPrefix(driver.Name()),
	}
}

func (r *Radio) State() State { return r.state }

func (r *Radio) Tuning() Tuning { return r.tuning }

func (r *Radio) expect(op string, allowed ...State) error {
	for _, s := range allowed {
		if r.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, r.state)
}

func (r *Radio) Open() error {
	if err := r.expect("open", StateClosed); err != nil {
		return err
	}
	r.logger.Debug("Opening device")
	if err := r.driver.Open(); err != nil {
		return &OpenError{Driver: r.driver.Name(), Err: err}
	}
	r.state = StateIdle
	return nil
}

func (r *Radio) Configure(t Tuning) error {
	if err := r.expect("configure", StateIdle, StateConfigured); err != nil {
		return err
	}
	if err := t.Gain.Validate(); err != nil {
		return &ConfigureError{Frequency: t.Frequency, Err: err}
	}
	r.logger.Debugf("Tuning to %d Hz at %.0f S/s (amp: %v, lna: %d, vga: %d)",
		t.Frequency, t.SampleRate, t.Gain.AmpEnabled, t.Gain.LNA, t.Gain.VGA)
	if err := r.driver.Configure(t); err != nil {
		return &ConfigureError{Frequency: t.Frequency, Err: err}
	}
	r.tuning = t
	r.state = StateConfigured
	return nil
}

func (r *Radio) EnterReceive() error {
	if err := r.expect("enter receive mode", StateConfigured); err != nil {
		return err
	}
	if err := r.driver.StartRx(); err != nil {
		return &CaptureError{Frequency: r.tuning.Frequency, Op: "enter receive mode", Err: err}
	}
	r.state = StateReceiving
	return nil
}

func (r *Radio) ReceiveChunk(ctx context.Context) ([]byte, error) {
	if err := r.expect("receive", StateReceiving); err != nil {
		return nil, err
	}
	chunk, err := r.driver.Read(ctx)
	if err != nil {
		return nil, &CaptureError{Frequency: r.tuning.Frequency, Op: "receive", Err: err}
	}
	return chunk, nil
}

func (r *Radio) ExitReceive() error {
	if err := r.expect("exit receive mode", StateReceiving); err != nil {
		return err
	}
	if err := r.driver.StopRx(); err != nil {
		return &CaptureError{Frequency: r.tuning.Frequency, Op: "exit receive mode", Err: err}
	}
	r.state = StateConfigured
	return nil
}

// Close releases the device from any state. Closing a closed radio is a no-op.
func (r *Radio) Close() error {
	if r.state == StateClosed {
		return nil
	}
	if r.state == StateReceiving {
		if err := r.driver.StopRx(); err != nil {
			r.logger.Warnf("Could not stop receiving: %v", err)
		}
	}
	r.state = StateClosed
	r.logger.Debug("Closing device")
	return r.driver.Close()
}

// Settings used for every capture of a sweep; only the frequency changes.
type Settings struct {
	SampleRate float64
	Gain       Gain
	Duration   time.Duration
}
