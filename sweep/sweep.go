package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/tetrasweep/analyze"
	"github.com/jrwynneiii/tetrasweep/clock"
	"github.com/jrwynneiii/tetrasweep/detect"
)

const (
	DefaultThreshold       = 49.0
	DefaultCaptureDuration = time.Second
)

// Capturer returns the raw samples of one capture window at freq.
type Capturer interface {
	Capture(ctx context.Context, freq uint64) ([]byte, error)
}

func WithEstimator(e analyze.Estimator) func(*Scheduler) {
	return func(s *Scheduler) {
		s.estimator = e
	}
}

func WithClock(c clock.Clock) func(*Scheduler) {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithThreshold sets the strict lower bound a capture peak has to exceed.
func WithThreshold(threshold float64) func(*Scheduler) {
	return func(s *Scheduler) {
		s.threshold = threshold
	}
}

func WithBand(b Band) func(*Scheduler) {
	return func(s *Scheduler) {
		s.band = b
	}
}

// WithCaptureDuration sets the width of the window recorded for each
// detection. It should match the duration the capturer records for.
func WithCaptureDuration(d time.Duration) func(*Scheduler) {
	return func(s *Scheduler) {
		s.captureDuration = d
	}
}

func WithObserver(o Observer) func(*Scheduler) {
	return func(s *Scheduler) {
		s.observer = o
	}
}

func WithLogger(logger *log.Logger) func(*Scheduler) {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// Scheduler walks the band and runs capture, estimate and threshold for each
// frequency. It owns the aggregator for the duration of one run.
type Scheduler struct {
	capturer        Capturer
	estimator       analyze.Estimator
	clock           clock.Clock
	band            Band
	threshold       float64
	captureDuration time.Duration
	observer        Observer
	logger          *log.Logger
}

func New(capturer Capturer, options ...func(*Scheduler)) (*Scheduler, error) {
	s := Scheduler{
		capturer:        capturer,
		estimator:       analyze.Magnitude{},
		clock:           clock.Real{},
		band:            DefaultBand,
		threshold:       DefaultThreshold,
		captureDuration: DefaultCaptureDuration,
		logger:          log.Default(),
	}
	for _, option := range options {
		option(&s)
	}

	if err := s.band.Validate(); err != nil {
		return nil, err
	}
	if s.captureDuration < time.Second {
		return nil, fmt.Errorf("capture duration must be at least one second: %v given", s.captureDuration)
	}
	if s.observer == nil {
		s.observer = NewLogObserver(s.logger)
	}
	return &s, nil
}

// RunInstant makes a single pass over the band.
func (s *Scheduler) RunInstant(ctx context.Context) (*detect.Result, error) {
	s.logger.Info("Running instant scan...")

	agg := detect.NewInstant()
	start := s.clock.Now()

	s.observer.PassStarted(detect.ModeInstant, 1)
	for freq := range s.band.Frequencies() {
		if err := s.cycle(ctx, detect.ModeInstant, agg, start, freq); err != nil {
			return nil, err
		}
	}

	res := agg.Finalize()
	s.observer.Finished(res)
	return res, nil
}

// RunScheduled counts down startAfter in whole seconds, then repeats passes
// over the band until budget has elapsed. The budget is checked before each
// pass and before each capture, so a run ends at most one capture after it.
func (s *Scheduler) RunScheduled(ctx context.Context, startAfter, budget time.Duration) (*detect.Result, error) {
	if err := s.countdown(ctx, startAfter); err != nil {
		return nil, err
	}

	s.logger.Infof("Starting scan for %d seconds...", int64(budget.Seconds()))
	agg := detect.NewScheduled()
	start := s.clock.Now()

	for pass := 1; s.clock.Since(start) < budget; pass++ {
		s.observer.PassStarted(detect.ModeScheduled, pass)
		for freq := range s.band.Frequencies() {
			if s.clock.Since(start) >= budget {
				break
			}
			if err := s.cycle(ctx, detect.ModeScheduled, agg, start, freq); err != nil {
				return nil, err
			}
		}
	}

	res := agg.Finalize()
	s.observer.Finished(res)
	return res, nil
}

func (s *Scheduler) countdown(ctx context.Context, startAfter time.Duration) error {
	for remaining := int64(startAfter / time.Second); remaining > 0; remaining-- {
		s.observer.Countdown(time.Duration(remaining) * time.Second)
		if err := s.clock.Sleep(ctx, time.Second); err != nil {
			return err
		}
	}
	return nil
}

// cycle captures one frequency and hands a qualifying peak to agg. The
// detection window starts at the whole second the capture began.
func (s *Scheduler) cycle(ctx context.Context, mode detect.Mode, agg detect.Aggregator, start time.Time, freq uint64) error {
	elapsed := int64(s.clock.Since(start) / time.Second)

	samples, err := s.capturer.Capture(ctx, freq)
	if err != nil {
		return fmt.Errorf("sweep aborted at %d Hz: %w", freq, err)
	}

	estimates := s.estimator.Estimate(samples)
	peak, ok := analyze.Peak(estimates)
	s.observer.Captured(Capture{
		Frequency: freq,
		Samples:   samples,
		Peak:      peak,
		HasPeak:   ok,
		Mean:      analyze.Summarize(estimates).Mean,
		SNR:       analyze.SNR(samples),
	})

	if !ok {
		if mode == detect.ModeInstant {
			s.observer.NoSignal(freq)
		}
		return nil
	}

	if peak <= s.threshold {
		if mode == detect.ModeInstant {
			s.observer.BelowThreshold(freq, peak)
		}
		return nil
	}

	ev := detect.Event{
		Frequency:   freq,
		Peak:        peak,
		SampleCount: len(samples),
		Window: detect.Interval{
			Start: elapsed,
			End:   elapsed + int64(s.captureDuration/time.Second),
		},
	}
	agg.Add(ev)
	s.observer.Detected(mode, ev)
	return nil
}
