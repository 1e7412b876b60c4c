package sweep

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/jrwynneiii/tetrasweep/detect"
)

// Capture describes one finished capture window.
type Capture struct {
	Frequency uint64
	Samples   []byte
	Peak      float64
	HasPeak   bool
	Mean      float64
	SNR       float64
}

// Observer receives progress from a running sweep. All calls come from the
// sweep's own goroutine.
type Observer interface {
	Countdown(remaining time.Duration)
	PassStarted(mode detect.Mode, pass int)
	Captured(c Capture)
	BelowThreshold(freq uint64, peak float64)
	NoSignal(freq uint64)
	Detected(mode detect.Mode, ev detect.Event)
	Finished(res *detect.Result)
}

// Observers fans every call out to each observer in order.
type Observers []Observer

func (o Observers) Countdown(remaining time.Duration) {
	for _, ob := range o {
		ob.Countdown(remaining)
	}
}

func (o Observers) PassStarted(mode detect.Mode, pass int) {
	for _, ob := range o {
		ob.PassStarted(mode, pass)
	}
}

func (o Observers) Captured(c Capture) {
	for _, ob := range o {
		ob.Captured(c)
	}
}

func (o Observers) BelowThreshold(freq uint64, peak float64) {
	for _, ob := range o {
		ob.BelowThreshold(freq, peak)
	}
}

func (o Observers) NoSignal(freq uint64) {
	for _, ob := range o {
		ob.NoSignal(freq)
	}
}

func (o Observers) Detected(mode detect.Mode, ev detect.Event) {
	for _, ob := range o {
		ob.Detected(mode, ev)
	}
}

func (o Observers) Finished(res *detect.Result) {
	for _, ob := range o {
		ob.Finished(res)
	}
}

// LogObserver prints human readable progress lines. Per frequency lines are
// debug output in scheduled mode.
type LogObserver struct {
	Logger *log.Logger

	mode detect.Mode
}

func NewLogObserver(logger *log.Logger) *LogObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &LogObserver{Logger: logger}
}

func (l *LogObserver) Countdown(remaining time.Duration) {
	l.Logger.Infof("Scan starts in %d seconds", int(remaining.Seconds()))
}

func (l *LogObserver) PassStarted(mode detect.Mode, pass int) {
	l.mode = mode
	l.Logger.Debugf("Starting %s pass %d", mode, pass)
}

func (l *LogObserver) Captured(c Capture) {
	logf := l.Logger.Infof
	if l.mode == detect.ModeScheduled {
		logf = l.Logger.Debugf
	}
	logf("Scanning frequency: %s", humanize.SIWithDigits(float64(c.Frequency), 3, "Hz"))
	logf("Received %s samples", humanize.Comma(int64(len(c.Samples))))
	if c.HasPeak {
		l.Logger.Debugf("Peak %.2f dB, mean %.2f dB, SNR %.1f dB", c.Peak, c.Mean, c.SNR)
	}
}

func (l *LogObserver) BelowThreshold(freq uint64, peak float64) {
	l.Logger.Infof("Signal below threshold detected at %v MHz with strength %.2f dB", float64(freq)/1e6, peak)
}

func (l *LogObserver) NoSignal(freq uint64) {
	l.Logger.Info("No signal detected.")
}

func (l *LogObserver) Detected(mode detect.Mode, ev detect.Event) {
	if mode == detect.ModeInstant {
		l.Logger.Info("Signal detected: true")
		return
	}
	l.Logger.Infof("Signal detected at %v MHz with strength %.2f dB during %s", float64(ev.Frequency)/1e6, ev.Peak, ev.Window)
}

func (l *LogObserver) Finished(res *detect.Result) {
	l.Logger.Infof("Sweep finished with %d detections", len(res.Detections()))
}
