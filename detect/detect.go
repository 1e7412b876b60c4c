package detect

import (
	"fmt"
	"slices"
	"strings"
)

type Mode int

const (
	ModeInstant Mode = iota
	ModeScheduled
)

func (m Mode) String() string {
	switch m {
	case ModeInstant:
		return "instant"
	case ModeScheduled:
		return "scheduled"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Interval is a half-open window [Start, End) in whole seconds since the
// start of the sweep.
type Interval struct {
	Start int64
	End   int64
}

func (i Interval) String() string {
	return fmt.Sprintf("%d-%d", i.Start, i.End)
}

// Event is one capture whose peak crossed the threshold.
type Event struct {
	Frequency   uint64
	Peak        float64
	SampleCount int
	Window      Interval
}

type Detection struct {
	Frequency   uint64
	Strength    float64
	SampleCount int
	// Windows is append-only: repeated or adjacent windows are kept as they came.
	Windows []Interval
}

func (d Detection) MHz() float64 {
	return float64(d.Frequency) / 1e6
}

// Durations renders the windows as "s-e,s-e,...". With coalesce set, touching
// or overlapping windows are merged first; the stored windows are untouched.
func (d Detection) Durations(coalesce bool) string {
	windows := d.Windows
	if coalesce {
		windows = Coalesce(windows)
	}

	parts := make([]string, len(windows))
	for i, w := range windows {
		parts[i] = w.String()
	}
	return strings.Join(parts, ",")
}

// Coalesce returns the windows sorted and merged where they overlap or touch.
func Coalesce(windows []Interval) []Interval {
	if len(windows) == 0 {
		return nil
	}

	sorted := slices.Clone(windows)
	slices.SortFunc(sorted, func(a, b Interval) int {
		if a.Start != b.Start {
			return int(a.Start - b.Start)
		}
		return int(a.End - b.End)
	})

	out := []Interval{sorted[0]}
	for _, w := range sorted[1:] {
		last := &out[len(out)-1]
		if w.Start <= last.End {
			last.End = max(last.End, w.End)
			continue
		}
		out = append(out, w)
	}
	return out
}

// Entry is one record of a finalized sweep. Placeholder marks the single
// empty record an instant sweep reports when nothing was detected.
type Entry struct {
	ID          int
	Detection   Detection
	Placeholder bool
}

// Result is the finalized, id-ordered output of a sweep.
type Result struct {
	Mode    Mode
	Entries []Entry
}

// Detections returns the real detections, skipping a placeholder entry.
func (r *Result) Detections() []Entry {
	out := make([]Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if !e.Placeholder {
			out = append(out, e)
		}
	}
	return out
}

type Aggregator interface {
	Add(ev Event)
	Finalize() *Result
	Len() int
}

func New(mode Mode) Aggregator {
	if mode == ModeScheduled {
		return NewScheduled()
	}
	return NewInstant()
}
