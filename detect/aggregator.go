package detect

import "slices"

// Instant keeps one record per event, numbered from 1 in arrival order.
// Every frequency is visited once per instant sweep so nothing is merged.
type Instant struct {
	next    int
	entries []Entry
}

func NewInstant() *Instant {
	return &Instant{next: 1}
}

func (a *Instant) Add(ev Event) {
	a.entries = append(a.entries, Entry{
		ID: a.next,
		Detection: Detection{
			Frequency:   ev.Frequency,
			Strength:    ev.Peak,
			SampleCount: ev.SampleCount,
			Windows:     []Interval{ev.Window},
		},
	})
	a.next++
}

func (a *Instant) Len() int { return len(a.entries) }

// Finalize returns the records in id order, or a single placeholder record
// with id 1 when nothing crossed the threshold.
func (a *Instant) Finalize() *Result {
	if len(a.entries) == 0 {
		return &Result{
			Mode:    ModeInstant,
			Entries: []Entry{{ID: 1, Placeholder: true}},
		}
	}
	return &Result{Mode: ModeInstant, Entries: slices.Clone(a.entries)}
}

// Scheduled merges repeated events of the same frequency into one record.
// Records are indexed by the order their frequency was first seen.
type Scheduled struct {
	index   map[uint64]int
	records []Detection
}

func NewScheduled() *Scheduled {
	return &Scheduled{index: make(map[uint64]int)}
}

// Add creates a record on the first event of a frequency. Later events
// overwrite strength and sample count and append their window.
func (a *Scheduled) Add(ev Event) {
	idx, ok := a.index[ev.Frequency]
	if !ok {
		a.index[ev.Frequency] = len(a.records)
		a.records = append(a.records, Detection{
			Frequency:   ev.Frequency,
			Strength:    ev.Peak,
			SampleCount: ev.SampleCount,
			Windows:     []Interval{ev.Window},
		})
		return
	}

	rec := &a.records[idx]
	rec.Strength = ev.Peak
	rec.SampleCount = ev.SampleCount
	rec.Windows = append(rec.Windows, ev.Window)
}

func (a *Scheduled) Len() int { return len(a.records) }

// Finalize keys the records 0..n-1 by first-seen order, regardless of
// their numeric frequency order.
func (a *Scheduled) Finalize() *Result {
	res := &Result{Mode: ModeScheduled, Entries: make([]Entry, len(a.records))}
	for i, rec := range a.records {
		rec.Windows = slices.Clone(rec.Windows)
		res.Entries[i] = Entry{ID: i, Detection: rec}
	}
	return res
}
