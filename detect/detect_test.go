package detect

import (
	"reflect"
	"testing"
)

func event(freq uint64, peak float64, count int, t int64) Event {
	return Event{Frequency: freq, Peak: peak, SampleCount: count, Window: Interval{t, t + 1}}
}

func TestInstantNumbersFromOne(t *testing.T) {
	a := NewInstant()
	a.Add(event(381_000_000, 50.1, 100, 0))
	a.Add(event(385_000_000, 52.3, 200, 4))

	res := a.Finalize()
	if res.Mode != ModeInstant {
		t.Errorf("expected instant mode, got %s", res.Mode)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	for i, e := range res.Entries {
		if e.ID != i+1 {
			t.Errorf("entry %d: expected id %d, got %d", i, i+1, e.ID)
		}
		if e.Placeholder {
			t.Errorf("entry %d: unexpected placeholder", i)
		}
	}
	if res.Entries[1].Detection.MHz() != 385 {
		t.Errorf("expected 385 MHz, got %f", res.Entries[1].Detection.MHz())
	}
}

func TestInstantPlaceholder(t *testing.T) {
	res := NewInstant().Finalize()
	if len(res.Entries) != 1 {
		t.Fatalf("expected one placeholder entry, got %d", len(res.Entries))
	}
	e := res.Entries[0]
	if e.ID != 1 || !e.Placeholder {
		t.Errorf("unexpected placeholder entry: %+v", e)
	}
	if len(res.Detections()) != 0 {
		t.Error("placeholder must not count as a detection")
	}
}

func TestScheduledMergesByFrequency(t *testing.T) {
	a := NewScheduled()
	a.Add(event(400_000_000, 50, 10, 2))
	a.Add(event(390_000_000, 55, 11, 3))
	a.Add(event(400_000_000, 49.5, 12, 7))

	res := a.Finalize()
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}

	first := res.Entries[0]
	if first.ID != 0 || first.Detection.Frequency != 400_000_000 {
		t.Fatalf("expected first-seen frequency at id 0, got %+v", first)
	}
	if got := first.Detection.Durations(false); got != "2-3,7-8" {
		t.Errorf("expected durations 2-3,7-8, got %q", got)
	}
	if first.Detection.Strength != 49.5 || first.Detection.SampleCount != 12 {
		t.Errorf("expected last capture to win, got strength %f count %d",
			first.Detection.Strength, first.Detection.SampleCount)
	}

	// First-seen order, not numeric order.
	if res.Entries[1].ID != 1 || res.Entries[1].Detection.Frequency != 390_000_000 {
		t.Errorf("unexpected second entry: %+v", res.Entries[1])
	}
}

func TestScheduledKeepsDuplicateWindows(t *testing.T) {
	a := NewScheduled()
	for _, ts := range []int64{4, 4, 5} {
		a.Add(event(410_000_000, 51, 1, ts))
	}

	d := a.Finalize().Entries[0].Detection
	if got := d.Durations(false); got != "4-5,4-5,5-6" {
		t.Errorf("expected uncoalesced durations, got %q", got)
	}
	if got := d.Durations(true); got != "4-6" {
		t.Errorf("expected coalesced durations 4-6, got %q", got)
	}
	if len(d.Windows) != 3 {
		t.Errorf("coalescing must not touch stored windows, got %v", d.Windows)
	}
}

func TestScheduledEmpty(t *testing.T) {
	res := NewScheduled().Finalize()
	if res.Mode != ModeScheduled || len(res.Entries) != 0 {
		t.Errorf("expected empty scheduled result, got %+v", res)
	}
}

func TestFinalizeIsDetached(t *testing.T) {
	a := NewScheduled()
	a.Add(event(380_000_000, 50, 1, 0))
	res := a.Finalize()
	a.Add(event(380_000_000, 50, 1, 9))

	if got := res.Entries[0].Detection.Durations(false); got != "0-1" {
		t.Errorf("finalized result changed after Add: %q", got)
	}
}

func TestCoalesce(t *testing.T) {
	testCases := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{"empty", nil, nil},
		{"single", []Interval{{3, 4}}, []Interval{{3, 4}}},
		{"adjacent", []Interval{{1, 2}, {2, 3}}, []Interval{{1, 3}}},
		{"gap", []Interval{{1, 2}, {5, 6}}, []Interval{{1, 2}, {5, 6}}},
		{"unordered overlap", []Interval{{5, 8}, {1, 2}, {6, 7}, {2, 3}}, []Interval{{1, 3}, {5, 8}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Coalesce(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(ModeInstant).(*Instant); !ok {
		t.Error("expected instant aggregator")
	}
	if _, ok := New(ModeScheduled).(*Scheduled); !ok {
		t.Error("expected scheduled aggregator")
	}
}
