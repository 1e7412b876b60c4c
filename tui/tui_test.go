package tui

import (
	"testing"
	"time"

	"github.com/jrwynneiii/tetrasweep/detect"
	"github.com/jrwynneiii/tetrasweep/sweep"
)

var testBand = sweep.Band{Start: 400_000_000, End: 404_000_000, Step: 1_000_000}

func TestDashboardTracksScheduledDetections(t *testing.T) {
	d := NewDashboard(testBand, 49, 64)
	d.PassStarted(detect.ModeScheduled, 1)
	d.Detected(detect.ModeScheduled, detect.Event{Frequency: 402_000_000, Peak: 60, SampleCount: 1000, Window: detect.Interval{Start: 2, End: 3}})
	d.Detected(detect.ModeScheduled, detect.Event{Frequency: 402_000_000, Peak: 55, SampleCount: 1200, Window: detect.Interval{Start: 7, End: 8}})

	table := &DetectionTableData{stats: d.Stats}
	if got := table.GetRowCount(); got != 2 {
		t.Fatalf("expected header and one row, got %d rows", got)
	}

	tests := []struct {
		column int
		want   string
	}{
		{0, "[lightskyblue]0"},
		{1, "[white]402.000"},
		{2, "[green]55.00"},
		{3, "[white]1,200"},
		{4, "[white]2-3,7-8"},
	}
	for _, tt := range tests {
		if got := table.GetCell(1, tt.column).Text; got != tt.want {
			t.Errorf("column %d: expected %q, got %q", tt.column, tt.want, got)
		}
	}
}

func TestDashboardInstantIDs(t *testing.T) {
	d := NewDashboard(testBand, 49, 64)
	d.PassStarted(detect.ModeInstant, 1)
	d.Detected(detect.ModeInstant, detect.Event{Frequency: 400_000_000, Peak: 50, Window: detect.Interval{Start: 0, End: 1}})
	d.Detected(detect.ModeInstant, detect.Event{Frequency: 403_000_000, Peak: 51, Window: detect.Interval{Start: 3, End: 4}})

	st := d.Stats.snapshot()
	if len(st.Detections) != 2 || st.Detections[0].ID != 1 || st.Detections[1].ID != 2 {
		t.Errorf("unexpected detections %+v", st.Detections)
	}
}

func TestDashboardFinishedSkipsPlaceholder(t *testing.T) {
	d := NewDashboard(testBand, 49, 64)
	d.Finished(detect.NewInstant().Finalize())

	st := d.Stats.snapshot()
	if !st.Finished || len(st.Detections) != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
	status := &StatusTableData{stats: d.Stats}
	if got := status.GetCell(0, 1).Text; got != "finished" {
		t.Errorf("expected finished state, got %q", got)
	}
}

func TestDashboardCaptured(t *testing.T) {
	d := NewDashboard(testBand, 40, 8)
	d.Captured(sweep.Capture{Frequency: 403_000_000, Samples: make([]byte, 32), Peak: 20, HasPeak: true})

	st := d.Stats.snapshot()
	if st.BandPeaks[3] != 20 {
		t.Errorf("expected peak in band slot 3, got %v", st.BandPeaks)
	}
	if len(st.Spectrum) != 8 {
		t.Errorf("expected 8 spectrum bins, got %d", len(st.Spectrum))
	}
	if got := d.gaugeValue(st); got != 50 {
		t.Errorf("expected gauge at 50%%, got %v", got)
	}

	d.Captured(sweep.Capture{Frequency: 400_000_000, Peak: 90, HasPeak: true})
	if got := d.gaugeValue(d.Stats.snapshot()); got != 100 {
		t.Errorf("expected gauge clamped to 100%%, got %v", got)
	}
}

func TestStatusCountdown(t *testing.T) {
	d := NewDashboard(testBand, 49, 64)
	status := &StatusTableData{stats: d.Stats}

	if got := status.GetCell(0, 1).Text; got != "waiting" {
		t.Errorf("expected waiting, got %q", got)
	}
	d.Countdown(3 * time.Second)
	if got := status.GetCell(0, 1).Text; got != "starts in 3 s" {
		t.Errorf("expected countdown, got %q", got)
	}
	d.PassStarted(detect.ModeScheduled, 2)
	if got := status.GetCell(0, 1).Text; got != "scheduled pass 2" {
		t.Errorf("expected pass state, got %q", got)
	}
}
