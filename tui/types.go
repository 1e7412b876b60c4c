package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/jrwynneiii/tetrasweep/detect"
	"github.com/rivo/tview"
)

// Stats is the dashboard's view of a running sweep. Observer calls write it
// from the sweep goroutine while the refresh loop reads snapshots.
type Stats struct {
	mu sync.Mutex

	Mode       detect.Mode
	Pass       int
	Countdown  time.Duration
	Frequency  uint64
	Samples    int
	LastPeak   float64
	HasPeak    bool
	SNR        float64
	Finished   bool
	BandPeaks  []float64
	Spectrum   []float64
	Detections []detect.Entry

	agg detect.Aggregator
}

func (s *Stats) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Mode:       s.Mode,
		Pass:       s.Pass,
		Countdown:  s.Countdown,
		Frequency:  s.Frequency,
		Samples:    s.Samples,
		LastPeak:   s.LastPeak,
		HasPeak:    s.HasPeak,
		SNR:        s.SNR,
		Finished:   s.Finished,
		BandPeaks:  append([]float64(nil), s.BandPeaks...),
		Spectrum:   append([]float64(nil), s.Spectrum...),
		Detections: append([]detect.Entry(nil), s.Detections...),
	}
}

type DetectionTableData struct {
	tview.TableContentReadOnly
	stats *Stats
}

type StatusTableData struct {
	tview.TableContentReadOnly
	stats *Stats
}

func (d *DetectionTableData) GetRowCount() int {
	d.stats.mu.Lock()
	defer d.stats.mu.Unlock()
	return len(d.stats.Detections) + 1
}

func (d *DetectionTableData) GetColumnCount() int {
	return 5
}

func (d *DetectionTableData) GetCell(row, column int) *tview.TableCell {
	if row == 0 {
		switch column {
		case 0:
			return tview.NewTableCell("[lightskyblue]ID ")
		case 1:
			return tview.NewTableCell("[white]Frequency (MHz) ")
		case 2:
			return tview.NewTableCell("[green]Strength (dB) ")
		case 3:
			return tview.NewTableCell("[white]Samples ")
		case 4:
			return tview.NewTableCell("[white]Windows")
		}
		return tview.NewTableCell("ERROR")
	}

	d.stats.mu.Lock()
	defer d.stats.mu.Unlock()
	if row > len(d.stats.Detections) {
		return nil
	}
	e := d.stats.Detections[row-1]
	switch column {
	case 0:
		return tview.NewTableCell(fmt.Sprintf("[lightskyblue]%d", e.ID))
	case 1:
		return tview.NewTableCell(fmt.Sprintf("[white]%.3f", e.Detection.MHz()))
	case 2:
		return tview.NewTableCell(fmt.Sprintf("[green]%.2f", e.Detection.Strength))
	case 3:
		return tview.NewTableCell(fmt.Sprintf("[white]%s", humanize.Comma(int64(e.Detection.SampleCount))))
	case 4:
		return tview.NewTableCell(fmt.Sprintf("[white]%s", e.Detection.Durations(false)))
	}
	return tview.NewTableCell("ERROR")
}

func (s *StatusTableData) GetRowCount() int {
	return 5
}

func (s *StatusTableData) GetColumnCount() int {
	return 2
}

func (s *StatusTableData) GetCell(row, column int) *tview.TableCell {
	st := s.stats.snapshot()
	switch row {
	case 0:
		if column == 0 {
			return tview.NewTableCell("State:")
		}
		switch {
		case st.Finished:
			return tview.NewTableCell("finished").SetTextColor(tcell.ColorGreen)
		case st.Countdown > 0:
			return tview.NewTableCell(fmt.Sprintf("starts in %d s", int(st.Countdown.Seconds()))).SetTextColor(tcell.ColorYellow)
		case st.Pass == 0:
			return tview.NewTableCell("waiting").SetTextColor(tcell.ColorYellow)
		}
		return tview.NewTableCell(fmt.Sprintf("%s pass %d", st.Mode, st.Pass)).SetTextColor(tcell.ColorLightSkyBlue)
	case 1:
		if column == 0 {
			return tview.NewTableCell("Frequency:")
		}
		if st.Frequency == 0 {
			return tview.NewTableCell("-")
		}
		return tview.NewTableCell(humanize.SIWithDigits(float64(st.Frequency), 3, "Hz"))
	case 2:
		if column == 0 {
			return tview.NewTableCell("Last peak:")
		}
		if !st.HasPeak {
			return tview.NewTableCell("no signal").SetTextColor(tcell.ColorRed)
		}
		return tview.NewTableCell(fmt.Sprintf("%.2f dB", st.LastPeak))
	case 3:
		if column == 0 {
			return tview.NewTableCell("SNR:")
		}
		return tview.NewTableCell(fmt.Sprintf("%.1f dB", st.SNR))
	case 4:
		if column == 0 {
			return tview.NewTableCell("Detections:")
		}
		return tview.NewTableCell(fmt.Sprintf("%d", len(st.Detections)))
	}
	return tview.NewTableCell("ERROR")
}
