package tui

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/jrwynneiii/tetrasweep/analyze"
	"github.com/jrwynneiii/tetrasweep/config"
	"github.com/jrwynneiii/tetrasweep/detect"
	"github.com/jrwynneiii/tetrasweep/sweep"
	"github.com/navidys/tvxwidgets"
	"github.com/rivo/tview"
)

// Dashboard is a sweep.Observer that keeps the Stats shown by StartUI.
type Dashboard struct {
	Stats *Stats

	band      sweep.Band
	threshold float64
	bins      int
}

func NewDashboard(band sweep.Band, threshold float64, spectrumBins int) *Dashboard {
	return &Dashboard{
		Stats:     &Stats{BandPeaks: make([]float64, band.Len())},
		band:      band,
		threshold: threshold,
		bins:      spectrumBins,
	}
}

func (d *Dashboard) Countdown(remaining time.Duration) {
	d.Stats.mu.Lock()
	defer d.Stats.mu.Unlock()
	d.Stats.Countdown = remaining
}

func (d *Dashboard) PassStarted(mode detect.Mode, pass int) {
	d.Stats.mu.Lock()
	defer d.Stats.mu.Unlock()
	d.Stats.Countdown = 0
	d.Stats.Mode = mode
	d.Stats.Pass = pass
	if d.Stats.agg == nil {
		d.Stats.agg = detect.New(mode)
	}
}

func (d *Dashboard) Captured(c sweep.Capture) {
	spectrum := analyze.Spectrum(c.Samples, d.bins)

	d.Stats.mu.Lock()
	defer d.Stats.mu.Unlock()
	d.Stats.Frequency = c.Frequency
	d.Stats.Samples = len(c.Samples)
	d.Stats.LastPeak = c.Peak
	d.Stats.HasPeak = c.HasPeak
	d.Stats.SNR = c.SNR
	d.Stats.Spectrum = spectrum
	if c.HasPeak && c.Frequency >= d.band.Start {
		if idx := (c.Frequency - d.band.Start) / d.band.Step; idx < uint64(len(d.Stats.BandPeaks)) {
			d.Stats.BandPeaks[idx] = c.Peak
		}
	}
}

func (d *Dashboard) BelowThreshold(uint64, float64) {}

func (d *Dashboard) NoSignal(uint64) {}

func (d *Dashboard) Detected(mode detect.Mode, ev detect.Event) {
	d.Stats.mu.Lock()
	defer d.Stats.mu.Unlock()
	if d.Stats.agg == nil {
		d.Stats.agg = detect.New(mode)
	}
	d.Stats.agg.Add(ev)
	d.Stats.Detections = d.Stats.agg.Finalize().Detections()
}

func (d *Dashboard) Finished(res *detect.Result) {
	d.Stats.mu.Lock()
	defer d.Stats.mu.Unlock()
	d.Stats.Finished = true
	d.Stats.Detections = res.Detections()
}

// gaugeValue is the last peak as a percentage of the threshold.
func (d *Dashboard) gaugeValue(st Stats) float64 {
	if !st.HasPeak || d.threshold <= 0 {
		return 0
	}
	return max(0, min(100, st.LastPeak/d.threshold*100))
}

var LogOut *tview.TextView

// StartUI blocks until the user quits or ctx is cancelled. Log output is
// redirected to the log pane while it runs.
func StartUI(ctx context.Context, d *Dashboard, tuiConf config.TuiConf) error {
	app := tview.NewApplication()

	LogOut = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	detectionTable := tview.NewTable().SetContent(&DetectionTableData{stats: d.Stats})
	statusTable := tview.NewTable().SetContent(&StatusTableData{stats: d.Stats})

	bandPlot := tvxwidgets.NewPlot()
	bandPlot.SetLineColor([]tcell.Color{tcell.ColorLightSkyBlue})
	bandPlot.SetMarker(tvxwidgets.PlotMarkerBraille)
	bandPlot.SetBorder(true)
	bandPlot.SetTitle("Band Peaks (dB)")

	spectrumPlot := tvxwidgets.NewPlot()
	spectrumPlot.SetLineColor([]tcell.Color{tcell.ColorGreen})
	spectrumPlot.SetMarker(tvxwidgets.PlotMarkerBraille)
	spectrumPlot.SetBorder(true)
	spectrumPlot.SetTitle("Spectrum")

	peakGauge := tvxwidgets.NewUtilModeGauge()
	peakGauge.SetLabel("Peak vs threshold:   ")
	peakGauge.SetLabelColor(tcell.ColorLightSkyBlue)
	peakGauge.SetWarnPercentage(90)
	peakGauge.SetCritPercentage(100)
	peakGauge.SetEmptyColor(tcell.ColorBlack)
	peakGauge.SetBorder(false)

	LogOut.SetChangedFunc(func() {
		LogOut.ScrollToEnd()
		app.Draw()
	})
	LogOut.SetBorder(true).SetTitle("Log Output")
	log.SetOutput(LogOut)
	defer log.SetOutput(os.Stderr)

	detectionTable.SetSelectable(false, false).SetBorder(true).SetTitle("Detections")
	statusTable.SetSelectable(false, false).SetBorder(false)

	status := tview.NewFlex().SetDirection(tview.FlexRow)
	status.AddItem(statusTable, 0, 2, false)
	status.AddItem(peakGauge, 1, 0, false)
	status.SetBorder(true)
	status.SetTitle("Sweep Status")

	page := tview.NewFlex().SetDirection(tview.FlexColumn)

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow)
	leftCol.AddItem(detectionTable, 0, 3, false)
	leftCol.AddItem(status, 0, 1, false)

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow)
	rightCol.AddItem(bandPlot, 0, 2, false)
	rightCol.AddItem(spectrumPlot, 0, 2, false)
	rightCol.AddItem(LogOut, 0, 2, false)

	page.AddItem(leftCol, 0, 2, false)
	page.AddItem(rightCol, 0, 3, false)

	go func() {
		ticker := time.NewTicker(time.Duration(tuiConf.RefreshMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				app.Stop()
				return
			case <-ticker.C:
			}

			st := d.Stats.snapshot()
			app.QueueUpdateDraw(func() {
				peakGauge.SetValue(d.gaugeValue(st))
				if len(st.BandPeaks) > 1 {
					bandPlot.SetData([][]float64{st.BandPeaks})
				}
				if len(st.Spectrum) > 1 {
					spectrumPlot.SetData([][]float64{st.Spectrum})
				}
			})
		}
	}()

	return app.SetRoot(page, true).EnableMouse(true).Run()
}
