package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrwynneiii/tetrasweep/config"
	"github.com/jrwynneiii/tetrasweep/export"
)

func TestOutputPath(t *testing.T) {
	if got := outputPath("out", "tetra.db"); got != filepath.Join("out", "tetra.db") {
		t.Errorf("unexpected relative path %s", got)
	}
	if got := outputPath("out", "/var/lib/tetra.db"); got != "/var/lib/tetra.db" {
		t.Errorf("absolute paths must be kept, got %s", got)
	}
}

func TestNewExporterUnknownSink(t *testing.T) {
	conf := &config.Conf{Output: config.OutputConf{Directory: t.TempDir(), Sinks: []string{"json", "kafka"}}}
	if _, _, err := newExporter(conf); err == nil {
		t.Error("expected an error for an unknown sink")
	}
}

// TestReplayScan runs an instant sweep end to end against a replayed capture
// and checks every configured sink produced output.
func TestReplayScan(t *testing.T) {
	dir := t.TempDir()
	replay := filepath.Join(dir, "capture.cs8")
	if err := os.WriteFile(replay, []byte{1, 2, 3, 4}, 0o644); err != nil {
		t.Fatal(err)
	}

	conf := &config.Conf{
		InstantScan: true,
		Band:        config.BandConf{Start: 400_000_000, End: 400_000_000, Step: 1_000_000},
		Radio: config.RadioConf{
			SampleRate:     1e6,
			CaptureSeconds: 1,
			ReplayFile:     replay,
			LNAGain:        24,
			VGAGain:        28,
		},
		Detection: config.DetectionConf{Threshold: 49, Estimator: "magnitude"},
		Output: config.OutputConf{
			Directory:  filepath.Join(dir, "out"),
			Sinks:      []string{"json", "csv", "sqlite"},
			CSVFile:    "detections.csv",
			SQLiteFile: "tetra.db",
		},
		Tui: config.TuiConf{RefreshMs: 250},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := scan(ctx, conf); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{export.DefaultInstantFile, "detections.csv", "tetra.db"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "out", export.DefaultInstantFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"1":{"freq":0,"max_strength":0,"sample_count":0}}` {
		t.Errorf("expected the placeholder document, got %s", data)
	}
}

func TestRunWithUIStopsOnSweepFailure(t *testing.T) {
	errCapture := errors.New("capture failed")
	uiStopped := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- runWithUI(context.Background(),
			func(context.Context) error { return errCapture },
			func(ctx context.Context) error {
				<-ctx.Done()
				close(uiStopped)
				return nil
			},
		)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, errCapture) {
			t.Errorf("expected the sweep error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dashboard kept running after the sweep failed")
	}
	select {
	case <-uiStopped:
	default:
		t.Error("dashboard was not stopped")
	}
}

func TestRunWithUIQuitCancelsSweep(t *testing.T) {
	err := runWithUI(context.Background(),
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		func(context.Context) error { return nil },
	)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected the sweep to be cancelled, got %v", err)
	}
}

func TestRunWithUIReportsUIError(t *testing.T) {
	errTerm := errors.New("no terminal")
	err := runWithUI(context.Background(),
		func(context.Context) error { return nil },
		func(context.Context) error { return errTerm },
	)
	if !errors.Is(err, errTerm) {
		t.Errorf("expected the UI error, got %v", err)
	}
}
