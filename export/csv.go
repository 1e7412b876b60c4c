package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jrwynneiii/tetrasweep/detect"
)

// CSV writes one row per detection to Path, or to Writer when Path is empty.
type CSV struct {
	Path     string
	Writer   io.Writer
	Coalesce bool
}

func (c *CSV) Write(ctx context.Context, res *detect.Result) error {
	if err := ctx.Err(); err != nil {
		return &Error{Sink: "csv", Err: err}
	}

	if c.Path == "" {
		out := c.Writer
		if out == nil {
			out = os.Stdout
		}
		return c.write(out, res)
	}

	f, err := os.Create(c.Path)
	if err != nil {
		return &Error{Sink: "csv", Err: err}
	}
	if err := c.write(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &Error{Sink: "csv", Err: err}
	}
	return nil
}

func (c *CSV) write(out io.Writer, res *detect.Result) error {
	w := csv.NewWriter(out)
	w.Write([]string{
		"ID",
		"Mode",
		"FreqMHz",
		"Strength",
		"SampleCount",
		"Durations",
	})
	for _, e := range res.Detections() {
		w.Write([]string{
			fmt.Sprintf("%d", e.ID),
			res.Mode.String(),
			fmt.Sprintf("%f", e.Detection.MHz()),
			fmt.Sprintf("%f", e.Detection.Strength),
			fmt.Sprintf("%d", e.Detection.SampleCount),
			e.Detection.Durations(c.Coalesce),
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return &Error{Sink: "csv", Err: err}
	}
	return nil
}
