package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/jrwynneiii/tetrasweep/detect"
)

const (
	DefaultInstantFile   = "tetra_instantdata.json"
	DefaultScheduledFile = "tetra_scheduledata.json"
)

// JSON writes the result document to a per-mode file under Directory and
// optionally echoes it to Echo.
type JSON struct {
	Directory     string
	InstantFile   string
	ScheduledFile string
	Echo          io.Writer
	Pretty        bool
	Coalesce      bool
}

func (j *JSON) Path(mode detect.Mode) string {
	name := j.InstantFile
	if name == "" {
		name = DefaultInstantFile
	}
	if mode == detect.ModeScheduled {
		name = j.ScheduledFile
		if name == "" {
			name = DefaultScheduledFile
		}
	}
	return filepath.Join(j.Directory, name)
}

func (j *JSON) Write(ctx context.Context, res *detect.Result) error {
	if err := ctx.Err(); err != nil {
		return &Error{Sink: "json", Err: err}
	}

	doc, err := Document(res, j.Coalesce, j.Pretty)
	if err != nil {
		return &Error{Sink: "json", Err: err}
	}

	if j.Echo != nil {
		fmt.Fprintln(j.Echo, string(doc))
	}

	path := j.Path(res.Mode)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &Error{Sink: "json", Err: err}
		}
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return &Error{Sink: "json", Err: err}
	}
	log.Infof("Wrote %s to %s", humanize.Bytes(uint64(len(doc))), path)
	return nil
}
