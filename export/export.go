package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jrwynneiii/tetrasweep/detect"
)

type Exporter interface {
	Write(ctx context.Context, res *detect.Result) error
}

// Error reports a sink that could not persist a result.
type Error struct {
	Sink string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Sink, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Multi writes to each exporter in order and stops at the first failure.
type Multi []Exporter

func (m Multi) Write(ctx context.Context, res *detect.Result) error {
	for _, e := range m {
		if err := e.Write(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// decimal always renders with a fractional part, so 380 MHz is written as
// 380.0 the way the existing tetra_*.json consumers expect.
type decimal float64

func (d decimal) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(d), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

// Record fields are declared in key order.
type instantRecord struct {
	Freq        decimal `json:"freq"`
	SampleCount int     `json:"sample_count"`
	Strength    decimal `json:"strength"`
}

type scheduledRecord struct {
	Freq           decimal `json:"freq"`
	SampleCount    int     `json:"sample_count"`
	Strength       decimal `json:"strength"`
	TetraDurations string  `json:"tetra_durations"`
}

type placeholderRecord struct {
	Freq        int `json:"freq"`
	MaxStrength int `json:"max_strength"`
	SampleCount int `json:"sample_count"`
}

func record(mode detect.Mode, e detect.Entry, coalesce bool) any {
	switch {
	case e.Placeholder:
		return placeholderRecord{}
	case mode == detect.ModeScheduled:
		return scheduledRecord{
			Freq:           decimal(e.Detection.MHz()),
			Strength:       decimal(e.Detection.Strength),
			SampleCount:    e.Detection.SampleCount,
			TetraDurations: e.Detection.Durations(coalesce),
		}
	default:
		return instantRecord{
			Freq:        decimal(e.Detection.MHz()),
			Strength:    decimal(e.Detection.Strength),
			SampleCount: e.Detection.SampleCount,
		}
	}
}

// Document renders res as a JSON object keyed by entry id. Keys appear in id
// order rather than sorted as strings.
func Document(res *detect.Result, coalesce, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range res.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(strconv.Itoa(e.ID))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(record(res.Mode, e, coalesce))
		if err != nil {
			return nil, fmt.Errorf("could not encode entry %d: %w", e.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	if !pretty {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
