package radio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jrwynneiii/tetrasweep/clock"
)

const DefaultChunkSize = 262144

// FileDriver replays a raw interleaved I/Q byte capture as if it came from a
// receiver. Chunks wrap around at the end of the file and each read waits for
// the time the chunk would have taken at the configured sample rate.
type FileDriver struct {
	path      string
	chunkSize int
	clock     clock.Clock

	data       []byte
	offset     int
	sampleRate float64
	receiving  bool
}

func NewFileDriver(path string, chunkSize int, c clock.Clock) *FileDriver {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &FileDriver{path: path, chunkSize: chunkSize, clock: c}
}

func (f *FileDriver) Name() string { return "replay" }

func (f *FileDriver) Open() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("replay file %s is empty", f.path)
	}
	f.data = data
	f.offset = 0
	return nil
}

func (f *FileDriver) Configure(t Tuning) error {
	if t.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %f given", t.SampleRate)
	}
	f.sampleRate = t.SampleRate
	return nil
}

func (f *FileDriver) StartRx() error {
	f.receiving = true
	return nil
}

func (f *FileDriver) Read(ctx context.Context) ([]byte, error) {
	if !f.receiving {
		return nil, errors.New("replay is not streaming")
	}

	chunk := make([]byte, f.chunkSize)
	for n := 0; n < len(chunk); {
		copied := copy(chunk[n:], f.data[f.offset:])
		n += copied
		f.offset = (f.offset + copied) % len(f.data)
	}

	// Two bytes per complex sample.
	pace := time.Duration(float64(len(chunk)/2) / f.sampleRate * float64(time.Second))
	if err := f.clock.Sleep(ctx, pace); err != nil {
		return nil, err
	}
	return chunk, nil
}

func (f *FileDriver) StopRx() error {
	f.receiving = false
	return nil
}

func (f *FileDriver) Close() error {
	f.data = nil
	return nil
}
