package sweep

import (
	"errors"
	"fmt"
	"iter"
)

// Band is a frequency range walked in fixed steps, both ends inclusive.
type Band struct {
	Start uint64
	End   uint64
	Step  uint64
}

// TETRA downlink/uplink range the tool was built for.
var DefaultBand = Band{Start: 380_000_000, End: 420_000_000, Step: 1_000_000}

func (b Band) Validate() error {
	if b.Step == 0 {
		return errors.New("band step must be greater than zero")
	}
	if b.Start > b.End {
		return fmt.Errorf("band start %d Hz is above band end %d Hz", b.Start, b.End)
	}
	return nil
}

// Frequencies yields Start, Start+Step, ... up to and including End.
func (b Band) Frequencies() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		if b.Step == 0 {
			return
		}
		for f := b.Start; f <= b.End; f += b.Step {
			if !yield(f) {
				return
			}
			if f > b.End-b.Step {
				// next step would pass End or overflow
				return
			}
		}
	}
}

func (b Band) Len() int {
	if b.Validate() != nil {
		return 0
	}
	return int((b.End-b.Start)/b.Step) + 1
}
