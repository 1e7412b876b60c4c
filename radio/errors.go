package radio

import "fmt"

// OpenError is returned when the device cannot be opened.
type OpenError struct {
	Driver string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open %s device: %v", e.Driver, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ConfigureError is returned when tuning, sample rate or gain cannot be applied.
type ConfigureError struct {
	Frequency uint64
	Err       error
}

func (e *ConfigureError) Error() string {
	return fmt.Sprintf("could not configure device for %d Hz: %v", e.Frequency, e.Err)
}

func (e *ConfigureError) Unwrap() error { return e.Err }

// CaptureError is returned when entering receive mode or reading samples fails.
type CaptureError struct {
	Frequency uint64
	Op        string
	Err       error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture at %d Hz failed to %s: %v", e.Frequency, e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
