package soapy

// #cgo CFLAGS: -g -Wall
// #cgo LDFLAGS: -lSoapySDR
import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/tetrasweep/radio"

	"github.com/pothosware/go-soapy-sdr/pkg/device"
	"github.com/pothosware/go-soapy-sdr/pkg/modules"
	"github.com/pothosware/go-soapy-sdr/pkg/sdrlogger"
	"github.com/pothosware/go-soapy-sdr/pkg/version"
)

const (
	DefaultDriver = "hackrf"

	// HackRF front end amplifier is either off or a fixed 14 dB.
	ampGain = 14

	readTimeoutUs = 500000
)

// Driver streams signed 8 bit I/Q from a SoapySDR device. The bytes are
// handed out unchanged, two's complement reinterpreted as unsigned.
type Driver struct {
	args      map[string]string
	chunkSize uint

	device *device.SDRDevice
	stream *device.SDRStreamCS8
	buffer [][]int8
}

func New(driver, serial string, chunkSize uint) *Driver {
	if driver == "" {
		driver = DefaultDriver
	}
	if chunkSize == 0 {
		chunkSize = radio.DefaultChunkSize / 2
	}

	args := map[string]string{"driver": driver}
	if serial != "" {
		args["serial"] = serial
	}
	return &Driver{args: args, chunkSize: chunkSize}
}

func (d *Driver) Name() string { return d.args["driver"] }

func (d *Driver) Open() error {
	initSoapySDR()

	dev, err := device.Make(d.args)
	if err != nil {
		return err
	}
	d.device = dev
	log.Debugf("Opened SoapySDR device: %s", dev.GetHardwareKey())
	return nil
}

func (d *Driver) Configure(t radio.Tuning) error {
	if err := d.device.SetSampleRate(device.DirectionRX, 0, t.SampleRate); err != nil {
		return fmt.Errorf("could not set sample rate: %w", err)
	}
	if err := d.device.SetFrequency(device.DirectionRX, 0, float64(t.Frequency), nil); err != nil {
		return fmt.Errorf("could not set frequency: %w", err)
	}

	amp := 0.0
	if t.Gain.AmpEnabled {
		amp = ampGain
	}
	gains := []struct {
		name  string
		value float64
	}{
		{"AMP", amp},
		{"LNA", float64(t.Gain.LNA)},
		{"VGA", float64(t.Gain.VGA)},
	}
	for _, g := range gains {
		if err := d.device.SetGainElement(device.DirectionRX, 0, g.name, g.value); err != nil {
			return fmt.Errorf("could not set %s gain: %w", g.name, err)
		}
	}
	return nil
}

func (d *Driver) StartRx() error {
	stream, err := d.device.SetupSDRStreamCS8(device.DirectionRX, []uint{0}, nil)
	if err != nil {
		return fmt.Errorf("could not setup SDR stream: %w", err)
	}
	if err := stream.Activate(0, 0, 0); err != nil {
		stream.Close()
		return fmt.Errorf("could not activate the IQ stream: %w", err)
	}

	d.stream = stream
	d.buffer = [][]int8{make([]int8, 2*d.chunkSize)}
	return nil
}

func (d *Driver) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flags := make([]int, 1)
	_, numSamples, err := d.stream.Read(d.buffer, d.chunkSize, flags, readTimeoutUs)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 2*numSamples)
	for i := range out {
		out[i] = byte(d.buffer[0][i])
	}
	return out, nil
}

func (d *Driver) StopRx() error {
	if d.stream == nil {
		return nil
	}
	deactivateErr := d.stream.Deactivate(0, 0)
	closeErr := d.stream.Close()
	d.stream = nil
	return errors.Join(deactivateErr, closeErr)
}

func (d *Driver) Close() error {
	if d.device == nil {
		return nil
	}
	err := d.device.Unmake()
	d.device = nil
	return err
}

func initSoapySDR() {
	log.Debugf("Using SoapySDR versions: ABI: %s API: %s Lib: %s", version.GetABIVersion(), version.GetAPIVersion(), version.GetLibVersion())
	log.Debugf("SoapySDR modules root path: %v", modules.GetRootPath())
	sdrlogger.SetLogLevel(sdrlogger.Error)
}
