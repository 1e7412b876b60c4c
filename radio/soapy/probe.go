package soapy

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pothosware/go-soapy-sdr/pkg/device"
	"github.com/pothosware/go-soapy-sdr/pkg/modules"
	"github.com/pothosware/go-soapy-sdr/pkg/sdrlogger"
	"github.com/pothosware/go-soapy-sdr/pkg/version"
)

// LogDevices lists the SoapySDR modules and every attached receiver with the
// settings the sweep cares about: tuning range, sample rates and gains.
func LogDevices() error {
	log.Infof("Using SoapySDR versions: ABI: %s API: %s Lib: %s", version.GetABIVersion(), version.GetAPIVersion(), version.GetLibVersion())
	log.Infof("SoapySDR modules root path: %v", modules.GetRootPath())

	modulesFound := modules.ListModules()
	if len(modulesFound) == 0 {
		log.Info("No SoapySDR modules found")
	}
	for _, module := range modulesFound {
		moduleVersion := modules.GetModuleVersion(module)
		if len(moduleVersion) == 0 {
			moduleVersion = "[None]"
		}
		log.Infof("Found SoapySDR module: %v, version: %v", module, moduleVersion)
	}

	sdrlogger.SetLogLevel(sdrlogger.Error)

	found := device.Enumerate(nil)
	log.Infof("Found %d devices", len(found))
	for _, args := range found {
		dev, err := device.Make(args)
		if err != nil {
			return fmt.Errorf("SoapySDR could not open device %v: %w", args, err)
		}
		log.Infof("Driver: %s (%s)", args["driver"], args["serial"])
		logSettings(dev)
		if err := dev.Unmake(); err != nil {
			log.Warnf("Could not close device: %v", err)
		}
	}
	return nil
}

func logSettings(dev *device.SDRDevice) {
	numChannels := dev.GetNumChannels(device.DirectionRX)
	for channel := uint(0); channel < numChannels; channel++ {
		log.Infof("Channel %d:", channel)

		for _, r := range dev.GetFrequencyRange(device.DirectionRX, channel) {
			log.Infof("\tFrequency range: %v", r.ToString())
		}
		for _, r := range dev.GetSampleRateRange(device.DirectionRX, channel) {
			log.Infof("\tSample rates: %v", r.ToString())
		}
		for _, name := range dev.ListGains(device.DirectionRX, channel) {
			log.Infof("\tGain %s: %v", name, dev.GetGainElementRange(device.DirectionRX, channel, name).ToString())
		}
		log.Infof("\tIQ Sample Types: %v", dev.GetStreamFormats(device.DirectionRX, channel))
	}
}
