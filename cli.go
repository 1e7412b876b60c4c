package main

var cli struct {
	Verbose bool   `help:"Prints debug output by default"`
	Config  string `short:"c" help:"Config file to load (hcl, json or yaml) instead of searching the default paths" type:"path"`
	Probe   struct {
	} `cmd:"" help:"List the available radios and SoapySDR configuration"`
	Scan struct {
		Instant bool   `help:"Make a single pass over the band, overriding instant_scan"`
		Replay  string `help:"Replay a raw CS8 capture file instead of a radio" type:"existingfile"`
		Tui     bool   `help:"Show the dashboard while sweeping"`
	} `cmd:"" help:"Sweep the band and export the detections"`
}
