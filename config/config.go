package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/tetrasweep/analyze"
	"github.com/jrwynneiii/tetrasweep/export"
	"github.com/jrwynneiii/tetrasweep/radio"
	"github.com/jrwynneiii/tetrasweep/sweep"

	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "TETRASWEEP_"

// ErrNotFound is returned when no config file exists at the given path or in
// the search path.
var ErrNotFound = errors.New("config file not found")

var sinks = []string{"json", "csv", "sqlite", "mysql"}

var sections = []string{"band", "radio", "detection", "output", "tui"}

type Conf struct {
	// Seconds. These three keys are all a legacy config.json carries.
	InstantScan        bool  `koanf:"instant_scan"`
	StartAfterDuration int64 `koanf:"start_after_duration"`
	ScanDuration       int64 `koanf:"scan_duration"`

	LogLevel  string        `koanf:"log_level"`
	Band      BandConf      `koanf:"band"`
	Radio     RadioConf     `koanf:"radio"`
	Detection DetectionConf `koanf:"detection"`
	Output    OutputConf    `koanf:"output"`
	Tui       TuiConf       `koanf:"tui"`
}

type BandConf struct {
	Start uint64 `koanf:"start"`
	End   uint64 `koanf:"end"`
	Step  uint64 `koanf:"step"`
}

type RadioConf struct {
	Driver         string  `koanf:"driver"`
	Serial         string  `koanf:"serial"`
	SampleRate     float64 `koanf:"sample_rate"`
	AmpEnable      bool    `koanf:"amp_enable"`
	LNAGain        int     `koanf:"lna_gain"`
	VGAGain        int     `koanf:"vga_gain"`
	CaptureSeconds int     `koanf:"capture_seconds"`
	ChunkSize      uint    `koanf:"chunk_size"`
	ReplayFile     string  `koanf:"replay_file"`
}

type DetectionConf struct {
	Threshold float64 `koanf:"threshold"`
	Estimator string  `koanf:"estimator"`
}

type MySQLConf struct {
	Addr         string `koanf:"addr"`
	User         string `koanf:"user"`
	PasswordFile string `koanf:"password_file"`
	DBName       string `koanf:"db_name"`
}

type OutputConf struct {
	Directory       string    `koanf:"directory"`
	InstantFile     string    `koanf:"instant_file"`
	ScheduledFile   string    `koanf:"scheduled_file"`
	Pretty          bool      `koanf:"pretty"`
	Echo            bool      `koanf:"echo"`
	CoalesceWindows bool      `koanf:"coalesce_windows"`
	Sinks           []string  `koanf:"sinks"`
	CSVFile         string    `koanf:"csv_file"`
	SQLiteFile      string    `koanf:"sqlite_file"`
	MySQL           MySQLConf `koanf:"mysql"`
}

type TuiConf struct {
	Enabled      bool `koanf:"enabled"`
	RefreshMs    int  `koanf:"refresh_ms"`
	SpectrumBins int  `koanf:"spectrum_bins"`
}

// Error reports a config file that could not be loaded or a value that does
// not validate.
type Error struct {
	Path string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid config value %s: %v", e.Key, e.Err)
	}
	if e.Path == "" {
		return fmt.Sprintf("could not load config: %v", e.Err)
	}
	return fmt.Sprintf("could not load config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func defaults() map[string]any {
	return map[string]any{
		"instant_scan":            false,
		"start_after_duration":    0,
		"scan_duration":           60,
		"log_level":               "info",
		"band.start":              sweep.DefaultBand.Start,
		"band.end":                sweep.DefaultBand.End,
		"band.step":               sweep.DefaultBand.Step,
		"radio.driver":            "hackrf",
		"radio.sample_rate":       1_000_000.0,
		"radio.amp_enable":        true,
		"radio.lna_gain":          24,
		"radio.vga_gain":          28,
		"radio.capture_seconds":   1,
		"radio.chunk_size":        radio.DefaultChunkSize,
		"detection.threshold":     sweep.DefaultThreshold,
		"detection.estimator":     analyze.EstimatorMagnitude,
		"output.directory":        ".",
		"output.instant_file":     export.DefaultInstantFile,
		"output.scheduled_file":   export.DefaultScheduledFile,
		"output.pretty":           true,
		"output.echo":             true,
		"output.coalesce_windows": false,
		"output.sinks":            []string{"json"},
		"output.csv_file":         "tetra_detections.csv",
		"output.sqlite_file":      "tetra.db",
		"output.mysql.addr":       "127.0.0.1:3306",
		"output.mysql.db_name":    "tetrasweep",
		"tui.enabled":             false,
		"tui.refresh_ms":          250,
		"tui.spectrum_bins":       256,
	}
}

// FindConfig returns the first config file that exists in the search path, or
// an empty string.
func FindConfig() string {
	paths := []string{"/etc/tetrasweep/config.hcl", "~/.config/tetrasweep/config.hcl", "./config.hcl", "./config.json"}
	for _, path := range paths {
		path = expandHome(path)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			log.Infof("Found config file: %s", path)
			return path
		}
	}
	log.Info("Config file not found!")
	return ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hcl.Parser(true), nil
	case ".json":
		return json.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// envKey maps TETRASWEEP_RADIO_LNA_GAIN to radio.lna_gain and
// TETRASWEEP_SCAN_DURATION to scan_duration.
func envKey(k string) string {
	key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found || !slices.Contains(sections, section) {
		return key
	}
	if section == "output" {
		if field, ok := strings.CutPrefix(rest, "mysql_"); ok {
			return "output.mysql." + field
		}
	}
	return section + "." + rest
}

// Load reads defaults, then the file at path, then TETRASWEEP_ environment
// variables. An empty path searches the default locations. Running without
// a document is an error.
func Load(path string) (*Conf, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, &Error{Err: err}
	}

	if path == "" {
		if path = FindConfig(); path == "" {
			return nil, &Error{Err: ErrNotFound}
		}
	} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Path: path, Err: ErrNotFound}
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(name, value string) (string, any) {
			key := envKey(name)
			log.Debugf("Found config env var: %s=%v", key, value)
			if key == "output.sinks" {
				return key, strings.Split(value, ",")
			}
			return key, value
		},
	}), nil)
	if err != nil {
		return nil, &Error{Err: err}
	}

	var c Conf
	if err := k.Unmarshal("", &c); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Conf) Validate() error {
	if err := c.SweepBand().Validate(); err != nil {
		return &Error{Key: "band", Err: err}
	}
	if c.Radio.SampleRate <= 0 {
		return &Error{Key: "radio.sample_rate", Err: fmt.Errorf("must be positive: %v given", c.Radio.SampleRate)}
	}
	if err := c.Gain().Validate(); err != nil {
		return &Error{Key: "radio", Err: err}
	}
	if c.Radio.CaptureSeconds < 1 {
		return &Error{Key: "radio.capture_seconds", Err: fmt.Errorf("must be at least 1: %d given", c.Radio.CaptureSeconds)}
	}
	if c.StartAfterDuration < 0 {
		return &Error{Key: "start_after_duration", Err: fmt.Errorf("must not be negative: %d given", c.StartAfterDuration)}
	}
	if c.ScanDuration < 0 {
		return &Error{Key: "scan_duration", Err: fmt.Errorf("must not be negative: %d given", c.ScanDuration)}
	}
	if _, err := analyze.ByName(c.Detection.Estimator, c.Radio.SampleRate); err != nil {
		return &Error{Key: "detection.estimator", Err: err}
	}
	for _, s := range c.Output.Sinks {
		if !slices.Contains(sinks, s) {
			return &Error{Key: "output.sinks", Err: fmt.Errorf("%q is not a supported sink, pick from %v", s, sinks)}
		}
	}
	if c.Tui.RefreshMs <= 0 {
		return &Error{Key: "tui.refresh_ms", Err: fmt.Errorf("must be positive: %d given", c.Tui.RefreshMs)}
	}
	return nil
}

func (c *Conf) SweepBand() sweep.Band {
	return sweep.Band{Start: c.Band.Start, End: c.Band.End, Step: c.Band.Step}
}

func (c *Conf) Gain() radio.Gain {
	return radio.Gain{AmpEnabled: c.Radio.AmpEnable, LNA: c.Radio.LNAGain, VGA: c.Radio.VGAGain}
}

func (c *Conf) CaptureDuration() time.Duration {
	return time.Duration(c.Radio.CaptureSeconds) * time.Second
}

func (c *Conf) RadioSettings() radio.Settings {
	return radio.Settings{
		SampleRate: c.Radio.SampleRate,
		Gain:       c.Gain(),
		Duration:   c.CaptureDuration(),
	}
}

func (c *Conf) StartAfter() time.Duration {
	return time.Duration(c.StartAfterDuration) * time.Second
}

func (c *Conf) Budget() time.Duration {
	return time.Duration(c.ScanDuration) * time.Second
}

func (c *Conf) HasSink(name string) bool {
	return slices.Contains(c.Output.Sinks, name)
}

// MySQLPassword reads the password file named in output.mysql, if any.
func (c *Conf) MySQLPassword() (string, error) {
	if c.Output.MySQL.PasswordFile == "" {
		return "", nil
	}
	pass, err := os.ReadFile(expandHome(c.Output.MySQL.PasswordFile))
	if err != nil {
		return "", &Error{Key: "output.mysql.password_file", Err: err}
	}
	return strings.TrimSpace(string(pass)), nil
}
