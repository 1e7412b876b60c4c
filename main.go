package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jrwynneiii/tetrasweep/analyze"
	"github.com/jrwynneiii/tetrasweep/clock"
	"github.com/jrwynneiii/tetrasweep/config"
	"github.com/jrwynneiii/tetrasweep/detect"
	"github.com/jrwynneiii/tetrasweep/export"
	"github.com/jrwynneiii/tetrasweep/radio"
	"github.com/jrwynneiii/tetrasweep/radio/soapy"
	"github.com/jrwynneiii/tetrasweep/sweep"
	"github.com/jrwynneiii/tetrasweep/tui"
)

func main() {
	log.Info("Starting tetrasweep")
	flags := kong.Parse(&cli,
		kong.Name("tetrasweep"),
		kong.Description("Sweeps the TETRA band with a SoapySDR receiver and records where signals were seen."),
		kong.UsageOnError(),
	)
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	switch flags.Command() {
	case "probe":
		if err := soapy.LogDevices(); err != nil {
			log.Fatal(err)
		}

	case "scan":
		conf, err := config.Load(cli.Config)
		if err != nil {
			log.Fatal(err)
		}
		if !cli.Verbose {
			setLogLevel(conf.LogLevel)
		}
		if cli.Scan.Instant {
			conf.InstantScan = true
		}
		if cli.Scan.Replay != "" {
			conf.Radio.ReplayFile = cli.Scan.Replay
		}
		if cli.Scan.Tui {
			conf.Tui.Enabled = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = scan(ctx, conf)
		stop()
		if err != nil {
			log.Fatal(err)
		}

	default:
		log.Info("Command not recognized")
	}
}

func setLogLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Ignoring log_level: %v", err)
		return
	}
	log.SetLevel(lvl)
}

func newDriver(conf *config.Conf, clk clock.Clock) radio.Driver {
	if conf.Radio.ReplayFile != "" {
		log.Infof("Replaying %s instead of a radio", conf.Radio.ReplayFile)
		return radio.NewFileDriver(conf.Radio.ReplayFile, int(conf.Radio.ChunkSize), clk)
	}
	// SoapySDR counts complex samples, two bytes each.
	return soapy.New(conf.Radio.Driver, conf.Radio.Serial, conf.Radio.ChunkSize/2)
}

func outputPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// newExporter builds the configured sinks. The returned func closes any
// database handles they hold.
func newExporter(conf *config.Conf) (export.Multi, func(), error) {
	var (
		sinks export.Multi
		dbs   []*sql.DB
	)
	closeAll := func() {
		for _, db := range dbs {
			if err := db.Close(); err != nil {
				log.Warnf("Could not close database: %v", err)
			}
		}
	}

	out := conf.Output
	if err := os.MkdirAll(out.Directory, 0o755); err != nil {
		return nil, nil, fmt.Errorf("could not create output directory: %w", err)
	}
	runID := uuid.NewString()
	for _, name := range out.Sinks {
		switch name {
		case "json":
			j := &export.JSON{
				Directory:     out.Directory,
				InstantFile:   out.InstantFile,
				ScheduledFile: out.ScheduledFile,
				Pretty:        out.Pretty,
				Coalesce:      out.CoalesceWindows,
			}
			// The dashboard owns the terminal.
			if out.Echo && !conf.Tui.Enabled {
				j.Echo = os.Stdout
			}
			sinks = append(sinks, j)

		case "csv":
			sinks = append(sinks, &export.CSV{Path: outputPath(out.Directory, out.CSVFile), Coalesce: out.CoalesceWindows})

		case "sqlite":
			db, err := export.OpenSQLite(outputPath(out.Directory, out.SQLiteFile))
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			dbs = append(dbs, db)
			sinks = append(sinks, &export.SQL{DB: db, Dialect: export.DialectSQLite, RunID: runID, Coalesce: out.CoalesceWindows})

		case "mysql":
			pass, err := conf.MySQLPassword()
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			db, err := export.OpenMySQL(export.MySQLOptions{
				Addr:     out.MySQL.Addr,
				User:     out.MySQL.User,
				Password: pass,
				DBName:   out.MySQL.DBName,
			})
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			dbs = append(dbs, db)
			sinks = append(sinks, &export.SQL{DB: db, Dialect: export.DialectMySQL, RunID: runID, Coalesce: out.CoalesceWindows})

		default:
			closeAll()
			return nil, nil, fmt.Errorf("%q is not a supported export sink", name)
		}
	}
	log.Debugf("Exporting run %s to %v", runID, out.Sinks)
	return sinks, closeAll, nil
}

func scan(ctx context.Context, conf *config.Conf) error {
	clk := clock.Real{}

	estimator, err := analyze.ByName(conf.Detection.Estimator, conf.Radio.SampleRate)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := newExporter(conf)
	if err != nil {
		return err
	}
	defer closeSinks()

	driver := newDriver(conf, clk)
	log.Debugf("Using %s radio with %+v", driver.Name(), conf.Radio)
	rx := radio.NewReceiver(radio.New(driver, log.WithPrefix("radio")), clk, conf.RadioSettings())
	defer func() {
		if err := rx.Close(); err != nil {
			log.Warnf("Could not close radio: %v", err)
		}
	}()

	observers := sweep.Observers{sweep.NewLogObserver(log.Default())}
	var dash *tui.Dashboard
	if conf.Tui.Enabled {
		dash = tui.NewDashboard(conf.SweepBand(), conf.Detection.Threshold, conf.Tui.SpectrumBins)
		observers = append(observers, dash)
	}

	scheduler, err := sweep.New(rx,
		sweep.WithEstimator(estimator),
		sweep.WithClock(clk),
		sweep.WithThreshold(conf.Detection.Threshold),
		sweep.WithBand(conf.SweepBand()),
		sweep.WithCaptureDuration(conf.CaptureDuration()),
		sweep.WithObserver(observers),
		sweep.WithLogger(log.Default()),
	)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		var (
			res *detect.Result
			err error
		)
		if conf.InstantScan {
			res, err = scheduler.RunInstant(ctx)
		} else {
			res, err = scheduler.RunScheduled(ctx, conf.StartAfter(), conf.Budget())
		}
		if err != nil {
			return err
		}
		return sinks.Write(ctx, res)
	}

	if dash == nil {
		return run(ctx)
	}

	return runWithUI(ctx, run, func(ctx context.Context) error {
		return tui.StartUI(ctx, dash, conf.Tui)
	})
}

// runWithUI runs the sweep beside the dashboard. A failed sweep stops the
// dashboard, and quitting the dashboard cancels the sweep.
func runWithUI(ctx context.Context, run, ui func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		err := run(ctx)
		errc <- err
		if err != nil {
			log.Errorf("Sweep failed: %v", err)
			cancel()
		}
	}()

	uiErr := ui(ctx)
	cancel()
	if err := <-errc; err != nil {
		return err
	}
	if uiErr != nil {
		return fmt.Errorf("could not start UI: %w", uiErr)
	}
	return nil
}
