// Command phasedelay conditions Imagent BOXY phase recordings into
// picosecond phase-delay traces.
//
// Usage:
//
//	phasedelay [flags] [path]
//
// The recording is read from path (or -input), run through the seven-stage
// conditioning chain, and every stage snapshot is written to the CSV
// directory given by -out and/or the SQLite store given by -db.
//
// Examples:
//
//	phasedelay -out snapshots subject01/
//	phasedelay -multi -datatype Ph -db runs.db subject02/
//	phasedelay -config phasedelay.yaml -report
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/cwbudde/algo-phase/internal/config"
	"github.com/cwbudde/algo-phase/io/boxy"
	"github.com/cwbudde/algo-phase/io/snapshot"
	"github.com/cwbudde/algo-phase/io/snapshotdb"
	"github.com/cwbudde/algo-phase/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	report     bool
	debug      bool
	json       bool
}

// run executes the command and returns its exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	logger := newLogger(stderr, cfg.Log)
	if err := process(ctx, cfg, opts, logger, stdout); err != nil {
		logger.Error("phasedelay failed", "error", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*config.Config, options, error) {
	var (
		opts    options
		fs      = flag.NewFlagSet("phasedelay", flag.ContinueOnError)
		input   = fs.String("input", "", "BOXY file or recording directory")
		dtype   = fs.String("datatype", "", "measurement to extract: AC, DC or Ph (default Ph)")
		multi   = fs.Bool("multi", false, "read multi-file recordings (*.NNN per montage and block)")
		out     = fs.String("out", "", "directory for per-stage CSV snapshots")
		db      = fs.String("db", "", "SQLite database for per-stage snapshots")
		workers = fs.Int("workers", 0, "channels processed concurrently per stage (default 1)")
	)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&opts.report, "report", false, "print per-channel statistics of the result")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&opts.json, "json", false, "log as JSON")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: phasedelay [flags] [path]\n\n")
		fmt.Fprintf(stderr, "Converts BOXY phase recordings to conditioned phase delay in picoseconds.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  phasedelay -out snapshots subject01/\n")
		fmt.Fprintf(stderr, "  phasedelay -multi -db runs.db subject02/\n")
	}
	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, opts, err
		}
		cfg = loaded
	}

	// Explicit flags win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input.Path = *input
		case "datatype":
			cfg.Input.DataType = *dtype
		case "multi":
			cfg.Input.MultiFile = *multi
		case "out":
			cfg.Output.Dir = *out
		case "db":
			cfg.Output.Database = *db
		case "workers":
			cfg.Workers = *workers
		}
	})
	if fs.NArg() > 1 {
		return nil, opts, fmt.Errorf("expected at most one path, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		cfg.Input.Path = fs.Arg(0)
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	if opts.json {
		cfg.Log.Format = "json"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, opts, err
	}
	if cfg.Input.Path == "" {
		return nil, opts, errors.New("no input: pass a path or -input")
	}
	return cfg, opts, nil
}

func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	level, err := lc.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	ho := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

func process(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger, stdout io.Writer) (err error) {
	rec, err := boxy.Read(cfg.Input.Path, boxy.Options{
		DataType:  boxy.DataType(cfg.Input.DataType),
		MultiFile: cfg.Input.MultiFile,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.DefaultParams(),
		pipeline.WithLogger(logger),
		pipeline.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return err
	}
	if err := p.Validate(rec.Data); err != nil {
		return fmt.Errorf("%s: %w", cfg.Input.Path, err)
	}

	var sinks pipeline.MultiSink
	if cfg.Output.Dir != "" {
		dir, err := snapshot.NewDirSink(cfg.Output.Dir)
		if err != nil {
			return err
		}
		sinks = append(sinks, dir)
	}
	var run *snapshotdb.Run
	if cfg.Output.Database != "" {
		var store *snapshotdb.Store
		if store, err = snapshotdb.Open(cfg.Output.Database, snapshotdb.WithLogger(logger)); err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		rows, cols := rec.Data.Shape()
		if run, err = store.BeginRun(ctx, cfg.Input.Path, rows, cols); err != nil {
			return err
		}
		sinks = append(sinks, run)
	}

	res, err := p.Run(ctx, rec.Data, sinks)
	if err != nil {
		if run != nil {
			if derr := run.Discard(context.WithoutCancel(ctx)); derr != nil {
				logger.Warn("discard failed run", "run", run.ID, "error", derr)
			}
		}
		return err
	}

	if run != nil {
		fmt.Fprintf(stdout, "run %s\n", run.ID)
	}
	if err := printStages(stdout, res.Reports); err != nil {
		return err
	}
	if opts.report {
		return printChannels(stdout, rec.Labels, res.Final, rec.SampleRate)
	}
	return nil
}
