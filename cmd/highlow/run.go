package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/banshee-data/highlow/internal/config"
	"github.com/banshee-data/highlow/internal/db"
	"github.com/banshee-data/highlow/internal/extrema"
	"github.com/banshee-data/highlow/internal/field"
	"github.com/banshee-data/highlow/internal/monitor"
	"github.com/banshee-data/highlow/internal/monitoring"
	"github.com/banshee-data/highlow/internal/rpc"
)

// options mirrors the command-line flags.
type options struct {
	FieldFile  string
	DBPath     string
	SeriesName string
	ImportOnly bool
	Instant    string
	RangeKm    float64
	Low        float64
	High       float64
	TuningFile string
	PlotDir    string
	Listen     string
	Remote     string
}

// source is a field.Source that can also list its instants.
type source interface {
	field.Source
	Instants() ([]time.Time, error)
}

// seriesSource adapts an in-memory series to source.
type seriesSource struct{ *field.Series }

func (s seriesSource) Instants() ([]time.Time, error) { return s.Series.Instants(), nil }

// evaluateFunc produces the stamped grid for one instant.
type evaluateFunc func(ctx context.Context, instant time.Time, out extrema.OutputSpec, args []float64) (*extrema.ResultGrid, error)

func run(ctx context.Context, opts options, w io.Writer) error {
	if opts.FieldFile == "" && opts.DBPath == "" {
		return errors.New("one of -field or -db is required")
	}
	if opts.ImportOnly && (opts.FieldFile == "" || opts.DBPath == "") {
		return errors.New("-import needs both -field and -db")
	}

	cfg := config.EmptyTuningConfig()
	if opts.TuningFile != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(opts.TuningFile); err != nil {
			return err
		}
	}
	tuning := extrema.TuningFromConfig(cfg)

	var (
		src      source
		database *db.DB
	)
	if opts.FieldFile != "" {
		series, err := field.LoadSeries(opts.FieldFile)
		if err != nil {
			return err
		}
		src = seriesSource{series}
	}
	if opts.DBPath != "" {
		var err error
		if database, err = db.NewDB(opts.DBPath); err != nil {
			return err
		}
		defer database.Close()

		store := db.NewFieldStore(database, opts.SeriesName)
		if series, ok := src.(seriesSource); ok && opts.ImportOnly {
			n, err := store.ImportSeries(series.Series)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "imported %d slices into %s series %q\n", n, opts.DBPath, opts.SeriesName)
			return nil
		}
		if src == nil {
			src = store
		}
	}

	var recorders extrema.Recorders
	if database != nil {
		recorders = append(recorders, db.NewRunStore(database))
	}
	if opts.PlotDir != "" {
		gp := monitor.NewGridPlotter()
		if err := gp.Start(monitor.MakePlotOutputDir(opts.PlotDir, opts.FieldFile, time.Now())); err != nil {
			return err
		}
		defer gp.Stop()
		recorders = append(recorders, monitor.NewDetectionPlotter(gp, src))
	}

	engineOpts := []extrema.Option{}
	if len(recorders) > 0 {
		engineOpts = append(engineOpts, extrema.WithRecorder(recorders))
	}
	engine, err := extrema.NewEngine(tuning, engineOpts...)
	if err != nil {
		return err
	}

	if opts.Listen != "" {
		lis, err := net.Listen("tcp", opts.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		return rpc.Serve(ctx, lis, rpc.NewServer(engine, src))
	}

	var evaluate evaluateFunc = func(_ context.Context, instant time.Time, out extrema.OutputSpec, args []float64) (*extrema.ResultGrid, error) {
		return engine.Evaluate(instant, src, out, args)
	}
	if opts.Remote != "" {
		client, err := rpc.Dial(opts.Remote)
		if err != nil {
			return err
		}
		defer client.Close()
		evaluate = remoteEvaluate(client)
	}

	rangeKm := opts.RangeKm
	if rangeKm == 0 {
		rangeKm = cfg.GetDefaultSearchRangeKm()
	}
	args := []float64{rangeKm, opts.Low, opts.High}
	if _, err := extrema.ParseArgs(args); err != nil {
		return err
	}

	instants, err := selectInstants(src, opts.Instant)
	if err != nil {
		return err
	}
	out, err := outputSpec(src, instants)
	if err != nil {
		return err
	}

	for _, instant := range instants {
		if err := ctx.Err(); err != nil {
			return err
		}
		rg, err := evaluate(ctx, instant, out, args)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", instant.Format(time.RFC3339), err)
		}
		printResult(w, instant, out, rg, args)
	}
	monitoring.Diagf("evaluated %d instants, %d pipeline runs", len(instants), engine.Computations())
	return nil
}

func remoteEvaluate(client *rpc.Client) evaluateFunc {
	return func(ctx context.Context, instant time.Time, out extrema.OutputSpec, args []float64) (*extrema.ResultGrid, error) {
		resp, err := client.Evaluate(ctx, &rpc.EvaluateRequest{Instant: instant, Args: args, Output: out})
		if err != nil {
			return nil, err
		}
		return resp.Grid(), nil
	}
}

// selectInstants parses the -instant flag, or lists every instant in src.
func selectInstants(src source, flagValue string) ([]time.Time, error) {
	if flagValue != "" {
		t, err := time.Parse(time.RFC3339, flagValue)
		if err != nil {
			return nil, fmt.Errorf("invalid -instant: %w", err)
		}
		return []time.Time{t.UTC()}, nil
	}
	instants, err := src.Instants()
	if err != nil {
		return nil, err
	}
	if len(instants) == 0 {
		return nil, errors.New("source holds no field slices")
	}
	return instants, nil
}

// outputSpec stamps results onto the layout of the first available slice.
func outputSpec(src source, instants []time.Time) (extrema.OutputSpec, error) {
	candidates := append([]time.Time(nil), instants...)
	all, err := src.Instants()
	if err != nil {
		return extrema.OutputSpec{}, err
	}
	candidates = append(candidates, all...)
	for _, instant := range candidates {
		g, err := src.Slice(instant)
		if err == nil {
			return extrema.OutputSpecFor(g), nil
		}
		if !errors.Is(err, field.ErrNoSlice) {
			return extrema.OutputSpec{}, err
		}
	}
	return extrema.OutputSpec{}, errors.New("no field slice to take the output layout from")
}

func printResult(w io.Writer, instant time.Time, out extrema.OutputSpec, rg *extrema.ResultGrid, args []float64) {
	low, high := args[1], args[2]
	cells := rg.Cells()
	fmt.Fprintf(w, "%s: %d highs, %d lows\n", instant.UTC().Format(time.RFC3339), rg.Count(high), rg.Count(low))
	for _, c := range cells {
		kind := "high"
		if c.Value == low {
			kind = "low"
		}
		ll := out.Area.GridToLatLon(out.NX, out.NY, float64(c.X), float64(c.Y))
		fmt.Fprintf(w, "  %-4s x=%d y=%d lat=%.3f lon=%.3f\n", kind, c.X, c.Y, ll.Lat, ll.Lon)
	}
}
