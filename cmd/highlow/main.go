// Command highlow detects important highs and lows in gridded scalar fields.
//
// One-shot mode evaluates every instant of a field (or just -instant) and
// prints the stamped cells. With -listen it serves the highlow.Extrema gRPC
// service instead; with -remote it evaluates against such a server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/highlow/internal/monitoring"
	"github.com/banshee-data/highlow/internal/version"
)

var (
	fieldFile   = flag.String("field", "", "JSON field series file")
	dbPath      = flag.String("db", "", "SQLite database for field slices and detection runs")
	seriesName  = flag.String("series", "default", "Series name for field slices in -db")
	importOnly  = flag.Bool("import", false, "Copy the -field series into -db and exit")
	instantFlag = flag.String("instant", "", "RFC3339 instant to evaluate (default: every stored instant)")
	rangeKm     = flag.Float64("range", 0, "Search range in km (0 uses the tuning default)")
	lowValue    = flag.Float64("low", -1, "Value stamped on detected lows")
	highValue   = flag.Float64("high", 1, "Value stamped on detected highs")
	tuningFile  = flag.String("tuning", "", "Tuning JSON file (default: built-in defaults)")
	plotDir     = flag.String("plot", "", "Write a diagnostic PNG per detection under this directory")
	listen      = flag.String("listen", "", "Serve highlow.Extrema over gRPC on this address")
	remote      = flag.String("remote", "", "Evaluate against the highlow.Extrema server at this address")
	verbose     = flag.Bool("v", false, "Enable the diag log stream")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	logs := monitoring.LogWriters{Ops: os.Stderr}
	if *verbose {
		logs.Diag = os.Stderr
	}
	monitoring.SetLogWriters(logs)

	opts := options{
		FieldFile:  *fieldFile,
		DBPath:     *dbPath,
		SeriesName: *seriesName,
		ImportOnly: *importOnly,
		Instant:    *instantFlag,
		RangeKm:    *rangeKm,
		Low:        *lowValue,
		High:       *highValue,
		TuningFile: *tuningFile,
		PlotDir:    *plotDir,
		Listen:     *listen,
		Remote:     *remote,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("highlow: %v", err)
	}
}
