package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/highlow/internal/db"
	"github.com/banshee-data/highlow/internal/extrema"
	"github.com/banshee-data/highlow/internal/field"
	"github.com/banshee-data/highlow/internal/rpc"
	"github.com/banshee-data/highlow/internal/testutil"
)

var (
	t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t1 = t0.Add(6 * time.Hour)
)

// writeSeries stores a bowl at t0 and a pit at t1 as a field file.
func writeSeries(t *testing.T) (string, *field.Series) {
	t.Helper()
	s := field.NewSeries()
	require.NoError(t, s.Add(t0, testutil.BowlGrid(t, 9, 80, 4, 4, 100)))
	require.NoError(t, s.Add(t1, testutil.PitGrid(t, 9, 80, 4, 4, 0)))
	path := filepath.Join(t.TempDir(), "mslp.json")
	require.NoError(t, s.WriteFile(path))
	return path, s
}

func baseOptions() options {
	return options{SeriesName: "mslp", RangeKm: 40, Low: -1, High: 1}
}

func TestRunFieldFile(t *testing.T) {
	path, _ := writeSeries(t)
	opts := baseOptions()
	opts.FieldFile = path

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))

	got := out.String()
	assert.Contains(t, got, "2024-03-01T00:00:00Z: 1 highs, 0 lows")
	assert.Contains(t, got, "2024-03-01T06:00:00Z: 0 highs, 1 lows")
	assert.Contains(t, got, "high x=4 y=4")
	assert.Contains(t, got, "low  x=4 y=4")
}

func TestRunSingleInstantWithoutSlice(t *testing.T) {
	path, _ := writeSeries(t)
	opts := baseOptions()
	opts.FieldFile = path
	opts.Instant = "2024-03-02T00:00:00Z"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Equal(t, "2024-03-02T00:00:00Z: 0 highs, 0 lows\n", out.String())
}

func TestRunImportThenDatabase(t *testing.T) {
	path, _ := writeSeries(t)
	dbPath := filepath.Join(t.TempDir(), "highlow.db")

	opts := baseOptions()
	opts.FieldFile = path
	opts.DBPath = dbPath
	opts.ImportOnly = true
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "imported 2 slices")

	opts = baseOptions()
	opts.DBPath = dbPath
	out.Reset()
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "1 highs, 0 lows")

	database, err := db.NewDB(dbPath)
	require.NoError(t, err)
	defer database.Close()
	runs, err := db.NewRunStore(database).ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunPlots(t *testing.T) {
	path, _ := writeSeries(t)
	plotDir := t.TempDir()
	opts := baseOptions()
	opts.FieldFile = path
	opts.PlotDir = plotDir
	opts.Instant = "2024-03-01T00:00:00Z"

	require.NoError(t, run(context.Background(), opts, &bytes.Buffer{}))

	pngs, err := filepath.Glob(filepath.Join(plotDir, "mslp", "*", "*.png"))
	require.NoError(t, err)
	assert.Len(t, pngs, 1)
}

func TestRunRemote(t *testing.T) {
	path, series := writeSeries(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	engine, err := extrema.NewEngine(extrema.DefaultTuning())
	require.NoError(t, err)
	go func() { served <- rpc.Serve(ctx, lis, rpc.NewServer(engine, series)) }()
	defer func() {
		cancel()
		assert.NoError(t, <-served)
	}()

	opts := baseOptions()
	opts.FieldFile = path
	opts.Remote = lis.Addr().String()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "2024-03-01T00:00:00Z: 1 highs, 0 lows")
	assert.Equal(t, int64(2), engine.Computations())
}

func TestRunErrors(t *testing.T) {
	path, _ := writeSeries(t)
	badTuning := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(badTuning, []byte(`{"max_sub_grids": 0}`), 0o644))

	cases := map[string]func(*options){
		"no source":      func(o *options) {},
		"import no db":   func(o *options) { o.FieldFile = path; o.ImportOnly = true },
		"bad instant":    func(o *options) { o.FieldFile = path; o.Instant = "yesterday" },
		"bad range":      func(o *options) { o.FieldFile = path; o.RangeKm = -3 },
		"missing field":  func(o *options) { o.FieldFile = filepath.Join(t.TempDir(), "nope.json") },
		"invalid tuning": func(o *options) { o.FieldFile = path; o.TuningFile = badTuning },
	}
	for name, mutate := range cases {
		opts := baseOptions()
		mutate(&opts)
		assert.Error(t, run(context.Background(), opts, &bytes.Buffer{}), name)
	}
}
