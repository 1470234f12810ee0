// Package monitor renders diagnostic plots of field slices and the highs
// and lows detected on them.
package monitor

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/highlow/internal/extrema"
	"github.com/banshee-data/highlow/internal/field"
)

const paletteSize = 64

var (
	highColor    = color.RGBA{R: 200, G: 20, B: 20, A: 255}
	lowColor     = color.RGBA{R: 20, G: 40, B: 200, A: 255}
	missingColor = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// GridPlotter writes one PNG per field slice: a heat map of the samples with
// the detected highs and lows marked on top. It is a tuning aid; nothing
// reads the images back.
type GridPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string
	plotted   int
}

// NewGridPlotter returns a disabled plotter. Call Start to enable it.
func NewGridPlotter() *GridPlotter {
	return &GridPlotter{}
}

// Start enables plotting into outputDir, creating it if needed.
func (gp *GridPlotter) Start(outputDir string) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	gp.outputDir = outputDir
	gp.enabled = true
	gp.plotted = 0
	return nil
}

// Stop disables plotting. The output directory is kept.
func (gp *GridPlotter) Stop() {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	gp.enabled = false
}

// IsEnabled returns true between Start and Stop.
func (gp *GridPlotter) IsEnabled() bool {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.enabled
}

// GetOutputDir returns the directory plots are written to.
func (gp *GridPlotter) GetOutputDir() string {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.outputDir
}

// PlotCount returns how many images have been written since Start.
func (gp *GridPlotter) PlotCount() int {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.plotted
}

// Plot renders g with extremes marked and saves it as <name>.png. It
// returns the file path, or "" when the plotter is disabled.
func (gp *GridPlotter) Plot(name string, g *field.Grid, extremes []extrema.LocalExtreme) (string, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if !gp.enabled {
		return "", nil
	}
	if gp.outputDir == "" {
		return "", fmt.Errorf("no output directory configured")
	}
	if g == nil {
		return "", fmt.Errorf("plot %s: nil grid", name)
	}
	if err := g.Validate(); err != nil {
		return "", fmt.Errorf("plot %s: %w", name, err)
	}

	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "Longitude (°)"
	p.Y.Label.Text = "Latitude (°)"

	gridXYZ := gridAdapter{g: g}
	if lo, hi, ok := gridXYZ.valueRange(); ok {
		cm := moreland.SmoothBlueRed()
		cm.SetMax(1)
		cm.SetMin(0)
		hm := plotter.NewHeatMap(gridXYZ, cm.Palette(paletteSize))
		hm.NaN = missingColor
		if hi == lo {
			hi = lo + 1
		}
		hm.Min, hm.Max = lo, hi
		p.Add(hm)
	}

	var highs, lows plotter.XYs
	for _, e := range extremes {
		pt := plotter.XY{X: e.LatLon.Lon, Y: e.LatLon.Lat}
		if e.IsMinimum {
			lows = append(lows, pt)
		} else {
			highs = append(highs, pt)
		}
	}
	if err := addMarkers(p, "high", highs, draw.PyramidGlyph{}, highColor); err != nil {
		return "", err
	}
	if err := addMarkers(p, "low", lows, draw.CircleGlyph{}, lowColor); err != nil {
		return "", err
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	file := filepath.Join(gp.outputDir, sanitizeName(name)+".png")
	if err := p.Save(8*vg.Inch, 6*vg.Inch, file); err != nil {
		return "", fmt.Errorf("save plot %s: %w", name, err)
	}
	gp.plotted++
	return file, nil
}

func addMarkers(p *plot.Plot, label string, pts plotter.XYs, shape draw.GlyphDrawer, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("%s markers: %w", label, err)
	}
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(5)
	p.Add(s)
	p.Legend.Add(label, s)
	return nil
}

// gridAdapter exposes a field.Grid as a plotter.GridXYZ. Missing samples
// read as NaN so the heat map paints them with its NaN colour.
type gridAdapter struct {
	g *field.Grid
}

func (a gridAdapter) Dims() (c, r int) { return a.g.NX, a.g.NY }

func (a gridAdapter) Z(c, r int) float64 {
	v, ok := a.g.ValueAt(c, r)
	if !ok || a.g.IsMissing(v) {
		return math.NaN()
	}
	return v
}

func (a gridAdapter) X(c int) float64 { return a.g.LatLonAt(c, 0).Lon }

func (a gridAdapter) Y(r int) float64 { return a.g.LatLonAt(0, r).Lat }

// valueRange returns the extent of the non-missing samples.
func (a gridAdapter) valueRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range a.g.Values {
		if a.g.IsMissing(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// sanitizeName maps a plot title onto a file name: runs of anything other
// than ASCII letters, digits, dot, underscore or dash become one underscore.
func sanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "plot"
	}
	return out
}

// FormatTimestamp generates a timestamp string for file and directory naming.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("20060102_150405")
}

// MakePlotOutputDir returns baseDir/<field basename>/<timestamp>, or
// baseDir/run_<timestamp> when no field file is named.
func MakePlotOutputDir(baseDir, fieldFile string, now time.Time) string {
	ts := FormatTimestamp(now)
	if fieldFile != "" {
		base := filepath.Base(fieldFile)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		return filepath.Join(baseDir, name, ts)
	}
	return filepath.Join(baseDir, "run_"+ts)
}
