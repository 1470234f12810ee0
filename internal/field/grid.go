package field

import (
	"fmt"
	"math"
)

// Grid is a dense NX×NY scalar field stored row-major (index y*NX+x).
// Samples equal to Missing, or NaN, carry no data.
type Grid struct {
	NX      int
	NY      int
	Values  []float64
	Missing float64
	Area    Area
}

// NewGrid returns an nx×ny grid with every sample set to missing.
func NewGrid(nx, ny int, missing float64, area Area) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, nx, ny)
	}
	if err := area.Validate(); err != nil {
		return nil, err
	}
	values := make([]float64, nx*ny)
	for i := range values {
		values[i] = missing
	}
	return &Grid{NX: nx, NY: ny, Values: values, Missing: missing, Area: area}, nil
}

// NewGridFunc builds a grid whose sample at (x, y) is fn(x, y).
func NewGridFunc(nx, ny int, missing float64, area Area, fn func(x, y int) float64) (*Grid, error) {
	g, err := NewGrid(nx, ny, missing, area)
	if err != nil {
		return nil, err
	}
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			g.Values[g.Idx(x, y)] = fn(x, y)
		}
	}
	return g, nil
}

// Validate checks dimensions, value count and area.
func (g *Grid) Validate() error {
	if g.NX <= 0 || g.NY <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyGrid, g.NX, g.NY)
	}
	if len(g.Values) != g.NX*g.NY {
		return fmt.Errorf("%w: have %d values for %dx%d", ErrDimensions, len(g.Values), g.NX, g.NY)
	}
	return g.Area.Validate()
}

// Idx returns the flat index of (x, y). The caller checks bounds.
func (g *Grid) Idx(x, y int) int {
	return y*g.NX + x
}

// InBounds reports whether (x, y) addresses a sample.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.NX && y < g.NY
}

// Set writes one sample. Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, v float64) {
	if g.InBounds(x, y) {
		g.Values[g.Idx(x, y)] = v
	}
}

// ValueAt returns the sample at (x, y); ok is false outside the grid.
func (g *Grid) ValueAt(x, y int) (v float64, ok bool) {
	if !g.InBounds(x, y) {
		return 0, false
	}
	return g.Values[g.Idx(x, y)], true
}

// IsMissing reports whether v carries no data.
func (g *Grid) IsMissing(v float64) bool {
	return v == g.Missing || math.IsNaN(v)
}

// LatLonAt returns the geographic position of grid point (x, y).
func (g *Grid) LatLonAt(x, y int) LatLon {
	return g.Area.GridToLatLon(g.NX, g.NY, float64(x), float64(y))
}

// View returns an independent read cursor over the grid.
func (g *Grid) View() View {
	return View{nx: g.NX, ny: g.NY, missing: g.Missing, area: g.Area, values: g.Values}
}

// View reads a Grid's samples without sharing cursor state with any other
// reader. Views never write, so one per goroutine over the same Grid is safe.
type View struct {
	nx, ny  int
	missing float64
	area    Area
	values  []float64
}

// Dims returns the grid dimensions.
func (v View) Dims() (nx, ny int) { return v.nx, v.ny }

// Missing returns the missing sentinel.
func (v View) Missing() float64 { return v.missing }

// Area returns the grid footprint.
func (v View) Area() Area { return v.area }

// ValueAt returns the sample at (x, y); ok is false outside the grid.
func (v View) ValueAt(x, y int) (float64, bool) {
	if x < 0 || y < 0 || x >= v.nx || y >= v.ny {
		return 0, false
	}
	return v.values[y*v.nx+x], true
}

// IsMissing reports whether val carries no data.
func (v View) IsMissing(val float64) bool {
	return val == v.missing || math.IsNaN(val)
}

// LatLonAt returns the geographic position of grid point (x, y).
func (v View) LatLonAt(x, y int) LatLon {
	return v.area.GridToLatLon(v.nx, v.ny, float64(x), float64(y))
}

// Crop copies the inclusive rectangle [x1,x2]×[y1,y2] into a new Grid
// whose area is the rectangle's footprint. The rectangle is clipped to the
// source grid; nil is returned when nothing remains.
func (v View) Crop(x1, y1, x2, y2 int) *Grid {
	x1, y1 = max(x1, 0), max(y1, 0)
	x2, y2 = min(x2, v.nx-1), min(y2, v.ny-1)
	if x2 < x1 || y2 < y1 {
		return nil
	}
	w, h := x2-x1+1, y2-y1+1
	out := &Grid{
		NX:      w,
		NY:      h,
		Values:  make([]float64, w*h),
		Missing: v.missing,
		Area:    v.area.SubArea(v.nx, v.ny, x1, y1, x2, y2),
	}
	for y := 0; y < h; y++ {
		copy(out.Values[y*w:(y+1)*w], v.values[(y1+y)*v.nx+x1:(y1+y)*v.nx+x1+w])
	}
	return out
}
