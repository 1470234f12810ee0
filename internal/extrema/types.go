package extrema

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/highlow/internal/field"
)

// Bounds is an inclusive rectangle [X1,X2]×[Y1,Y2] in grid-index space.
type Bounds struct {
	X1, X2 int
	Y1, Y2 int
}

// Width returns the number of columns covered.
func (b Bounds) Width() int { return b.X2 - b.X1 + 1 }

// Height returns the number of rows covered.
func (b Bounds) Height() int { return b.Y2 - b.Y1 + 1 }

// Contains reports whether (x, y) lies inside the rectangle.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X1 && x <= b.X2 && y >= b.Y1 && y <= b.Y2
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d]x[%d,%d]", b.X1, b.X2, b.Y1, b.Y2)
}

// Candidate is an unvalidated extremum at a grid point of the full field.
type Candidate struct {
	Value     float64
	X, Y      int
	IsMinimum bool
	Secondary bool // found by the window scan rather than the raster pass
}

// LocalExtreme is a validated candidate with its shape scores.
// Significance = AreaSizeAvgKm × DepthAvg × SymmetryIndex.
type LocalExtreme struct {
	Value         float64      `json:"value"`
	IsMinimum     bool         `json:"is_minimum"`
	LatLon        field.LatLon `json:"lat_lon"`
	X             int          `json:"x"`
	Y             int          `json:"y"`
	AreaSizeAvgKm float64      `json:"area_size_avg_km"`
	DepthAvg      float64      `json:"depth_avg"`
	SymmetryIndex float64      `json:"symmetry_index"`
	Significance  float64      `json:"significance"`
	Secondary     bool         `json:"secondary"`
	Discard       bool         `json:"-"`
}

// Kind returns "low" or "high".
func (e LocalExtreme) Kind() string {
	if e.IsMinimum {
		return "low"
	}
	return "high"
}

// OutputSpec describes the grid a detection is stamped into. It may differ
// in resolution and footprint from the source field.
type OutputSpec struct {
	NX      int        `json:"nx"`
	NY      int        `json:"ny"`
	Missing float64    `json:"missing"`
	Area    field.Area `json:"area"`
}

// OutputSpecFor returns an output spec matching g's layout.
func OutputSpecFor(g *field.Grid) OutputSpec {
	return OutputSpec{NX: g.NX, NY: g.NY, Missing: g.Missing, Area: g.Area}
}

// Validate reports ErrOutputSpec for an empty grid or an invalid area.
func (o OutputSpec) Validate() error {
	if o.NX <= 0 || o.NY <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrOutputSpec, o.NX, o.NY)
	}
	if err := o.Area.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputSpec, err)
	}
	return nil
}

// ResultGrid is a sparse stamped grid: every cell holds Missing, the low
// sentinel or the high sentinel. Grids returned by Engine are shared with
// the cache and must not be modified.
type ResultGrid struct {
	NX      int       `json:"nx"`
	NY      int       `json:"ny"`
	Missing float64   `json:"missing"`
	Values  []float64 `json:"values"`
}

// Cell is one stamped cell of a ResultGrid.
type Cell struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"`
}

// NewResultGrid returns an nx×ny grid with every cell missing.
func NewResultGrid(nx, ny int, missing float64) *ResultGrid {
	values := make([]float64, nx*ny)
	for i := range values {
		values[i] = missing
	}
	return &ResultGrid{NX: nx, NY: ny, Missing: missing, Values: values}
}

// At returns the cell value at (x, y). The caller checks bounds.
func (r *ResultGrid) At(x, y int) float64 {
	return r.Values[y*r.NX+x]
}

// IsMissing reports whether v is the missing sentinel. NaN is always
// missing, so a NaN sentinel behaves like any other.
func (r *ResultGrid) IsMissing(v float64) bool {
	return v == r.Missing || math.IsNaN(v)
}

// Cells returns the non-missing cells in row-major order.
func (r *ResultGrid) Cells() []Cell {
	var cells []Cell
	for i, v := range r.Values {
		if !r.IsMissing(v) {
			cells = append(cells, Cell{X: i % r.NX, Y: i / r.NX, Value: v})
		}
	}
	return cells
}

// Count returns how many cells hold v. A NaN v counts NaN cells.
func (r *ResultGrid) Count(v float64) int {
	n := 0
	for _, c := range r.Values {
		if c == v || (math.IsNaN(v) && math.IsNaN(c)) {
			n++
		}
	}
	return n
}

// Detection summarises one pipeline run.
type Detection struct {
	Instant    time.Time
	Params     Params
	SubRegions int            // sub-regions scanned after footprint filtering
	Validated  int            // extremes surviving growth validation and local dedup
	Extremes   []LocalExtreme // ranked survivors, most significant first
	Result     *ResultGrid
	Elapsed    time.Duration
}
