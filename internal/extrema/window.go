package extrema

import "github.com/banshee-data/highlow/internal/field"

// SubGrid is a materialised copy of one sub-region, used by the secondary
// window scan. It drops the last column and row of the sub-region so that
// neighbouring sub-grids never share a sample.
type SubGrid struct {
	grid   *field.Grid
	x0, y0 int // origin in the parent grid
}

// NewSubGrid crops b out of v. It returns nil if nothing remains.
func NewSubGrid(v field.View, b Bounds) *SubGrid {
	g := v.Crop(b.X1, b.Y1, max(b.X1, b.X2-1), max(b.Y1, b.Y2-1))
	if g == nil {
		return nil
	}
	return &SubGrid{grid: g, x0: b.X1, y0: b.Y1}
}

// Dims returns the sub-grid dimensions.
func (s *SubGrid) Dims() (nx, ny int) { return s.grid.NX, s.grid.NY }

// Scan slides a (2r+1)² window over every point whose window fits inside
// the sub-grid. The centre is a maximum when nothing in the window exceeds
// it, the missing share is below WindowMissingFraction and the strictly
// lower share is above WindowDominance; minima mirror this. A sub-grid
// smaller than one window yields nothing. Candidates carry parent grid
// coordinates.
func (s *SubGrid) Scan(t *Tuning) []Candidate {
	r := t.WindowRadius
	nx, ny := s.grid.NX, s.grid.NY
	if nx < 2*r+1 || ny < 2*r+1 {
		return nil
	}

	side := 2*r + 1
	total := float64(side * side)
	var out []Candidate
	for y := r; y < ny-r; y++ {
		for x := r; x < nx-r; x++ {
			centre := s.grid.Values[s.grid.Idx(x, y)]
			if s.grid.IsMissing(centre) {
				continue
			}

			var over, under, missing int
			for wy := y - r; wy <= y+r; wy++ {
				for wx := x - r; wx <= x+r; wx++ {
					v := s.grid.Values[s.grid.Idx(wx, wy)]
					switch {
					case s.grid.IsMissing(v):
						missing++
					case v > centre:
						over++
					case v < centre:
						under++
					}
				}
			}

			if float64(missing)/total >= t.WindowMissingFraction {
				continue
			}
			c := Candidate{Value: centre, X: s.x0 + x, Y: s.y0 + y, Secondary: true}
			switch {
			case over == 0 && float64(under)/total > t.WindowDominance:
				out = append(out, c)
			case under == 0 && float64(over)/total > t.WindowDominance:
				c.IsMinimum = true
				out = append(out, c)
			}
		}
	}
	return out
}
