package extrema

import "github.com/banshee-data/highlow/internal/field"

// FindCandidates makes one raster pass over b and returns its minimum and
// maximum, in that order. Missing and out-of-bounds samples are skipped and
// ties keep the first point found. A sub-region with no valid sample, or
// whose minimum equals its maximum, has nothing to validate.
func FindCandidates(v field.View, b Bounds) []Candidate {
	var lo, hi Candidate
	found := false
	for y := b.Y1; y <= b.Y2; y++ {
		for x := b.X1; x <= b.X2; x++ {
			val, ok := v.ValueAt(x, y)
			if !ok || v.IsMissing(val) {
				continue
			}
			if !found {
				lo = Candidate{Value: val, X: x, Y: y, IsMinimum: true}
				hi = Candidate{Value: val, X: x, Y: y}
				found = true
				continue
			}
			if val < lo.Value {
				lo.Value, lo.X, lo.Y = val, x, y
			}
			if val > hi.Value {
				hi.Value, hi.X, hi.Y = val, x, y
			}
		}
	}
	if !found || lo.Value == hi.Value {
		return nil
	}
	return []Candidate{lo, hi}
}
