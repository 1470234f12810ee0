package extrema

import "sort"

// Rank sorts extremes by significance, highest first, and keeps those with
// Significance >= top × SignificanceFloor and AreaSizeAvgKm >= rangeKm ×
// AreaSizeFloor. Extremes with no positive significance are never kept: an
// extreme whose rays all ran off the field has no depth and scores zero.
// Equal significances keep their input order.
func Rank(extremes []LocalExtreme, rangeKm float64, t *Tuning) []LocalExtreme {
	if len(extremes) == 0 {
		return nil
	}
	sorted := make([]LocalExtreme, len(extremes))
	copy(sorted, extremes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Significance > sorted[j].Significance
	})

	sigFloor := sorted[0].Significance * t.SignificanceFloor
	areaFloor := rangeKm * t.AreaSizeFloor
	kept := sorted[:0]
	for _, e := range sorted {
		if e.Significance > 0 && e.Significance >= sigFloor && e.AreaSizeAvgKm >= areaFloor {
			kept = append(kept, e)
		}
	}
	return kept
}

// Stamp writes p.Low or p.High into the output cell nearest each extreme.
// Extremes outside the output area are skipped and all other cells stay
// missing. extremes is in rank order, so when two extremes land on the same
// output cell the first, more significant one keeps it.
func Stamp(extremes []LocalExtreme, out OutputSpec, p Params) *ResultGrid {
	rg := NewResultGrid(out.NX, out.NY, out.Missing)
	for _, e := range extremes {
		if !out.Area.Contains(e.LatLon) {
			continue
		}
		x, y, ok := out.Area.NearestCell(out.NX, out.NY, e.LatLon)
		if !ok {
			continue
		}
		idx := y*out.NX + x
		if !rg.IsMissing(rg.Values[idx]) {
			continue
		}
		v := p.High
		if e.IsMinimum {
			v = p.Low
		}
		rg.Values[idx] = v
	}
	return rg
}
