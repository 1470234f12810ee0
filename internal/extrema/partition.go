package extrema

import (
	"math"

	"github.com/banshee-data/highlow/internal/field"
)

type span struct {
	lo, hi int // inclusive
}

// SubGridCounts returns how many sub-regions to cut along each axis:
// round(dimension / range), clamped to [1, maxSub].
func SubGridCounts(widthKm, heightKm, rangeKm float64, maxSub int) (cx, cy int) {
	return subGridCount(widthKm, rangeKm, maxSub), subGridCount(heightKm, rangeKm, maxSub)
}

func subGridCount(dimKm, rangeKm float64, maxSub int) int {
	if rangeKm <= 0 || math.IsNaN(dimKm) {
		return 1
	}
	n := int(math.Round(dimKm / rangeKm))
	return min(max(n, 1), max(maxSub, 1))
}

// tile splits [0, n) into count contiguous spans. Every span is
// ceil(n/count) long except the last base*count-n, which are one shorter.
// count is clamped to [1, n] so no span is empty.
func tile(n, count int) []span {
	if n <= 0 {
		return nil
	}
	count = min(max(count, 1), n)
	base := (n + count - 1) / count
	decreaseFrom := count - (base*count - n)

	spans := make([]span, 0, count)
	lo := 0
	for i := 0; i < count; i++ {
		size := base
		if i >= decreaseFrom {
			size--
		}
		spans = append(spans, span{lo: lo, hi: lo + size - 1})
		lo += size
	}
	return spans
}

// Tile returns the sub-region bounds for a cx×cy split of an nx×ny grid in
// row-major order. The bounds cover [0,nx)×[0,ny) exactly once.
func Tile(nx, ny, cx, cy int) []Bounds {
	xs, ys := tile(nx, cx), tile(ny, cy)
	out := make([]Bounds, 0, len(xs)*len(ys))
	for _, sy := range ys {
		for _, sx := range xs {
			out = append(out, Bounds{X1: sx.lo, X2: sx.hi, Y1: sy.lo, Y2: sy.hi})
		}
	}
	return out
}

// Partition tiles g to the search range and keeps the sub-regions whose
// footprint overlaps target.
func Partition(g *field.Grid, rangeKm float64, target field.Area, maxSub int) []Bounds {
	cx, cy := SubGridCounts(g.Area.WidthKm(), g.Area.HeightKm(), rangeKm, maxSub)
	all := Tile(g.NX, g.NY, cx, cy)

	kept := all[:0]
	for _, b := range all {
		foot := g.Area.SubArea(g.NX, g.NY, b.X1, b.Y1, b.X2, b.Y2)
		if foot.Overlaps(target) {
			kept = append(kept, b)
		}
	}
	return kept
}
