package extrema

import "github.com/banshee-data/highlow/internal/field"

// Deduplicate compares every pair of extremes by great-circle distance and
// returns the survivors in their original order. Two extremes of the same
// type within sameKm keep the more extreme value; two of opposite type
// within diffKm keep the higher significance. Ties keep the earlier entry.
// The input slice is not modified.
func Deduplicate(extremes []LocalExtreme, sameKm, diffKm float64) []LocalExtreme {
	work := make([]LocalExtreme, len(extremes))
	copy(work, extremes)

	for i := range work {
		if work[i].Discard {
			continue
		}
		for j := i + 1; j < len(work); j++ {
			if work[j].Discard {
				continue
			}
			a, b := &work[i], &work[j]
			d := field.DistanceKm(a.LatLon, b.LatLon)
			if a.IsMinimum == b.IsMinimum {
				if d > sameKm {
					continue
				}
				if moreExtreme(*b, *a) {
					a.Discard = true
				} else {
					b.Discard = true
				}
			} else {
				if d > diffKm {
					continue
				}
				if b.Significance > a.Significance {
					a.Discard = true
				} else {
					b.Discard = true
				}
			}
			if a.Discard {
				break
			}
		}
	}

	out := work[:0]
	for _, e := range work {
		if !e.Discard {
			out = append(out, e)
		}
	}
	return out
}

// moreExtreme reports whether a is strictly more extreme than b; both are
// the same type.
func moreExtreme(a, b LocalExtreme) bool {
	if a.IsMinimum {
		return a.Value < b.Value
	}
	return a.Value > b.Value
}
