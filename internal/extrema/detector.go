package extrema

import (
	"sync"

	"github.com/banshee-data/highlow/internal/field"
	"github.com/banshee-data/highlow/internal/monitoring"
	"github.com/banshee-data/highlow/internal/timeutil"
)

// Detector runs the detection pipeline over one field slice. It has no
// mutable state and may be shared.
type Detector struct {
	tuning *Tuning
	clock  timeutil.Clock
}

// NewDetector returns a detector using t and the wall clock.
func NewDetector(t *Tuning) *Detector {
	return &Detector{tuning: t, clock: timeutil.RealClock{}}
}

// Tuning returns the detector's thresholds.
func (d *Detector) Tuning() *Tuning { return d.tuning }

// Detect partitions g, scans every sub-region on its own goroutine, then
// deduplicates, ranks and stamps the merged result into out.
func (d *Detector) Detect(g *field.Grid, out OutputSpec, p Params) *Detection {
	start := d.clock.Now()

	bounds := Partition(g, p.RangeKm, out.Area, d.tuning.MaxSubGrids)
	val := NewValidator(g.View(), p.RangeKm, d.tuning)

	results := make([][]LocalExtreme, len(bounds))
	var wg sync.WaitGroup
	for i, b := range bounds {
		wg.Add(1)
		go func(i int, b Bounds) {
			defer wg.Done()
			results[i] = d.scanRegion(g.View(), val, b, p.RangeKm)
		}(i, b)
	}
	wg.Wait()

	var merged []LocalExtreme
	for _, r := range results {
		merged = append(merged, r...)
	}

	survivors := Deduplicate(merged, p.RangeKm/d.tuning.SameTypeDivisor, p.RangeKm/d.tuning.DiffTypeDivisor)
	ranked := Rank(survivors, p.RangeKm, d.tuning)

	det := &Detection{
		Params:     p,
		SubRegions: len(bounds),
		Validated:  len(merged),
		Extremes:   ranked,
		Result:     Stamp(ranked, out, p),
		Elapsed:    d.clock.Since(start),
	}
	monitoring.Diagf("detect: range=%.1fkm sub_regions=%d validated=%d deduped=%d kept=%d elapsed=%v",
		p.RangeKm, det.SubRegions, det.Validated, len(survivors), len(ranked), det.Elapsed)
	return det
}

// scanRegion validates the raster-pass and window-scan candidates of one
// sub-region against the full field and drops near neighbours.
func (d *Detector) scanRegion(v field.View, val *Validator, b Bounds, rangeKm float64) []LocalExtreme {
	var found []LocalExtreme
	primary := FindCandidates(v, b)
	for _, c := range primary {
		if e, ok := val.Validate(v, c); ok {
			found = append(found, e)
		}
	}

	var secondary []Candidate
	if sg := NewSubGrid(v, b); sg != nil {
		secondary = sg.Scan(d.tuning)
		for _, c := range secondary {
			if e, ok := val.Validate(v, c); ok {
				found = append(found, e)
			}
		}
	}

	local := rangeKm / d.tuning.LocalDedupDivisor
	kept := Deduplicate(found, local, local)
	monitoring.Tracef("sub-region %s: primary=%d secondary=%d validated=%d kept=%d",
		b, len(primary), len(secondary), len(found), len(kept))
	return kept
}
