package extrema

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/highlow/internal/field"
)

// NumDirections is the number of growth directions around a candidate.
const NumDirections = 16

type directionKind uint8

const (
	cardinal directionKind = iota
	diagonal
	intercardinal // knight move, e.g. one east and two north
)

func (k directionKind) factor() float64 {
	switch k {
	case diagonal:
		return math.Sqrt2
	case intercardinal:
		return math.Sqrt(3)
	default:
		return 1
	}
}

// stride is the step index advance per move. Intercardinal directions are
// only evaluated on even steps, so each accepted knight move adds two.
func (k directionKind) stride() int {
	if k == intercardinal {
		return 2
	}
	return 1
}

type direction struct {
	dx, dy int
	kind   directionKind
}

// directions runs clockwise from north. The order matters: one-sided shape
// detection looks for runs of adjacent short directions.
var directions = [NumDirections]direction{
	{0, 1, cardinal},       // N
	{1, 2, intercardinal},  // NNE
	{1, 1, diagonal},       // NE
	{2, 1, intercardinal},  // ENE
	{1, 0, cardinal},       // E
	{2, -1, intercardinal}, // ESE
	{1, -1, diagonal},      // SE
	{1, -2, intercardinal}, // SSE
	{0, -1, cardinal},      // S
	{-1, -2, intercardinal},
	{-1, -1, diagonal},
	{-2, -1, intercardinal},
	{-1, 0, cardinal}, // W
	{-2, 1, intercardinal},
	{-1, 1, diagonal},
	{-1, 2, intercardinal},
}

// Ray is the growth result along one direction.
type Ray struct {
	Steps        int     // step index of the last accepted point; 0 if the first step failed
	StopValue    float64 // value at the last accepted point, valid when HasStopValue
	HasStopValue bool    // false when nothing was accepted or the ray reached the edge
	ReachedEdge  bool    // left the grid or hit a missing sample
	StillGrowing bool    // stopped by the step limit, not by the data
}

// Profile is the growth result for all directions, in compass order.
type Profile [NumDirections]Ray

func (p *Profile) lengths() []float64 {
	out := make([]float64, NumDirections)
	for i, r := range p {
		out[i] = float64(r.Steps)
	}
	return out
}

func (p *Profile) maxLength() float64 {
	return floats.Max(p.lengths())
}

// minNonEdgeLength is false when every direction reached the edge.
func (p *Profile) minNonEdgeLength() (float64, bool) {
	minLen, ok := math.Inf(1), false
	for _, r := range p {
		if !r.ReachedEdge {
			minLen, ok = math.Min(minLen, float64(r.Steps)), true
		}
	}
	return minLen, ok
}

// longestShortRun returns the longest circular run of non-edge directions
// no longer than limit. Edge directions break a run.
func (p *Profile) longestShortRun(limit float64) int {
	longest, run := 0, 0
	for i := 0; i < 2*NumDirections; i++ {
		r := p[i%NumDirections]
		if !r.ReachedEdge && float64(r.Steps) <= limit {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return min(longest, NumDirections)
}

// depth is the mean absolute drop (or rise) from value to each stop value.
// Directions without a stop value are skipped.
func (p *Profile) depth(value float64) float64 {
	var diffs []float64
	for _, r := range p {
		if r.HasStopValue {
			diffs = append(diffs, math.Abs(value-r.StopValue))
		}
	}
	if len(diffs) == 0 {
		return 0
	}
	return stat.Mean(diffs, nil)
}

// symmetry is max(0, 1 - stddev/mean) of the direction lengths, with the
// deviation of edge directions scaled by edgeDamping.
func (p *Profile) symmetry(edgeDamping float64) float64 {
	lengths := p.lengths()
	mean := stat.Mean(lengths, nil)
	if mean <= 0 {
		return 0
	}
	dev := make([]float64, NumDirections)
	copy(dev, lengths)
	floats.AddConst(-mean, dev)
	for i, r := range p {
		if r.ReachedEdge {
			dev[i] *= edgeDamping
		}
	}
	std := math.Sqrt(floats.Dot(dev, dev) / NumDirections)
	return math.Max(0, 1-std/mean)
}

// Validator grows candidates over one field. It holds no per-candidate
// state and is safe to share between goroutines.
type Validator struct {
	tuning    *Tuning
	maxOffset int
	stepKm    [NumDirections]float64
}

// NewValidator derives the step limit and per-direction step lengths from
// the field behind v: maxOffset = max(MinGrowthOffset, round(range / mean
// grid step)).
func NewValidator(v field.View, rangeKm float64, t *Tuning) *Validator {
	nx, ny := v.Dims()
	area := v.Area()

	var dxKm, dyKm float64
	if nx > 1 {
		dxKm = area.WidthKm() / float64(nx-1)
	}
	if ny > 1 {
		dyKm = area.HeightKm() / float64(ny-1)
	}

	val := &Validator{tuning: t, maxOffset: t.MinGrowthOffset}
	if avg := (dxKm + dyKm) / 2; avg > 0 {
		steps := math.Min(math.Round(rangeKm/avg), float64(max(nx, ny)))
		val.maxOffset = max(t.MinGrowthOffset, int(steps))
	}
	for i, d := range directions {
		ax, ay := absInt(d.dx), absInt(d.dy)
		val.stepKm[i] = (float64(ax)*dxKm + float64(ay)*dyKm) / float64(ax+ay)
	}
	return val
}

// MaxOffset returns the growth step limit.
func (val *Validator) MaxOffset() int { return val.maxOffset }

// Grow extends c along every direction while the trend holds.
func (val *Validator) Grow(v field.View, c Candidate) Profile {
	var p Profile
	for i, d := range directions {
		p[i] = val.grow(v, c, d)
	}
	return p
}

func (val *Validator) grow(v field.View, c Candidate, d direction) Ray {
	var r Ray
	prev := c.Value
	stride := d.kind.stride()
	for step := stride; ; step += stride {
		if step > val.maxOffset {
			r.StillGrowing = true
			break
		}
		n := step / stride
		next, ok := v.ValueAt(c.X+n*d.dx, c.Y+n*d.dy)
		if !ok || v.IsMissing(next) {
			r.ReachedEdge = true
			break
		}
		if (c.IsMinimum && next < prev) || (!c.IsMinimum && next > prev) {
			break
		}
		prev = next
		r.Steps = step
	}
	if r.Steps > 0 && !r.ReachedEdge {
		r.StopValue, r.HasStopValue = prev, true
	}
	return r
}

// Validate grows c and scores it. ok is false when c is not a point
// extremum: a direction failed its first step (which covers every point on
// the field boundary), a direction stopped on a value equal to c, the shape
// is one-sided, or one direction is negligibly short.
func (val *Validator) Validate(v field.View, c Candidate) (LocalExtreme, bool) {
	p := val.Grow(v, c)
	if !val.accept(&p, c.Value) {
		return LocalExtreme{}, false
	}

	e := LocalExtreme{
		Value:     c.Value,
		IsMinimum: c.IsMinimum,
		LatLon:    v.LatLonAt(c.X, c.Y),
		X:         c.X,
		Y:         c.Y,
		Secondary: c.Secondary,
	}
	e.AreaSizeAvgKm = val.areaSize(&p)
	e.DepthAvg = p.depth(c.Value)
	e.SymmetryIndex = p.symmetry(val.tuning.EdgeDamping)
	e.Significance = e.AreaSizeAvgKm * e.DepthAvg * e.SymmetryIndex
	return e, true
}

func (val *Validator) accept(p *Profile, value float64) bool {
	for _, r := range p {
		if r.Steps == 0 {
			return false
		}
		if r.HasStopValue && r.StopValue == value {
			return false
		}
	}

	maxLen := p.maxLength()
	if p.longestShortRun(val.tuning.ShortRunFraction*maxLen) >= val.tuning.MaxShortRun {
		return false
	}
	if minLen, ok := p.minNonEdgeLength(); ok && minLen <= val.tuning.MinLengthRatio*maxLen {
		return false
	}
	return true
}

// areaSize is the mean over directions of factor × step km × length.
func (val *Validator) areaSize(p *Profile) float64 {
	sizes := make([]float64, NumDirections)
	for i, d := range directions {
		sizes[i] = d.kind.factor() * val.stepKm[i] * float64(p[i].Steps)
	}
	return stat.Mean(sizes, nil)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
