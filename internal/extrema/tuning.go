package extrema

import (
	"fmt"

	"github.com/banshee-data/highlow/internal/config"
)

// Tuning holds the empirically tuned thresholds of the detector. The
// one-sided shape heuristics (ShortRunFraction, MaxShortRun,
// MinLengthRatio) are not derived from a model; keep them configurable
// rather than re-deriving them.
type Tuning struct {
	// Partitioning
	MaxSubGrids int // Sub-regions per axis upper bound (default: 8)

	// Directional growth
	MinGrowthOffset  int     // Lower bound for the growth step limit (default: 4)
	ShortRunFraction float64 // Short direction threshold as a fraction of the longest (default: 0.135)
	MaxShortRun      int     // Consecutive short directions that reject a candidate (default: 5)
	MinLengthRatio   float64 // Shortest non-edge to longest direction ratio floor (default: 0.065)
	EdgeDamping      float64 // Deviation weight for directions that reached the edge (default: 0.7)

	// Secondary window scan
	WindowRadius          int     // Window half-width in samples (default: 2)
	WindowMissingFraction float64 // Missing share must stay below this (default: 0.10)
	WindowDominance       float64 // Strictly lower (or higher) share must exceed this (default: 0.50)

	// Proximity deduplication; the search range is divided by each
	LocalDedupDivisor float64 // Sub-region stage, both types (default: 10)
	SameTypeDivisor   float64 // Global stage, same type (default: 1.7)
	DiffTypeDivisor   float64 // Global stage, opposite type (default: 2.5)

	// Ranking
	SignificanceFloor float64 // Fraction of the top significance to keep (default: 0.15)
	AreaSizeFloor     float64 // Fraction of the search range an area size must reach (default: 0.4)
}

// DefaultTuning returns the documented defaults.
func DefaultTuning() *Tuning {
	return TuningFromConfig(config.EmptyTuningConfig())
}

// TuningFromConfig builds a Tuning from a loaded TuningConfig. Fields the
// file omits fall back to the accessor defaults.
func TuningFromConfig(cfg *config.TuningConfig) *Tuning {
	return &Tuning{
		MaxSubGrids:           cfg.GetMaxSubGrids(),
		MinGrowthOffset:       cfg.GetMinGrowthOffset(),
		ShortRunFraction:      cfg.GetShortRunFraction(),
		MaxShortRun:           cfg.GetMaxShortRun(),
		MinLengthRatio:        cfg.GetMinLengthRatio(),
		EdgeDamping:           cfg.GetEdgeDamping(),
		WindowRadius:          cfg.GetWindowRadius(),
		WindowMissingFraction: cfg.GetWindowMissingFraction(),
		WindowDominance:       cfg.GetWindowDominance(),
		LocalDedupDivisor:     cfg.GetLocalDedupDivisor(),
		SameTypeDivisor:       cfg.GetSameTypeDivisor(),
		DiffTypeDivisor:       cfg.GetDiffTypeDivisor(),
		SignificanceFloor:     cfg.GetSignificanceFloor(),
		AreaSizeFloor:         cfg.GetAreaSizeFloor(),
	}
}

// Validate checks if the tuning is usable.
func (t *Tuning) Validate() error {
	if t.MaxSubGrids < 1 || t.MaxSubGrids > config.MaxSubGridsLimit {
		return fmt.Errorf("MaxSubGrids must be in [1, %d], got %d", config.MaxSubGridsLimit, t.MaxSubGrids)
	}
	if t.MinGrowthOffset < 2 {
		return fmt.Errorf("MinGrowthOffset must be at least 2, got %d", t.MinGrowthOffset)
	}
	if t.MaxShortRun < 1 {
		return fmt.Errorf("MaxShortRun must be at least 1, got %d", t.MaxShortRun)
	}
	if t.WindowRadius < 1 {
		return fmt.Errorf("WindowRadius must be at least 1, got %d", t.WindowRadius)
	}
	if t.EdgeDamping < 0 || t.EdgeDamping > 1 {
		return fmt.Errorf("EdgeDamping must be in [0, 1], got %f", t.EdgeDamping)
	}
	if t.LocalDedupDivisor <= 0 || t.SameTypeDivisor <= 0 || t.DiffTypeDivisor <= 0 {
		return fmt.Errorf("dedup divisors must be positive, got %f/%f/%f",
			t.LocalDedupDivisor, t.SameTypeDivisor, t.DiffTypeDivisor)
	}
	if t.SignificanceFloor < 0 || t.SignificanceFloor > 1 {
		return fmt.Errorf("SignificanceFloor must be in [0, 1], got %f", t.SignificanceFloor)
	}
	return nil
}

// WithMaxSubGrids sets the per-axis sub-region limit.
func (t *Tuning) WithMaxSubGrids(n int) *Tuning {
	t.MaxSubGrids = n
	return t
}

// WithWindowRadius sets the secondary scan window half-width.
func (t *Tuning) WithWindowRadius(r int) *Tuning {
	t.WindowRadius = r
	return t
}

// WithEdgeDamping sets the deviation weight of edge directions.
func (t *Tuning) WithEdgeDamping(f float64) *Tuning {
	t.EdgeDamping = f
	return t
}

// WithRankFloors sets the significance and area size floors.
func (t *Tuning) WithRankFloors(significance, areaSize float64) *Tuning {
	t.SignificanceFloor = significance
	t.AreaSizeFloor = areaSize
	return t
}
