package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// MaxSubGridsLimit bounds max_sub_grids so one evaluation never fans out to
// more than 64 sub-region tasks.
const MaxSubGridsLimit = 8

// TuningConfig represents the root configuration for extremum detection
// tuning. Every field is optional; Get* accessors supply the defaults.
type TuningConfig struct {
	// Evaluation defaults
	DefaultSearchRangeKm *float64 `json:"default_search_range_km,omitempty"`

	// Partitioning
	MaxSubGrids *int `json:"max_sub_grids,omitempty"`

	// Directional growth validation
	MinGrowthOffset  *int     `json:"min_growth_offset,omitempty"`
	ShortRunFraction *float64 `json:"short_run_fraction,omitempty"`
	MaxShortRun      *int     `json:"max_short_run,omitempty"`
	MinLengthRatio   *float64 `json:"min_length_ratio,omitempty"`
	EdgeDamping      *float64 `json:"edge_damping,omitempty"`

	// Secondary window scan
	WindowRadius          *int     `json:"window_radius,omitempty"`
	WindowMissingFraction *float64 `json:"window_missing_fraction,omitempty"`
	WindowDominance       *float64 `json:"window_dominance,omitempty"`

	// Proximity deduplication (search range is divided by these)
	LocalDedupDivisor *float64 `json:"local_dedup_divisor,omitempty"`
	SameTypeDivisor   *float64 `json:"same_type_divisor,omitempty"`
	DiffTypeDivisor   *float64 `json:"diff_type_divisor,omitempty"`

	// Ranking
	SignificanceFloor *float64 `json:"significance_floor,omitempty"`
	AreaSizeFloor     *float64 `json:"area_size_floor,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.DefaultSearchRangeKm != nil && *c.DefaultSearchRangeKm <= 0 {
		return fmt.Errorf("default_search_range_km must be positive, got %f", *c.DefaultSearchRangeKm)
	}
	if c.MaxSubGrids != nil && (*c.MaxSubGrids < 1 || *c.MaxSubGrids > MaxSubGridsLimit) {
		return fmt.Errorf("max_sub_grids must be in [1, %d], got %d", MaxSubGridsLimit, *c.MaxSubGrids)
	}
	// Intercardinal directions move on even steps, so anything below 2 would
	// never evaluate them.
	if c.MinGrowthOffset != nil && *c.MinGrowthOffset < 2 {
		return fmt.Errorf("min_growth_offset must be at least 2, got %d", *c.MinGrowthOffset)
	}
	if c.MaxShortRun != nil && *c.MaxShortRun < 1 {
		return fmt.Errorf("max_short_run must be at least 1, got %d", *c.MaxShortRun)
	}
	if c.WindowRadius != nil && *c.WindowRadius < 1 {
		return fmt.Errorf("window_radius must be at least 1, got %d", *c.WindowRadius)
	}

	fractions := []struct {
		name string
		v    *float64
	}{
		{"short_run_fraction", c.ShortRunFraction},
		{"min_length_ratio", c.MinLengthRatio},
		{"edge_damping", c.EdgeDamping},
		{"window_missing_fraction", c.WindowMissingFraction},
		{"window_dominance", c.WindowDominance},
		{"significance_floor", c.SignificanceFloor},
	}
	for _, f := range fractions {
		if f.v != nil && (*f.v < 0 || *f.v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", f.name, *f.v)
		}
	}

	positives := []struct {
		name string
		v    *float64
	}{
		{"local_dedup_divisor", c.LocalDedupDivisor},
		{"same_type_divisor", c.SameTypeDivisor},
		{"diff_type_divisor", c.DiffTypeDivisor},
	}
	for _, p := range positives {
		if p.v != nil && *p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", p.name, *p.v)
		}
	}

	if c.AreaSizeFloor != nil && *c.AreaSizeFloor < 0 {
		return fmt.Errorf("area_size_floor must be non-negative, got %f", *c.AreaSizeFloor)
	}
	return nil
}

// GetDefaultSearchRangeKm returns the default_search_range_km value or the default.
func (c *TuningConfig) GetDefaultSearchRangeKm() float64 {
	if c.DefaultSearchRangeKm == nil {
		return 500.0
	}
	return *c.DefaultSearchRangeKm
}

// GetMaxSubGrids returns the max_sub_grids value or the default.
func (c *TuningConfig) GetMaxSubGrids() int {
	if c.MaxSubGrids == nil {
		return MaxSubGridsLimit
	}
	return *c.MaxSubGrids
}

// GetMinGrowthOffset returns the min_growth_offset value or the default.
func (c *TuningConfig) GetMinGrowthOffset() int {
	if c.MinGrowthOffset == nil {
		return 4
	}
	return *c.MinGrowthOffset
}

// GetShortRunFraction returns the short_run_fraction value or the default.
func (c *TuningConfig) GetShortRunFraction() float64 {
	if c.ShortRunFraction == nil {
		return 0.135
	}
	return *c.ShortRunFraction
}

// GetMaxShortRun returns the max_short_run value or the default.
func (c *TuningConfig) GetMaxShortRun() int {
	if c.MaxShortRun == nil {
		return 5
	}
	return *c.MaxShortRun
}

// GetMinLengthRatio returns the min_length_ratio value or the default.
func (c *TuningConfig) GetMinLengthRatio() float64 {
	if c.MinLengthRatio == nil {
		return 0.065
	}
	return *c.MinLengthRatio
}

// GetEdgeDamping returns the edge_damping value or the default.
func (c *TuningConfig) GetEdgeDamping() float64 {
	if c.EdgeDamping == nil {
		return 0.7
	}
	return *c.EdgeDamping
}

// GetWindowRadius returns the window_radius value or the default.
func (c *TuningConfig) GetWindowRadius() int {
	if c.WindowRadius == nil {
		return 2
	}
	return *c.WindowRadius
}

// GetWindowMissingFraction returns the window_missing_fraction value or the default.
func (c *TuningConfig) GetWindowMissingFraction() float64 {
	if c.WindowMissingFraction == nil {
		return 0.10
	}
	return *c.WindowMissingFraction
}

// GetWindowDominance returns the window_dominance value or the default.
func (c *TuningConfig) GetWindowDominance() float64 {
	if c.WindowDominance == nil {
		return 0.50
	}
	return *c.WindowDominance
}

// GetLocalDedupDivisor returns the local_dedup_divisor value or the default.
func (c *TuningConfig) GetLocalDedupDivisor() float64 {
	if c.LocalDedupDivisor == nil {
		return 10.0
	}
	return *c.LocalDedupDivisor
}

// GetSameTypeDivisor returns the same_type_divisor value or the default.
func (c *TuningConfig) GetSameTypeDivisor() float64 {
	if c.SameTypeDivisor == nil {
		return 1.7
	}
	return *c.SameTypeDivisor
}

// GetDiffTypeDivisor returns the diff_type_divisor value or the default.
func (c *TuningConfig) GetDiffTypeDivisor() float64 {
	if c.DiffTypeDivisor == nil {
		return 2.5
	}
	return *c.DiffTypeDivisor
}

// GetSignificanceFloor returns the significance_floor value or the default.
func (c *TuningConfig) GetSignificanceFloor() float64 {
	if c.SignificanceFloor == nil {
		return 0.15
	}
	return *c.SignificanceFloor
}

// GetAreaSizeFloor returns the area_size_floor value or the default.
func (c *TuningConfig) GetAreaSizeFloor() float64 {
	if c.AreaSizeFloor == nil {
		return 0.4
	}
	return *c.AreaSizeFloor
}
