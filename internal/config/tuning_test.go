package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetDefaultSearchRangeKm(); got != 500 {
		t.Errorf("GetDefaultSearchRangeKm() = %f, want 500", got)
	}
	if got := cfg.GetMaxSubGrids(); got != 8 {
		t.Errorf("GetMaxSubGrids() = %d, want 8", got)
	}
	if got := cfg.GetMinGrowthOffset(); got != 4 {
		t.Errorf("GetMinGrowthOffset() = %d, want 4", got)
	}
	if got := cfg.GetShortRunFraction(); got != 0.135 {
		t.Errorf("GetShortRunFraction() = %f, want 0.135", got)
	}
	if got := cfg.GetMaxShortRun(); got != 5 {
		t.Errorf("GetMaxShortRun() = %d, want 5", got)
	}
	if got := cfg.GetMinLengthRatio(); got != 0.065 {
		t.Errorf("GetMinLengthRatio() = %f, want 0.065", got)
	}
	if got := cfg.GetEdgeDamping(); got != 0.7 {
		t.Errorf("GetEdgeDamping() = %f, want 0.7", got)
	}
	if got := cfg.GetWindowRadius(); got != 2 {
		t.Errorf("GetWindowRadius() = %d, want 2", got)
	}
	if got := cfg.GetWindowMissingFraction(); got != 0.10 {
		t.Errorf("GetWindowMissingFraction() = %f, want 0.10", got)
	}
	if got := cfg.GetWindowDominance(); got != 0.50 {
		t.Errorf("GetWindowDominance() = %f, want 0.50", got)
	}
	if got := cfg.GetLocalDedupDivisor(); got != 10 {
		t.Errorf("GetLocalDedupDivisor() = %f, want 10", got)
	}
	if got := cfg.GetSameTypeDivisor(); got != 1.7 {
		t.Errorf("GetSameTypeDivisor() = %f, want 1.7", got)
	}
	if got := cfg.GetDiffTypeDivisor(); got != 2.5 {
		t.Errorf("GetDiffTypeDivisor() = %f, want 2.5", got)
	}
	if got := cfg.GetSignificanceFloor(); got != 0.15 {
		t.Errorf("GetSignificanceFloor() = %f, want 0.15", got)
	}
	if got := cfg.GetAreaSizeFloor(); got != 0.4 {
		t.Errorf("GetAreaSizeFloor() = %f, want 0.4", got)
	}
}

func TestMustLoadDefaultConfigMatchesAccessorDefaults(t *testing.T) {
	file := MustLoadDefaultConfig()
	empty := EmptyTuningConfig()

	if file.GetMaxSubGrids() != empty.GetMaxSubGrids() {
		t.Errorf("max_sub_grids: file=%d accessor=%d", file.GetMaxSubGrids(), empty.GetMaxSubGrids())
	}
	if file.GetShortRunFraction() != empty.GetShortRunFraction() {
		t.Errorf("short_run_fraction: file=%f accessor=%f", file.GetShortRunFraction(), empty.GetShortRunFraction())
	}
	if file.GetSameTypeDivisor() != empty.GetSameTypeDivisor() {
		t.Errorf("same_type_divisor: file=%f accessor=%f", file.GetSameTypeDivisor(), empty.GetSameTypeDivisor())
	}
	if file.GetSignificanceFloor() != empty.GetSignificanceFloor() {
		t.Errorf("significance_floor: file=%f accessor=%f", file.GetSignificanceFloor(), empty.GetSignificanceFloor())
	}
	if file.GetAreaSizeFloor() != empty.GetAreaSizeFloor() {
		t.Errorf("area_size_floor: file=%f accessor=%f", file.GetAreaSizeFloor(), empty.GetAreaSizeFloor())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "default_search_range_km": 300,
  "max_sub_grids": 4,
  "edge_damping": 0.5,
  "window_radius": 3
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetDefaultSearchRangeKm() != 300 {
		t.Errorf("GetDefaultSearchRangeKm() = %f, want 300", cfg.GetDefaultSearchRangeKm())
	}
	if cfg.GetMaxSubGrids() != 4 {
		t.Errorf("GetMaxSubGrids() = %d, want 4", cfg.GetMaxSubGrids())
	}
	if cfg.GetEdgeDamping() != 0.5 {
		t.Errorf("GetEdgeDamping() = %f, want 0.5", cfg.GetEdgeDamping())
	}
	if cfg.GetWindowRadius() != 3 {
		t.Errorf("GetWindowRadius() = %d, want 3", cfg.GetWindowRadius())
	}
	// Omitted fields fall back to defaults.
	if cfg.GetSignificanceFloor() != 0.15 {
		t.Errorf("GetSignificanceFloor() = %f, want 0.15", cfg.GetSignificanceFloor())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigWrongExtension(t *testing.T) {
	_, err := LoadTuningConfig("tuning.yaml")
	if err == nil {
		t.Error("Expected error for non-JSON extension, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "edge_damping": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadTuningConfigRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_values.json")

	if err := os.WriteFile(configPath, []byte(`{"max_sub_grids": 12}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected validation error for max_sub_grids=12, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "empty config is valid",
			cfg:     &TuningConfig{},
			wantErr: false,
		},
		{
			name: "valid overrides",
			cfg: &TuningConfig{
				MaxSubGrids:     ptrInt(1),
				EdgeDamping:     ptrFloat64(1),
				SameTypeDivisor: ptrFloat64(2),
			},
			wantErr: false,
		},
		{
			name:    "non-positive search range",
			cfg:     &TuningConfig{DefaultSearchRangeKm: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "max sub grids too low",
			cfg:     &TuningConfig{MaxSubGrids: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "max sub grids too high",
			cfg:     &TuningConfig{MaxSubGrids: ptrInt(9)},
			wantErr: true,
		},
		{
			name:    "min growth offset zero",
			cfg:     &TuningConfig{MinGrowthOffset: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "max short run zero",
			cfg:     &TuningConfig{MaxShortRun: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "window radius zero",
			cfg:     &TuningConfig{WindowRadius: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "fraction above one",
			cfg:     &TuningConfig{WindowDominance: ptrFloat64(1.5)},
			wantErr: true,
		},
		{
			name:    "fraction below zero",
			cfg:     &TuningConfig{ShortRunFraction: ptrFloat64(-0.1)},
			wantErr: true,
		},
		{
			name:    "zero divisor",
			cfg:     &TuningConfig{DiffTypeDivisor: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "negative area floor",
			cfg:     &TuningConfig{AreaSizeFloor: ptrFloat64(-1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
