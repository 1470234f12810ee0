package extrema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/highlow/internal/config"
)

func TestDefaultTuningMatchesDefaultsFile(t *testing.T) {
	t.Parallel()

	fromFile := TuningFromConfig(config.MustLoadDefaultConfig())
	assert.Equal(t, DefaultTuning(), fromFile)
	require.NoError(t, DefaultTuning().Validate())
}

func TestDefaultTuningValues(t *testing.T) {
	t.Parallel()

	tn := DefaultTuning()
	assert.Equal(t, 8, tn.MaxSubGrids)
	assert.Equal(t, 4, tn.MinGrowthOffset)
	assert.Equal(t, 0.135, tn.ShortRunFraction)
	assert.Equal(t, 5, tn.MaxShortRun)
	assert.Equal(t, 0.065, tn.MinLengthRatio)
	assert.Equal(t, 0.7, tn.EdgeDamping)
	assert.Equal(t, 2, tn.WindowRadius)
	assert.Equal(t, 10.0, tn.LocalDedupDivisor)
	assert.Equal(t, 1.7, tn.SameTypeDivisor)
	assert.Equal(t, 2.5, tn.DiffTypeDivisor)
	assert.Equal(t, 0.15, tn.SignificanceFloor)
	assert.Equal(t, 0.4, tn.AreaSizeFloor)
}

func TestTuningValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Tuning)
		wantErr bool
	}{
		{"defaults", func(*Tuning) {}, false},
		{"too many sub grids", func(tn *Tuning) { tn.WithMaxSubGrids(9) }, true},
		{"no sub grids", func(tn *Tuning) { tn.WithMaxSubGrids(0) }, true},
		{"growth offset too small", func(tn *Tuning) { tn.MinGrowthOffset = 1 }, true},
		{"zero window", func(tn *Tuning) { tn.WithWindowRadius(0) }, true},
		{"damping above one", func(tn *Tuning) { tn.WithEdgeDamping(1.5) }, true},
		{"zero divisor", func(tn *Tuning) { tn.SameTypeDivisor = 0 }, true},
		{"significance floor above one", func(tn *Tuning) { tn.WithRankFloors(2, 0.4) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tn := DefaultTuning()
			tt.mutate(tn)
			err := tn.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}
