package extrema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/highlow/internal/testutil"
)

func TestNewSubGridDropsHighEdges(t *testing.T) {
	t.Parallel()

	g := testutil.ConstantGrid(t, 11, 100, 0)
	sg := NewSubGrid(g.View(), Bounds{X1: 0, X2: 10, Y1: 3, Y2: 7})
	require.NotNil(t, sg)
	nx, ny := sg.Dims()
	assert.Equal(t, 10, nx)
	assert.Equal(t, 4, ny)

	// A single-column sub-region keeps its only column.
	sg = NewSubGrid(g.View(), Bounds{X1: 4, X2: 4, Y1: 0, Y2: 10})
	require.NotNil(t, sg)
	nx, _ = sg.Dims()
	assert.Equal(t, 1, nx)

	assert.Nil(t, NewSubGrid(g.View(), Bounds{X1: 20, X2: 30, Y1: 0, Y2: 10}))
}

func TestSubGridScan(t *testing.T) {
	t.Parallel()

	g := testutil.ConstantGrid(t, 11, 100, 0)
	g.Set(5, 5, 5)
	g.Set(3, 7, -5)
	tuning := DefaultTuning()

	want := []Candidate{
		{Value: 5, X: 5, Y: 5, Secondary: true},
		{Value: -5, X: 3, Y: 7, IsMinimum: true, Secondary: true},
	}

	t.Run("whole grid", func(t *testing.T) {
		sg := NewSubGrid(g.View(), Bounds{X1: 0, X2: 10, Y1: 0, Y2: 10})
		require.NotNil(t, sg)
		assert.Equal(t, want, sg.Scan(tuning))
	})

	t.Run("offset sub-region reports parent coordinates", func(t *testing.T) {
		sg := NewSubGrid(g.View(), Bounds{X1: 1, X2: 10, Y1: 1, Y2: 10})
		require.NotNil(t, sg)
		assert.Equal(t, want, sg.Scan(tuning))
	})
}

func TestSubGridScanMissingShare(t *testing.T) {
	t.Parallel()

	g := testutil.ConstantGrid(t, 11, 100, 0)
	g.Set(5, 5, 5)
	// 3 of 25 samples (12%) missing around the bump.
	g.Set(4, 4, testutil.Missing)
	g.Set(6, 6, testutil.Missing)
	g.Set(4, 6, testutil.Missing)

	sg := NewSubGrid(g.View(), Bounds{X1: 0, X2: 10, Y1: 0, Y2: 10})
	require.NotNil(t, sg)
	for _, c := range sg.Scan(DefaultTuning()) {
		assert.False(t, c.X == 5 && c.Y == 5, "bump with 12%% missing window was reported")
	}

	// Two missing (8%) is tolerated.
	g.Set(4, 6, 0)
	sg = NewSubGrid(g.View(), Bounds{X1: 0, X2: 10, Y1: 0, Y2: 10})
	assert.Contains(t, sg.Scan(DefaultTuning()), Candidate{Value: 5, X: 5, Y: 5, Secondary: true})
}

func TestSubGridScanTooSmall(t *testing.T) {
	t.Parallel()

	g := testutil.BowlGrid(t, 9, 80, 2, 2, 100)
	// 5x5 bounds crop to 4x4, smaller than one 5x5 window.
	sg := NewSubGrid(g.View(), Bounds{X1: 0, X2: 4, Y1: 0, Y2: 4})
	require.NotNil(t, sg)
	assert.Nil(t, sg.Scan(DefaultTuning()))

	// A radius-1 window fits.
	small := DefaultTuning().WithWindowRadius(1)
	assert.Equal(t, []Candidate{{Value: 100, X: 2, Y: 2, Secondary: true}}, sg.Scan(small))
}
