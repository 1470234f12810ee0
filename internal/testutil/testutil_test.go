package testutil

import (
	"errors"
	"math"
	"testing"
)

func TestEquatorArea(t *testing.T) {
	t.Parallel()

	a := EquatorArea(80)
	if got := a.WidthKm(); math.Abs(got-80) > 1e-9 {
		t.Errorf("WidthKm() = %f, want 80", got)
	}
	if got := a.HeightKm(); math.Abs(got-80) > 1e-9 {
		t.Errorf("HeightKm() = %f, want 80", got)
	}
	AssertNoError(t, a.Validate())
}

func TestBowlGrid(t *testing.T) {
	t.Parallel()

	g := BowlGrid(t, 9, 80, 4, 4, 100)
	if v, _ := g.ValueAt(4, 4); v != 100 {
		t.Errorf("centre = %f, want 100", v)
	}
	if v, _ := g.ValueAt(0, 0); v != 68 {
		t.Errorf("corner = %f, want 68", v)
	}
}

func TestPitGrid(t *testing.T) {
	t.Parallel()

	g := PitGrid(t, 9, 80, 4, 4, 0)
	if v, _ := g.ValueAt(4, 4); v != 0 {
		t.Errorf("centre = %f, want 0", v)
	}
	if v, _ := g.ValueAt(4, 5); v != 1 {
		t.Errorf("neighbour = %f, want 1", v)
	}
}

func TestRampGrid(t *testing.T) {
	t.Parallel()

	g := RampGrid(t, 5, 40)
	if v, _ := g.ValueAt(4, 4); v != 12 {
		t.Errorf("top-right = %f, want 12", v)
	}
	if v, _ := g.ValueAt(0, 0); v != 0 {
		t.Errorf("bottom-left = %f, want 0", v)
	}
}

func TestMissingGrid(t *testing.T) {
	t.Parallel()

	g := MissingGrid(t, 3, 20)
	for i, v := range g.Values {
		if !g.IsMissing(v) {
			t.Fatalf("Values[%d] = %f, want missing", i, v)
		}
	}
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("boom"))
}
