package extrema

import (
	"fmt"
	"math"
)

// ArgCount is the length of the per-evaluation argument vector.
const ArgCount = 3

// Params are the per-evaluation inputs.
type Params struct {
	RangeKm float64 `json:"range_km"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
}

// ParseArgs reads [range_km, low_sentinel, high_sentinel].
func ParseArgs(args []float64) (Params, error) {
	if len(args) != ArgCount {
		return Params{}, fmt.Errorf("%w: got %d values, want %d", ErrArgumentCount, len(args), ArgCount)
	}
	p := Params{RangeKm: args[0], Low: args[1], High: args[2]}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// MustParseArgs is ParseArgs for setup code; it panics on error.
func MustParseArgs(args ...float64) Params {
	p, err := ParseArgs(args)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate reports ErrInvalidRange for a non-positive or non-finite range.
func (p Params) Validate() error {
	if !(p.RangeKm > 0) || math.IsInf(p.RangeKm, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRange, p.RangeKm)
	}
	return nil
}

// Args returns the argument vector form of p.
func (p Params) Args() []float64 {
	return []float64{p.RangeKm, p.Low, p.High}
}
