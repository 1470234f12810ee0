package extrema

import "errors"

var (
	// ErrArgumentCount indicates an argument vector that is not exactly
	// [range_km, low_sentinel, high_sentinel]. It is a caller
	// misconfiguration and is never retried.
	ErrArgumentCount = errors.New("extrema: argument vector must be [range_km, low, high]")
	// ErrInvalidRange indicates a search range that is not a positive finite
	// number of kilometres.
	ErrInvalidRange = errors.New("extrema: search range must be positive and finite")
	// ErrNilSource indicates an evaluation without a field source.
	ErrNilSource = errors.New("extrema: nil field source")
	// ErrInvalidTuning indicates thresholds rejected by Tuning.Validate.
	ErrInvalidTuning = errors.New("extrema: invalid tuning")
	// ErrOutputSpec indicates an output grid with no cells or an invalid area.
	ErrOutputSpec = errors.New("extrema: invalid output grid spec")
)
