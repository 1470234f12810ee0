package field

import "errors"

var (
	// ErrEmptyGrid indicates a grid with no columns or no rows.
	ErrEmptyGrid = errors.New("field: grid must have at least one column and one row")
	// ErrDimensions indicates a value slice whose length does not match NX×NY.
	ErrDimensions = errors.New("field: value count does not match grid dimensions")
	// ErrInvalidArea indicates an area whose top-right corner is not above and
	// to the right of its bottom-left corner.
	ErrInvalidArea = errors.New("field: area top-right must exceed bottom-left")
	// ErrInconsistentSeries indicates slices that do not share one grid layout.
	ErrInconsistentSeries = errors.New("field: series slices differ in layout")
	// ErrNoSlice indicates a source holding no samples for an instant. It is
	// the only Source error that means "no data" rather than a failure.
	ErrNoSlice = errors.New("field: no slice for instant")
)
