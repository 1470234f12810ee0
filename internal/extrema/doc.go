// Package extrema detects the important highs and lows of a gridded scalar
// field and caches one stamped result grid per evaluation instant.
//
// A detection partitions the field into at most MaxSubGrids×MaxSubGrids
// sub-regions sized to the search range, and scans each sub-region on its
// own goroutine:
//
//   - FindCandidates picks the sub-region's single minimum and maximum.
//   - SubGrid.Scan slides a small window over a cropped copy of the
//     sub-region to catch smaller extrema the raster pass misses.
//   - Validator grows each candidate outward along 16 compass directions
//     and rejects plateaus, one-sided shapes and boundary points.
//   - Deduplicate drops extrema that sit too close to a stronger one.
//
// The merged list is deduplicated again across sub-regions, ranked by
// significance (area size × depth × symmetry), thresholded, and stamped into
// the caller's output grid with low and high sentinel values.
//
// Engine wraps the pipeline in a compute-once cache keyed by instant. It
// holds one mutex for the whole of a cache miss, so concurrent requests for
// the same instant run the pipeline once.
package extrema
