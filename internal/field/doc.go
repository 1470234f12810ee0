// Package field holds the gridded scalar data the extremum engine reads.
//
// Responsibilities: dense NX×NY sample storage with a missing sentinel,
// a regular latitude/longitude area for grid↔geo mapping and footprint
// overlap tests, per-goroutine read views, and time series of slices
// addressed by instant.
// Key types: Grid, View, Area, LatLon, Series, Source.
//
// Dependency rule: field depends on nothing else in this module.
package field
