package field

import (
	"fmt"
	"math"
)

// Area is a regular latitude/longitude rectangle. Grid point (0, 0) sits on
// BottomLeft and (NX-1, NY-1) on TopRight.
type Area struct {
	BottomLeft LatLon `json:"bottom_left"`
	TopRight   LatLon `json:"top_right"`
}

// NewArea validates the corners and returns the area they span.
func NewArea(bottomLeft, topRight LatLon) (Area, error) {
	a := Area{BottomLeft: bottomLeft, TopRight: topRight}
	if err := a.Validate(); err != nil {
		return Area{}, err
	}
	return a, nil
}

// Validate reports ErrInvalidArea for degenerate or inverted corners.
func (a Area) Validate() error {
	if a.TopRight.Lat <= a.BottomLeft.Lat || a.TopRight.Lon <= a.BottomLeft.Lon {
		return fmt.Errorf("%w: bottom_left=%+v top_right=%+v", ErrInvalidArea, a.BottomLeft, a.TopRight)
	}
	return nil
}

// Contains reports whether p lies inside the area, edges included.
func (a Area) Contains(p LatLon) bool {
	return p.Lat >= a.BottomLeft.Lat && p.Lat <= a.TopRight.Lat &&
		p.Lon >= a.BottomLeft.Lon && p.Lon <= a.TopRight.Lon
}

// Corners returns bottom-left, top-left, top-right and bottom-right.
func (a Area) Corners() [4]LatLon {
	return [4]LatLon{
		a.BottomLeft,
		{Lat: a.TopRight.Lat, Lon: a.BottomLeft.Lon},
		a.TopRight,
		{Lat: a.BottomLeft.Lat, Lon: a.TopRight.Lon},
	}
}

// Overlaps tests each area's four corners against the other. Two areas
// crossing like a plus sign, with no corner inside the other, do not count.
func (a Area) Overlaps(b Area) bool {
	for _, c := range b.Corners() {
		if a.Contains(c) {
			return true
		}
	}
	for _, c := range a.Corners() {
		if b.Contains(c) {
			return true
		}
	}
	return false
}

// WidthKm is the east-west extent measured along the centre latitude.
func (a Area) WidthKm() float64 {
	lat := (a.BottomLeft.Lat + a.TopRight.Lat) / 2
	return DistanceKm(LatLon{Lat: lat, Lon: a.BottomLeft.Lon}, LatLon{Lat: lat, Lon: a.TopRight.Lon})
}

// HeightKm is the north-south extent measured along the centre longitude.
func (a Area) HeightKm() float64 {
	lon := (a.BottomLeft.Lon + a.TopRight.Lon) / 2
	return DistanceKm(LatLon{Lat: a.BottomLeft.Lat, Lon: lon}, LatLon{Lat: a.TopRight.Lat, Lon: lon})
}

// GridToLatLon maps fractional grid coordinates on an nx×ny grid spanning
// the area to a geographic position.
func (a Area) GridToLatLon(nx, ny int, x, y float64) LatLon {
	return LatLon{
		Lat: a.BottomLeft.Lat + y*step(a.BottomLeft.Lat, a.TopRight.Lat, ny),
		Lon: a.BottomLeft.Lon + x*step(a.BottomLeft.Lon, a.TopRight.Lon, nx),
	}
}

// LatLonToGrid is the inverse of GridToLatLon. Results outside
// [0, nx-1]×[0, ny-1] mean p lies outside the area.
func (a Area) LatLonToGrid(nx, ny int, p LatLon) (x, y float64) {
	if dx := step(a.BottomLeft.Lon, a.TopRight.Lon, nx); dx != 0 {
		x = (p.Lon - a.BottomLeft.Lon) / dx
	}
	if dy := step(a.BottomLeft.Lat, a.TopRight.Lat, ny); dy != 0 {
		y = (p.Lat - a.BottomLeft.Lat) / dy
	}
	return x, y
}

// NearestCell snaps p to the closest grid point. ok is false when p falls
// outside the grid once rounded.
func (a Area) NearestCell(nx, ny int, p LatLon) (x, y int, ok bool) {
	fx, fy := a.LatLonToGrid(nx, ny, p)
	x, y = int(math.Round(fx)), int(math.Round(fy))
	if x < 0 || y < 0 || x >= nx || y >= ny {
		return 0, 0, false
	}
	return x, y, true
}

// SubArea returns the footprint of the inclusive index rectangle
// [x1,x2]×[y1,y2] of an nx×ny grid spanning the area.
func (a Area) SubArea(nx, ny, x1, y1, x2, y2 int) Area {
	return Area{
		BottomLeft: a.GridToLatLon(nx, ny, float64(x1), float64(y1)),
		TopRight:   a.GridToLatLon(nx, ny, float64(x2), float64(y2)),
	}
}

func step(lo, hi float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	return (hi - lo) / float64(n-1)
}
