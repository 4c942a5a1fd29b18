// Package geo has the small amount of spherical math the whisper map needs.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius.
const earthRadiusMeters = 6371008.8

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Validate reports whether p is a real coordinate.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("coordinate is not a number")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// Distance returns the great-circle distance in meters (haversine).
func Distance(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Box is an axis-aligned lat/lng rectangle used as an index-friendly SQL
// prefilter before the exact distance check.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a box that contains every point within radius meters
// of center. Near the poles the longitude span widens to the full range.
func BoundingBox(center Point, radius float64) Box {
	dLat := radius / earthRadiusMeters * 180 / math.Pi

	box := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}

	cosLat := math.Cos(toRad(center.Lat))
	if cosLat > 1e-6 {
		dLng := dLat / cosLat
		if dLng < 180 {
			box.MinLng = center.Lng - dLng
			box.MaxLng = center.Lng + dLng
		}
	}
	return box
}

// LngRange is a closed longitude interval inside [-180, 180].
type LngRange struct {
	Min, Max float64
}

// LngRanges splits the box's longitude span at the antimeridian. A box that
// does not cross it yields a single range.
func (b Box) LngRanges() []LngRange {
	switch {
	case b.MinLng < -180:
		return []LngRange{{Min: b.MinLng + 360, Max: 180}, {Min: -180, Max: b.MaxLng}}
	case b.MaxLng > 180:
		return []LngRange{{Min: b.MinLng, Max: 180}, {Min: -180, Max: b.MaxLng - 360}}
	default:
		return []LngRange{{Min: b.MinLng, Max: b.MaxLng}}
	}
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	for _, r := range b.LngRanges() {
		if p.Lng >= r.Min && p.Lng <= r.Max {
			return true
		}
	}
	return false
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
