package geo

import "math"

// CenterOf returns the midpoint of the bounding box spanned by the given
// coordinates. With a single coordinate this degenerates to that coordinate.
// Callers guarantee a non-empty argument list; an empty call returns the
// zero coordinate.
func CenterOf(coords ...Coordinate) Coordinate {
	if len(coords) == 0 {
		return Coordinate{}
	}
	minLat, maxLat := coords[0].Lat, coords[0].Lat
	minLng, maxLng := coords[0].Lng, coords[0].Lng
	for _, c := range coords[1:] {
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
		minLng = math.Min(minLng, c.Lng)
		maxLng = math.Max(maxLng, c.Lng)
	}
	return Coordinate{
		Lat: (minLat + maxLat) / 2,
		Lng: (minLng + maxLng) / 2,
	}
}
