// Package extract pulls coordinate pairs out of free-form assistant text.
//
// The assistant is prompted to embed locations as bracketed "[lat, lng]"
// pairs, but nothing stops it from producing other bracketed numbers in
// prose. The scan-and-validate contract lives behind this package so a
// stricter structured-output contract can replace it later without touching
// the rest of the pipeline.
package extract

import (
	"regexp"
	"strconv"

	"wayfinder/internal/geo"
)

// pairPattern matches a bracketed pair of numeric literals, e.g. "[51.5, -0.09]".
var pairPattern = regexp.MustCompile(`\[\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\]`)

// Pairs scans text left to right and returns every well-formed, in-range
// coordinate pair in order of appearance. Matches that fail to parse or
// validate are dropped and the scan continues. No matches yields an empty
// result, not an error.
func Pairs(text string) []geo.Coordinate {
	var coords []geo.Coordinate
	for _, m := range pairPattern.FindAllStringSubmatch(text, -1) {
		lat, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		c, err := geo.NewCoordinate(lat, lng)
		if err != nil {
			continue
		}
		coords = append(coords, c)
	}
	return coords
}
