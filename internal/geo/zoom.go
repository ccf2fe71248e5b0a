package geo

import "strings"

// Zoom levels used when framing a single location.
const (
	ZoomBuilding = 18
	ZoomArea     = 16
	ZoomCity     = 13
	ZoomDefault  = 17
)

// placeCategories are checked in priority order; the first category whose
// keyword set has a substring match in the query wins.
var placeCategories = []struct {
	zoom     int
	keywords []string
}{
	{ZoomBuilding, []string{"tower", "temple", "museum", "stadium", "palace", "monument", "building", "restaurant", "cafe", "shop"}},
	{ZoomArea, []string{"park", "garden", "district", "neighborhood", "campus", "complex"}},
	{ZoomCity, []string{"city", "town", "village"}},
}

// ZoomForPlace picks a zoom level from the wording of the user's query.
func ZoomForPlace(text string) int {
	lower := strings.ToLower(text)
	for _, cat := range placeCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.zoom
			}
		}
	}
	return ZoomDefault
}

// distanceSteps maps route length to zoom. Each entry is an exclusive upper
// bound in kilometres, ascending; the first satisfied bound wins.
var distanceSteps = []struct {
	belowKm float64
	zoom    int
}{
	{1, 15},
	{5, 13},
	{20, 11},
	{50, 10},
	{100, 9},
	{250, 7},
	{500, 6},
	{1000, 5},
	{2500, 4},
}

// ZoomForDistance maps a great-circle distance between route endpoints to a
// zoom level. Distances of 2500 km and above fall through to zoom 3.
func ZoomForDistance(km float64) int {
	for _, step := range distanceSteps {
		if km < step.belowKm {
			return step.zoom
		}
	}
	return 3
}
