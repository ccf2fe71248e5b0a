package geo

import "testing"

func TestZoomForDistance_Boundaries(t *testing.T) {
	tests := []struct {
		km   float64
		want int
	}{
		{0, 15},
		{0.999, 15},
		{1.0, 13},
		{4.999, 13},
		{5.0, 11},
		{19.999, 11},
		{20.0, 10},
		{49.999, 10},
		{50.0, 9},
		{99.999, 9},
		{100.0, 7},
		{249.999, 7},
		{250.0, 6},
		{499.999, 6},
		{500.0, 5},
		{999.999, 5},
		{1000.0, 4},
		{2499.999, 4},
		{2500.0, 3},
		{20000.0, 3},
	}
	for _, tt := range tests {
		if got := ZoomForDistance(tt.km); got != tt.want {
			t.Errorf("ZoomForDistance(%v) = %d, want %d", tt.km, got, tt.want)
		}
	}
}

func TestZoomForPlace(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"tower", "Where is the Eiffel Tower?", ZoomBuilding},
		{"museum", "show me the british museum", ZoomBuilding},
		{"cafe", "find a cafe near me", ZoomBuilding},
		{"park", "Where is Hyde Park?", ZoomArea},
		{"district", "locate the Shibuya district", ZoomArea},
		{"city", "where is mexico city", ZoomCity},
		{"village", "find the village of Hallstatt", ZoomCity},
		{"no keyword", "where is 221B Baker Street", ZoomDefault},
		// building-like terms outrank area-like terms regardless of word order
		{"priority building over area", "the park tower", ZoomBuilding},
		// area-like terms outrank city-like terms
		{"priority area over city", "city park", ZoomArea},
		{"case insensitive", "WHERE IS THE STADIUM", ZoomBuilding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ZoomForPlace(tt.text); got != tt.want {
				t.Errorf("ZoomForPlace(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
