package routing

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"

	"wayfinder/internal/geo"
)

// GoogleRouter resolves routes through the Google Maps Directions API.
type GoogleRouter struct {
	client  *maps.Client
	limiter *rate.Limiter
}

// NewGoogleRouter creates a GoogleRouter with the given API key.
// requestsPerSec bounds the outbound call rate; zero disables the limit.
func NewGoogleRouter(apiKey string, requestsPerSec float64) (*GoogleRouter, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	limit := rate.Inf
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
	}
	return &GoogleRouter{client: client, limiter: rate.NewLimiter(limit, 1)}, nil
}

// GetRoute returns the driving route between start and end, including the
// decoded overview polyline and distance/duration estimates.
func (r *GoogleRouter) GetRoute(ctx context.Context, start, end geo.Coordinate) (*Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("maps: rate limit wait: %w", err)
	}

	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", start.Lat, start.Lng),
		Destination: fmt.Sprintf("%f,%f", end.Lat, end.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := r.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}

	path := make([]geo.Coordinate, 0, len(points))
	for _, p := range points {
		path = append(path, geo.Coordinate{Lat: p.Lat, Lng: p.Lng})
	}
	if len(path) < 2 {
		// A usable route needs at least both endpoints.
		path = []geo.Coordinate{start, end}
	}

	leg := routes[0].Legs[0]
	return &Result{
		Path:        path,
		DistanceKm:  float64(leg.Distance.Meters) / 1000.0,
		DurationMin: leg.Duration.Minutes(),
	}, nil
}
