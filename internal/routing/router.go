// Package routing resolves drivable paths between two coordinates.
package routing

import (
	"context"
	"errors"

	"wayfinder/internal/geo"
)

// ErrNoRoute is returned when the provider answers but has no path between
// the endpoints.
var ErrNoRoute = errors.New("no route found")

// Result is a drivable path between two points plus its travel estimate.
type Result struct {
	Path        []geo.Coordinate `json:"path"`
	DistanceKm  float64          `json:"distance_km"`
	DurationMin float64          `json:"duration_min"`
}

// Router resolves a route between two coordinates.
type Router interface {
	GetRoute(ctx context.Context, start, end geo.Coordinate) (*Result, error)
}
