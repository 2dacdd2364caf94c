// Package geocode turns free-text addresses into cfrjson.Waypoint values so
// that ParkingLocations and shipment visit requests can be authored with
// human addresses instead of raw coordinates. It is not a Solver; it runs
// before a request ever reaches one.
package geocode

import (
	"context"
	"fmt"

	"example.com/your_project/two-step-routing/cfrjson"
)

// Resolver looks up a single address and returns the waypoint a caller
// should plug into a ParkingLocation or VisitRequest. Two providers ship in
// this package: Google (GoogleResolver) and GeoApify (GeoapifyResolver).
type Resolver interface {
	Resolve(ctx context.Context, address string) (cfrjson.Waypoint, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, address string) (cfrjson.Waypoint, error)

func (f ResolverFunc) Resolve(ctx context.Context, address string) (cfrjson.Waypoint, error) {
	return f(ctx, address)
}

// ErrNoResults is returned by a Resolver when a provider answers the
// request successfully but with zero candidate locations.
type ErrNoResults struct {
	Address string
}

func (e *ErrNoResults) Error() string {
	return fmt.Sprintf("geocode: no results for address %q", e.Address)
}

func waypointFromLatLng(lat, lng float64) cfrjson.Waypoint {
	return cfrjson.Waypoint{
		Location: &cfrjson.Location{
			LatLng: cfrjson.LatLng{Latitude: lat, Longitude: lng},
		},
	}
}

// Chain tries each Resolver in order and returns the first successful
// result, so a caller configured with both providers falls back from one to
// the other rather than failing outright when one is unreachable or rate
// limited.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, address string) (cfrjson.Waypoint, error) {
	var lastErr error
	for _, r := range c {
		wp, err := r.Resolve(ctx, address)
		if err == nil {
			return wp, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &ErrNoResults{Address: address}
	}
	return cfrjson.Waypoint{}, fmt.Errorf("geocode: all providers failed for %q: %w", address, lastErr)
}
