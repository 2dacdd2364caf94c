package geocode

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"example.com/your_project/two-step-routing/cfrjson"
)

// GoogleResolver resolves addresses using the Google Maps Geocoding API.
// Grounded on joshhwuu-htn-2025's GoogleMapsService.GeocodeAddress: build a
// *maps.Client once, issue a GeocodingRequest per address, take the first
// result.
type GoogleResolver struct {
	client *maps.Client
}

// NewGoogleResolver creates a resolver backed by the given API key.
func NewGoogleResolver(apiKey string) (*GoogleResolver, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("geocode: create google maps client: %w", err)
	}
	return &GoogleResolver{client: client}, nil
}

func (r *GoogleResolver) Resolve(ctx context.Context, address string) (cfrjson.Waypoint, error) {
	resp, err := r.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return cfrjson.Waypoint{}, fmt.Errorf("geocode: google: %w", err)
	}
	if len(resp) == 0 {
		return cfrjson.Waypoint{}, &ErrNoResults{Address: address}
	}
	loc := resp[0].Geometry.Location
	return waypointFromLatLng(loc.Lat, loc.Lng), nil
}
