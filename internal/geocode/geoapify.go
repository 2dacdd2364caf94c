package geocode

import (
	"context"
	"fmt"

	geoapify "github.com/dkhalife/geoapify-go"

	"example.com/your_project/two-step-routing/cfrjson"
)

// GeoapifyResolver resolves addresses using the GeoApify geocoding API, the
// pack's second waypoint-resolution provider. Grounded on
// dkhalife-geoapify-go's own fluent builder usage example in client.go's
// package doc comment: client.Geocoding().Search(text).WithLimit(n).Do(ctx).
type GeoapifyResolver struct {
	client *geoapify.Client
}

// NewGeoapifyResolver creates a resolver backed by the given API key.
func NewGeoapifyResolver(apiKey string) *GeoapifyResolver {
	return &GeoapifyResolver{client: geoapify.NewClient(apiKey)}
}

func (r *GeoapifyResolver) Resolve(ctx context.Context, address string) (cfrjson.Waypoint, error) {
	resp, err := r.client.Geocoding().Search(address).WithLimit(1).Do(ctx)
	if err != nil {
		return cfrjson.Waypoint{}, fmt.Errorf("geocode: geoapify: %w", err)
	}
	if len(resp.Results) == 0 {
		return cfrjson.Waypoint{}, &ErrNoResults{Address: address}
	}
	result := resp.Results[0]
	return waypointFromLatLng(result.Lat, result.Lon), nil
}
