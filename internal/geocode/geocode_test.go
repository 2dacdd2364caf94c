package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/your_project/two-step-routing/cfrjson"
)

func TestChainFallsBackToNextResolver(t *testing.T) {
	want := waypointFromLatLng(1, 2)
	chain := Chain{
		ResolverFunc(func(ctx context.Context, address string) (cfrjson.Waypoint, error) {
			return cfrjson.Waypoint{}, errors.New("provider unavailable")
		}),
		ResolverFunc(func(ctx context.Context, address string) (cfrjson.Waypoint, error) {
			return want, nil
		}),
	}

	got, err := chain.Resolve(context.Background(), "1600 Amphitheatre Pkwy")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestChainReturnsErrNoResultsWhenEveryProviderFails(t *testing.T) {
	chain := Chain{
		ResolverFunc(func(ctx context.Context, address string) (cfrjson.Waypoint, error) {
			return cfrjson.Waypoint{}, &ErrNoResults{Address: address}
		}),
	}

	_, err := chain.Resolve(context.Background(), "nowhere")
	assert.Error(t, err)
	var noResults *ErrNoResults
	assert.True(t, errors.As(err, &noResults))
}
