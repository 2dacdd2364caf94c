package runhistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/your_project/two-step-routing/cfrjson"
)

func TestHashRequestIsStableAndDistinguishesRequests(t *testing.T) {
	req1 := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			Shipments: []cfrjson.Shipment{{Label: "a"}},
		},
	}
	req2 := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			Shipments: []cfrjson.Shipment{{Label: "b"}},
		},
	}

	h1a, err := HashRequest(req1)
	require.NoError(t, err)
	h1b, err := HashRequest(req1)
	require.NoError(t, err)
	h2, err := HashRequest(req2)
	require.NoError(t, err)

	assert.Equal(t, h1a, h1b, "hashing the same request twice must be stable")
	assert.NotEqual(t, h1a, h2, "different requests must hash differently")
	assert.Len(t, h1a, 64, "sha256 hex digest length")
}
