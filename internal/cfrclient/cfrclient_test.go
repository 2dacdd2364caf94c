package cfrclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/your_project/two-step-routing/cfrjson"
)

func TestSolvePostsRequestAndDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cfrjson.OptimizeToursRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Model.Shipments, 1)

		resp := cfrjson.OptimizeToursResponse{
			Routes: []cfrjson.ShipmentRoute{{VehicleLabel: "v0"}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := New(server.URL, server.Client())
	req := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{Shipments: []cfrjson.Shipment{{Label: "x"}}},
	}

	resp, err := client.Solve(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)
	assert.Equal(t, "v0", resp.Routes[0].VehicleLabel)
}

func TestSolveReturnsErrorOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, server.Client())
	_, err := client.Solve(context.Background(), &cfrjson.OptimizeToursRequest{})
	assert.Error(t, err)
}
