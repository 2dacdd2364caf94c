// Package cfrclient is a twostep.Solver that forwards each phase's request
// to an external constraint-based vehicle routing service over HTTP,
// posting the request body as-is and decoding the response body as-is. This
// is the production Solver for the full multi-vehicle pipeline: unlike
// internal/nextmvsolver (bounded to single-vehicle, transition-attribute-
// free requests; see DESIGN.md), a real deployment's local/global/
// refinement models need a solver that honors transition attributes and
// multiple vehicles, which is exactly what the external service this
// package talks to is for.
//
// There is no third-party HTTP client in the retrieval pack for generic
// JSON-over-HTTP request/response calls (the pack's googlemaps and
// geoapify clients are provider-specific, not general purpose), so this
// package uses net/http directly, the same way dkhalife-geoapify-go's own
// Client.do builds its requests.
package cfrclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"example.com/your_project/two-step-routing/cfrjson"
)

// Client solves OptimizeToursRequests by POSTing them to a configured
// endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a Client that posts to endpoint using the given *http.Client,
// or, if nil, a new *http.Client with a two-minute timeout.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Solve implements twostep.Solver.
func (c *Client) Solve(ctx context.Context, req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("cfrclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cfrclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cfrclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cfrclient: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cfrclient: solver returned status %d: %s", resp.StatusCode, respBody)
	}

	var out cfrjson.OptimizeToursResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("cfrclient: decode response: %w", err)
	}
	return &out, nil
}
