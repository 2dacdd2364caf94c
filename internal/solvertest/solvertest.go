// Package solvertest provides a mock of twostep.Solver for unit tests: each
// call is answered by the next registered Responder in registration order.
// The request's content does not select the Responder; a Responder may
// inspect the request it receives.
package solvertest

import (
	"context"
	"fmt"
	"sync"

	"example.com/your_project/two-step-routing/cfrjson"
)

// Responder produces a response for a request a Mock received, or an error.
type Responder func(req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error)

// Mock is a twostep.Solver driven by an ordered queue of Responders: the
// N-th call to Solve invokes the N-th registered Responder. This mirrors the
// planner's own call order (local, global, local-refinement, integrated
// global) and keeps tests free of any dependency on a real solver backend.
type Mock struct {
	mu         sync.Mutex
	responders []Responder
	calls      []*cfrjson.OptimizeToursRequest
}

// NewMock returns a Mock that answers successive Solve calls with
// responders, in order.
func NewMock(responders ...Responder) *Mock {
	return &Mock{responders: responders}
}

// Solve implements twostep.Solver.
func (m *Mock) Solve(_ context.Context, req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if len(m.calls) > len(m.responders) {
		return nil, fmt.Errorf("solvertest: unexpected call %d, only %d responders registered", len(m.calls), len(m.responders))
	}
	return m.responders[len(m.calls)-1](req)
}

// Calls returns every request Solve has received so far, in order.
func (m *Mock) Calls() []*cfrjson.OptimizeToursRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*cfrjson.OptimizeToursRequest(nil), m.calls...)
}

// Echo is a Responder that returns a response with one empty route per
// vehicle in the request and no visits at all: useful as a trivial
// "everything unassigned" stand-in when a test only cares about request
// shape.
func Echo(req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error) {
	resp := &cfrjson.OptimizeToursResponse{}
	for i := range req.Model.Vehicles {
		resp.Routes = append(resp.Routes, cfrjson.ShipmentRoute{VehicleIndex: i, VehicleLabel: req.Model.Vehicles[i].Label})
	}
	return resp, nil
}
