package twostep

import (
	"context"

	"example.com/your_project/two-step-routing/cfrjson"
)

// Solver is the one-method boundary to an external constraint-based vehicle
// routing solver. The planner never assumes anything about what is on the
// other side of it: every phase of the decomposition (local, global,
// refinement) is a single call through this interface.
type Solver interface {
	Solve(ctx context.Context, req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error)
}

// SolverFunc adapts a plain function to the Solver interface.
type SolverFunc func(ctx context.Context, req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error)

func (f SolverFunc) Solve(ctx context.Context, req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error) {
	return f(ctx, req)
}
