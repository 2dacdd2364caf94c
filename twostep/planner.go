package twostep

import (
	"context"
	"fmt"

	"example.com/your_project/two-step-routing/cfrjson"
)

// Planner owns the parking/registry bookkeeping for one base request and
// drives the local -> global -> (optional) refinement -> merge pipeline
// described in SPEC_FULL §2. It is constructed once per base request and its
// methods are meant to be called in order, each consuming the solver
// response produced from its predecessor's request.
type Planner struct {
	base       *cfrjson.OptimizeToursRequest
	registry   *Registry
	tagManager *TransitionAttributeManager
	options    Options
}

// NewPlanner validates parkings/parkingForShipment against base and returns
// a Planner ready to build the local model request.
func NewPlanner(base *cfrjson.OptimizeToursRequest, parkings []ParkingLocation, parkingForShipment ParkingForShipment, options Options) (*Planner, error) {
	registry, err := NewRegistry(&base.Model, parkings, parkingForShipment)
	if err != nil {
		return nil, err
	}
	if err := ValidateRequest(&base.Model, parkingForShipment); err != nil {
		return nil, err
	}
	return &Planner{
		base:       base,
		registry:   registry,
		tagManager: NewTransitionAttributeManager(&base.Model),
		options:    options,
	}, nil
}

// BuildLocalRequest emits the local (walking) model request.
func (p *Planner) BuildLocalRequest() (*cfrjson.OptimizeToursRequest, error) {
	return BuildLocalRequest(p.base, p.registry, p.tagManager, p.options)
}

// BuildGlobalRequest consumes a solved local response and emits the global
// (driving) model request.
func (p *Planner) BuildGlobalRequest(localRequest *cfrjson.OptimizeToursRequest, localResponse *cfrjson.OptimizeToursResponse, overrides GlobalRequestOptions) (*cfrjson.OptimizeToursRequest, error) {
	if err := validateLocalResponseOrError(localResponse, p.registry); err != nil {
		return nil, err
	}
	return BuildGlobalRequest(p.base, localResponse, localRequest.Model.Shipments, p.registry, p.tagManager, p.options, overrides)
}

// BuildLocalRefinementRequest consumes the solved local and global responses
// and emits the refinement model request, along with the consecutive-visit
// runs it was built from. Returns (nil, nil, nil) if no run in the global
// solution is a refinement candidate.
func (p *Planner) BuildLocalRefinementRequest(localRequest *cfrjson.OptimizeToursRequest, localResponse, globalResponse *cfrjson.OptimizeToursResponse) (*cfrjson.OptimizeToursRequest, []ConsecutiveParkingVisits, error) {
	refinement, runs, err := BuildLocalRefinementRequest(p.base, p.registry, p.tagManager, p.options, localRequest, localResponse, globalResponse)
	if err != nil {
		return nil, nil, err
	}
	if len(runs) == 0 {
		return nil, nil, nil
	}
	return refinement, runs, nil
}

// IntegrateRefinement consumes the solved refinement response and produces
// the integrated local/global models per mode.
func (p *Planner) IntegrateRefinement(localRequest *cfrjson.OptimizeToursRequest, localResponse, globalResponse, refinementResponse *cfrjson.OptimizeToursResponse, mode IntegrationMode) (*IntegrationResult, error) {
	return IntegrateLocalRefinement(p.base, p.registry, p.tagManager, p.options, localRequest, localResponse, globalResponse, refinementResponse, mode)
}

// Merge weaves a solved local response and a solved global response into one
// standalone result.
func (p *Planner) Merge(localRequest *cfrjson.OptimizeToursRequest, localResponse, globalResponse *cfrjson.OptimizeToursResponse) (*cfrjson.OptimizeToursRequest, *cfrjson.OptimizeToursResponse, error) {
	return MergeLocalAndGlobalResult(MergeInput{
		Base:           p.base,
		LocalRequest:   localRequest,
		LocalResponse:  localResponse,
		GlobalResponse: globalResponse,
		Registry:       p.registry,
		TagManager:     p.tagManager,
		Options:        p.options,
	})
}

// PlanResult is the outcome of a full Plan run.
type PlanResult struct {
	LocalRequest   *cfrjson.OptimizeToursRequest
	LocalResponse  *cfrjson.OptimizeToursResponse
	GlobalRequest  *cfrjson.OptimizeToursRequest
	GlobalResponse *cfrjson.OptimizeToursResponse
	MergedRequest  *cfrjson.OptimizeToursRequest
	MergedResponse *cfrjson.OptimizeToursResponse
	// Refined is true if a refinement pass ran and its result was folded
	// into GlobalRequest/GlobalResponse before merging.
	Refined bool
}

// Plan runs the full pipeline against solver: local, global, and (if the
// global solution contains any consecutive-same-parking run) a refinement
// pass whose result is integrated back into the global solution in
// IntegrationModeFullRoutes before the final merge.
func (p *Planner) Plan(ctx context.Context, solver Solver) (*PlanResult, error) {
	localRequest, err := p.BuildLocalRequest()
	if err != nil {
		return nil, fmt.Errorf("twostep: plan: building local request: %w", err)
	}
	localResponse, err := solver.Solve(ctx, localRequest)
	if err != nil {
		return nil, fmt.Errorf("twostep: plan: solving local request: %w", err)
	}

	globalRequest, err := p.BuildGlobalRequest(localRequest, localResponse, GlobalRequestOptions{})
	if err != nil {
		return nil, fmt.Errorf("twostep: plan: building global request: %w", err)
	}
	globalResponse, err := solver.Solve(ctx, globalRequest)
	if err != nil {
		return nil, fmt.Errorf("twostep: plan: solving global request: %w", err)
	}

	result := &PlanResult{
		LocalRequest:   localRequest,
		LocalResponse:  localResponse,
		GlobalRequest:  globalRequest,
		GlobalResponse: globalResponse,
	}

	refinementRequest, runs, err := p.BuildLocalRefinementRequest(localRequest, localResponse, globalResponse)
	if err != nil {
		return nil, fmt.Errorf("twostep: plan: building refinement request: %w", err)
	}
	if len(runs) > 0 {
		refinementResponse, err := solver.Solve(ctx, refinementRequest)
		if err != nil {
			return nil, fmt.Errorf("twostep: plan: solving refinement request: %w", err)
		}
		integration, err := p.IntegrateRefinement(localRequest, localResponse, globalResponse, refinementResponse, IntegrationModeFullRoutes)
		if err != nil {
			return nil, fmt.Errorf("twostep: plan: integrating refinement: %w", err)
		}
		result.LocalRequest = integration.LocalRequest
		result.LocalResponse = integration.LocalResponse
		result.GlobalRequest = integration.GlobalRequest
		result.GlobalResponse = integration.GlobalResponse
		result.Refined = true
	}

	mergedRequest, mergedResponse, err := p.Merge(result.LocalRequest, result.LocalResponse, result.GlobalResponse)
	if err != nil {
		return nil, fmt.Errorf("twostep: plan: merging: %w", err)
	}
	result.MergedRequest = mergedRequest
	result.MergedResponse = mergedResponse

	return result, nil
}
