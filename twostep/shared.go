// Package twostep implements the decomposition/recomposition engine for
// parking-aware vehicle routing: local (walking) models per parking
// location, a global (driving) model that treats each parking's local route
// as one virtual stop, a merger that weaves the two back into one plan, and
// a refinement pass that re-optimizes consecutive visits to the same
// parking.
//
// The package never talks to a routing solver itself; callers provide one
// through the Solver interface (see solver.go) between every pair of
// "make a request" / "consume a response" calls on Planner.
package twostep

import (
	"strings"

	"example.com/your_project/two-step-routing/cfrjson"
)

// IntegrationMode controls how much of the refined solution IntegrateLocalRefinement
// produces eagerly versus leaving for the caller to re-solve.
type IntegrationMode int

const (
	// IntegrationModeVisitsOnly produces an integrated global request with
	// only shipment/visit-request references; the caller must re-solve it.
	// No injected first-solution routes are attached to that request.
	IntegrationModeVisitsOnly IntegrationMode = iota
	// IntegrationModeVisitsAndStartTimes produces the same output as
	// IntegrationModeVisitsOnly: no start times, detours or injected
	// first-solution routes are attached to the integrated global request.
	IntegrationModeVisitsAndStartTimes
	// IntegrationModeFullRoutes additionally produces a fully reconciled
	// integrated global response, ready to use as a final answer or as a
	// warm start.
	IntegrationModeFullRoutes
)

// InitialLocalModelGrouping controls how parking-served shipments are
// partitioned into local sub-problems beyond grouping by parking tag alone.
type InitialLocalModelGrouping struct {
	// ByTimeWindows groups shipments that share a parking tag but have
	// different delivery time windows into separate local models.
	ByTimeWindows bool
	// ByPenaltyCostPerItem buckets shipments by penalty cost per unit load,
	// so that shipments of very different priority are not forced into the
	// same round.
	ByPenaltyCostPerItem bool
}

// ParseInitialLocalModelGrouping parses a comma-separated flag value such as
// "time_windows,penalty_cost_per_item" into an InitialLocalModelGrouping.
func ParseInitialLocalModelGrouping(s string) (InitialLocalModelGrouping, error) {
	var g InitialLocalModelGrouping
	if s == "" {
		return g, nil
	}
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(part) {
		case "time_windows":
			g.ByTimeWindows = true
		case "penalty_cost_per_item":
			g.ByPenaltyCostPerItem = true
		case "":
			continue
		default:
			return g, &OptionsError{Detail: "unknown local model grouping flag: " + strings.TrimSpace(part)}
		}
	}
	return g, nil
}

// OptionsError is returned for malformed Options.
type OptionsError struct{ Detail string }

func (e *OptionsError) Error() string { return "twostep: invalid options: " + e.Detail }

// InternalParameters carries the four phase-specific overrides a caller may
// want to pass through to the solver's internalParameters request field,
// plus the planner-wide default. The precedence chain per phase is resolved
// by ResolveInternalParameters.
type InternalParameters struct {
	Default                     string
	Local                       string
	Global                      string
	LocalRefinement             string
	GlobalRefinement            string
}

// Phase identifies which of the four request-building phases is asking for
// its internalParameters value.
type Phase int

const (
	PhaseLocal Phase = iota
	PhaseGlobal
	PhaseLocalRefinement
	PhaseGlobalRefinement
)

// ResolveInternalParameters implements the precedence chain from the design
// notes: for each phase, the most specific non-empty source wins, with a
// request-level override (requestOverride) always taking precedence over
// anything configured in Options, and phase-specific Options values taking
// precedence over the Options-wide default.
//
//   initial-local:       options.Local, else options.Default
//   initial-global:      requestOverride, else options.Global, else options.Default
//   refinement-local:    options.LocalRefinement, else options.Default
//   refinement-global:   requestOverride, else options.GlobalRefinement, else options.Default
func ResolveInternalParameters(phase Phase, requestOverride string, options InternalParameters) string {
	switch phase {
	case PhaseLocal:
		return firstNonEmpty(options.Local, options.Default)
	case PhaseGlobal:
		return firstNonEmpty(requestOverride, options.Global, options.Default)
	case PhaseLocalRefinement:
		return firstNonEmpty(options.LocalRefinement, options.Default)
	case PhaseGlobalRefinement:
		return firstNonEmpty(requestOverride, options.GlobalRefinement, options.Default)
	default:
		return options.Default
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Options are the planner-wide tuning knobs. They mirror the reference
// implementation's shared options object; sensible defaults are provided by
// DefaultOptions.
type Options struct {
	InitialLocalModelGrouping InitialLocalModelGrouping

	// LocalModelVehicleFixedCost is added once per local vehicle that is
	// used at all, pushing the solver toward using as few rounds as
	// possible.
	LocalModelVehicleFixedCost float64
	// LocalModelVehiclePerHourCost and LocalModelVehiclePerKmCost are the
	// per-hour / per-kilometer cost of a local (on-foot) vehicle.
	LocalModelVehiclePerHourCost float64
	LocalModelVehiclePerKmCost   float64

	// MinAverageShipmentsPerRound is carried through configuration but is
	// not read by the twostep package: the local model builder always
	// synthesizes one local vehicle (round) per shipment in a parking group,
	// and the solver decides how many rounds are actually used.
	MinAverageShipmentsPerRound float64

	// UseDeprecatedFields toggles emitting "deliveries"/"pickups" in the
	// legacy plural form expected by older solver backends. The public API
	// of this package always operates on the plural form; this flag exists
	// only to be threaded through to serialization for compatibility and is
	// not read by the twostep package itself.
	UseDeprecatedFields bool

	// TravelModeInMergedTransitions attaches TravelMode/TravelDurationMultiple
	// metadata to every transition in the merger's output.
	TravelModeInMergedTransitions bool

	InternalParameters InternalParameters

	// AllowNegativeWaitDuration permits the refinement integrator to accept
	// a negative wait duration on a reconciled transition, which legitimately
	// happens only when the source route carried a traffic-infeasibility
	// marker.
	AllowNegativeWaitDuration bool
}

// DefaultOptions returns the reference implementation's default tuning,
// translated to this package's types.
func DefaultOptions() Options {
	return Options{
		LocalModelVehicleFixedCost:   10_000,
		LocalModelVehiclePerHourCost: 300,
		LocalModelVehiclePerKmCost:   60,
		MinAverageShipmentsPerRound:  1,
		UseDeprecatedFields:          true,
	}
}

// CopySharedOptions copies the request-level fields that are meant to pass
// through every phase unchanged (search mode, polyline population, large
// deadline opt-in, parent) from one request to another.
func CopySharedOptions(from, to *cfrjson.OptimizeToursRequest) {
	to.SearchMode = from.SearchMode
	to.AllowLargeDeadlineDespiteInterruptionRisk = from.AllowLargeDeadlineDespiteInterruptionRisk
	to.PopulatePolylines = from.PopulatePolylines
	to.PopulateTransitionPolylines = from.PopulateTransitionPolylines
	to.Parent = from.Parent
}
