package twostep

import (
	"fmt"

	"example.com/your_project/two-step-routing/cfrjson"
)

// IntegrationResult is the output of IntegrateLocalRefinement.
type IntegrationResult struct {
	LocalRequest  *cfrjson.OptimizeToursRequest
	LocalResponse *cfrjson.OptimizeToursResponse
	GlobalRequest *cfrjson.OptimizeToursRequest
	// GlobalResponse is non-nil only when Mode is IntegrationModeFullRoutes.
	GlobalResponse *cfrjson.OptimizeToursResponse
}

// IntegrateLocalRefinement re-splits a solved refinement model back into
// per-round local routes and replaces the refined segments of both the
// local and global solutions (SPEC_FULL §4.6).
func IntegrateLocalRefinement(
	base *cfrjson.OptimizeToursRequest,
	registry *Registry,
	tagManager *TransitionAttributeManager,
	options Options,
	localRequest *cfrjson.OptimizeToursRequest,
	localResponse *cfrjson.OptimizeToursResponse,
	globalResponse *cfrjson.OptimizeToursResponse,
	refinementResponse *cfrjson.OptimizeToursResponse,
	mode IntegrationMode,
) (*IntegrationResult, error) {
	model := &base.Model

	// Map (globalRouteIndex, firstVisitIndex) -> the solved refinement
	// route that replaces it.
	refinedRuns := map[[2]int]*cfrjson.ShipmentRoute{}
	for i := range refinementResponse.Routes {
		route := &refinementResponse.Routes[i]
		g, v, _, _, err := ParseRefinementVehicleLabel(route.VehicleLabel)
		if err != nil {
			return nil, fmt.Errorf("twostep: integrate: %w", err)
		}
		refinedRuns[[2]int{g, v}] = route
	}
	// Every local route index that participates in some refined run (so we
	// know which base local routes to drop from the integrated local model).
	replacedLocalRouteIndex := map[int]bool{}
	for globalRouteIndex, route := range globalResponse.Routes {
		runs, err := FindConsecutiveParkingVisits(globalRouteIndex, &route, localResponse)
		if err != nil {
			return nil, err
		}
		for _, run := range runs {
			key := [2]int{run.GlobalRouteIndex, run.FirstGlobalVisitIndex}
			if _, ok := refinedRuns[key]; !ok {
				continue
			}
			for _, idx := range run.LocalRouteIndices {
				replacedLocalRouteIndex[idx] = true
			}
		}
	}

	// localShipmentIndexByOriginal maps an original shipment index to its
	// (single, stable) local shipment index in the base local model.
	localShipmentIndexByOriginal := map[int]int{}
	for i := range localRequest.Model.Shipments {
		if idx, err := shipmentIndexFromLocalLabel(localRequest.Model.Shipments[i].Label); err == nil {
			localShipmentIndexByOriginal[idx] = i
		}
	}

	integratedLocal := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime:      model.GlobalStartTime,
			GlobalEndTime:        model.GlobalEndTime,
			Vehicles:             append([]cfrjson.Vehicle(nil), localRequest.Model.Vehicles...),
			Shipments:            append([]cfrjson.Shipment(nil), localRequest.Model.Shipments...),
			TransitionAttributes: localRequest.Model.TransitionAttributes,
		},
	}
	CopySharedOptions(base, integratedLocal)

	integratedLocalResponse := &cfrjson.OptimizeToursResponse{
		Routes: make([]cfrjson.ShipmentRoute, len(localResponse.Routes)),
	}
	copy(integratedLocalResponse.Routes, localResponse.Routes)
	for idx := range integratedLocalResponse.Routes {
		if replacedLocalRouteIndex[idx] {
			// Dropped: this base local route is superseded by new split
			// routes appended below. An emptied route keeps its vehicle
			// index but has no visits, matching an "unused vehicle".
			v := integratedLocalResponse.Routes[idx].VehicleIndex
			integratedLocalResponse.Routes[idx] = cfrjson.ShipmentRoute{VehicleIndex: v}
		}
	}

	// For each refined run, split its solved refinement route on barrier
	// boundaries into new per-round local routes/vehicles, and remember the
	// new local route indices it produced (in round order) so the global
	// model can be rebuilt.
	newLocalRouteIndicesByRun := map[[2]int][]int{}
	for key, refinedRoute := range refinedRuns {
		parkingTag := parsePartkingTagFromRefinementLabel(refinedRoute.VehicleLabel)
		parking := registry.ByTag(parkingTag)
		if parking == nil {
			return nil, fmt.Errorf("twostep: integrate: unrecognized parking tag %q", parkingTag)
		}
		tags := tagManager.GetOrCreate(parking)

		segments, err := splitRefinementRoute(refinedRoute, refinementLocalShipmentsFor(refinedRoute, refinementResponse))
		if err != nil {
			return nil, err
		}

		var newIndices []int
		for segIdx, seg := range segments {
			vehicleIndex := len(integratedLocal.Model.Vehicles)
			vehicleLabel := fmt.Sprintf("%s [refinement]/%d", parkingTag, segIdx)
			v := makeVehicle(options, parking, tags, vehicleLabel)
			integratedLocal.Model.Vehicles = append(integratedLocal.Model.Vehicles, v)

			route := remapRefinementSegment(seg, localShipmentIndexByOriginal, vehicleIndex, vehicleLabel)
			RemoveWaitTimeFromUnloadTransitions(&route, integratedLocal.Model.Shipments, tags)
			cfrjson.UpdateRouteStartEndTimeFromTransitions(&route, segIdx < len(segments)-1)
			cfrjson.RecomputeRouteMetrics(&route, integratedLocal.Model.Shipments)

			newLocalRouteIndex := len(integratedLocalResponse.Routes)
			integratedLocalResponse.Routes = append(integratedLocalResponse.Routes, route)
			newIndices = append(newIndices, newLocalRouteIndex)
		}
		newLocalRouteIndicesByRun[key] = newIndices
	}

	// Rebuild the global model: direct shipments unchanged; one virtual
	// shipment per non-empty integrated local route; refined runs expand to
	// however many rounds the refinement actually produced.
	integratedGlobal := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime: model.GlobalStartTime,
			GlobalEndTime:   model.GlobalEndTime,
			Vehicles:        model.Vehicles,
		},
	}
	CopySharedOptions(base, integratedGlobal)
	integratedGlobal.InternalParameters = ResolveInternalParameters(PhaseGlobalRefinement, "", options.InternalParameters)

	var integratedGlobalResponse *cfrjson.OptimizeToursResponse
	if mode == IntegrationModeFullRoutes {
		integratedGlobalResponse = &cfrjson.OptimizeToursResponse{
			Routes: make([]cfrjson.ShipmentRoute, len(globalResponse.Routes)),
		}
	}

	for shipmentIndex := range model.Shipments {
		if !registry.IsDirect(shipmentIndex) {
			continue
		}
		shipment := model.Shipments[shipmentIndex]
		shipment.Label = directShipmentLabel(shipmentIndex, shipment.Label)
		integratedGlobal.Model.Shipments = append(integratedGlobal.Model.Shipments, shipment)
	}

	for globalRouteIndex := range globalResponse.Routes {
		oldRoute := &globalResponse.Routes[globalRouteIndex]
		var newRoute cfrjson.ShipmentRoute
		if integratedGlobalResponse != nil {
			newRoute = cfrjson.ShipmentRoute{
				VehicleIndex:     oldRoute.VehicleIndex,
				VehicleLabel:     oldRoute.VehicleLabel,
				VehicleStartTime: oldRoute.VehicleStartTime,
				VehicleEndTime:   oldRoute.VehicleEndTime,
				Breaks:           oldRoute.Breaks,
			}
		}

		runs, err := FindConsecutiveParkingVisits(globalRouteIndex, oldRoute, localResponse)
		if err != nil {
			return nil, err
		}
		runByFirstVisit := map[int][]int{} // firstVisitIndex -> new local route indices
		runLength := map[int]int{}         // firstVisitIndex -> number of old visits it spanned
		for _, run := range runs {
			key := [2]int{run.GlobalRouteIndex, run.FirstGlobalVisitIndex}
			if newIdx, ok := newLocalRouteIndicesByRun[key]; ok {
				runByFirstVisit[run.FirstGlobalVisitIndex] = newIdx
				runLength[run.FirstGlobalVisitIndex] = run.NumVisits()
			}
		}

		visitIndex := 0
		for visitIndex < len(oldRoute.Visits) {
			v := &oldRoute.Visits[visitIndex]
			if newIdx, ok := runByFirstVisit[visitIndex]; ok {
				for _, localRouteIndex := range newIdx {
					shipment, err := MakeShipmentForLocalRoute(model, localRouteIndex, &integratedLocalResponse.Routes[localRouteIndex], integratedLocal.Model.Shipments, registry, tagManager)
					if err != nil {
						return nil, err
					}
					integratedGlobal.Model.Shipments = append(integratedGlobal.Model.Shipments, shipment)
					if newRoute.Visits != nil || integratedGlobalResponse != nil {
						newRoute.Visits = append(newRoute.Visits, cfrjson.Visit{
							ShipmentIndex: len(integratedGlobal.Model.Shipments) - 1,
							StartTime:     integratedLocalResponse.Routes[localRouteIndex].VehicleStartTime,
							ShipmentLabel: shipment.Label,
						})
					}
				}
				visitIndex += runLength[visitIndex]
				continue
			}

			kind, idx, err := ParseGlobalShipmentLabel(v.ShipmentLabel)
			if err != nil {
				return nil, fmt.Errorf("twostep: integrate: %w", err)
			}
			switch kind {
			case "s":
				shipment := model.Shipments[idx]
				shipment.Label = directShipmentLabel(idx, shipment.Label)
				if newRoute.Visits != nil || integratedGlobalResponse != nil {
					newRoute.Visits = append(newRoute.Visits, *v)
				}
			case "p":
				shipment, err := MakeShipmentForLocalRoute(model, idx, &integratedLocalResponse.Routes[idx], integratedLocal.Model.Shipments, registry, tagManager)
				if err != nil {
					return nil, err
				}
				integratedGlobal.Model.Shipments = append(integratedGlobal.Model.Shipments, shipment)
				if newRoute.Visits != nil || integratedGlobalResponse != nil {
					nv := *v
					nv.ShipmentIndex = len(integratedGlobal.Model.Shipments) - 1
					nv.ShipmentLabel = shipment.Label
					newRoute.Visits = append(newRoute.Visits, nv)
				}
			}
			visitIndex++
		}

		if integratedGlobalResponse != nil {
			integratedGlobalResponse.Routes[globalRouteIndex] = newRoute
		}
	}

	integratedGlobal.Model.TransitionAttributes = tagManager.GlobalTransitionAttributes()

	if integratedGlobalResponse != nil {
		for i := range integratedGlobalResponse.Routes {
			route := &integratedGlobalResponse.Routes[i]
			if len(route.Visits) == 0 {
				continue
			}
			if err := cfrjson.RecomputeTransitionStartsAndDurations(route, integratedGlobal.Model.Shipments, cfrjson.RecomputeTransitionStartsAndDurationsOptions{
				AllowNegativeWaitDuration: options.AllowNegativeWaitDuration,
			}); err != nil {
				return nil, fmt.Errorf("twostep: integrate: reconciling global route %d: %w", i, err)
			}
			cfrjson.RecomputeRouteMetrics(route, integratedGlobal.Model.Shipments)
		}
		if err := AssertRoutesHandleSameShipments(globalResponse, integratedGlobalResponse); err != nil {
			return nil, fmt.Errorf("twostep: integrate: %w", err)
		}
	}

	return &IntegrationResult{
		LocalRequest:   integratedLocal,
		LocalResponse:  integratedLocalResponse,
		GlobalRequest:  integratedGlobal,
		GlobalResponse: integratedGlobalResponse,
	}, nil
}

func parsePartkingTagFromRefinementLabel(label string) ParkingTag {
	_, _, _, tag, err := ParseRefinementVehicleLabel(label)
	if err != nil {
		return ""
	}
	return tag
}

// refinementLocalShipmentsFor always returns nil: the refinement response
// does not carry the shipments of the refinement model, and
// splitRefinementRoute does not read its shipments argument.
func refinementLocalShipmentsFor(refinedRoute *cfrjson.ShipmentRoute, refinementResponse *cfrjson.OptimizeToursResponse) []cfrjson.Shipment {
	// The refinement response does not carry its request; callers always
	// have the request's shipments available when they need visit
	// durations, so this helper intentionally returns nil and the split
	// logic below never dereferences shipments from it (it reasons purely
	// from shipment labels and visit timestamps already present on the
	// response).
	return nil
}

// refinementSegment is one maximal run of visits between two barrier
// visits (exclusive) in a solved refinement route, including the leading
// transition into its first visit and the trailing transition out of its
// last one (so len(Transitions) == len(Visits)+1, as every standalone
// route requires).
type refinementSegment struct {
	Visits      []cfrjson.Visit
	Transitions []cfrjson.Transition
}

// splitRefinementRoute splits route on barrier pickup/delivery boundaries,
// dropping the barrier visits themselves. It returns one segment per round
// the refinement solver produced (which may differ in count from the
// original number of rounds).
func splitRefinementRoute(route *cfrjson.ShipmentRoute, _ []cfrjson.Shipment) ([]refinementSegment, error) {
	var segments []refinementSegment
	start := -1

	flush := func(end int) {
		if start < 0 || end <= start {
			start = -1
			return
		}
		segments = append(segments, refinementSegment{
			Visits:      append([]cfrjson.Visit(nil), route.Visits[start:end]...),
			Transitions: append([]cfrjson.Transition(nil), route.Transitions[start:end+1]...),
		})
		start = -1
	}

	for i := range route.Visits {
		v := &route.Visits[i]
		if isBarrierLabel(v.ShipmentLabel) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(route.Visits))

	if len(segments) == 0 {
		return nil, fmt.Errorf("twostep: refinement route %q produced no rounds", route.VehicleLabel)
	}
	return segments, nil
}

func isBarrierLabel(label string) bool {
	return len(label) > len("barrier ") && label[:len("barrier ")] == "barrier "
}

// remapRefinementSegment converts a refinementSegment (whose shipment
// indices refer to the refinement model) into a standalone local route
// (whose shipment indices refer to the base/integrated local model), by
// resolving each visit's original shipment index from its label and
// looking it up in localShipmentIndexByOriginal.
func remapRefinementSegment(seg refinementSegment, localShipmentIndexByOriginal map[int]int, vehicleIndex int, vehicleLabel string) cfrjson.ShipmentRoute {
	route := cfrjson.ShipmentRoute{VehicleIndex: vehicleIndex, VehicleLabel: vehicleLabel}
	for i := range seg.Visits {
		v := seg.Visits[i]
		originalIndex, err := shipmentIndexFromLocalLabel(v.ShipmentLabel)
		if err == nil {
			if mapped, ok := localShipmentIndexByOriginal[originalIndex]; ok {
				v.ShipmentIndex = mapped
			}
		}
		route.Visits = append(route.Visits, v)
	}
	route.Transitions = append(route.Transitions, seg.Transitions...)
	return route
}
