package twostep

import (
	"fmt"
	"regexp"
	"strconv"

	"example.com/your_project/two-step-routing/cfrjson"
)

// ConsecutiveParkingVisits describes one maximal run of consecutive visits
// to the same parking location on a global route: a candidate for
// refinement (SPEC_FULL §4.5).
type ConsecutiveParkingVisits struct {
	ParkingTag           ParkingTag
	GlobalRouteIndex      int
	FirstGlobalVisitIndex int
	LocalRouteIndices     []int // one per round in the run, in order
}

// NumVisits returns the number of rounds (local routes) in the run.
func (c *ConsecutiveParkingVisits) NumVisits() int { return len(c.LocalRouteIndices) }

// refinementVehicleLabel builds the wire-protocol label of a refinement
// vehicle: "global_route:<g> start:<v> size:<n> parking:<tag>".
func refinementVehicleLabel(c *ConsecutiveParkingVisits) string {
	return fmt.Sprintf("global_route:%d start:%d size:%d parking:%s",
		c.GlobalRouteIndex, c.FirstGlobalVisitIndex, c.NumVisits(), c.ParkingTag)
}

var refinementVehicleLabelPattern = regexp.MustCompile(`^global_route:(\d+) start:(\d+) size:(\d+) parking:(.*)$`)

// ParseRefinementVehicleLabel is the inverse of refinementVehicleLabel.
func ParseRefinementVehicleLabel(label string) (globalRouteIndex, firstVisitIndex, size int, parkingTag ParkingTag, err error) {
	m := refinementVehicleLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, 0, "", fmt.Errorf("twostep: invalid refinement vehicle label: %q", label)
	}
	globalRouteIndex, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, 0, "", err
	}
	firstVisitIndex, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, 0, "", err
	}
	size, err = strconv.Atoi(m[3])
	if err != nil {
		return 0, 0, 0, "", err
	}
	parkingTag = m[4]
	return globalRouteIndex, firstVisitIndex, size, parkingTag, nil
}

// barrierShipmentLabel builds the wire-protocol label of a refinement
// barrier shipment: "barrier <tag>".
func barrierShipmentLabel(tag ParkingTag) string { return "barrier " + tag }

// FindConsecutiveParkingVisits scans one global route and returns every
// maximal run (length >= 2) of consecutive "p" visits that share a parking
// tag, are not separated by a break, and are not marked
// traffic-infeasible (a negative wait duration on the transition between
// them).
func FindConsecutiveParkingVisits(globalRouteIndex int, globalRoute *cfrjson.ShipmentRoute, localResponse *cfrjson.OptimizeToursResponse) ([]ConsecutiveParkingVisits, error) {
	var runs []ConsecutiveParkingVisits
	var current *ConsecutiveParkingVisits

	flush := func() {
		if current != nil && current.NumVisits() >= 2 {
			runs = append(runs, *current)
		}
		current = nil
	}

	for visitIndex := range globalRoute.Visits {
		v := &globalRoute.Visits[visitIndex]
		kind, idx, err := ParseGlobalShipmentLabel(v.ShipmentLabel)
		if err != nil {
			return nil, fmt.Errorf("twostep: refinement scan: %w", err)
		}
		if kind != "p" {
			flush()
			continue
		}
		localRoute := &localResponse.Routes[idx]
		tag := GetParkingTagFromRoute(localRoute)

		broken := current == nil || current.ParkingTag != tag
		if !broken {
			t := globalRoute.Transitions[visitIndex]
			if t.BreakDuration != 0 || t.WaitDuration < 0 {
				broken = true
			}
		}
		if broken {
			flush()
			current = &ConsecutiveParkingVisits{
				ParkingTag:            tag,
				GlobalRouteIndex:      globalRouteIndex,
				FirstGlobalVisitIndex: visitIndex,
			}
		}
		current.LocalRouteIndices = append(current.LocalRouteIndices, idx)
	}
	flush()
	return runs, nil
}

// makeBarrierShipment builds the synthetic pickup-and-delivery shipment
// used between two rounds in a refinement run: a zero-duration pair at the
// parking waypoint whose load demands saturate the vehicle's full capacity,
// forcing the solver to complete every pending delivery before crossing it.
func makeBarrierShipment(parking *ParkingLocation, tags ParkingLocationTags) cfrjson.Shipment {
	waypoint := parking.WaypointForLocalModel()
	return cfrjson.Shipment{
		Label:       barrierShipmentLabel(parking.Tag),
		LoadDemands: parking.DeliveryLoadLimits,
		Pickups: []cfrjson.VisitRequest{{
			ArrivalWaypoint: &waypoint,
			Tags:            []string{tags.LocalBarrierPickupTag},
		}},
		Deliveries: []cfrjson.VisitRequest{{
			ArrivalWaypoint: &waypoint,
			Tags:            []string{tags.LocalBarrierDeliveryTag},
		}},
	}
}

// BuildLocalRefinementRequest emits the refinement model (SPEC_FULL §4.5):
// one single-vehicle capacitated pickup-and-delivery sub-problem per
// maximal run of consecutive same-parking visits across every global route,
// seeded with a first-solution hint equal to the original rounds
// concatenated with barrier separators.
func BuildLocalRefinementRequest(base *cfrjson.OptimizeToursRequest, registry *Registry, tagManager *TransitionAttributeManager, options Options, localRequest *cfrjson.OptimizeToursRequest, localResponse *cfrjson.OptimizeToursResponse, globalResponse *cfrjson.OptimizeToursResponse) (*cfrjson.OptimizeToursRequest, []ConsecutiveParkingVisits, error) {
	model := &base.Model

	refinement := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime: model.GlobalStartTime,
			GlobalEndTime:   model.GlobalEndTime,
		},
	}
	CopySharedOptions(base, refinement)
	refinement.InternalParameters = ResolveInternalParameters(PhaseLocalRefinement, "", options.InternalParameters)

	var allRuns []ConsecutiveParkingVisits
	for globalRouteIndex := range globalResponse.Routes {
		route := &globalResponse.Routes[globalRouteIndex]
		runs, err := FindConsecutiveParkingVisits(globalRouteIndex, route, localResponse)
		if err != nil {
			return nil, nil, err
		}
		allRuns = append(allRuns, runs...)
	}

	for i := range allRuns {
		run := &allRuns[i]
		parking := registry.ByTag(run.ParkingTag)
		if parking == nil {
			return nil, nil, fmt.Errorf("twostep: refinement: unrecognized parking tag %q", run.ParkingTag)
		}
		tags := tagManager.GetOrCreate(parking)

		firstLocalRoute := &localResponse.Routes[run.LocalRouteIndices[0]]
		lastLocalRoute := &localResponse.Routes[run.LocalRouteIndices[len(run.LocalRouteIndices)-1]]
		startTime := firstLocalRoute.VehicleStartTime
		endTime := lastLocalRoute.VehicleEndTime

		vehicleIndex := len(refinement.Model.Vehicles)
		vehicle := makeVehicle(options, parking, tags, refinementVehicleLabel(run))
		hardStart := startTime
		softEnd := endTime
		penaltyPerHour := largeSyntheticCost
		vehicle.StartTimeWindows = []cfrjson.TimeWindow{{StartTime: &hardStart, EndTime: &hardStart}}
		vehicle.EndTimeWindows = []cfrjson.TimeWindow{{SoftEndTime: &softEnd, CostPerHourAfterSoftEndTime: &penaltyPerHour}}
		refinement.Model.Vehicles = append(refinement.Model.Vehicles, vehicle)

		barrier := makeBarrierShipment(parking, tags)
		var hint cfrjson.InjectedRoute
		hint.VehicleIndex = vehicleIndex

		for roundPos, localRouteIndex := range run.LocalRouteIndices {
			localRoute := &localResponse.Routes[localRouteIndex]

			// Copy the round's visits in their actual solved order (not
			// deduplicated shipment-index order): a round's real visit
			// sequence may interleave one shipment's pickup/delivery with
			// another's, and the injected hint must reproduce exactly what
			// was solved for the "matches the prior cost" guarantee to hold.
			shipmentIndexByOriginal := map[int]int{}
			for i := range localRoute.Visits {
				v := &localRoute.Visits[i]
				originalIndex, err := ShipmentIndexFromVisit(v)
				if err != nil {
					return nil, nil, fmt.Errorf("twostep: refinement: %w", err)
				}
				shipmentIndex, ok := shipmentIndexByOriginal[originalIndex]
				if !ok {
					original := &model.Shipments[originalIndex]
					local, err := makeShipment(originalIndex, original, parking, tags)
					if err != nil {
						return nil, nil, err
					}
					local.AllowedVehicleIndices = []int{vehicleIndex}
					shipmentIndex = len(refinement.Model.Shipments)
					refinement.Model.Shipments = append(refinement.Model.Shipments, local)
					shipmentIndexByOriginal[originalIndex] = shipmentIndex
				}
				hint.Visits = append(hint.Visits, cfrjson.InjectedVisit{ShipmentIndex: shipmentIndex, IsPickup: v.IsPickup})
			}

			if roundPos < len(run.LocalRouteIndices)-1 {
				appendBarrier(refinement, &barrier, vehicleIndex, &hint)
			}
		}
		// Trailing barrier: gives the solver room to add one more round.
		appendBarrier(refinement, &barrier, vehicleIndex, &hint)

		refinement.InjectedFirstSolutionRoutes = append(refinement.InjectedFirstSolutionRoutes, hint)
	}

	refinement.Model.TransitionAttributes = tagManager.LocalRefinementTransitionAttributes()
	return refinement, allRuns, nil
}

func appendBarrier(refinement *cfrjson.OptimizeToursRequest, barrier *cfrjson.Shipment, vehicleIndex int, hint *cfrjson.InjectedRoute) {
	b := *barrier
	b.AllowedVehicleIndices = []int{vehicleIndex}
	shipmentIndex := len(refinement.Model.Shipments)
	refinement.Model.Shipments = append(refinement.Model.Shipments, b)
	hint.Visits = append(hint.Visits, cfrjson.InjectedVisit{ShipmentIndex: shipmentIndex, IsPickup: true})
	hint.Visits = append(hint.Visits, cfrjson.InjectedVisit{ShipmentIndex: shipmentIndex, IsPickup: false})
}
