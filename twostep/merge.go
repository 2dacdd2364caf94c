package twostep

import (
	"fmt"

	"example.com/your_project/two-step-routing/cfrjson"
)

// MergeInput bundles everything MergeLocalAndGlobalResult needs: the
// original request, the local and global requests/responses that were
// produced from it, and the parking bookkeeping used to build them.
type MergeInput struct {
	Base           *cfrjson.OptimizeToursRequest
	LocalRequest   *cfrjson.OptimizeToursRequest
	LocalResponse  *cfrjson.OptimizeToursResponse
	GlobalResponse *cfrjson.OptimizeToursResponse
	Registry       *Registry
	TagManager     *TransitionAttributeManager
	Options        Options
}

// arrivalLabel / departureLabel build the wire-protocol labels of the
// synthetic shipments bracketing a parking visit in the merged route.
func arrivalLabel(tag ParkingTag) string   { return tag + " arrival" }
func departureLabel(tag ParkingTag) string { return tag + " departure" }

// MergeLocalAndGlobalResult weaves the local (walking) routes into the
// global (driving) routes (SPEC_FULL §4.4), producing one merged
// request/response pair that stands on its own: every shipment in the
// original model is either on exactly one merged route or in the merged
// response's skipped list.
func MergeLocalAndGlobalResult(in MergeInput) (*cfrjson.OptimizeToursRequest, *cfrjson.OptimizeToursResponse, error) {
	model := &in.Base.Model

	merged := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime: model.GlobalStartTime,
			GlobalEndTime:   model.GlobalEndTime,
			Vehicles:        model.Vehicles,
			Shipments:       append([]cfrjson.Shipment(nil), model.Shipments...),
		},
	}
	CopySharedOptions(in.Base, merged)

	response := &cfrjson.OptimizeToursResponse{}

	// Every occurrence of an arrival/departure event gets its own merged
	// shipment (never deduplicated by label): the same parking is visited by
	// different rounds with different unload/load phase durations, so the
	// visit request's duration cannot be shared across occurrences.
	addSynthetic := func(label string, waypoint cfrjson.Waypoint, duration cfrjson.Duration) int {
		idx := len(merged.Model.Shipments)
		merged.Model.Shipments = append(merged.Model.Shipments, cfrjson.Shipment{
			Label:      label,
			Deliveries: []cfrjson.VisitRequest{{ArrivalWaypoint: &waypoint, Duration: duration}},
		})
		return idx
	}

	for _, globalRoute := range in.GlobalResponse.Routes {
		mergedRoute := cfrjson.ShipmentRoute{
			VehicleIndex:     globalRoute.VehicleIndex,
			VehicleLabel:     globalRoute.VehicleLabel,
			VehicleStartTime: globalRoute.VehicleStartTime,
			VehicleEndTime:   globalRoute.VehicleEndTime,
			Breaks:           globalRoute.Breaks,
		}

		if len(globalRoute.Visits) == 0 {
			response.Routes = append(response.Routes, mergedRoute)
			continue
		}

		for visitIndex := range globalRoute.Visits {
			gv := &globalRoute.Visits[visitIndex]
			gt := globalRoute.Transitions[visitIndex]

			kind, idx, err := ParseGlobalShipmentLabel(gv.ShipmentLabel)
			if err != nil {
				return nil, nil, fmt.Errorf("twostep: merge: %w", err)
			}

			switch kind {
			case "s":
				mergedRoute.Transitions = append(mergedRoute.Transitions, gt)
				mergedRoute.Visits = append(mergedRoute.Visits, cfrjson.Visit{
					ShipmentIndex:      idx,
					VisitRequestIndex:  gv.VisitRequestIndex,
					IsPickup:           gv.IsPickup,
					StartTime:          gv.StartTime,
					Detour:             gv.Detour,
					ShipmentLabel:      model.Shipments[idx].Label,
				})

			case "p":
				localRouteIndex := idx
				localRoute := &in.LocalResponse.Routes[localRouteIndex]
				parkingTag := GetParkingTagFromRoute(localRoute)
				parking := in.Registry.ByTag(parkingTag)
				if parking == nil {
					return nil, nil, fmt.Errorf("twostep: merge: local route %d has unrecognized parking tag %q", localRouteIndex, parkingTag)
				}
				tags := in.TagManager.GetOrCreate(parking)

				delta := gv.StartTime.Sub(localRoute.VehicleStartTime)

				leading, middle, trailing := splitRoundVisits(localRoute, in.LocalRequest.Model.Shipments, tags)

				arrivalDuration := sumVisitAndTransitionDurations(localRoute, leading, 0)
				mergedRoute.Transitions = append(mergedRoute.Transitions, gt)
				mergedRoute.Visits = append(mergedRoute.Visits, cfrjson.Visit{
					ShipmentIndex: addSynthetic(arrivalLabel(parkingTag), parking.Waypoint, arrivalDuration),
					StartTime:     gv.StartTime,
					ShipmentLabel: arrivalLabel(parkingTag),
				})

				prevEnd := gv.StartTime.Add(arrivalDuration)
				for i, vi := range middle {
					v := &localRoute.Visits[vi]
					originalIndex, err := ShipmentIndexFromVisit(v)
					if err != nil {
						return nil, nil, fmt.Errorf("twostep: merge: %w", err)
					}
					start := v.StartTime.Add(delta)
					if i == 0 && start < prevEnd {
						start = prevEnd
					}
					mergedRoute.Transitions = append(mergedRoute.Transitions, localRoute.Transitions[vi])
					mergedRoute.Visits = append(mergedRoute.Visits, cfrjson.Visit{
						ShipmentIndex:     originalIndex,
						VisitRequestIndex: 0,
						IsPickup:          v.IsPickup,
						StartTime:         start,
						Detour:            gv.Detour + v.Detour,
						ShipmentLabel:     model.Shipments[originalIndex].Label,
					})
				}

				departureDuration := sumVisitAndTransitionDurations(localRoute, trailing, 0)
				departureStart := gv.StartTime.Add(localRoute.VehicleEndTime.Sub(localRoute.VehicleStartTime)).Add(-departureDuration)
				mergedRoute.Transitions = append(mergedRoute.Transitions, cfrjson.Transition{})
				mergedRoute.Visits = append(mergedRoute.Visits, cfrjson.Visit{
					ShipmentIndex: addSynthetic(departureLabel(parkingTag), parking.Waypoint, departureDuration),
					StartTime:     departureStart,
					ShipmentLabel: departureLabel(parkingTag),
				})

			default:
				return nil, nil, fmt.Errorf("twostep: merge: unexpected shipment label kind %q", kind)
			}
		}

		lastGlobalTransition := globalRoute.Transitions[len(globalRoute.Transitions)-1]
		mergedRoute.Transitions = append(mergedRoute.Transitions, lastGlobalTransition)

		if err := cfrjson.RecomputeTransitionStartsAndDurations(&mergedRoute, merged.Model.Shipments, cfrjson.RecomputeTransitionStartsAndDurationsOptions{
			AllowNegativeWaitDuration: in.Options.AllowNegativeWaitDuration,
		}); err != nil {
			return nil, nil, fmt.Errorf("twostep: merge: route for vehicle %d: %w", globalRoute.VehicleIndex, err)
		}
		cfrjson.RecomputeRouteMetrics(&mergedRoute, merged.Model.Shipments)
		if in.Options.TravelModeInMergedTransitions {
			attachTravelModeMetadata(&mergedRoute, globalRoute.VehicleIndex, model)
		}
		if in.Base.PopulatePolylines {
			cfrjson.RecomputeTravelStepsFromTransitions(&mergedRoute)
		}

		response.Routes = append(response.Routes, mergedRoute)
	}

	skipped, err := buildMergedSkippedShipments(in)
	if err != nil {
		return nil, nil, err
	}
	response.SkippedShipments = skipped

	return merged, response, nil
}

// splitRoundVisits classifies a local route's visits into the leading run of
// parking-side visits, the middle run of customer-side visits, and the
// trailing run of parking-side visits. By construction (the anti-
// interleaving transition attributes in tags.go) a well-optimized round has
// at most one of each run; a visit that does not fit this shape (a rare
// edge case the large synthetic cost makes uneconomical) is folded into
// whichever adjacent run it borders, so no visit and no duration is ever
// silently dropped.
func splitRoundVisits(route *cfrjson.ShipmentRoute, shipments []cfrjson.Shipment, tags ParkingLocationTags) (leading, middle, trailing []int) {
	n := len(route.Visits)
	isParking := make([]bool, n)
	for i := range route.Visits {
		v := &route.Visits[i]
		shipment := &shipments[v.ShipmentIndex]
		vr := cfrjson.GetVisitRequest(shipment, v)
		isParking[i] = vr != nil && visitIsToParking(tags, vr)
	}

	start := 0
	for start < n && isParking[start] {
		leading = append(leading, start)
		start++
	}
	end := n
	for end > start && isParking[end-1] {
		end--
	}
	for i := end; i < n; i++ {
		trailing = append(trailing, i)
	}
	for i := start; i < end; i++ {
		middle = append(middle, i)
	}
	return leading, middle, trailing
}

// sumVisitAndTransitionDurations sums the visit-request durations of the
// given visit indices on route, plus the durations of the transitions
// strictly between them (so that time spent moving between two consecutive
// parking-side legs of the same round is folded into the synthetic
// arrival/departure visit rather than lost).
func sumVisitAndTransitionDurations(route *cfrjson.ShipmentRoute, indices []int, _ int) cfrjson.Duration {
	if len(indices) == 0 {
		return 0
	}
	first, last := indices[0], indices[len(indices)-1]
	// Span from the start of the first visit in the run to the start of the
	// transition right after the last one: covers every visit duration and
	// every in-between transition in the run.
	return route.Transitions[last+1].StartTime.Sub(route.Visits[first].StartTime)
}

// attachTravelModeMetadata copies each original vehicle's travel mode and
// duration multiple onto every transition of its merged route.
func attachTravelModeMetadata(route *cfrjson.ShipmentRoute, vehicleIndex int, model *cfrjson.ShipmentModel) {
	if vehicleIndex < 0 || vehicleIndex >= len(model.Vehicles) {
		return
	}
	v := &model.Vehicles[vehicleIndex]
	for i := range route.Transitions {
		route.Transitions[i].TravelMode = v.TravelMode
		route.Transitions[i].TravelDurationMultiple = v.TravelDurationMultiple
	}
}

// buildMergedSkippedShipments translates the local and global responses'
// skipped-shipment lists back into original shipment indices.
func buildMergedSkippedShipments(in MergeInput) ([]cfrjson.SkippedShipment, error) {
	var out []cfrjson.SkippedShipment
	seen := map[int]bool{}

	for _, s := range in.LocalResponse.SkippedShipments {
		originalIndex, err := shipmentIndexFromLocalLabel(s.Label)
		if err != nil {
			return nil, fmt.Errorf("twostep: merge: skipped local shipment: %w", err)
		}
		if seen[originalIndex] {
			continue
		}
		seen[originalIndex] = true
		out = append(out, cfrjson.SkippedShipment{Index: originalIndex, Label: in.Base.Model.Shipments[originalIndex].Label})
	}

	for _, s := range in.GlobalResponse.SkippedShipments {
		kind, idx, err := ParseGlobalShipmentLabel(s.Label)
		if err != nil {
			return nil, fmt.Errorf("twostep: merge: skipped global shipment: %w", err)
		}
		switch kind {
		case "s":
			if seen[idx] {
				continue
			}
			seen[idx] = true
			out = append(out, cfrjson.SkippedShipment{Index: idx, Label: in.Base.Model.Shipments[idx].Label})
		case "p":
			localRoute := &in.LocalResponse.Routes[idx]
			for _, originalIndex := range GetShipmentIndicesFromVisits(localRoute.Visits) {
				if seen[originalIndex] {
					continue
				}
				seen[originalIndex] = true
				out = append(out, cfrjson.SkippedShipment{Index: originalIndex, Label: in.Base.Model.Shipments[originalIndex].Label})
			}
		}
	}

	return out, nil
}
