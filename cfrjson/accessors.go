package cfrjson

import "sort"

// GetShipments returns model.Shipments, treating a nil model as empty.
func GetShipments(model *ShipmentModel) []Shipment {
	if model == nil {
		return nil
	}
	return model.Shipments
}

// GetVehicles returns model.Vehicles, treating a nil model as empty.
func GetVehicles(model *ShipmentModel) []Vehicle {
	if model == nil {
		return nil
	}
	return model.Vehicles
}

// GetRoutes returns response.Routes, treating a nil response as empty.
func GetRoutes(response *OptimizeToursResponse) []ShipmentRoute {
	if response == nil {
		return nil
	}
	return response.Routes
}

// GetVisits returns route.Visits.
func GetVisits(route *ShipmentRoute) []Visit {
	if route == nil {
		return nil
	}
	return route.Visits
}

// GetTransitions returns route.Transitions.
func GetTransitions(route *ShipmentRoute) []Transition {
	if route == nil {
		return nil
	}
	return route.Transitions
}

// GetVisitRequest returns the pickup or delivery visit request a Visit
// refers to within shipment.
func GetVisitRequest(shipment *Shipment, visit *Visit) *VisitRequest {
	if visit.IsPickup {
		if visit.VisitRequestIndex < len(shipment.Pickups) {
			return &shipment.Pickups[visit.VisitRequestIndex]
		}
		return nil
	}
	if visit.VisitRequestIndex < len(shipment.Deliveries) {
		return &shipment.Deliveries[visit.VisitRequestIndex]
	}
	return nil
}

// GetVisitRequestDuration is a convenience wrapper around GetVisitRequest
// that returns zero for a visit request that cannot be resolved.
func GetVisitRequestDuration(shipment *Shipment, visit *Visit) Duration {
	vr := GetVisitRequest(shipment, visit)
	if vr == nil {
		return 0
	}
	return vr.Duration
}

// GetPickupOrNone returns the shipment's single pickup visit request, or nil
// if it has none.
func GetPickupOrNone(s *Shipment) *VisitRequest {
	if len(s.Pickups) == 0 {
		return nil
	}
	return &s.Pickups[0]
}

// GetDeliveryOrNone returns the shipment's single delivery visit request, or
// nil if it has none.
func GetDeliveryOrNone(s *Shipment) *VisitRequest {
	if len(s.Deliveries) == 0 {
		return nil
	}
	return &s.Deliveries[0]
}

// GetArrivalWaypoint returns the visit request's arrival waypoint.
func GetArrivalWaypoint(vr *VisitRequest) *Waypoint {
	return vr.ArrivalWaypoint
}

// GetDepartureWaypoint returns the visit request's departure waypoint,
// falling back to the arrival waypoint when no distinct departure waypoint
// was set.
func GetDepartureWaypoint(vr *VisitRequest) *Waypoint {
	if vr.DepartureWaypoint != nil {
		return vr.DepartureWaypoint
	}
	return vr.ArrivalWaypoint
}

// HasDifferentArrivalAndDepartureWaypoints reports whether vr has a distinct
// departure waypoint.
func HasDifferentArrivalAndDepartureWaypoints(vr *VisitRequest) bool {
	return vr.DepartureWaypoint != nil
}

// GetGlobalStartTime returns the model's global start time.
func GetGlobalStartTime(model *ShipmentModel) Timestamp { return model.GlobalStartTime }

// GetGlobalEndTime returns the model's global end time.
func GetGlobalEndTime(model *ShipmentModel) Timestamp { return model.GlobalEndTime }

// GetTimeWindowsStart returns tw.StartTime, or fallback if tw has none.
func GetTimeWindowsStart(tw TimeWindow, fallback Timestamp) Timestamp {
	if tw.StartTime != nil {
		return *tw.StartTime
	}
	return fallback
}

// GetTimeWindowsEnd returns tw.EndTime, or fallback if tw has none.
func GetTimeWindowsEnd(tw TimeWindow, fallback Timestamp) Timestamp {
	if tw.EndTime != nil {
		return *tw.EndTime
	}
	return fallback
}

// GetAllVisitTags returns the deduplicated set of every tag used anywhere in
// model: on any shipment's pickup/delivery visit requests, and on any
// vehicle's start/end tags.
func GetAllVisitTags(model *ShipmentModel) map[string]bool {
	tags := map[string]bool{}
	for _, s := range model.Shipments {
		for _, vr := range s.Pickups {
			for _, t := range vr.Tags {
				tags[t] = true
			}
		}
		for _, vr := range s.Deliveries {
			for _, t := range vr.Tags {
				tags[t] = true
			}
		}
	}
	for _, v := range model.Vehicles {
		for _, t := range v.StartTags {
			tags[t] = true
		}
		for _, t := range v.EndTags {
			tags[t] = true
		}
	}
	return tags
}

// GetShipmentLoadDemand returns the amount of unit demanded by s, or 0.
func GetShipmentLoadDemand(s *Shipment, unit string) int64 {
	if s.LoadDemands == nil {
		return 0
	}
	return s.LoadDemands[unit]
}

// CombinedLoadDemands sums the load demands of shipments, unit by unit.
// Returns nil if none of the shipments declare any load demand.
func CombinedLoadDemands(shipments []*Shipment) Load {
	var combined Load
	for _, s := range shipments {
		for unit, amount := range s.LoadDemands {
			if combined == nil {
				combined = Load{}
			}
			combined[unit] += amount
		}
	}
	return combined
}

// CombinedPenaltyCost sums the penalty costs of shipments. Returns nil
// (meaning: mandatory) if any shipment has no penalty cost.
func CombinedPenaltyCost(shipments []*Shipment) *float64 {
	var total float64
	for _, s := range shipments {
		if s.PenaltyCost == nil {
			return nil
		}
		total += *s.PenaltyCost
	}
	return &total
}

// CombinedAllowedVehicleIndices intersects the allowed-vehicle sets of
// shipments. Returns nil (meaning: unconstrained) if every shipment is
// unconstrained.
func CombinedAllowedVehicleIndices(shipments []*Shipment) []int {
	var result map[int]bool
	anyConstrained := false
	for _, s := range shipments {
		if len(s.AllowedVehicleIndices) == 0 {
			continue
		}
		anyConstrained = true
		allowed := map[int]bool{}
		for _, idx := range s.AllowedVehicleIndices {
			allowed[idx] = true
		}
		if result == nil {
			result = allowed
			continue
		}
		for idx := range result {
			if !allowed[idx] {
				delete(result, idx)
			}
		}
	}
	if !anyConstrained {
		return nil
	}
	out := make([]int, 0, len(result))
	for idx := range result {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// CombinedCostsPerVehicle merges the sparse per-vehicle cost overrides of
// shipments by summing the costs for any vehicle index that appears in at
// least one shipment. Returns (nil, nil) if no shipment declares any
// per-vehicle cost.
func CombinedCostsPerVehicle(shipments []*Shipment) ([]int, []float64) {
	costs := map[int]float64{}
	any := false
	for _, s := range shipments {
		for i, idx := range s.CostsPerVehicleIndices {
			any = true
			costs[idx] += s.CostsPerVehicle[i]
		}
	}
	if !any {
		return nil, nil
	}
	indices := make([]int, 0, len(costs))
	for idx := range costs {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = costs[idx]
	}
	return indices, values
}

// GetPerformedShipmentsFromRoutes returns one set, taken over all routes, of
// the shipment indices with at least one visit on any of them.
func GetPerformedShipmentsFromRoutes(routes []ShipmentRoute) map[int]bool {
	performed := map[int]bool{}
	for _, route := range routes {
		for _, v := range route.Visits {
			performed[v.ShipmentIndex] = true
		}
	}
	return performed
}

// GetSkippedShipmentsFromRoutes returns the set of shipment indices recorded
// in response.SkippedShipments.
func GetSkippedShipmentsFromRoutes(response *OptimizeToursResponse) map[int]bool {
	skipped := map[int]bool{}
	for _, s := range response.SkippedShipments {
		skipped[s.Index] = true
	}
	return skipped
}

// ValidateIndicesInRoutes checks that every visit in every route refers to a
// shipment index within [0, numShipments) and a visit request index valid
// for that shipment's pickup/delivery list.
func ValidateIndicesInRoutes(shipments []Shipment, routes []ShipmentRoute) error {
	for ri, route := range routes {
		for vi, v := range route.Visits {
			if v.ShipmentIndex < 0 || v.ShipmentIndex >= len(shipments) {
				return &IndexError{Route: ri, Visit: vi, Detail: "shipment index out of range"}
			}
			s := &shipments[v.ShipmentIndex]
			n := len(s.Deliveries)
			if v.IsPickup {
				n = len(s.Pickups)
			}
			if v.VisitRequestIndex < 0 || v.VisitRequestIndex >= n {
				return &IndexError{Route: ri, Visit: vi, Detail: "visit request index out of range"}
			}
		}
	}
	return nil
}

// IndexError is returned by ValidateIndicesInRoutes.
type IndexError struct {
	Route, Visit int
	Detail       string
}

func (e *IndexError) Error() string {
	return "cfrjson: invalid route: " + e.Detail
}
