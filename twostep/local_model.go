package twostep

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"example.com/your_project/two-step-routing/cfrjson"
)

// localShipmentLabel builds the wire-protocol label of a local shipment:
// "<original-shipment-index>: <original-label>".
func localShipmentLabel(originalIndex int, originalLabel string) string {
	return fmt.Sprintf("%d: %s", originalIndex, originalLabel)
}

var localShipmentLabelPattern = regexp.MustCompile(`^(\d+): `)

// shipmentIndexFromLocalLabel parses the leading "<index>: " prefix off a
// local shipment label and returns the original shipment index.
func shipmentIndexFromLocalLabel(label string) (int, error) {
	m := localShipmentLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("twostep: invalid local shipment label: %q", label)
	}
	return strconv.Atoi(m[1])
}

// ShipmentIndexFromVisit returns the original shipment index a local visit
// refers to, by parsing its shipment label.
func ShipmentIndexFromVisit(v *cfrjson.Visit) (int, error) {
	return shipmentIndexFromLocalLabel(v.ShipmentLabel)
}

// GetShipmentIndicesFromVisits returns, for each visit whose shipment label
// parses as a local shipment label, the original shipment index it refers
// to, deduplicated and in the order first seen.
func GetShipmentIndicesFromVisits(visits []cfrjson.Visit) []int {
	seen := map[int]bool{}
	var out []int
	for i := range visits {
		idx, err := ShipmentIndexFromVisit(&visits[i])
		if err != nil {
			continue
		}
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// visitIsToParking reports whether visit's visit request is the
// parking-side leg of a local pickup-and-delivery shipment (tagged
// load-to-vehicle or unload-from-vehicle), as opposed to the customer-side
// leg.
func visitIsToParking(tags ParkingLocationTags, vr *cfrjson.VisitRequest) bool {
	for _, t := range vr.Tags {
		if t == tags.LocalLoadToVehicleTag || t == tags.LocalUnloadFromVehicleTag {
			return true
		}
	}
	return false
}

// makeShipment builds the local pickup-and-delivery shipment for one
// original shipment served via parking. An original shipment with a single
// pickup becomes (pickup at the customer, delivery at the parking); one
// with a single delivery becomes (pickup at the parking, delivery at the
// customer).
func makeShipment(originalIndex int, original *cfrjson.Shipment, parking *ParkingLocation, tags ParkingLocationTags) (cfrjson.Shipment, error) {
	local := cfrjson.Shipment{
		Label:       localShipmentLabel(originalIndex, original.Label),
		LoadDemands: original.LoadDemands,
	}

	parkingWaypoint := parking.WaypointForLocalModel()

	if customer := cfrjson.GetPickupOrNone(original); customer != nil {
		customerVR := *customer
		customerVR.Tags = append(append([]string(nil), customerVR.Tags...), tags.LocalVisitTag)
		local.Pickups = []cfrjson.VisitRequest{customerVR}
		local.Deliveries = []cfrjson.VisitRequest{{
			ArrivalWaypoint: &parkingWaypoint,
			Duration:        parking.UnloadDurationPerItem,
			Tags:            []string{tags.LocalUnloadFromVehicleTag},
		}}
		return local, nil
	}

	if customer := cfrjson.GetDeliveryOrNone(original); customer != nil {
		customerVR := *customer
		customerVR.Tags = append(append([]string(nil), customerVR.Tags...), tags.LocalVisitTag)
		local.Pickups = []cfrjson.VisitRequest{{
			ArrivalWaypoint: &parkingWaypoint,
			Duration:        parking.LoadDurationPerItem,
			Tags:            []string{tags.LocalLoadToVehicleTag},
		}}
		local.Deliveries = []cfrjson.VisitRequest{customerVR}
		return local, nil
	}

	return cfrjson.Shipment{}, fmt.Errorf("twostep: shipment %d (%q) has neither a pickup nor a delivery", originalIndex, original.Label)
}

// formatTimeWindowForLabel renders a single time window compactly for
// inclusion in a vehicle label.
func formatTimeWindowForLabel(tw cfrjson.TimeWindow) string {
	return fmt.Sprintf("%s-%s", optionalTimestamp(tw.StartTime), optionalTimestamp(tw.EndTime))
}

// makeVehicleLabel builds the wire-protocol label of a local vehicle:
// "<tag> [time_windows=... vehicles=... penalty_cost=...]".
func makeVehicleLabel(key GroupKey) string {
	return fmt.Sprintf("%s [time_windows=%s vehicles=%s penalty_cost=%s]",
		key.ParkingTag, key.TimeWindows, key.AllowedVehicleIndices, key.PenaltyCostGroup)
}

// makeVehicle builds one local (on-foot) vehicle rooted at parking.
func makeVehicle(options Options, parking *ParkingLocation, tags ParkingLocationTags, label string) cfrjson.Vehicle {
	waypoint := parking.WaypointForLocalModel()
	v := cfrjson.Vehicle{
		Label:                  label,
		StartWaypoint:          &waypoint,
		EndWaypoint:            &waypoint,
		TravelMode:             parking.TravelMode,
		TravelDurationMultiple: orDefault(parking.TravelDurationMultiple, 1.0),
		FixedCost:              options.LocalModelVehicleFixedCost,
		CostPerHour:            options.LocalModelVehiclePerHourCost,
		CostPerKilometer:       options.LocalModelVehiclePerKmCost,
		StartTags:              []string{tags.LocalLoadToVehicleTag},
		EndTags:                []string{tags.LocalUnloadFromVehicleTag},
	}
	if parking.AvoidIndoor {
		v.RouteModifiers = &cfrjson.RouteModifiers{AvoidIndoor: true}
	}
	if parking.MaxRoundDuration != 0 {
		v.RouteDurationLimit = &cfrjson.RouteDurationLimit{MaxDuration: parking.MaxRoundDuration}
	}
	if len(parking.DeliveryLoadLimits) > 0 {
		v.LoadLimits = map[string]cfrjson.LoadLimit{}
		for unit, amount := range parking.DeliveryLoadLimits {
			max := amount
			v.LoadLimits[unit] = cfrjson.LoadLimit{
				MaxLoad:             &max,
				CostPerKilometer:    parking.CostPerLoadUnitPerKilometer,
				CostPerTraveledHour: parking.CostPerLoadUnitPerTraveledHour,
			}
		}
	}
	return v
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// interval is a closed [Start, End] span of Timestamps.
type interval struct {
	Start, End cfrjson.Timestamp
}

// intersectIntervals intersects two sorted, disjoint sets of intervals by a
// linear merge, returning the (sorted, disjoint) result.
func intersectIntervals(a, b []interval) []interval {
	var out []interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo := maxTS(a[i].Start, b[j].Start)
		hi := minTS(a[i].End, b[j].End)
		if lo <= hi {
			out = append(out, interval{Start: lo, End: hi})
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

func maxTS(a, b cfrjson.Timestamp) cfrjson.Timestamp {
	if a > b {
		return a
	}
	return b
}

func minTS(a, b cfrjson.Timestamp) cfrjson.Timestamp {
	if a < b {
		return a
	}
	return b
}

// GetRouteStartTimeWindows implements the start-time-window intersection
// algorithm (SPEC_FULL §4.3): it computes the tightest set of time windows
// the global virtual shipment for this local route can carry, such that any
// feasible start time for the route still respects every customer-side
// visit's own time windows once they are translated back to "route start"
// coordinates.
//
// Returns (nil, nil) if the result equals the full global horizon (i.e. no
// time window needs to be emitted at all). Returns an error if the
// intersection is empty, meaning the local route as solved cannot start at
// any single time and still satisfy every visit's time windows — a bug in
// an earlier phase.
func GetRouteStartTimeWindows(model *cfrjson.ShipmentModel, shipments []cfrjson.Shipment, tagsByParking map[ParkingTag]ParkingLocationTags, parkingTag ParkingTag, route *cfrjson.ShipmentRoute) ([]cfrjson.TimeWindow, error) {
	globalStart := model.GlobalStartTime
	globalEnd := model.GlobalEndTime
	candidates := []interval{{Start: globalStart, End: globalEnd}}

	tags := tagsByParking[parkingTag]
	routeStart := route.VehicleStartTime

	for i := range route.Visits {
		v := &route.Visits[i]
		shipment := &shipments[v.ShipmentIndex]
		vr := cfrjson.GetVisitRequest(shipment, v)
		if vr == nil || visitIsToParking(tags, vr) {
			continue
		}
		offset := v.StartTime.Sub(routeStart)
		var windows []interval
		if len(vr.TimeWindows) == 0 {
			windows = []interval{{Start: globalStart, End: globalEnd}}
		}
		for _, tw := range vr.TimeWindows {
			start := cfrjson.GetTimeWindowsStart(tw, globalStart).Add(-offset)
			end := cfrjson.GetTimeWindowsEnd(tw, globalEnd).Add(-offset)
			if start < globalStart {
				start = globalStart
			}
			if end > globalEnd {
				end = globalEnd
			}
			if start <= end {
				windows = append(windows, interval{Start: start, End: end})
			}
		}
		sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
		candidates = intersectIntervals(candidates, windows)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("twostep: empty start time window intersection for local route at parking %q", parkingTag)
		}
	}

	if len(candidates) == 1 && candidates[0].Start == globalStart && candidates[0].End == globalEnd {
		return nil, nil
	}

	out := make([]cfrjson.TimeWindow, 0, len(candidates))
	for _, c := range candidates {
		tw := cfrjson.TimeWindow{}
		if c.Start != globalStart {
			start := c.Start
			tw.StartTime = &start
		}
		if c.End != globalEnd {
			end := c.End
			tw.EndTime = &end
		}
		out = append(out, tw)
	}
	return out, nil
}

// RemoveWaitTimeFromUnloadTransitions shifts wait time away from the
// transition leading into each unload-from-vehicle visit (every visit whose
// visit request carries the parking's unload tag) toward the arrival
// itself, by moving that transition's start later, so the driver is modeled as
// arriving and immediately beginning deliveries rather than arriving early
// and waiting at the parking before starting. It mutates route in place.
func RemoveWaitTimeFromUnloadTransitions(route *cfrjson.ShipmentRoute, shipments []cfrjson.Shipment, tags ParkingLocationTags) {
	for i := range route.Visits {
		v := &route.Visits[i]
		shipment := &shipments[v.ShipmentIndex]
		vr := cfrjson.GetVisitRequest(shipment, v)
		if vr == nil {
			continue
		}
		isUnload := false
		for _, t := range vr.Tags {
			if t == tags.LocalUnloadFromVehicleTag {
				isUnload = true
				break
			}
		}
		if !isUnload {
			continue
		}
		t := &route.Transitions[i]
		if t.WaitDuration <= 0 {
			continue
		}
		wait := t.WaitDuration
		t.WaitDuration = 0
		t.TotalDuration -= wait
		t.StartTime = t.StartTime.Add(wait)
	}
}

// GetParkingTagFromRoute recovers the parking tag a local route belongs to
// by parsing its vehicle label, which has the form "<tag> [<suffix>".
func GetParkingTagFromRoute(route *cfrjson.ShipmentRoute) ParkingTag {
	return cfrjson.GetParkingTagFromLabel(route.VehicleLabel)
}
