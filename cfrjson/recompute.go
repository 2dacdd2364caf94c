package cfrjson

import "strings"

// RecomputeTransitionStartsAndDurationsOptions configures
// RecomputeTransitionStartsAndDurations.
type RecomputeTransitionStartsAndDurationsOptions struct {
	// AllowNegativeWaitDuration permits a transition's wait duration to come
	// out negative, which otherwise indicates a bug: it happens legitimately
	// only when the upstream route was solved under road traffic and the
	// solver's own breakdown of a transition can disagree slightly with the
	// visit start times once everything is reconciled in a single model.
	AllowNegativeWaitDuration bool
}

// RecomputeTransitionStartsAndDurations recomputes, in place, the start time
// and wait/total duration of every transition in route from its visits'
// start times and the transition's travel/break/delay durations (which are
// assumed already correct). It is the Go analogue of the reference
// implementation's eponymous helper, used after splicing visits from one
// route into another.
func RecomputeTransitionStartsAndDurations(route *ShipmentRoute, shipments []Shipment, opts RecomputeTransitionStartsAndDurationsOptions) error {
	visits := route.Visits
	transitions := route.Transitions
	if len(transitions) != len(visits)+1 {
		return &InvariantError{Detail: "len(transitions) must equal len(visits)+1"}
	}
	cursor := route.VehicleStartTime
	for i := range transitions {
		t := &transitions[i]
		t.StartTime = cursor
		nonWait := t.TravelDuration + t.BreakDuration + t.DelayDuration
		var visitStart Timestamp
		if i < len(visits) {
			visitStart = visits[i].StartTime
		} else {
			visitStart = route.VehicleEndTime
		}
		wait := visitStart.Sub(cursor) - nonWait
		if wait < 0 && !opts.AllowNegativeWaitDuration {
			return &InvariantError{Detail: "negative wait duration computed without AllowNegativeWaitDuration"}
		}
		t.WaitDuration = wait
		t.TotalDuration = nonWait + wait
		if i < len(visits) {
			shipment := &shipments[visits[i].ShipmentIndex]
			cursor = visitStart.Add(GetVisitRequestDuration(shipment, &visits[i]))
		}
	}
	return nil
}

// InvariantError signals a broken route invariant (mismatched
// transitions/visits counts, a negative duration where none is allowed).
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string { return "cfrjson: invariant violated: " + e.Detail }

// UpdateRouteStartEndTimeFromTransitions sets route.VehicleStartTime and
// route.VehicleEndTime from the first and last transition, optionally
// stripping a trailing delay from the end time (used by the refinement
// integrator when a route's final transition absorbed an inter-round
// reload delay that is no longer part of this round).
func UpdateRouteStartEndTimeFromTransitions(route *ShipmentRoute, removeDelayAtEnd bool) {
	if len(route.Transitions) == 0 {
		return
	}
	route.VehicleStartTime = route.Transitions[0].StartTime
	last := route.Transitions[len(route.Transitions)-1]
	end := last.StartTime.Add(last.TotalDuration)
	if removeDelayAtEnd {
		end = end.Add(-last.DelayDuration)
	}
	route.VehicleEndTime = end
}

// RecomputeRouteMetrics recomputes route.Metrics from its visits and
// transitions. It does not change route.VehicleStartTime or
// route.VehicleEndTime.
func RecomputeRouteMetrics(route *ShipmentRoute, shipments []Shipment) {
	var m Metrics
	m.PerformedShipmentCount = len(route.Visits)
	for _, t := range route.Transitions {
		m.TravelDuration += t.TravelDuration
		m.WaitDuration += t.WaitDuration
		m.BreakDuration += t.BreakDuration
		m.DelayDuration += t.DelayDuration
		m.TravelDistanceMeters += t.TravelDistanceMeters
	}
	for i := range route.Visits {
		v := &route.Visits[i]
		shipment := &shipments[v.ShipmentIndex]
		m.VisitDuration += GetVisitRequestDuration(shipment, v)
	}
	m.TotalDuration = m.TravelDuration + m.WaitDuration + m.BreakDuration + m.DelayDuration + m.VisitDuration
	route.Metrics = m
}

// RecomputeTravelStepsFromTransitions recomputes route.RoutePolyline by
// concatenating every transition's RoutePolyline, when all are present.
func RecomputeTravelStepsFromTransitions(route *ShipmentRoute) {
	points := MergePolylinesFromTransitions(route.Transitions)
	if points == "" {
		return
	}
	route.RoutePolyline = &Polyline{Points: points}
}

// MergePolylinesFromTransitions decodes and re-encodes every transition's
// polyline into a single polyline for the whole route. Returns "" if no
// transition carries a polyline.
func MergePolylinesFromTransitions(transitions []Transition) string {
	var all []LatLng
	any := false
	for _, t := range transitions {
		if t.RoutePolyline == nil || t.RoutePolyline.Points == "" {
			continue
		}
		any = true
		pts := DecodePolyline(t.RoutePolyline.Points)
		if len(all) > 0 && len(pts) > 0 && all[len(all)-1] == pts[0] {
			pts = pts[1:]
		}
		all = append(all, pts...)
	}
	if !any {
		return ""
	}
	return EncodePolyline(all)
}

// GetNumDecreasingVisitTimes counts how many consecutive visit pairs on
// route have a non-increasing start time, a cheap self-consistency check
// used in tests.
func GetNumDecreasingVisitTimes(route *ShipmentRoute) int {
	count := 0
	for i := 1; i < len(route.Visits); i++ {
		if route.Visits[i].StartTime <= route.Visits[i-1].StartTime {
			count++
		}
	}
	return count
}

// GetParkingTagFromLabel parses a vehicle/route label of the form
// "<tag> [<suffix>" and returns <tag>. Used by the local model to recover a
// parking tag from a vehicle label when only the label is available.
func GetParkingTagFromLabel(label string) string {
	if idx := strings.Index(label, " ["); idx >= 0 {
		return label[:idx]
	}
	return label
}
