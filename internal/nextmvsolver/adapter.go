// Package nextmvsolver translates one cfrjson.OptimizeToursRequest that
// already describes a single-vehicle pickup-and-delivery problem into a
// github.com/nextmv-io/sdk/route router, the
// same package every Nextmv template in the retrieval pack builds its
// routing engine on.
//
// Scope is intentionally bounded to what route.Router actually models:
// stops, vehicle starts/ends, travel velocities, service durations, time
// windows, load capacities, and pickup/delivery precedence. Transition-
// attribute rules (the arrival/departure/reload costs and the anti-
// interleaving forbids from twostep.TransitionAttributeManager) and break
// rules have no corresponding route.Router option and are rejected rather
// than silently solved wrong.
//
// This package only builds the router; running it and serializing the
// result follows the run.Run(solver) idiom every template in the pack
// uses (see cmd/twostep-router), since no in-process, synchronous
// solution-extraction call was present anywhere in the retrieval pack to
// ground a twostep.Solver adapter against. The in-process Planner pipeline
// is solver-agnostic (see twostep.Solver) and is exercised in tests against
// internal/solvertest instead.
package nextmvsolver

import (
	"fmt"

	"github.com/nextmv-io/sdk/measure"
	"github.com/nextmv-io/sdk/route"

	"example.com/your_project/two-step-routing/cfrjson"
)

// BuildRouter translates req into a route.Router. req must describe a
// single-vehicle pickup-and-delivery problem with no transition attributes
// and no break rule. The twostep local and local-refinement model builders
// always attach transition attributes, so their requests are rejected here.
func BuildRouter(req *cfrjson.OptimizeToursRequest) (route.Router, error) {
	if len(req.Model.TransitionAttributes) > 0 {
		return nil, fmt.Errorf("nextmvsolver: transition attributes are not supported")
	}
	if len(req.Model.Vehicles) != 1 {
		return nil, fmt.Errorf("nextmvsolver: exactly one vehicle is supported, got %d", len(req.Model.Vehicles))
	}
	if req.Model.Vehicles[0].BreakRule != nil {
		return nil, fmt.Errorf("nextmvsolver: break rules are not supported")
	}

	var stops []route.Stop
	var points []measure.Point
	var windows []route.Window
	var services []route.Service
	var quantities []int

	addStop := func(shipmentIndex int, isPickup bool, vr *cfrjson.VisitRequest) {
		if vr == nil || vr.ArrivalWaypoint == nil || vr.ArrivalWaypoint.Location == nil {
			return
		}
		id := fmt.Sprintf("%d/%v", shipmentIndex, isPickup)
		pos := route.Position{Lon: vr.ArrivalWaypoint.Location.LatLng.Longitude, Lat: vr.ArrivalWaypoint.Location.LatLng.Latitude}
		stops = append(stops, route.Stop{ID: id, Position: pos})
		points = append(points, measure.Point{pos.Lon, pos.Lat})
		services = append(services, route.Service{ID: id, Duration: int(vr.Duration.Seconds())})

		var window route.Window
		if len(vr.TimeWindows) > 0 {
			tw := vr.TimeWindows[0]
			window = route.Window{TimeWindow: route.TimeWindow{
				Start: cfrjson.GetTimeWindowsStart(tw, req.Model.GlobalStartTime).Time(),
				End:   cfrjson.GetTimeWindowsEnd(tw, req.Model.GlobalEndTime).Time(),
			}}
		}
		windows = append(windows, window)

		var total int64
		for _, amount := range req.Model.Shipments[shipmentIndex].LoadDemands {
			total += amount
		}
		if isPickup {
			quantities = append(quantities, int(total))
		} else {
			quantities = append(quantities, -int(total))
		}
	}

	var precedences []route.Job
	for shipmentIndex := range req.Model.Shipments {
		s := &req.Model.Shipments[shipmentIndex]
		if len(s.Pickups) == 1 {
			addStop(shipmentIndex, true, &s.Pickups[0])
		}
		if len(s.Deliveries) == 1 {
			addStop(shipmentIndex, false, &s.Deliveries[0])
		}
		if len(s.Pickups) == 1 && len(s.Deliveries) == 1 {
			precedences = append(precedences, route.Job{
				PickUp:  fmt.Sprintf("%d/%v", shipmentIndex, true),
				DropOff: fmt.Sprintf("%d/%v", shipmentIndex, false),
			})
		}
	}

	vehicle := &req.Model.Vehicles[0]
	if vehicle.StartWaypoint == nil || vehicle.StartWaypoint.Location == nil {
		return nil, fmt.Errorf("nextmvsolver: vehicle must have a start waypoint with a location")
	}
	start := route.Position{Lon: vehicle.StartWaypoint.Location.LatLng.Longitude, Lat: vehicle.StartWaypoint.Location.LatLng.Latitude}
	end := start
	if vehicle.EndWaypoint != nil && vehicle.EndWaypoint.Location != nil {
		end = route.Position{Lon: vehicle.EndWaypoint.Location.LatLng.Longitude, Lat: vehicle.EndWaypoint.Location.LatLng.Latitude}
	}

	speed := vehicle.TravelDurationMultiple
	if speed <= 0 {
		speed = 1
	}
	distanceIndexed := route.Indexed(measure.HaversineByPoint(), points)
	duration := measure.Scale(distanceIndexed, speed)

	opts := []route.Option{
		route.Starts([]route.Position{start}),
		route.Ends([]route.Position{end}),
		route.Services(services),
		route.Windows(windows),
		route.TravelTimeMeasures([]route.ByIndex{duration}),
		route.ValueFunctionMeasures([]route.ByIndex{duration}),
	}
	if max, ok := maxLoad(vehicle); ok {
		opts = append(opts, route.Capacity(quantities, []int{max}))
	}
	if len(precedences) > 0 {
		opts = append(opts, route.Precedence(precedences))
	}

	router, err := route.NewRouter(stops, []string{vehicle.Label}, opts...)
	if err != nil {
		return nil, fmt.Errorf("nextmvsolver: %w", err)
	}
	return router, nil
}

func maxLoad(v *cfrjson.Vehicle) (int, bool) {
	for _, limit := range v.LoadLimits {
		if limit.MaxLoad != nil {
			return int(*limit.MaxLoad), true
		}
	}
	return 0, false
}
