package twostep

import (
	"context"
	"testing"
	"time"

	"example.com/your_project/two-step-routing/cfrjson"
	"example.com/your_project/two-step-routing/internal/solvertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlannerRejectsInvalidParkingAssignment(t *testing.T) {
	base := newTestBase()
	_, err := NewPlanner(base, []ParkingLocation{{Tag: "p1"}}, ParkingForShipment{0: "no-such-tag"}, DefaultOptions())
	assert.Error(t, err)
}

func TestNewPlannerRejectsMultiVisitParkingShipment(t *testing.T) {
	base := newTestBase()
	base.Model.Shipments[0].Pickups = []cfrjson.VisitRequest{{}} // now has both a pickup and a delivery
	_, err := NewPlanner(base, []ParkingLocation{{Tag: "p1"}}, ParkingForShipment{0: "p1"}, DefaultOptions())
	assert.Error(t, err)
}

// TestPlannerPlanEndToEnd drives Planner.Plan through one parking-served
// shipment and one direct shipment, with no refinement candidate (a single
// round at the parking never forms a run of length >= 2). The mock solver
// responders build their routes directly from the request they receive, so
// the test stays correct even if builder internals (label formats, vehicle
// ordering) change.
func TestPlannerPlanEndToEnd(t *testing.T) {
	start := cfrjson.TimestampFromTime(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	base := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime: start,
			GlobalEndTime:   start.Add(cfrjson.DurationFromSeconds(4 * 3600)),
			Vehicles:        []cfrjson.Vehicle{{Label: "driver"}},
			Shipments: []cfrjson.Shipment{
				{Label: "parked", Deliveries: []cfrjson.VisitRequest{{}}},
				{Label: "direct", Deliveries: []cfrjson.VisitRequest{{Duration: cfrjson.DurationFromSeconds(90)}}},
			},
		},
	}

	planner, err := NewPlanner(base, []ParkingLocation{{Tag: "p1", LoadDurationPerItem: cfrjson.DurationFromSeconds(30)}}, ParkingForShipment{0: "p1"}, DefaultOptions())
	require.NoError(t, err)

	localResponder := func(req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error) {
		require.Len(t, req.Model.Vehicles, 1)
		require.Len(t, req.Model.Shipments, 1)
		s := start
		route := cfrjson.ShipmentRoute{
			VehicleIndex:     0,
			VehicleLabel:     req.Model.Vehicles[0].Label,
			VehicleStartTime: s,
			VehicleEndTime:   s.Add(cfrjson.DurationFromSeconds(80)),
			Visits: []cfrjson.Visit{
				{ShipmentIndex: 0, IsPickup: true, StartTime: s, ShipmentLabel: req.Model.Shipments[0].Label},
				{ShipmentIndex: 0, IsPickup: false, StartTime: s.Add(cfrjson.DurationFromSeconds(80)), ShipmentLabel: req.Model.Shipments[0].Label},
			},
			Transitions: []cfrjson.Transition{
				{StartTime: s},
				{StartTime: s.Add(cfrjson.DurationFromSeconds(30)), TravelDuration: cfrjson.DurationFromSeconds(50)},
				{StartTime: s.Add(cfrjson.DurationFromSeconds(80))},
			},
			Metrics: cfrjson.Metrics{TotalDuration: cfrjson.DurationFromSeconds(80)},
		}
		return &cfrjson.OptimizeToursResponse{Routes: []cfrjson.ShipmentRoute{route}}, nil
	}

	globalResponder := func(req *cfrjson.OptimizeToursRequest) (*cfrjson.OptimizeToursResponse, error) {
		require.Len(t, req.Model.Shipments, 2)
		s := start
		route := cfrjson.ShipmentRoute{
			VehicleIndex:     0,
			VehicleLabel:     req.Model.Vehicles[0].Label,
			VehicleStartTime: s,
			VehicleEndTime:   s.Add(cfrjson.DurationFromSeconds(310)),
			Visits: []cfrjson.Visit{
				{ShipmentIndex: 0, StartTime: s.Add(cfrjson.DurationFromSeconds(100)), ShipmentLabel: req.Model.Shipments[0].Label},
				{ShipmentIndex: 1, StartTime: s.Add(cfrjson.DurationFromSeconds(230)), ShipmentLabel: req.Model.Shipments[1].Label},
			},
			Transitions: []cfrjson.Transition{
				{StartTime: s, TravelDuration: cfrjson.DurationFromSeconds(100)},
				{StartTime: s.Add(cfrjson.DurationFromSeconds(190)), TravelDuration: cfrjson.DurationFromSeconds(40)},
				{StartTime: s.Add(cfrjson.DurationFromSeconds(310))},
			},
		}
		return &cfrjson.OptimizeToursResponse{Routes: []cfrjson.ShipmentRoute{route}}, nil
	}

	mock := solvertest.NewMock(localResponder, globalResponder)

	result, err := planner.Plan(context.Background(), mock)
	require.NoError(t, err)
	assert.False(t, result.Refined, "a single round at one parking is never a refinement candidate")

	require.Len(t, mock.Calls(), 2, "no refinement call should have been made")

	require.Len(t, result.MergedResponse.Routes, 1)
	route := result.MergedResponse.Routes[0]
	require.Len(t, route.Visits, 4)

	labels := make([]string, len(route.Visits))
	for i, v := range route.Visits {
		labels[i] = v.ShipmentLabel
	}
	assert.Equal(t, []string{"direct", "p1 arrival", "parked", "p1 departure"}, labels)
	assert.Equal(t, start.Add(cfrjson.DurationFromSeconds(310)), route.VehicleEndTime)
	assert.Empty(t, result.MergedResponse.SkippedShipments)
}
