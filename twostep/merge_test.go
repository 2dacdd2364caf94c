package twostep

import (
	"testing"
	"time"

	"example.com/your_project/two-step-routing/cfrjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMergeLocalAndGlobalResult walks one shipment through a parking visit
// (load at the parking, walk to the customer) alongside one direct shipment,
// and checks the merged route's shape and timing end to end. Every duration
// below is chosen so every transition's recomputed wait is exactly zero,
// so the test also doubles as a check that the merger's arithmetic lines up
// with cfrjson.RecomputeTransitionStartsAndDurations's contract.
func TestMergeLocalAndGlobalResult(t *testing.T) {
	start := cfrjson.TimestampFromTime(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	base := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime: start,
			GlobalEndTime:   start.Add(cfrjson.DurationFromSeconds(4 * 3600)),
			Vehicles:        []cfrjson.Vehicle{{Label: "driver"}},
			Shipments: []cfrjson.Shipment{
				{Label: "shipment0", Deliveries: []cfrjson.VisitRequest{{}}},                                  // parking-served
				{Label: "shipment1", Deliveries: []cfrjson.VisitRequest{{Duration: cfrjson.DurationFromSeconds(90)}}}, // direct
			},
		},
	}

	registry, err := NewRegistry(&base.Model, []ParkingLocation{{Tag: "p1", LoadDurationPerItem: cfrjson.DurationFromSeconds(30)}}, ParkingForShipment{0: "p1"})
	require.NoError(t, err)
	tagManager := NewTransitionAttributeManager(&base.Model)

	localRequest, err := BuildLocalRequest(base, registry, tagManager, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, localRequest.Model.Shipments, 1)

	localRoute := cfrjson.ShipmentRoute{
		VehicleIndex:     0,
		VehicleLabel:     localRequest.Model.Vehicles[0].Label,
		VehicleStartTime: start,
		VehicleEndTime:   start.Add(cfrjson.DurationFromSeconds(80)),
		Visits: []cfrjson.Visit{
			{ShipmentIndex: 0, IsPickup: true, StartTime: start, ShipmentLabel: localRequest.Model.Shipments[0].Label},
			{ShipmentIndex: 0, IsPickup: false, StartTime: start.Add(cfrjson.DurationFromSeconds(80)), ShipmentLabel: localRequest.Model.Shipments[0].Label},
		},
		Transitions: []cfrjson.Transition{
			{StartTime: start},
			{StartTime: start.Add(cfrjson.DurationFromSeconds(30)), TravelDuration: cfrjson.DurationFromSeconds(50)},
			{StartTime: start.Add(cfrjson.DurationFromSeconds(80))},
		},
		Metrics: cfrjson.Metrics{TotalDuration: cfrjson.DurationFromSeconds(80)},
	}
	localResponse := &cfrjson.OptimizeToursResponse{Routes: []cfrjson.ShipmentRoute{localRoute}}

	globalRequest, err := BuildGlobalRequest(base, localResponse, localRequest.Model.Shipments, registry, tagManager, DefaultOptions(), GlobalRequestOptions{})
	require.NoError(t, err)
	require.Len(t, globalRequest.Model.Shipments, 2)
	require.Equal(t, "s:1 shipment1", globalRequest.Model.Shipments[0].Label)
	require.Equal(t, "p:0 shipment0", globalRequest.Model.Shipments[1].Label)

	globalRoute := cfrjson.ShipmentRoute{
		VehicleIndex:     0,
		VehicleLabel:     "driver",
		VehicleStartTime: start,
		VehicleEndTime:   start.Add(cfrjson.DurationFromSeconds(310)),
		Visits: []cfrjson.Visit{
			{ShipmentIndex: 0, StartTime: start.Add(cfrjson.DurationFromSeconds(100)), ShipmentLabel: "s:1 shipment1"},
			{ShipmentIndex: 1, StartTime: start.Add(cfrjson.DurationFromSeconds(230)), ShipmentLabel: "p:0 shipment0"},
		},
		Transitions: []cfrjson.Transition{
			{StartTime: start, TravelDuration: cfrjson.DurationFromSeconds(100)},
			{StartTime: start.Add(cfrjson.DurationFromSeconds(190)), TravelDuration: cfrjson.DurationFromSeconds(40)},
			{StartTime: start.Add(cfrjson.DurationFromSeconds(310))},
		},
	}
	globalResponse := &cfrjson.OptimizeToursResponse{Routes: []cfrjson.ShipmentRoute{globalRoute}}

	_, mergedResponse, err := MergeLocalAndGlobalResult(MergeInput{
		Base:           base,
		LocalRequest:   localRequest,
		LocalResponse:  localResponse,
		GlobalResponse: globalResponse,
		Registry:       registry,
		TagManager:     tagManager,
		Options:        DefaultOptions(),
	})
	require.NoError(t, err)
	require.Len(t, mergedResponse.Routes, 1)

	route := mergedResponse.Routes[0]
	require.Len(t, route.Visits, 4)

	labels := make([]string, len(route.Visits))
	for i, v := range route.Visits {
		labels[i] = v.ShipmentLabel
	}
	assert.Equal(t, []string{"shipment1", "p1 arrival", "shipment0", "p1 departure"}, labels)

	// Every transition's wait should recompute to exactly zero: the
	// scenario's numbers were chosen so nothing is ever idle.
	for i, tr := range route.Transitions {
		assert.Equal(t, cfrjson.Duration(0), tr.WaitDuration, "transition %d should have zero wait", i)
	}

	assert.Equal(t, start.Add(cfrjson.DurationFromSeconds(310)), route.VehicleEndTime)
	assert.Empty(t, mergedResponse.SkippedShipments)
}

func TestSplitRoundVisitsClassifiesLeadingMiddleTrailing(t *testing.T) {
	tags := ParkingLocationTags{LocalLoadToVehicleTag: "load", LocalUnloadFromVehicleTag: "unload", LocalVisitTag: "visit"}
	shipments := []cfrjson.Shipment{
		{Pickups: []cfrjson.VisitRequest{{Tags: []string{"load"}}}, Deliveries: []cfrjson.VisitRequest{{Tags: []string{"visit"}}}},
	}
	route := &cfrjson.ShipmentRoute{
		Visits: []cfrjson.Visit{
			{ShipmentIndex: 0, IsPickup: true},  // parking-side (load)
			{ShipmentIndex: 0, IsPickup: false}, // customer-side
		},
	}
	leading, middle, trailing := splitRoundVisits(route, shipments, tags)
	assert.Equal(t, []int{0}, leading)
	assert.Equal(t, []int{1}, middle)
	assert.Empty(t, trailing)
}
