package cfrjson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkShipment(pickupDuration, deliveryDuration Duration) Shipment {
	return Shipment{
		Pickups:    []VisitRequest{{Duration: pickupDuration}},
		Deliveries: []VisitRequest{{Duration: deliveryDuration}},
	}
}

func TestRecomputeTransitionStartsAndDurations(t *testing.T) {
	shipments := []Shipment{mkShipment(DurationFromSeconds(60), DurationFromSeconds(120))}

	start := TimestampFromTime(mustParseRFC3339(t, "2026-01-01T08:00:00Z"))
	route := &ShipmentRoute{
		VehicleStartTime: start,
		VehicleEndTime:   start.Add(DurationFromSeconds(600)),
		Visits: []Visit{
			{ShipmentIndex: 0, IsPickup: true, StartTime: start.Add(DurationFromSeconds(100))},
			{ShipmentIndex: 0, IsPickup: false, StartTime: start.Add(DurationFromSeconds(300))},
		},
		Transitions: []Transition{
			{TravelDuration: DurationFromSeconds(100)},
			{TravelDuration: DurationFromSeconds(40)},
			{TravelDuration: DurationFromSeconds(40)},
		},
	}

	err := RecomputeTransitionStartsAndDurations(route, shipments, RecomputeTransitionStartsAndDurationsOptions{})
	require.NoError(t, err)

	assert.Equal(t, start, route.Transitions[0].StartTime)
	assert.Equal(t, Duration(0), route.Transitions[0].WaitDuration)

	// Second transition starts when pickup visit ends (100 + 60 = 160s in);
	// the delivery visit starts at 300s, travel is 40s, so wait = 300-160-40=100s.
	assert.Equal(t, start.Add(DurationFromSeconds(160)), route.Transitions[1].StartTime)
	assert.Equal(t, DurationFromSeconds(100), route.Transitions[1].WaitDuration)

	RecomputeRouteMetrics(route, shipments)
	assert.Equal(t, 2, route.Metrics.PerformedShipmentCount)
	assert.Equal(t, DurationFromSeconds(60+120), route.Metrics.VisitDuration)
}

func TestRecomputeTransitionStartsAndDurationsRejectsNegativeWait(t *testing.T) {
	shipments := []Shipment{mkShipment(0, 0)}
	start := TimestampFromTime(mustParseRFC3339(t, "2026-01-01T08:00:00Z"))
	route := &ShipmentRoute{
		VehicleStartTime: start,
		VehicleEndTime:   start.Add(DurationFromSeconds(10)),
		Visits: []Visit{
			{ShipmentIndex: 0, IsPickup: true, StartTime: start},
			{ShipmentIndex: 0, IsPickup: false, StartTime: start.Add(DurationFromSeconds(5))},
		},
		Transitions: []Transition{
			{},
			{TravelDuration: DurationFromSeconds(100)}, // too long: forces negative wait
			{},
		},
	}
	err := RecomputeTransitionStartsAndDurations(route, shipments, RecomputeTransitionStartsAndDurationsOptions{})
	assert.Error(t, err)

	err = RecomputeTransitionStartsAndDurations(route, shipments, RecomputeTransitionStartsAndDurationsOptions{AllowNegativeWaitDuration: true})
	assert.NoError(t, err)
}

func TestUpdateRouteStartEndTimeFromTransitions(t *testing.T) {
	start := TimestampFromTime(mustParseRFC3339(t, "2026-01-01T08:00:00Z"))
	route := &ShipmentRoute{
		Transitions: []Transition{
			{StartTime: start, TravelDuration: DurationFromSeconds(10), TotalDuration: DurationFromSeconds(10)},
			{StartTime: start.Add(DurationFromSeconds(50)), DelayDuration: DurationFromSeconds(30), TotalDuration: DurationFromSeconds(30)},
		},
	}
	UpdateRouteStartEndTimeFromTransitions(route, false)
	assert.Equal(t, start, route.VehicleStartTime)
	assert.Equal(t, start.Add(DurationFromSeconds(80)), route.VehicleEndTime)

	UpdateRouteStartEndTimeFromTransitions(route, true)
	assert.Equal(t, start.Add(DurationFromSeconds(50)), route.VehicleEndTime)
}

func TestGetParkingTagFromLabel(t *testing.T) {
	assert.Equal(t, "depot-1", GetParkingTagFromLabel("depot-1 [time_windows=- vehicles=]"))
	assert.Equal(t, "depot-1", GetParkingTagFromLabel("depot-1"))
}

func mustParseRFC3339(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTimeString(s)
	require.NoError(t, err)
	return ts.Time()
}
