package twostep

import (
	"testing"

	"example.com/your_project/two-step-routing/cfrjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParkingValidateRejectsAvoidIndoorWhenDriving(t *testing.T) {
	p := ParkingLocation{Tag: "p1", TravelMode: cfrjson.TravelModeDriving, AvoidIndoor: true}
	assert.Error(t, p.Validate())

	p.TravelMode = cfrjson.TravelModeWalking
	assert.NoError(t, p.Validate())
}

func TestParkingWaypointForLocalModelStripsSideOfRoad(t *testing.T) {
	p := ParkingLocation{
		Tag:        "p1",
		TravelMode: cfrjson.TravelModeWalking,
		Waypoint:   cfrjson.Waypoint{SideOfRoad: true},
	}
	got := p.WaypointForLocalModel()
	assert.False(t, got.SideOfRoad)

	local := cfrjson.Waypoint{SideOfRoad: true}
	p.LocalWaypoint = &local
	assert.True(t, p.WaypointForLocalModel().SideOfRoad)
}

func TestNewRegistryAccumulatesAllErrors(t *testing.T) {
	model := &cfrjson.ShipmentModel{
		Shipments: []cfrjson.Shipment{{Label: "a"}},
	}
	parkings := []ParkingLocation{
		{Tag: "p1", TravelMode: cfrjson.TravelModeDriving, AvoidIndoor: true}, // invalid
		{Tag: "p2"},
		{Tag: "p2"}, // duplicate
	}
	parkingForShipment := ParkingForShipment{
		0: "p2",
		5: "p2",     // out of range
		6: "unknown", // out of range AND unknown tag
	}

	_, err := NewRegistry(model, parkings, parkingForShipment)
	require.Error(t, err)
	// at minimum: invalid parking, duplicate tag, two out-of-range indices.
	assert.GreaterOrEqual(t, len(multierrErrors(err)), 3)
}

func TestNewRegistryAcceptsValidInput(t *testing.T) {
	model := &cfrjson.ShipmentModel{Shipments: []cfrjson.Shipment{{}, {}}}
	parkings := []ParkingLocation{{Tag: "p1"}, {Tag: "p2"}}
	r, err := NewRegistry(model, parkings, ParkingForShipment{0: "p1"})
	require.NoError(t, err)

	assert.Equal(t, []ParkingTag{"p1", "p2"}, r.Tags())
	assert.NotNil(t, r.ByTag("p1"))
	assert.Nil(t, r.ByTag("nope"))

	parking, ok := r.ParkingForShipmentIndex(0)
	require.True(t, ok)
	assert.Equal(t, "p1", parking.Tag)
	assert.False(t, r.IsDirect(0))

	_, ok = r.ParkingForShipmentIndex(1)
	assert.False(t, ok)
	assert.True(t, r.IsDirect(1))
}

func TestValidateRequestRejectsWrongVisitCount(t *testing.T) {
	model := &cfrjson.ShipmentModel{
		Shipments: []cfrjson.Shipment{
			{Pickups: []cfrjson.VisitRequest{{}}, Deliveries: []cfrjson.VisitRequest{{}}}, // 2 visits: invalid
			{Deliveries: []cfrjson.VisitRequest{{}}},                                      // 1 visit: valid
		},
	}
	err := ValidateRequest(model, ParkingForShipment{0: "p1", 1: "p1"})
	require.Error(t, err)
	assert.Len(t, multierrErrors(err), 1)
}

func TestShipmentGroupKeyGroupsByParkingAndOptIns(t *testing.T) {
	model := &cfrjson.ShipmentModel{
		Shipments: []cfrjson.Shipment{
			{Deliveries: []cfrjson.VisitRequest{{}}, AllowedVehicleIndices: []int{2, 1}},
			{Deliveries: []cfrjson.VisitRequest{{}}, AllowedVehicleIndices: []int{1, 2}},
		},
	}
	parking := &ParkingLocation{Tag: "p1"}

	k0 := ShipmentGroupKey(InitialLocalModelGrouping{}, model, 0, parking)
	k1 := ShipmentGroupKey(InitialLocalModelGrouping{}, model, 1, parking)
	assert.Equal(t, k0, k1, "same parking and same sorted allowed-vehicle set should group together")

	withPenalty := InitialLocalModelGrouping{ByPenaltyCostPerItem: true}
	penaltyCost := 5.0
	model.Shipments[0].PenaltyCost = &penaltyCost
	k0p := ShipmentGroupKey(withPenalty, model, 0, parking)
	k1p := ShipmentGroupKey(withPenalty, model, 1, parking)
	assert.NotEqual(t, k0p, k1p, "mandatory vs penalized shipments should land in different groups")
}

// multierrErrors splits a combined error from go.uber.org/multierr back into
// its components, for assertions on error counts.
func multierrErrors(err error) []error {
	type unwrapper interface{ Unwrap() []error }
	if u, ok := err.(unwrapper); ok {
		return u.Unwrap()
	}
	return []error{err}
}
