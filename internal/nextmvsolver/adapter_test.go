package nextmvsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"example.com/your_project/two-step-routing/cfrjson"
)

func TestBuildRouterRejectsTransitionAttributes(t *testing.T) {
	req := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			Vehicles:             []cfrjson.Vehicle{{Label: "v"}},
			TransitionAttributes: []cfrjson.TransitionAttributes{{SrcTag: "a", DstTag: "b"}},
		},
	}
	_, err := BuildRouter(req)
	assert.Error(t, err)
}

func TestBuildRouterRejectsMultiVehicleRequests(t *testing.T) {
	req := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			Vehicles: []cfrjson.Vehicle{{Label: "a"}, {Label: "b"}},
		},
	}
	_, err := BuildRouter(req)
	assert.Error(t, err)
}

func TestBuildRouterRejectsVehicleWithoutStartLocation(t *testing.T) {
	req := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			Vehicles: []cfrjson.Vehicle{{Label: "v"}},
		},
	}
	_, err := BuildRouter(req)
	assert.Error(t, err)
}
