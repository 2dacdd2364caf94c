package twostep

import (
	"fmt"

	"example.com/your_project/two-step-routing/cfrjson"
)

// GlobalRequestOptions configures BuildGlobalRequest's optional overrides.
type GlobalRequestOptions struct {
	// ConsiderRoadTrafficOverride, if non-nil, sets considerRoadTraffic on
	// the global request regardless of the base request's own value.
	ConsiderRoadTrafficOverride *bool
	// InternalParametersOverride, if non-empty, is used as the
	// request-level override resolved by ResolveInternalParameters for
	// PhaseGlobal.
	InternalParametersOverride string
}

// BuildGlobalRequest consumes a local response and produces the global
// model request (SPEC_FULL §4.3): direct shipments are copied with a
// "s:<index> " label prefix, and one virtual shipment is emitted per
// non-empty local route.
func BuildGlobalRequest(base *cfrjson.OptimizeToursRequest, localResponse *cfrjson.OptimizeToursResponse, localShipments []cfrjson.Shipment, registry *Registry, tagManager *TransitionAttributeManager, options Options, overrides GlobalRequestOptions) (*cfrjson.OptimizeToursRequest, error) {
	model := &base.Model

	global := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime: model.GlobalStartTime,
			GlobalEndTime:   model.GlobalEndTime,
			Vehicles:        model.Vehicles,
		},
	}
	CopySharedOptions(base, global)

	for shipmentIndex := range model.Shipments {
		if !registry.IsDirect(shipmentIndex) {
			continue
		}
		shipment := model.Shipments[shipmentIndex]
		shipment.Label = directShipmentLabel(shipmentIndex, shipment.Label)
		global.Model.Shipments = append(global.Model.Shipments, shipment)
	}

	for routeIndex := range localResponse.Routes {
		route := &localResponse.Routes[routeIndex]
		if len(route.Visits) == 0 {
			continue
		}
		shipment, err := MakeShipmentForLocalRoute(model, routeIndex, route, localShipments, registry, tagManager)
		if err != nil {
			return nil, fmt.Errorf("twostep: building global shipment for local route %d: %w", routeIndex, err)
		}
		global.Model.Shipments = append(global.Model.Shipments, shipment)
	}

	global.Model.TransitionAttributes = tagManager.GlobalTransitionAttributes()

	if overrides.ConsiderRoadTrafficOverride != nil {
		global.ConsiderRoadTraffic = *overrides.ConsiderRoadTrafficOverride
	} else {
		global.ConsiderRoadTraffic = base.ConsiderRoadTraffic
	}

	global.InternalParameters = ResolveInternalParameters(PhaseGlobal, overrides.InternalParametersOverride, options.InternalParameters)

	return global, nil
}
