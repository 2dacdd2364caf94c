package twostep

import (
	"fmt"
	"sort"

	"example.com/your_project/two-step-routing/cfrjson"
)

// localGroup accumulates the shipments belonging to one GroupKey, in the
// order their original shipments appear in the input model.
type localGroup struct {
	key             GroupKey
	parking         *ParkingLocation
	shipmentIndices []int
}

// BuildLocalRequest groups every parking-served shipment by GroupKey,
// synthesizes one local vehicle per shipment in the group (an upper bound on
// the number of rounds the solver might use), and emits the local model
// request (SPEC_FULL §4.2).
func BuildLocalRequest(base *cfrjson.OptimizeToursRequest, registry *Registry, tagManager *TransitionAttributeManager, options Options) (*cfrjson.OptimizeToursRequest, error) {
	model := &base.Model

	groupsByKey := map[GroupKey]*localGroup{}
	var groupOrder []GroupKey
	for shipmentIndex := range model.Shipments {
		parking, ok := registry.ParkingForShipmentIndex(shipmentIndex)
		if !ok {
			continue
		}
		key := ShipmentGroupKey(options.InitialLocalModelGrouping, model, shipmentIndex, parking)
		g, exists := groupsByKey[key]
		if !exists {
			g = &localGroup{key: key, parking: parking}
			groupsByKey[key] = g
			groupOrder = append(groupOrder, key)
		}
		g.shipmentIndices = append(g.shipmentIndices, shipmentIndex)
	}

	local := &cfrjson.OptimizeToursRequest{
		Model: cfrjson.ShipmentModel{
			GlobalStartTime: model.GlobalStartTime,
			GlobalEndTime:   model.GlobalEndTime,
		},
	}
	CopySharedOptions(base, local)
	local.InternalParameters = ResolveInternalParameters(PhaseLocal, "", options.InternalParameters)

	for _, key := range groupOrder {
		g := groupsByKey[key]
		tags := tagManager.GetOrCreate(g.parking)
		label := makeVehicleLabel(key)

		vehicleStart := len(local.Model.Vehicles)
		for roundIndex := range g.shipmentIndices {
			vehicleLabel := fmt.Sprintf("%s/%d", label, roundIndex)
			local.Model.Vehicles = append(local.Model.Vehicles, makeVehicle(options, g.parking, tags, vehicleLabel))
		}
		allowedVehicles := make([]int, len(g.shipmentIndices))
		for i := range g.shipmentIndices {
			allowedVehicles[i] = vehicleStart + i
		}

		sortedIndices := append([]int(nil), g.shipmentIndices...)
		sort.Ints(sortedIndices)
		for _, shipmentIndex := range sortedIndices {
			original := &model.Shipments[shipmentIndex]
			shipment, err := makeShipment(shipmentIndex, original, g.parking, tags)
			if err != nil {
				return nil, err
			}
			shipment.AllowedVehicleIndices = allowedVehicles
			local.Model.Shipments = append(local.Model.Shipments, shipment)
		}
	}

	local.Model.TransitionAttributes = tagManager.LocalTransitionAttributes()
	return local, nil
}

// validateLocalResponseOrError is a small internal consistency check used
// by the planner before handing a local response to the global model
// builder: the parking tag parsed from every non-empty local route's vehicle
// label must be a registered parking tag.
func validateLocalResponseOrError(response *cfrjson.OptimizeToursResponse, registry *Registry) error {
	for i := range response.Routes {
		route := &response.Routes[i]
		if len(route.Visits) == 0 {
			continue
		}
		tag := GetParkingTagFromRoute(route)
		if registry.ByTag(tag) == nil {
			return fmt.Errorf("twostep: local route %d has unrecognized parking tag %q", i, tag)
		}
	}
	return nil
}
