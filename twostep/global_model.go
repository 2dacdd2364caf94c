package twostep

import (
	"fmt"
	"regexp"
	"strconv"

	"example.com/your_project/two-step-routing/cfrjson"
)

// directShipmentLabel builds the wire-protocol label of a direct (not
// parking-served) shipment in the global model: "s:<index> <label>".
func directShipmentLabel(index int, label string) string {
	return fmt.Sprintf("s:%d %s", index, label)
}

// parkingShipmentLabel builds the wire-protocol label of a parking-visit
// virtual shipment in the global model: "p:<local-route-index> <labels>".
func parkingShipmentLabel(localRouteIndex int, shipmentLabels []string) string {
	joined := ""
	for i, l := range shipmentLabels {
		if i > 0 {
			joined += ","
		}
		joined += l
	}
	return fmt.Sprintf("p:%d %s", localRouteIndex, joined)
}

var globalShipmentLabelPattern = regexp.MustCompile(`^([ps]):(\d+) .*`)

// ParseGlobalShipmentLabel parses the label of a shipment in the global
// model into (kind, index): kind is "s" for a direct shipment (index is the
// original shipment index) or "p" for a parking visit (index is the local
// route index).
func ParseGlobalShipmentLabel(label string) (kind string, index int, err error) {
	m := globalShipmentLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return "", 0, fmt.Errorf("twostep: invalid global shipment label: %q", label)
	}
	index, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, err
	}
	return m[1], index, nil
}

// MakeShipmentForLocalRoute builds the global virtual shipment
// representing one non-empty local route (SPEC_FULL §4.3).
func MakeShipmentForLocalRoute(model *cfrjson.ShipmentModel, localRouteIndex int, localRoute *cfrjson.ShipmentRoute, localShipments []cfrjson.Shipment, registry *Registry, tagManager *TransitionAttributeManager) (cfrjson.Shipment, error) {
	parkingTag := GetParkingTagFromRoute(localRoute)
	parking := registry.ByTag(parkingTag)
	if parking == nil {
		return cfrjson.Shipment{}, fmt.Errorf("twostep: local route %d has unrecognized parking tag %q", localRouteIndex, parkingTag)
	}

	shipmentIndices := GetShipmentIndicesFromVisits(localRoute.Visits)
	if len(shipmentIndices) == 0 {
		return cfrjson.Shipment{}, fmt.Errorf("twostep: local route %d has no recognizable shipments", localRouteIndex)
	}
	shipments := make([]*cfrjson.Shipment, len(shipmentIndices))
	labels := make([]string, len(shipmentIndices))
	for i, idx := range shipmentIndices {
		shipments[i] = &model.Shipments[idx]
		labels[i] = model.Shipments[idx].Label
	}

	tags := tagManager.GetOrCreate(parking)
	deliveryTags := []string{parkingTag}
	if tags.HasGlobalTransitionAttributes {
		deliveryTags = append(deliveryTags, tags.GlobalTag)
	}

	delivery := cfrjson.VisitRequest{
		ArrivalWaypoint: &parking.Waypoint,
		Duration:        localRoute.Metrics.TotalDuration,
		Tags:            deliveryTags,
	}

	timeWindows, err := GetRouteStartTimeWindows(model, localShipments, tagManagerTagsByParkingTag(tagManager, parkingTag, tags), parkingTag, localRoute)
	if err != nil {
		return cfrjson.Shipment{}, err
	}
	if timeWindows != nil {
		delivery.TimeWindows = timeWindows
	}

	shipment := cfrjson.Shipment{
		Label:       parkingShipmentLabel(localRouteIndex, labels),
		Deliveries:  []cfrjson.VisitRequest{delivery},
		LoadDemands: cfrjson.CombinedLoadDemands(shipments),
		PenaltyCost: cfrjson.CombinedPenaltyCost(shipments),
	}
	if allowed := cfrjson.CombinedAllowedVehicleIndices(shipments); allowed != nil {
		shipment.AllowedVehicleIndices = allowed
	}
	if indices, costs := cfrjson.CombinedCostsPerVehicle(shipments); indices != nil {
		shipment.CostsPerVehicleIndices = indices
		shipment.CostsPerVehicle = costs
	}
	return shipment, nil
}

// tagManagerTagsByParkingTag is a tiny adapter so GetRouteStartTimeWindows
// (which is parametrized over an arbitrary parking->tags lookup so it stays
// usable from both the global builder and the refinement integrator) can be
// driven from a single already-resolved ParkingLocationTags value.
func tagManagerTagsByParkingTag(tagManager *TransitionAttributeManager, tag ParkingTag, tags ParkingLocationTags) map[ParkingTag]ParkingLocationTags {
	return map[ParkingTag]ParkingLocationTags{tag: tags}
}

// routesByVehicleIndex indexes response's routes by vehicle index, erroring
// on a duplicate.
func routesByVehicleIndex(response *cfrjson.OptimizeToursResponse) (map[int]*cfrjson.ShipmentRoute, error) {
	out := map[int]*cfrjson.ShipmentRoute{}
	for i := range response.Routes {
		route := &response.Routes[i]
		if _, exists := out[route.VehicleIndex]; exists {
			return nil, fmt.Errorf("twostep: duplicate vehicle index %d", route.VehicleIndex)
		}
		out[route.VehicleIndex] = route
	}
	return out, nil
}

// shipmentLabelCountsInGlobalRoute counts, for every base shipment label
// referenced by route's visits, how many times it appears.
func shipmentLabelCountsInGlobalRoute(route *cfrjson.ShipmentRoute) map[string]int {
	counts := map[string]int{}
	for i := range route.Visits {
		_, labels, ok := splitGlobalLabel(route.Visits[i].ShipmentLabel)
		if !ok {
			continue
		}
		for _, l := range labels {
			counts[l]++
		}
	}
	return counts
}

func splitGlobalLabel(label string) (prefix string, labels []string, ok bool) {
	for i := 0; i < len(label); i++ {
		if label[i] == ' ' {
			rest := label[i+1:]
			return label[:i], splitComma(rest), true
		}
	}
	return "", nil, false
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

// AssertRoutesHandleSameShipments checks that responseA and responseB (two
// different solutions of equivalent global models — e.g. a base global
// solution and an integrated one) serve the same multiset of original
// shipment labels on routes with matching vehicle indices. It is a
// consistency check meant to catch bugs in the refinement integrator, not a
// solver-quality check.
func AssertRoutesHandleSameShipments(responseA, responseB *cfrjson.OptimizeToursResponse) error {
	routesA, err := routesByVehicleIndex(responseA)
	if err != nil {
		return err
	}
	routesB, err := routesByVehicleIndex(responseB)
	if err != nil {
		return err
	}
	if len(routesA) != len(routesB) {
		return fmt.Errorf("twostep: route count mismatch: %d vs %d", len(routesA), len(routesB))
	}
	for vehicleIndex, routeA := range routesA {
		routeB, ok := routesB[vehicleIndex]
		if !ok {
			return fmt.Errorf("twostep: vehicle index %d present in A but not B", vehicleIndex)
		}
		countsA := shipmentLabelCountsInGlobalRoute(routeA)
		countsB := shipmentLabelCountsInGlobalRoute(routeB)
		if !intMapsEqual(countsA, countsB) {
			return fmt.Errorf("twostep: vehicle %d: shipment label counts differ: %v vs %v", vehicleIndex, countsA, countsB)
		}
	}
	return nil
}

func intMapsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
