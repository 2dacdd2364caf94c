package twostep

import (
	"fmt"
	"sort"

	"example.com/your_project/two-step-routing/cfrjson"
	"go.uber.org/multierr"
)

// ParkingTag is a unique identifier for a ParkingLocation.
type ParkingTag = string

// ParkingLocation describes one place where a vehicle parks so its driver
// can continue on foot (or by bicycle) to deliver a group of shipments.
type ParkingLocation struct {
	// Tag uniquely identifies this parking location across the whole input.
	Tag ParkingTag
	// Waypoint is used by the vehicle (the global/driving model).
	Waypoint cfrjson.Waypoint
	// LocalWaypoint is used by the driver on foot (the local model). If the
	// zero value, Waypoint is used for both.
	LocalWaypoint *cfrjson.Waypoint

	TravelMode             int
	TravelDurationMultiple float64

	AvoidIndoor  bool
	AvoidUTurns  bool

	DeliveryLoadLimits             cfrjson.Load
	CostPerLoadUnitPerKilometer    float64
	CostPerLoadUnitPerTraveledHour float64

	MaxRoundDuration cfrjson.Duration

	ArrivalDuration   cfrjson.Duration
	DepartureDuration cfrjson.Duration
	ReloadDuration    cfrjson.Duration

	UnloadDurationPerItem cfrjson.Duration
	LoadDurationPerItem   cfrjson.Duration

	ArrivalCost   float64
	DepartureCost float64
	ReloadCost    float64
}

// Validate checks the invariants the reference implementation enforces in
// its constructor: avoid-indoor only makes sense for a walking/bicycle
// travel mode.
func (p *ParkingLocation) Validate() error {
	if p.AvoidIndoor && p.TravelMode == cfrjson.TravelModeDriving {
		return fmt.Errorf("twostep: parking %q: avoidIndoor requires a non-driving travel mode", p.Tag)
	}
	return nil
}

// WaypointForLocalModel returns the waypoint the local (walking) model
// should use: LocalWaypoint if set, otherwise Waypoint with sideOfRoad
// stripped for any non-driving travel mode (side-of-road approach
// constraints are meaningful only when a vehicle is involved).
//
// Open question (unresolved upstream): whether every solver backend accepts
// this stripped waypoint for every non-driving travel mode has not been
// validated; this mirrors the reference behavior without further checks.
func (p *ParkingLocation) WaypointForLocalModel() cfrjson.Waypoint {
	if p.LocalWaypoint != nil {
		return *p.LocalWaypoint
	}
	w := p.Waypoint
	if p.TravelMode != cfrjson.TravelModeDriving {
		w.SideOfRoad = false
	}
	return w
}

// GroupKey partitions parking-served shipments into local sub-problems. Two
// shipments sharing a parking tag are only grouped together if they also
// share every other field of the key (as configured by
// InitialLocalModelGrouping).
type GroupKey struct {
	ParkingTag             ParkingTag
	TimeWindows            string // canonical formatting of the visit's time windows, or "" if grouping is disabled
	AllowedVehicleIndices  string // canonical formatting of the sorted allowed-vehicle set, or "" if unconstrained
	PenaltyCostGroup       string // canonical bucket label for the shipment's penalty-cost-per-item, or ""
}

// ShipmentGroupKey computes the GroupKey for shipment at shipmentIndex,
// under parking and the grouping configuration in grouping.
func ShipmentGroupKey(grouping InitialLocalModelGrouping, model *cfrjson.ShipmentModel, shipmentIndex int, parking *ParkingLocation) GroupKey {
	shipment := &model.Shipments[shipmentIndex]
	key := GroupKey{ParkingTag: parking.Tag}

	if grouping.ByTimeWindows {
		vr := visitRequestOf(shipment)
		key.TimeWindows = formatTimeWindows(vr.TimeWindows)
	}

	key.AllowedVehicleIndices = formatIntSlice(shipment.AllowedVehicleIndices)

	if grouping.ByPenaltyCostPerItem {
		key.PenaltyCostGroup = penaltyCostPerItemBucket(shipment)
	}

	return key
}

// visitRequestOf returns the shipment's single (pickup or delivery) visit
// request; parking-served shipments are validated to have exactly one.
func visitRequestOf(s *cfrjson.Shipment) *cfrjson.VisitRequest {
	if vr := cfrjson.GetPickupOrNone(s); vr != nil {
		return vr
	}
	return cfrjson.GetDeliveryOrNone(s)
}

func formatTimeWindows(tws []cfrjson.TimeWindow) string {
	out := ""
	for _, tw := range tws {
		out += fmt.Sprintf("[%v,%v)", optionalTimestamp(tw.StartTime), optionalTimestamp(tw.EndTime))
	}
	return out
}

func optionalTimestamp(t *cfrjson.Timestamp) string {
	if t == nil {
		return "-"
	}
	return cfrjson.AsTimeString(*t)
}

func formatIntSlice(indices []int) string {
	if len(indices) == 0 {
		return ""
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	return fmt.Sprint(sorted)
}

// penaltyCostPerItemBucket buckets a shipment's penalty cost per unit of
// its total load demand into a coarse label. Mandatory shipments (no
// penalty cost) get their own bucket.
func penaltyCostPerItemBucket(s *cfrjson.Shipment) string {
	if s.PenaltyCost == nil {
		return "mandatory"
	}
	var totalLoad int64
	for _, amount := range s.LoadDemands {
		totalLoad += amount
	}
	if totalLoad == 0 {
		return fmt.Sprintf("flat:%.2f", *s.PenaltyCost)
	}
	perItem := *s.PenaltyCost / float64(totalLoad)
	return fmt.Sprintf("perItem:%.2f", perItem)
}

// ParkingForShipment maps a shipment index to the parking tag that serves
// it; shipments absent from this map are delivered directly.
type ParkingForShipment map[int]ParkingTag

// Registry owns the set of parsed, validated parking locations for one
// planning run and the shipment -> parking assignment.
type Registry struct {
	byTag             map[ParkingTag]*ParkingLocation
	order             []ParkingTag
	parkingForShipment ParkingForShipment
}

// NewRegistry validates and indexes parkings and parkingForShipment against
// model. It returns every validation problem found, not just the first
// (shipment index out of range, unknown parking tag referenced, duplicate
// parking tag, invalid parking definition).
func NewRegistry(model *cfrjson.ShipmentModel, parkings []ParkingLocation, parkingForShipment ParkingForShipment) (*Registry, error) {
	r := &Registry{
		byTag:              map[ParkingTag]*ParkingLocation{},
		parkingForShipment: parkingForShipment,
	}

	var errs error
	for i := range parkings {
		p := &parkings[i]
		if err := p.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, exists := r.byTag[p.Tag]; exists {
			errs = multierr.Append(errs, fmt.Errorf("twostep: duplicate parking tag %q", p.Tag))
			continue
		}
		r.byTag[p.Tag] = p
		r.order = append(r.order, p.Tag)
	}

	numShipments := len(model.Shipments)
	for shipmentIndex, tag := range parkingForShipment {
		if shipmentIndex < 0 || shipmentIndex >= numShipments {
			errs = multierr.Append(errs, fmt.Errorf("twostep: parkingForShipment references out-of-range shipment index %d", shipmentIndex))
			continue
		}
		if _, ok := r.byTag[tag]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("twostep: parkingForShipment references unknown parking tag %q", tag))
		}
	}

	if errs != nil {
		return nil, errs
	}
	return r, nil
}

// ByTag returns the parking with the given tag, or nil if it does not exist.
func (r *Registry) ByTag(tag ParkingTag) *ParkingLocation {
	return r.byTag[tag]
}

// ParkingForShipmentIndex returns the parking serving shipmentIndex and
// true, or (nil, false) if the shipment is delivered directly.
func (r *Registry) ParkingForShipmentIndex(shipmentIndex int) (*ParkingLocation, bool) {
	tag, ok := r.parkingForShipment[shipmentIndex]
	if !ok {
		return nil, false
	}
	return r.byTag[tag], true
}

// IsDirect reports whether shipmentIndex has no assigned parking.
func (r *Registry) IsDirect(shipmentIndex int) bool {
	_, ok := r.parkingForShipment[shipmentIndex]
	return !ok
}

// Tags returns every parking tag, in the order parkings were registered.
func (r *Registry) Tags() []ParkingTag {
	return append([]ParkingTag(nil), r.order...)
}

// ValidateRequest checks that every shipment served through a parking has
// exactly one visit request in total (one pickup, xor one delivery), per
// the protocol the local model builder depends on. It accumulates every
// violation found rather than stopping at the first.
func ValidateRequest(model *cfrjson.ShipmentModel, parkingForShipment ParkingForShipment) error {
	var errs error
	for shipmentIndex := range parkingForShipment {
		if shipmentIndex < 0 || shipmentIndex >= len(model.Shipments) {
			continue // already reported by NewRegistry
		}
		s := &model.Shipments[shipmentIndex]
		total := len(s.Pickups) + len(s.Deliveries)
		if total != 1 {
			errs = multierr.Append(errs, fmt.Errorf(
				"twostep: shipment %d (%q) served via a parking must have exactly one visit request, has %d",
				shipmentIndex, s.Label, total))
		}
	}
	return errs
}
