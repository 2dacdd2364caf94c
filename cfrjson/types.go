// Package cfrjson is the wire layer of the two-step routing engine: the
// request/response types exchanged with an external constraint-based vehicle
// routing solver, duration/timestamp/polyline encodings, and a set of
// pass-through accessor helpers used throughout the twostep package.
//
// Nothing in this package makes a routing decision; it only describes the
// shape of the data the solver boundary speaks.
package cfrjson

// LatLng is a point on the earth, in degrees.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Waypoint identifies a location, either by coordinates or by a map
// provider's place identifier, optionally with side-of-road and heading
// hints.
type Waypoint struct {
	Location    *Location `json:"location,omitempty"`
	PlaceID     string    `json:"placeId,omitempty"`
	SideOfRoad  bool      `json:"sideOfRoad,omitempty"`
	Heading     *int32    `json:"heading,omitempty"`
}

type Location struct {
	LatLng LatLng `json:"latLng"`
}

// TimeWindow is a half-open interval with optional soft inner bounds. A nil
// Start means "from the global start"; a nil End means "until the global
// end".
type TimeWindow struct {
	StartTime                 *Timestamp `json:"startTime,omitempty"`
	EndTime                   *Timestamp `json:"endTime,omitempty"`
	SoftStartTime             *Timestamp `json:"softStartTime,omitempty"`
	SoftEndTime               *Timestamp `json:"softEndTime,omitempty"`
	CostPerHourBeforeSoftStartTime *float64 `json:"costPerHourBeforeSoftStartTime,omitempty"`
	CostPerHourAfterSoftEndTime    *float64 `json:"costPerHourAfterSoftEndTime,omitempty"`
}

// VisitRequest is one pickup or delivery location attached to a Shipment.
type VisitRequest struct {
	ArrivalWaypoint   *Waypoint    `json:"arrivalWaypoint,omitempty"`
	DepartureWaypoint *Waypoint    `json:"departureWaypoint,omitempty"`
	Duration          Duration     `json:"duration,omitempty"`
	TimeWindows       []TimeWindow `json:"timeWindows,omitempty"`
	Tags              []string     `json:"tags,omitempty"`
	VisitTypes        []string     `json:"visitTypes,omitempty"`
	Cost              float64      `json:"cost,omitempty"`
	AvoidUTurns       bool         `json:"avoidUTurns,omitempty"`
}

// Load is a map from load-unit name to integer amount.
type Load map[string]int64

// LoadLimit bounds the amount of a load unit a vehicle may carry, with
// optional surcharges.
type LoadLimit struct {
	MaxLoad                *int64   `json:"maxLoad,omitempty"`
	CostPerKilometer       float64  `json:"costPerKilometer,omitempty"`
	CostPerTraveledHour    float64  `json:"costPerTraveledHour,omitempty"`
}

// Shipment is a unit of work: zero or more pickups, zero or more deliveries.
type Shipment struct {
	Label                    string             `json:"label,omitempty"`
	Pickups                  []VisitRequest     `json:"pickups,omitempty"`
	Deliveries               []VisitRequest     `json:"deliveries,omitempty"`
	LoadDemands              Load               `json:"loadDemands,omitempty"`
	PenaltyCost              *float64           `json:"penaltyCost,omitempty"`
	AllowedVehicleIndices    []int              `json:"allowedVehicleIndices,omitempty"`
	CostsPerVehicle          []float64          `json:"costsPerVehicle,omitempty"`
	CostsPerVehicleIndices   []int              `json:"costsPerVehicleIndices,omitempty"`
}

// BreakRule describes the vehicle's mandatory breaks.
type BreakRule struct {
	BreakRequests []BreakRequest `json:"breakRequests,omitempty"`
}

type BreakRequest struct {
	EarliestStartTime Timestamp `json:"earliestStartTime"`
	LatestStartTime   Timestamp `json:"latestStartTime"`
	MinDuration       Duration  `json:"minDuration"`
}

// Vehicle is a driving resource in a model.
type Vehicle struct {
	Label                 string              `json:"label,omitempty"`
	StartWaypoint         *Waypoint           `json:"startWaypoint,omitempty"`
	EndWaypoint           *Waypoint           `json:"endWaypoint,omitempty"`
	StartTimeWindows      []TimeWindow        `json:"startTimeWindows,omitempty"`
	EndTimeWindows        []TimeWindow        `json:"endTimeWindows,omitempty"`
	TravelMode            int                 `json:"travelMode,omitempty"`
	TravelDurationMultiple float64            `json:"travelDurationMultiple,omitempty"`
	FixedCost             float64             `json:"fixedCost,omitempty"`
	CostPerHour           float64             `json:"costPerHour,omitempty"`
	CostPerKilometer      float64             `json:"costPerKilometer,omitempty"`
	LoadLimits            map[string]LoadLimit `json:"loadLimits,omitempty"`
	RouteDurationLimit    *RouteDurationLimit `json:"routeDurationLimit,omitempty"`
	BreakRule             *BreakRule          `json:"breakRule,omitempty"`
	StartTags             []string            `json:"startTags,omitempty"`
	EndTags               []string            `json:"endTags,omitempty"`
	RouteModifiers        *RouteModifiers     `json:"routeModifiers,omitempty"`
	UnassignedPenaltyCost *float64            `json:"unassignedPenaltyCost,omitempty"`
}

type RouteModifiers struct {
	AvoidIndoor bool `json:"avoidIndoor,omitempty"`
}

type RouteDurationLimit struct {
	MaxDuration Duration `json:"maxDuration,omitempty"`
}

// TravelMode constants. Driving is the default (zero value); the reference
// protocol reserves the rest for non-driving modes such as walking.
const (
	TravelModeDriving = 0
	TravelModeWalking = 1
	TravelModeBicycle = 2
)

// TransitionAttributes is a single cost/delay rule applied to any transition
// whose source and destination tag sets match srcTag/dstTag (an empty tag
// list matches the wildcard "any tag, including none").
type TransitionAttributes struct {
	SrcTag     string   `json:"srcTag,omitempty"`
	ExcludedSrcTag string `json:"excludedSrcTag,omitempty"`
	DstTag     string   `json:"dstTag,omitempty"`
	ExcludedDstTag string `json:"excludedDstTag,omitempty"`
	Cost       float64  `json:"cost,omitempty"`
	Delay      Duration `json:"delay,omitempty"`
}

// ShipmentModel is the model portion of a routing request.
type ShipmentModel struct {
	Shipments             []Shipment              `json:"shipments,omitempty"`
	Vehicles              []Vehicle               `json:"vehicles,omitempty"`
	GlobalStartTime       Timestamp               `json:"globalStartTime"`
	GlobalEndTime         Timestamp               `json:"globalEndTime"`
	TransitionAttributes  []TransitionAttributes  `json:"transitionAttributes,omitempty"`
}

// InjectedRoute is a first-solution hint: a sequence of visits the solver
// should try to start from and is expected to be able to improve upon.
type InjectedVisit struct {
	ShipmentIndex    int  `json:"shipmentIndex"`
	VisitRequestIndex int `json:"visitRequestIndex,omitempty"`
	IsPickup         bool `json:"isPickup,omitempty"`
}

type InjectedRoute struct {
	VehicleIndex int             `json:"vehicleIndex"`
	Visits       []InjectedVisit `json:"visits,omitempty"`
}

// OptimizeToursRequest is the full request sent to the solver.
type OptimizeToursRequest struct {
	Parent      string         `json:"parent,omitempty"`
	Model       ShipmentModel  `json:"model"`
	SearchMode  int            `json:"searchMode,omitempty"`
	PopulatePolylines           bool `json:"populatePolylines,omitempty"`
	PopulateTransitionPolylines bool `json:"populateTransitionPolylines,omitempty"`
	ConsiderRoadTraffic         bool `json:"considerRoadTraffic,omitempty"`
	AllowLargeDeadlineDespiteInterruptionRisk bool `json:"allowLargeDeadlineDespiteInterruptionRisk,omitempty"`
	InternalParameters          string `json:"internalParameters,omitempty"`
	InjectedFirstSolutionRoutes []InjectedRoute `json:"injectedFirstSolutionRoutes,omitempty"`
	Label string `json:"label,omitempty"`
}

// Visit is one stop on a solved route.
type Visit struct {
	ShipmentIndex               int       `json:"shipmentIndex"`
	VisitRequestIndex           int       `json:"visitRequestIndex,omitempty"`
	IsPickup                    bool      `json:"isPickup,omitempty"`
	StartTime                   Timestamp `json:"startTime"`
	Detour                      Duration  `json:"detour,omitempty"`
	ShipmentLabel               string    `json:"shipmentLabel,omitempty"`
	InjectedSolutionLocationToken string  `json:"injectedSolutionLocationToken,omitempty"`
}

// Polyline is an encoded Google Maps polyline.
type Polyline struct {
	Points string `json:"points"`
}

// Transition links two consecutive Visits (or the route start/end and the
// first/last Visit).
type Transition struct {
	StartTime            Timestamp `json:"startTime"`
	TravelDuration       Duration  `json:"travelDuration,omitempty"`
	WaitDuration         Duration  `json:"waitDuration,omitempty"`
	BreakDuration        Duration  `json:"breakDuration,omitempty"`
	DelayDuration        Duration  `json:"delayDuration,omitempty"`
	TotalDuration         Duration `json:"totalDuration,omitempty"`
	TravelDistanceMeters float64   `json:"travelDistanceMeters,omitempty"`
	RoutePolyline        *Polyline `json:"routePolyline,omitempty"`
	TravelMode           int       `json:"travelMode,omitempty"`
	TravelDurationMultiple float64 `json:"travelDurationMultiple,omitempty"`
}

// Break is an actual realized break on a route.
type Break struct {
	StartTime Timestamp `json:"startTime"`
	Duration  Duration  `json:"duration"`
}

// Metrics aggregates a route's totals.
type Metrics struct {
	PerformedShipmentCount int      `json:"performedShipmentCount,omitempty"`
	TravelDuration         Duration `json:"travelDuration,omitempty"`
	WaitDuration           Duration `json:"waitDuration,omitempty"`
	DelayDuration          Duration `json:"delayDuration,omitempty"`
	BreakDuration          Duration `json:"breakDuration,omitempty"`
	VisitDuration          Duration `json:"visitDuration,omitempty"`
	TotalDuration          Duration `json:"totalDuration,omitempty"`
	TravelDistanceMeters   float64  `json:"travelDistanceMeters,omitempty"`
}

// ShipmentRoute is one vehicle's solved route.
type ShipmentRoute struct {
	VehicleIndex             int          `json:"vehicleIndex,omitempty"`
	VehicleLabel             string       `json:"vehicleLabel,omitempty"`
	VehicleStartTime         Timestamp    `json:"vehicleStartTime"`
	VehicleEndTime           Timestamp    `json:"vehicleEndTime"`
	Visits                   []Visit      `json:"visits,omitempty"`
	Transitions              []Transition `json:"transitions,omitempty"`
	Breaks                   []Break      `json:"breaks,omitempty"`
	Metrics                  Metrics      `json:"metrics,omitempty"`
	RouteTotalCost           float64      `json:"routeTotalCost,omitempty"`
	RoutePolyline            *Polyline    `json:"routePolyline,omitempty"`
	HasTrafficInfeasibilities bool        `json:"hasTrafficInfeasibilities,omitempty"`
}

// SkippedShipment records a shipment the solver could not place.
type SkippedShipment struct {
	Index int    `json:"index"`
	Label string `json:"label,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// OptimizeToursResponse is the full response returned by the solver.
type OptimizeToursResponse struct {
	Routes            []ShipmentRoute    `json:"routes,omitempty"`
	SkippedShipments  []SkippedShipment  `json:"skippedShipments,omitempty"`
	TotalCost         float64            `json:"totalCost,omitempty"`
}
