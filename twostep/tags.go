package twostep

import (
	"fmt"

	"example.com/your_project/two-step-routing/cfrjson"
)

// largeSyntheticCost and largeSyntheticDelay make a transition infeasible in
// practice without hard-forbidding it at the solver level: any solution
// using one is dominated by essentially any alternative.
const (
	largeSyntheticCost  = 1_000_000.0
	largeSyntheticDelay = cfrjson.Duration(2 * 60 * 60 * 1000) // 2 hours, in milliseconds
)

// ParkingLocationTags are the synthetic tags minted for one parking
// location, used to attach costs/delays via the solver's transition
// attribute mechanism and to prevent the solver from interleaving rounds
// illegally.
type ParkingLocationTags struct {
	GlobalTag               string
	LocalUnloadFromVehicleTag string
	LocalLoadToVehicleTag     string
	LocalVisitTag             string
	LocalBarrierPickupTag     string
	LocalBarrierDeliveryTag   string

	// HasGlobalTransitionAttributes reports whether this parking has any
	// arrival/departure/reload cost or delay, i.e. whether GlobalTag needs
	// to be attached to the global virtual shipment at all.
	HasGlobalTransitionAttributes bool
}

// TransitionAttributeManager lazily mints synthetic tags per parking
// location and accumulates the transitionAttributes lists for the local,
// local-refinement, and global models.
type TransitionAttributeManager struct {
	usedTags map[string]bool
	tags     map[ParkingTag]ParkingLocationTags

	globalAttributes          []cfrjson.TransitionAttributes
	localAttributes           []cfrjson.TransitionAttributes
	localRefinementAttributes []cfrjson.TransitionAttributes
}

// NewTransitionAttributeManager scans model for every tag already in use so
// that minted synthetic tags never collide with it.
func NewTransitionAttributeManager(model *cfrjson.ShipmentModel) *TransitionAttributeManager {
	return &TransitionAttributeManager{
		usedTags: cfrjson.GetAllVisitTags(model),
		tags:     map[ParkingTag]ParkingLocationTags{},
	}
}

// nonExistentTag returns base if it is unused, otherwise base suffixed with
// "#1", "#2", ... until an unused tag is found. The winning tag is marked
// used.
func (m *TransitionAttributeManager) nonExistentTag(base string) string {
	if !m.usedTags[base] {
		m.usedTags[base] = true
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s#%d", base, i)
		if !m.usedTags[candidate] {
			m.usedTags[candidate] = true
			return candidate
		}
	}
}

// GetOrCreate returns the (possibly newly minted) ParkingLocationTags for
// parking, emitting its transition attribute rules into the three lists the
// first time it is seen.
func (m *TransitionAttributeManager) GetOrCreate(parking *ParkingLocation) ParkingLocationTags {
	if tags, ok := m.tags[parking.Tag]; ok {
		return tags
	}

	tags := ParkingLocationTags{
		GlobalTag:                 m.nonExistentTag(parking.Tag + "/global"),
		LocalUnloadFromVehicleTag: m.nonExistentTag(parking.Tag + "/local/unload"),
		LocalLoadToVehicleTag:     m.nonExistentTag(parking.Tag + "/local/load"),
		LocalVisitTag:             m.nonExistentTag(parking.Tag + "/local/visit"),
		LocalBarrierPickupTag:     m.nonExistentTag(parking.Tag + "/local/barrier/pickup"),
		LocalBarrierDeliveryTag:   m.nonExistentTag(parking.Tag + "/local/barrier/delivery"),
	}
	tags.HasGlobalTransitionAttributes = parking.ArrivalDuration != 0 || parking.DepartureDuration != 0 ||
		parking.ReloadDuration != 0 || parking.ArrivalCost != 0 || parking.DepartureCost != 0 || parking.ReloadCost != 0

	m.addGlobalAttributes(tags, parking)
	m.addLocalAttributes(tags)
	m.addLocalRefinementAttributes(tags, parking)

	m.tags[parking.Tag] = tags
	return tags
}

func (m *TransitionAttributeManager) addGlobalAttributes(tags ParkingLocationTags, parking *ParkingLocation) {
	if !tags.HasGlobalTransitionAttributes {
		return
	}
	m.globalAttributes = append(m.globalAttributes,
		cfrjson.TransitionAttributes{
			ExcludedSrcTag: tags.GlobalTag,
			DstTag:         tags.GlobalTag,
			Cost:           parking.ArrivalCost,
			Delay:          parking.ArrivalDuration,
		},
		cfrjson.TransitionAttributes{
			SrcTag:         tags.GlobalTag,
			ExcludedDstTag: tags.GlobalTag,
			Cost:           parking.DepartureCost,
			Delay:          parking.DepartureDuration,
		},
		cfrjson.TransitionAttributes{
			SrcTag: tags.GlobalTag,
			DstTag: tags.GlobalTag,
			Cost:   parking.ReloadCost,
			Delay:  parking.ReloadDuration,
		},
	)
}

func (m *TransitionAttributeManager) addLocalAttributes(tags ParkingLocationTags) {
	m.localAttributes = append(m.localAttributes, anteInterleavingRules(tags)...)
}

func (m *TransitionAttributeManager) addLocalRefinementAttributes(tags ParkingLocationTags, parking *ParkingLocation) {
	rules := anteInterleavingRules(tags)
	rules = append(rules,
		cfrjson.TransitionAttributes{
			SrcTag: tags.LocalVisitTag,
			DstTag: tags.LocalBarrierPickupTag,
			Cost:   parking.ReloadCost,
			Delay:  parking.ReloadDuration,
		},
		cfrjson.TransitionAttributes{
			SrcTag: tags.LocalLoadToVehicleTag,
			DstTag: tags.LocalBarrierPickupTag,
			Cost:   parking.ReloadCost,
			Delay:  parking.ReloadDuration,
		},
	)
	m.localRefinementAttributes = append(m.localRefinementAttributes, rules...)
}

// anteInterleavingRules builds the three rules that make it effectively
// infeasible to begin a new round before finishing the previous one:
// load-then-unload, visit-then-unload, and load-then-visit are all
// penalized with a large synthetic cost/delay.
func anteInterleavingRules(tags ParkingLocationTags) []cfrjson.TransitionAttributes {
	return []cfrjson.TransitionAttributes{
		{
			SrcTag: tags.LocalLoadToVehicleTag,
			DstTag: tags.LocalUnloadFromVehicleTag,
			Cost:   largeSyntheticCost,
			Delay:  largeSyntheticDelay,
		},
		{
			SrcTag: tags.LocalVisitTag,
			DstTag: tags.LocalUnloadFromVehicleTag,
			Cost:   largeSyntheticCost,
			Delay:  largeSyntheticDelay,
		},
		{
			SrcTag: tags.LocalLoadToVehicleTag,
			DstTag: tags.LocalVisitTag,
			Cost:   largeSyntheticCost,
			Delay:  largeSyntheticDelay,
		},
	}
}

// GlobalTransitionAttributes returns the accumulated global-model rules.
func (m *TransitionAttributeManager) GlobalTransitionAttributes() []cfrjson.TransitionAttributes {
	return append([]cfrjson.TransitionAttributes(nil), m.globalAttributes...)
}

// LocalTransitionAttributes returns the accumulated local-model rules.
func (m *TransitionAttributeManager) LocalTransitionAttributes() []cfrjson.TransitionAttributes {
	return append([]cfrjson.TransitionAttributes(nil), m.localAttributes...)
}

// LocalRefinementTransitionAttributes returns the accumulated
// local-refinement-model rules.
func (m *TransitionAttributeManager) LocalRefinementTransitionAttributes() []cfrjson.TransitionAttributes {
	return append([]cfrjson.TransitionAttributes(nil), m.localRefinementAttributes...)
}
