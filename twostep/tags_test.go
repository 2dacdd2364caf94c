package twostep

import (
	"testing"

	"example.com/your_project/two-step-routing/cfrjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionAttributeManagerAvoidsCollidingTags(t *testing.T) {
	model := &cfrjson.ShipmentModel{
		Shipments: []cfrjson.Shipment{
			{Deliveries: []cfrjson.VisitRequest{{Tags: []string{"p1/local/load"}}}},
		},
	}
	mgr := NewTransitionAttributeManager(model)
	tags := mgr.GetOrCreate(&ParkingLocation{Tag: "p1"})
	assert.Equal(t, "p1/local/load#1", tags.LocalLoadToVehicleTag, "the base tag is already in use by the input model")
}

func TestTransitionAttributeManagerIsIdempotentPerParking(t *testing.T) {
	mgr := NewTransitionAttributeManager(&cfrjson.ShipmentModel{})
	parking := &ParkingLocation{Tag: "p1"}

	first := mgr.GetOrCreate(parking)
	second := mgr.GetOrCreate(parking)
	assert.Equal(t, first, second)
	assert.Len(t, mgr.LocalTransitionAttributes(), 3, "interleaving rules are emitted exactly once per parking")
}

func TestTransitionAttributeManagerOnlySetsGlobalTagWhenNeeded(t *testing.T) {
	mgr := NewTransitionAttributeManager(&cfrjson.ShipmentModel{})

	plain := mgr.GetOrCreate(&ParkingLocation{Tag: "plain"})
	assert.False(t, plain.HasGlobalTransitionAttributes)
	assert.Empty(t, mgr.GlobalTransitionAttributes(), "plain parking contributes nothing to the global attribute list")

	withCost := mgr.GetOrCreate(&ParkingLocation{Tag: "withcost", ArrivalCost: 5})
	assert.True(t, withCost.HasGlobalTransitionAttributes)
}

func TestTransitionAttributeManagerGlobalRulesUseExcludedTags(t *testing.T) {
	mgr := NewTransitionAttributeManager(&cfrjson.ShipmentModel{})
	parking := &ParkingLocation{Tag: "p1", ArrivalCost: 1, DepartureCost: 2, ReloadCost: 3}
	tags := mgr.GetOrCreate(parking)

	rules := mgr.GlobalTransitionAttributes()
	require.Len(t, rules, 3)

	assert.Equal(t, tags.GlobalTag, rules[0].ExcludedSrcTag)
	assert.Equal(t, tags.GlobalTag, rules[0].DstTag)

	assert.Equal(t, tags.GlobalTag, rules[1].SrcTag)
	assert.Equal(t, tags.GlobalTag, rules[1].ExcludedDstTag)

	assert.Equal(t, tags.GlobalTag, rules[2].SrcTag)
	assert.Equal(t, tags.GlobalTag, rules[2].DstTag)
}

func TestTransitionAttributeManagerRefinementAddsBarrierRules(t *testing.T) {
	mgr := NewTransitionAttributeManager(&cfrjson.ShipmentModel{})
	parking := &ParkingLocation{Tag: "p1"}
	mgr.GetOrCreate(parking)

	refinement := mgr.LocalRefinementTransitionAttributes()
	assert.Len(t, refinement, 5, "3 interleaving rules plus 2 barrier rules")
}
