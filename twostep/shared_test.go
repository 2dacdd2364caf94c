package twostep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInitialLocalModelGrouping(t *testing.T) {
	g, err := ParseInitialLocalModelGrouping("time_windows, penalty_cost_per_item")
	require.NoError(t, err)
	assert.True(t, g.ByTimeWindows)
	assert.True(t, g.ByPenaltyCostPerItem)

	g, err = ParseInitialLocalModelGrouping("")
	require.NoError(t, err)
	assert.False(t, g.ByTimeWindows)
	assert.False(t, g.ByPenaltyCostPerItem)

	_, err = ParseInitialLocalModelGrouping("unknown_flag")
	assert.Error(t, err)
}

func TestResolveInternalParametersPrecedence(t *testing.T) {
	opts := InternalParameters{
		Default:          "default",
		Local:            "local",
		Global:           "global",
		LocalRefinement:  "local-refinement",
		GlobalRefinement: "global-refinement",
	}

	assert.Equal(t, "local", ResolveInternalParameters(PhaseLocal, "ignored-for-local", opts))
	assert.Equal(t, "override", ResolveInternalParameters(PhaseGlobal, "override", opts))
	assert.Equal(t, "global", ResolveInternalParameters(PhaseGlobal, "", opts))
	assert.Equal(t, "local-refinement", ResolveInternalParameters(PhaseLocalRefinement, "ignored", opts))
	assert.Equal(t, "override", ResolveInternalParameters(PhaseGlobalRefinement, "override", opts))
	assert.Equal(t, "global-refinement", ResolveInternalParameters(PhaseGlobalRefinement, "", opts))

	empty := InternalParameters{Default: "default"}
	assert.Equal(t, "default", ResolveInternalParameters(PhaseLocal, "", empty))
}
