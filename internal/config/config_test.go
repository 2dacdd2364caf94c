package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/your_project/two-step-routing/twostep"
)

func TestLoadFallsBackToPackageDefaultsWithNoConfigFilePresent(t *testing.T) {
	opts, err := Load()
	require.NoError(t, err)

	defaults := twostep.DefaultOptions()
	assert.Equal(t, defaults.LocalModelVehicleFixedCost, opts.LocalModelVehicleFixedCost)
	assert.Equal(t, defaults.LocalModelVehiclePerHourCost, opts.LocalModelVehiclePerHourCost)
	assert.Equal(t, defaults.LocalModelVehiclePerKmCost, opts.LocalModelVehiclePerKmCost)
	assert.Equal(t, defaults.MinAverageShipmentsPerRound, opts.MinAverageShipmentsPerRound)
	assert.Equal(t, defaults.UseDeprecatedFields, opts.UseDeprecatedFields)
}
