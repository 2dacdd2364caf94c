// Package config loads twostep.Options defaults from a config file or the
// environment, distinctly from the per-request JSON body which always comes
// from stdin or an HTTP request. Grounded on shivamshaw23-Hintro's
// config.Load: viper.SetDefault for every field, viper.AutomaticEnv so
// environment variables override the file, a single Load() entry point.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"example.com/your_project/two-step-routing/twostep"
)

// Load reads planner tuning from a ".env"-style config file (if present)
// and the environment, falling back to twostep.DefaultOptions for anything
// left unset.
func Load() (twostep.Options, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	defaults := twostep.DefaultOptions()
	v.SetDefault("LOCAL_MODEL_VEHICLE_FIXED_COST", defaults.LocalModelVehicleFixedCost)
	v.SetDefault("LOCAL_MODEL_VEHICLE_PER_HOUR_COST", defaults.LocalModelVehiclePerHourCost)
	v.SetDefault("LOCAL_MODEL_VEHICLE_PER_KM_COST", defaults.LocalModelVehiclePerKmCost)
	v.SetDefault("MIN_AVERAGE_SHIPMENTS_PER_ROUND", defaults.MinAverageShipmentsPerRound)
	v.SetDefault("USE_DEPRECATED_FIELDS", defaults.UseDeprecatedFields)
	v.SetDefault("TRAVEL_MODE_IN_MERGED_TRANSITIONS", defaults.TravelModeInMergedTransitions)
	v.SetDefault("ALLOW_NEGATIVE_WAIT_DURATION", defaults.AllowNegativeWaitDuration)
	v.SetDefault("INITIAL_LOCAL_MODEL_GROUPING", "")

	// A missing config file is not an error: env vars or the defaults set
	// above are used instead, same as the teacher's Load().
	_ = v.ReadInConfig()

	grouping, err := twostep.ParseInitialLocalModelGrouping(v.GetString("INITIAL_LOCAL_MODEL_GROUPING"))
	if err != nil {
		return twostep.Options{}, fmt.Errorf("config: initial local model grouping: %w", err)
	}

	return twostep.Options{
		InitialLocalModelGrouping:    grouping,
		LocalModelVehicleFixedCost:   v.GetFloat64("LOCAL_MODEL_VEHICLE_FIXED_COST"),
		LocalModelVehiclePerHourCost: v.GetFloat64("LOCAL_MODEL_VEHICLE_PER_HOUR_COST"),
		LocalModelVehiclePerKmCost:   v.GetFloat64("LOCAL_MODEL_VEHICLE_PER_KM_COST"),
		MinAverageShipmentsPerRound:  v.GetFloat64("MIN_AVERAGE_SHIPMENTS_PER_ROUND"),
		UseDeprecatedFields:          v.GetBool("USE_DEPRECATED_FIELDS"),
		TravelModeInMergedTransitions: v.GetBool("TRAVEL_MODE_IN_MERGED_TRANSITIONS"),
		AllowNegativeWaitDuration:    v.GetBool("ALLOW_NEGATIVE_WAIT_DURATION"),
	}, nil
}
