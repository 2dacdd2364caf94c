// twostep runs the full two-step decomposition/recomposition pipeline
// (local model, global model, optional refinement, merge) against one
// input document, following the same run.Run(solver) idiom as
// cmd/twostep-router.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/nextmv-io/sdk/run"

	"example.com/your_project/two-step-routing/cfrjson"
	"example.com/your_project/two-step-routing/internal/cfrclient"
	"example.com/your_project/two-step-routing/internal/config"
	"example.com/your_project/two-step-routing/twostep"
)

func main() {
	if err := run.Run(solve); err != nil {
		log.Fatal(err)
	}
}

// input bundles the CFR request with the parking definitions the core
// needs to partition it, following the "Parking definition file" shape
// from the external-interfaces section: parking_locations plus a
// shipment-index -> parking-tag map.
type input struct {
	cfrjson.OptimizeToursRequest
	ParkingLocations   []twostep.ParkingLocation  `json:"parkingLocations"`
	ParkingForShipment twostep.ParkingForShipment `json:"parkingForShipment"`
}

// Option is the CLI Option shape: a "limits" duration under a json tag. The
// solver endpoint is not an Option; solve reads it from CFR_SOLVER_ENDPOINT.
type Option struct {
	Limits struct {
		Duration time.Duration `json:"duration" default:"10s"`
	} `json:"limits"`
}

func solve(in input, _ Option) (*cfrjson.OptimizeToursResponse, error) {
	options, err := config.Load()
	if err != nil {
		return nil, err
	}

	base := in.OptimizeToursRequest
	planner, err := twostep.NewPlanner(&base, in.ParkingLocations, in.ParkingForShipment, options)
	if err != nil {
		return nil, err
	}

	endpoint := os.Getenv("CFR_SOLVER_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8090/solve"
	}
	solver := cfrclient.New(endpoint, nil)

	result, err := planner.Plan(context.Background(), solver)
	if err != nil {
		return nil, err
	}
	return result.MergedResponse, nil
}
