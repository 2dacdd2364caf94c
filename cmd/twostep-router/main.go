// twostep-router solves one single-vehicle pickup-and-delivery request
// without transition attributes or break rules standalone, for ad hoc runs
// and debugging outside the full two-step pipeline. Local and
// local-refinement model requests carry transition attributes and are
// rejected by nextmvsolver.BuildRouter. It follows the
// same run.Run(solver) idiom as every Nextmv routing template: the CLI
// handles reading input and writing the solution, the solver function only
// builds and returns a store.Solver.
package main

import (
	"log"

	"github.com/nextmv-io/sdk/run"
	"github.com/nextmv-io/sdk/store"

	"example.com/your_project/two-step-routing/cfrjson"
	"example.com/your_project/two-step-routing/internal/nextmvsolver"
)

func main() {
	if err := run.Run(solve); err != nil {
		log.Fatal(err)
	}
}

func solve(req cfrjson.OptimizeToursRequest, opts store.Options) (store.Solver, error) {
	router, err := nextmvsolver.BuildRouter(&req)
	if err != nil {
		return nil, err
	}
	return router.Solver(opts)
}
